package controllers

import (
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

type SettingController struct {
	settings *services.SettingService
}

func NewSettingController(s *services.SettingService) *SettingController {
	return &SettingController{settings: s}
}

type approvalPayload struct {
	RequireAdminApproval *bool `json:"requireAdminApproval" validate:"required"`
}

func (s *SettingController) Approval(c *ctx.Context) {
	on, err := s.settings.RequireApproval(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]bool{"requireAdminApproval": on})
}

func (s *SettingController) UpdateApproval(c *ctx.Context) {
	var in approvalPayload
	if !c.BindJSON(&in) {
		return
	}
	if err := s.settings.SetRequireApproval(c.Context(), *in.RequireAdminApproval); err != nil {
		fail(c, err)
		return
	}
	c.Success(map[string]bool{"requireAdminApproval": *in.RequireAdminApproval})
}

// Branding is public so the sign-in page can theme itself.
func (s *SettingController) Branding(c *ctx.Context) {
	b, err := s.settings.Branding(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(b)
}

func (s *SettingController) UpdateBranding(c *ctx.Context) {
	var in services.BrandingInput
	if !c.BindJSON(&in) {
		return
	}
	b, err := s.settings.UpdateBranding(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(b)
}
