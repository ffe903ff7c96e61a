package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/bind"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

type EmailController struct {
	emails *services.EmailService

	Templates, Template, StoreTemplate, UpdateTemplate, DestroyTemplate ctx.HandlerFunc
	Fragments, Fragment, StoreFragment, UpdateFragment, DestroyFragment ctx.HandlerFunc
}

func NewEmailController(s *services.EmailService) *EmailController {
	return &EmailController{
		emails: s,

		Templates:       list(s.Templates),
		Template:        show(s.Template),
		StoreTemplate:   store(s.CreateTemplate),
		UpdateTemplate:  update(s.UpdateTemplate),
		DestroyTemplate: destroy(s.DeleteTemplate),

		Fragments:       list(s.Fragments),
		Fragment:        show(s.Fragment),
		StoreFragment:   store(s.CreateFragment),
		UpdateFragment:  update(s.UpdateFragment),
		DestroyFragment: destroy(s.DeleteFragment),
	}
}

// SendTest POST /api/admin/emails/send-test sends now and returns the log row.
func (ec *EmailController) SendTest(c *ctx.Context) {
	var in services.SendTestInput
	if !c.BindJSON(&in) {
		return
	}
	row, err := ec.emails.SendTest(c.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(row)
}

func (ec *EmailController) Logs(c *ctx.Context) {
	out, page, err := ec.emails.Logs(c.Context(), c.Query("status"), c.Page())
	if err != nil {
		fail(c, err)
		return
	}
	c.Paginated(out, page)
}

// Preview POST /api/admin/emails/templates/{id}/preview. The body is
// optional and overrides the sample data.
func (ec *EmailController) Preview(c *ctx.Context) {
	id, ok := c.ParamUint("id")
	if !ok {
		return
	}
	var in services.PreviewInput
	if _, err := bind.JSON(c.R, &in); err != nil && !errors.Is(err, bind.ErrEmptyBody) {
		c.Error(http.StatusBadRequest, err.Error())
		return
	}
	out, err := ec.emails.Preview(c.Context(), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(out)
}
