package controllers

import (
	"time"

	"github.com/goccy/go-json"

	"github.com/shashiranjanraj/uniformhub/app/presenters"
	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/auth"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
)

type AuthController struct {
	auth *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{auth: s}
}

func meta(c *ctx.Context) services.ClientMeta {
	return services.ClientMeta{IP: c.ClientIP(), UserAgent: c.UserAgent()}
}

func sessionPayload(res *services.SessionResult) map[string]any {
	return map[string]any{
		"user":        presenters.User(*res.User),
		"token":       res.Token,
		"expiresAt":   res.ExpiresAt,
		"permissions": res.Permissions,
	}
}

// SignUp POST /api/auth/sign-up/email
func (a *AuthController) SignUp(c *ctx.Context) {
	var in services.SignUpInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.auth.SignUp(c.Context(), in, meta(c))
	if err != nil {
		fail(c, err)
		return
	}
	if res.Token == "" {
		c.Accepted("Your account is awaiting approval", map[string]any{
			"user":    presenters.User(*res.User),
			"pending": true,
		})
		return
	}
	auth.SetCookie(c.W, res.Token, res.ExpiresAt)
	c.Created(sessionPayload(res))
}

// SignIn POST /api/auth/sign-in/email
func (a *AuthController) SignIn(c *ctx.Context) {
	var in services.SignInInput
	if !c.BindJSON(&in) {
		return
	}
	res, err := a.auth.SignIn(c.Context(), in, meta(c))
	if err != nil {
		fail(c, err)
		return
	}
	auth.SetCookie(c.W, res.Token, res.ExpiresAt)
	c.Success(sessionPayload(res))
}

// SignOut POST /api/auth/sign-out
func (a *AuthController) SignOut(c *ctx.Context) {
	if p := c.Principal(); p != nil {
		if err := a.auth.SignOut(c.Context(), p.SessionID); err != nil {
			fail(c, err)
			return
		}
	}
	auth.SetCookie(c.W, "", time.Time{})
	c.Message("Signed out")
}

// Session GET /api/auth/get-session answers null data for anonymous callers.
func (a *AuthController) Session(c *ctx.Context) {
	p := c.Principal()
	if p == nil {
		c.Success(json.RawMessage("null"))
		return
	}
	a.writeMe(c, p, true)
}

// Me GET /api/me
func (a *AuthController) Me(c *ctx.Context) {
	a.writeMe(c, c.Principal(), false)
}

func (a *AuthController) writeMe(c *ctx.Context, p *auth.Principal, withSession bool) {
	user, perms, err := a.auth.Me(c.Context(), p.UserID)
	if err != nil {
		fail(c, err)
		return
	}
	out := map[string]any{
		"user":        presenters.User(*user),
		"permissions": perms,
	}
	if withSession {
		out["session"] = map[string]any{"id": p.SessionID}
	}
	c.W.Header().Set("Cache-Control", "no-store")
	c.Success(out)
}
