package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/uniformhub/app/services"
	"github.com/shashiranjanraj/uniformhub/pkg/ctx"
	"github.com/shashiranjanraj/uniformhub/pkg/database"
	"github.com/shashiranjanraj/uniformhub/pkg/logger"
)

// fail maps a service error onto the response envelope. Unknown errors are
// logged and reported as 500 without detail.
func fail(c *ctx.Context, err error) {
	var verr *services.ValidationError
	var banned *services.BannedError
	switch {
	case errors.As(err, &verr):
		c.ValidationError(verr.Fields)
	case errors.As(err, &banned):
		c.ErrorData(http.StatusForbidden, "Account is banned", map[string]string{"reason": banned.Reason})
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(err.Error())
	case errors.Is(err, services.ErrConflict):
		c.Error(http.StatusConflict, err.Error())
	case database.IsDuplicate(err):
		c.Error(http.StatusConflict, "A record with the same unique value already exists")
	case errors.Is(err, services.ErrForbidden):
		c.Forbidden(err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		c.Error(http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, services.ErrNoActiveDisk):
		c.Error(http.StatusServiceUnavailable, "No storage provider is active")
	default:
		logger.WithCtx(c.Context()).Error("request failed", "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}
