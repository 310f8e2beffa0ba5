package handler

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/handler/middleware"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

var ErrNoPrincipal = errors.New("principal not found in context")

func principalFromContext(c *gin.Context) (*service.Principal, error) {
	val, exists := c.Get(middleware.ContextKeyPrincipal)
	if !exists {
		return nil, ErrNoPrincipal
	}
	p, ok := val.(*service.Principal)
	if !ok {
		return nil, ErrNoPrincipal
	}
	return p, nil
}

// mustPrincipal answers 401 and returns nil when no principal is present.
func mustPrincipal(c *gin.Context) *service.Principal {
	p, err := principalFromContext(c)
	if err != nil {
		response.Unauthorized(c, "invalid session context")
		return nil
	}
	return p
}

func idParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// parseGiftDate accepts RFC 3339 timestamps or plain YYYY-MM-DD dates.
func parseGiftDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, errors.New("gift_date must be YYYY-MM-DD or RFC 3339")
	}
	return &t, nil
}

// writeError maps a service error kind to its HTTP answer. Unknown errors are
// attached to the context for the request logger and hidden from the client.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotClaimed):
		// the account exists but must be claimed before it can sign in
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		response.Unauthorized(c, err.Error())
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrMatchNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrNotAnOrganizer):
		response.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c, "internal server error")
	}
}
