package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/handler/middleware"
	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

type AccountHandler struct {
	identityService service.IdentityService
	gate            service.AuthorizationGate
}

func NewAccountHandler(identityService service.IdentityService, gate service.AuthorizationGate) *AccountHandler {
	return &AccountHandler{
		identityService: identityService,
		gate:            gate,
	}
}

type CreateAccountRequest struct {
	Name string `json:"name" binding:"required,max=256"`
	// Role defaults by caller: bootstrap -> SUPER_ADMIN, super admin ->
	// ORGANIZER, organizer -> PARTICIPANT.
	Role string `json:"role" binding:"omitempty,oneof=SUPER_ADMIN ORGANIZER PARTICIPANT"`
}

// Create makes an unclaimed account. It runs outside SessionAuth because the
// very first account is created without a session.
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	actor, err := h.gate.AuthorizeAccountCreation(c.Request.Context(), middleware.TokenFromRequest(c))
	if err != nil {
		writeError(c, err)
		return
	}

	account, err := h.identityService.CreateAccount(c.Request.Context(), actor, req.Name, model.Role(req.Role))
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, account)
}
