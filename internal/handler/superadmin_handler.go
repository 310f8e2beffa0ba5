package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

type SuperAdminHandler struct {
	identityService service.IdentityService
	eventService    service.EventService
	cascadeService  service.CascadeService
}

func NewSuperAdminHandler(
	identityService service.IdentityService,
	eventService service.EventService,
	cascadeService service.CascadeService,
) *SuperAdminHandler {
	return &SuperAdminHandler{
		identityService: identityService,
		eventService:    eventService,
		cascadeService:  cascadeService,
	}
}

func (h *SuperAdminHandler) ListOrganizers(c *gin.Context) {
	h.listRole(c, model.RoleOrganizer)
}

// ListParticipants includes created_by so the owning organizer is visible.
func (h *SuperAdminHandler) ListParticipants(c *gin.Context) {
	h.listRole(c, model.RoleParticipant)
}

func (h *SuperAdminHandler) listRole(c *gin.Context, role model.Role) {
	accounts, err := h.identityService.ListByRole(c.Request.Context(), role)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, accounts)
}

func (h *SuperAdminHandler) ListEvents(c *gin.Context) {
	events, err := h.eventService.ListAllEvents(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, events)
}

// DeleteOrganizer removes the organizer with all of its events and
// participants. The caller must pass confirm=true.
func (h *SuperAdminHandler) DeleteOrganizer(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if c.Query("confirm") != "true" {
		response.BadRequest(c, "this deletes the organizer with all of its events and participants; repeat with confirm=true")
		return
	}

	result, err := h.cascadeService.DeleteOrganizer(c.Request.Context(), *p, id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, result)
}
