package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

// ParticipantHandler serves the giver's own view. Nothing here returns
// another participant's match.
type ParticipantHandler struct {
	eventService      service.EventService
	assignmentService service.AssignmentService
}

func NewParticipantHandler(eventService service.EventService, assignmentService service.AssignmentService) *ParticipantHandler {
	return &ParticipantHandler{
		eventService:      eventService,
		assignmentService: assignmentService,
	}
}

func (h *ParticipantHandler) ListEvents(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}

	views, err := h.eventService.ListEventsForParticipant(c.Request.Context(), p.AccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, views)
}

// Reveal records the first view of the caller's match and returns it.
func (h *ParticipantHandler) Reveal(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	view, err := h.assignmentService.Reveal(c.Request.Context(), id, p.AccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, view)
}
