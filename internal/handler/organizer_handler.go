package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/internal/service"
	"github.com/ugurkiymetli/secret-santa/pkg/response"
)

type OrganizerHandler struct {
	identityService   service.IdentityService
	eventService      service.EventService
	assignmentService service.AssignmentService
}

func NewOrganizerHandler(
	identityService service.IdentityService,
	eventService service.EventService,
	assignmentService service.AssignmentService,
) *OrganizerHandler {
	return &OrganizerHandler{
		identityService:   identityService,
		eventService:      eventService,
		assignmentService: assignmentService,
	}
}

type CreateEventRequest struct {
	Name      string   `json:"name" binding:"required,max=256"`
	GiftLimit *float64 `json:"gift_limit" binding:"omitempty,gte=0"`
	GiftDate  string   `json:"gift_date"`
}

// UpdateEventRequest changes only the fields present. An empty gift_date
// clears the date.
type UpdateEventRequest struct {
	GiftLimit *float64 `json:"gift_limit" binding:"omitempty,gte=0"`
	GiftDate  *string  `json:"gift_date"`
}

type AssignRequest struct {
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
	// Reshuffle confirms that existing matches and their reveals are discarded.
	Reshuffle bool `json:"reshuffle"`
}

// OrganizerEventView is an event with its matches resolved to names, so the
// organizer can follow who has revealed.
type OrganizerEventView struct {
	*model.Event
	Matches []OrganizerMatchView `json:"matches"`
}

type OrganizerMatchView struct {
	GiverID      uuid.UUID  `json:"giver_id"`
	GiverName    string     `json:"giver_name"`
	ReceiverID   uuid.UUID  `json:"receiver_id"`
	ReceiverName string     `json:"receiver_name"`
	Revealed     bool       `json:"is_revealed"`
	RevealedAt   *time.Time `json:"giver_revealed_date,omitempty"`
}

func (h *OrganizerHandler) ListParticipants(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}

	accounts, err := h.identityService.ListCreatedBy(c.Request.Context(), p.AccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, accounts)
}

func (h *OrganizerHandler) DeleteParticipant(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.identityService.DeleteAccount(c.Request.Context(), *p, id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *OrganizerHandler) ListEvents(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}

	events, err := h.eventService.ListEventsForOrganizer(c.Request.Context(), p.AccountID)
	if err != nil {
		writeError(c, err)
		return
	}
	views, err := h.views(c, p.AccountID, events)
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, views)
}

func (h *OrganizerHandler) GetEvent(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.GetEvent(c.Request.Context(), p.AccountID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondEvent(c, p.AccountID, event)
}

func (h *OrganizerHandler) CreateEvent(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}

	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	date, err := parseGiftDate(req.GiftDate)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	event, err := h.eventService.CreateEvent(c.Request.Context(), p.AccountID, service.CreateEventInput{
		Name:       req.Name,
		GiftBudget: req.GiftLimit,
		GiftDate:   date,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Created(c, event)
}

func (h *OrganizerHandler) UpdateEvent(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	changes := service.EventChanges{GiftBudget: req.GiftLimit}
	if req.GiftDate != nil {
		date, err := parseGiftDate(*req.GiftDate)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		changes.SetGiftDate = true
		changes.GiftDate = date
	}

	event, err := h.eventService.UpdateEvent(c.Request.Context(), p.AccountID, id, changes)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondEvent(c, p.AccountID, event)
}

func (h *OrganizerHandler) DeleteEvent(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), p.AccountID, id); err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, nil)
}

// Assign draws the matches. Re-running on an event that already has matches
// needs reshuffle=true and discards every reveal.
func (h *OrganizerHandler) Assign(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	event, err := h.assignmentService.Assign(c.Request.Context(), p.AccountID, id, req.ParticipantIDs, service.AssignOptions{
		Reshuffle: req.Reshuffle,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondEvent(c, p.AccountID, event)
}

func (h *OrganizerHandler) Complete(c *gin.Context) {
	p := mustPrincipal(c)
	if p == nil {
		return
	}
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	event, err := h.eventService.CompleteEvent(c.Request.Context(), p.AccountID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	h.respondEvent(c, p.AccountID, event)
}

func (h *OrganizerHandler) respondEvent(c *gin.Context, organizerID uuid.UUID, event *model.Event) {
	views, err := h.views(c, organizerID, []model.Event{*event})
	if err != nil {
		writeError(c, err)
		return
	}
	response.Success(c, views[0])
}

// views resolves match names from the organizer's own participants.
func (h *OrganizerHandler) views(c *gin.Context, organizerID uuid.UUID, events []model.Event) ([]OrganizerEventView, error) {
	names := make(map[uuid.UUID]string)
	hasMatches := false
	for i := range events {
		if len(events[i].Matches) > 0 {
			hasMatches = true
			break
		}
	}
	if hasMatches {
		accounts, err := h.identityService.ListCreatedBy(c.Request.Context(), organizerID)
		if err != nil {
			return nil, err
		}
		for _, a := range accounts {
			names[a.ID] = a.Name
		}
	}

	views := make([]OrganizerEventView, 0, len(events))
	for i := range events {
		event := &events[i]
		matches := make([]OrganizerMatchView, 0, len(event.Matches))
		for _, m := range event.Matches {
			matches = append(matches, OrganizerMatchView{
				GiverID:      m.Giver,
				GiverName:    names[m.Giver],
				ReceiverID:   m.Receiver,
				ReceiverName: names[m.Receiver],
				Revealed:     m.Revealed,
				RevealedAt:   m.RevealedAt,
			})
		}
		views = append(views, OrganizerEventView{Event: event, Matches: matches})
	}
	return views, nil
}
