package handler

import (
	"encoding/json"
	"strconv"

	"vehicle-escrow-service/internal/adapter/http/dto"
	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"
	"vehicle-escrow-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// EventHandler exposes the audit log and state reconstruction endpoints.
type EventHandler struct {
	eventSvc ports.EventSourcingService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(eventSvc ports.EventSourcingService) *EventHandler {
	return &EventHandler{eventSvc: eventSvc}
}

// History handles GET /api/v1/escrows/:id/events.
func (h *EventHandler) History(c *gin.Context) {
	events, err := h.eventSvc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.EventResponse, 0, len(events))
	for i := range events {
		resp = append(resp, toEventResponse(&events[i]))
	}
	response.OK(c, resp)
}

// State handles GET /api/v1/escrows/:id/state with an optional
// up_to_sequence query parameter for point-in-time reconstruction.
func (h *EventHandler) State(c *gin.Context) {
	var upTo *int64
	if raw := c.Query("up_to_sequence"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.Error(c, apperror.Validation("up_to_sequence must be an integer"))
			return
		}
		upTo = &n
	}

	projection, err := h.eventSvc.ReconstructState(c.Request.Context(), c.Param("id"), upTo)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toProjectionResponse(projection))
}

// toEventResponse converts domain.Event to DTO. Payload bytes are decoded to
// a map so clients receive structured JSON rather than a base64 blob.
func toEventResponse(e *domain.Event) dto.EventResponse {
	var payload map[string]any
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &payload)
	}
	return dto.EventResponse{
		ID:             e.ID.String(),
		TransactionID:  e.TransactionID,
		Sequence:       e.Sequence,
		EventType:      string(e.Type),
		PreviousStatus: string(e.PreviousStatus),
		NewStatus:      string(e.NewStatus),
		Payload:        payload,
		TriggeredBy:    e.TriggeredBy,
		OccurredAt:     e.OccurredAt.Format(timeLayout),
	}
}

// toProjectionResponse converts domain.Projection to DTO.
func toProjectionResponse(p *domain.Projection) dto.ProjectionResponse {
	events := make([]dto.EventResponse, 0, len(p.Events))
	for i := range p.Events {
		events = append(events, toEventResponse(&p.Events[i]))
	}
	return dto.ProjectionResponse{
		TransactionID:     p.TransactionID,
		EventCount:        p.EventCount,
		Buyer:             toParticipantDTO(p.Buyer),
		Seller:            toParticipantDTO(p.Seller),
		Vehicle:           toVehicleDTO(p.Vehicle),
		Amount:            p.Amount,
		FeeRate:           p.FeeRate,
		Status:            string(p.Status),
		FeeAmount:         p.FeeAmount,
		SellerAmount:      p.SellerAmount,
		RefundAmount:      p.RefundAmount,
		LastEventType:     string(p.LastEventType),
		LastEventSequence: p.LastEventSequence,
		LastEventTime:     p.LastEventTime.Format(timeLayout),
		Events:            events,
	}
}
