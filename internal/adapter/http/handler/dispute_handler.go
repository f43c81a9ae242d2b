package handler

import (
	"vehicle-escrow-service/internal/adapter/http/dto"
	"vehicle-escrow-service/internal/adapter/http/middleware"
	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"
	"vehicle-escrow-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// DisputeHandler handles dispute endpoints.
type DisputeHandler struct {
	disputeSvc ports.DisputeService
}

// NewDisputeHandler creates a new DisputeHandler.
func NewDisputeHandler(disputeSvc ports.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeSvc: disputeSvc}
}

// Raise handles POST /api/v1/escrows/:id/disputes.
func (h *DisputeHandler) Raise(c *gin.Context) {
	var req dto.RaiseDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	dispute, err := h.disputeSvc.RaiseDispute(c.Request.Context(), ports.DisputeRequest{
		TransactionID: c.Param("id"),
		Reason:        req.Reason,
		RaisedBy:      middleware.Actor(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toDisputeResponse(dispute))
}

// StartReview handles PATCH /api/v1/disputes/:id/review.
func (h *DisputeHandler) StartReview(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid dispute id"))
		return
	}

	dispute, err := h.disputeSvc.StartDisputeReview(c.Request.Context(), disputeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toDisputeResponse(dispute))
}

// Resolve handles POST /api/v1/disputes/:id/resolve.
func (h *DisputeHandler) Resolve(c *gin.Context) {
	disputeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("invalid dispute id"))
		return
	}

	var req dto.ResolveDisputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	dispute, err := h.disputeSvc.ResolveDispute(c.Request.Context(), disputeID, req.Resolution, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toDisputeResponse(dispute))
}

// ListByTransaction handles GET /api/v1/escrows/:id/disputes.
func (h *DisputeHandler) ListByTransaction(c *gin.Context) {
	disputes, err := h.disputeSvc.ListDisputes(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toDisputeResponses(disputes))
}

// ListByStatus handles GET /api/v1/disputes?status=OPEN.
func (h *DisputeHandler) ListByStatus(c *gin.Context) {
	disputes, err := h.disputeSvc.ListDisputesByStatus(c.Request.Context(), domain.DisputeStatus(c.Query("status")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toDisputeResponses(disputes))
}

func toDisputeResponses(disputes []domain.Dispute) []dto.DisputeResponse {
	resp := make([]dto.DisputeResponse, 0, len(disputes))
	for i := range disputes {
		resp = append(resp, toDisputeResponse(&disputes[i]))
	}
	return resp
}

// toDisputeResponse converts domain.Dispute to DTO.
func toDisputeResponse(d *domain.Dispute) dto.DisputeResponse {
	resp := dto.DisputeResponse{
		ID:             d.ID.String(),
		TransactionID:  d.TransactionID,
		Reason:         d.Reason,
		RaisedBy:       d.RaisedBy,
		Status:         string(d.Status),
		PreviousStatus: string(d.PreviousStatus),
		Resolution:     d.Resolution,
		ResolvedBy:     d.ResolvedBy,
		RaisedAt:       d.RaisedAt.Format(timeLayout),
	}
	if d.ResolvedAt != nil {
		t := d.ResolvedAt.Format(timeLayout)
		resp.ResolvedAt = &t
	}
	return resp
}
