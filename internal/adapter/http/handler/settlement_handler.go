package handler

import (
	"vehicle-escrow-service/internal/adapter/http/dto"
	"vehicle-escrow-service/internal/adapter/http/middleware"
	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"
	"vehicle-escrow-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// SettlementHandler handles settlement endpoints.
type SettlementHandler struct {
	settlementSvc ports.SettlementService
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementSvc ports.SettlementService) *SettlementHandler {
	return &SettlementHandler{settlementSvc: settlementSvc}
}

// Start handles POST /api/v1/escrows/:id/settlement.
func (h *SettlementHandler) Start(c *gin.Context) {
	settlement, err := h.settlementSvc.StartSettlement(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, toSettlementResponse(settlement))
}

// Complete handles POST /api/v1/escrows/:id/settlement/complete, the payout
// gateway's success callback.
func (h *SettlementHandler) Complete(c *gin.Context) {
	var req dto.CompleteSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	settlement, err := h.settlementSvc.CompleteSettlement(c.Request.Context(), c.Param("id"), req.PaymentMethod, req.PaymentReference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(settlement))
}

// Fail handles POST /api/v1/escrows/:id/settlement/fail, the payout
// gateway's failure callback.
func (h *SettlementHandler) Fail(c *gin.Context) {
	var req dto.FailSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	settlement, err := h.settlementSvc.HandleSettlementFailure(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toSettlementResponse(settlement))
}

// Get handles GET /api/v1/escrows/:id/settlement.
func (h *SettlementHandler) Get(c *gin.Context) {
	settlement, err := h.settlementSvc.GetSettlement(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toSettlementResponse(settlement))
}

// toSettlementResponse converts domain.Settlement to DTO.
func toSettlementResponse(s *domain.Settlement) dto.SettlementResponse {
	resp := dto.SettlementResponse{
		ID:               s.ID.String(),
		TransactionID:    s.TransactionID,
		TotalAmount:      s.TotalAmount,
		FeeAmount:        s.FeeAmount,
		SellerAmount:     s.SellerAmount,
		SellerID:         s.SellerID,
		Status:           string(s.Status),
		PaymentMethod:    s.PaymentMethod,
		PaymentReference: s.PaymentReference,
		FailureReason:    s.FailureReason,
		InitiatedAt:      s.InitiatedAt.Format(timeLayout),
	}
	if s.CompletedAt != nil {
		t := s.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &t
	}
	return resp
}
