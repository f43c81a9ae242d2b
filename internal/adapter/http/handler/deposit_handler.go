package handler

import (
	"vehicle-escrow-service/internal/adapter/http/dto"
	"vehicle-escrow-service/internal/core/domain"
	"vehicle-escrow-service/internal/core/ports"
	"vehicle-escrow-service/pkg/apperror"
	"vehicle-escrow-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// DepositHandler handles deposit endpoints.
type DepositHandler struct {
	depositSvc ports.DepositService
}

// NewDepositHandler creates a new DepositHandler.
func NewDepositHandler(depositSvc ports.DepositService) *DepositHandler {
	return &DepositHandler{depositSvc: depositSvc}
}

// ProcessDeposit handles POST /api/v1/escrows/:id/deposit.
func (h *DepositHandler) ProcessDeposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	deposit, err := h.depositSvc.ProcessDeposit(c.Request.Context(), ports.DepositRequest{
		TransactionID: c.Param("id"),
		Amount:        req.Amount,
		Method:        req.Method,
		Reference:     req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toDepositResponse(deposit))
}

// ListDeposits handles GET /api/v1/escrows/:id/deposits.
func (h *DepositHandler) ListDeposits(c *gin.Context) {
	confirmedOnly := c.Query("confirmed") == "true"

	deposits, err := h.depositSvc.ListDeposits(c.Request.Context(), c.Param("id"), confirmedOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.DepositResponse, 0, len(deposits))
	for i := range deposits {
		resp = append(resp, toDepositResponse(&deposits[i]))
	}
	response.OK(c, resp)
}

// toDepositResponse converts domain.Deposit to DTO.
func toDepositResponse(d *domain.Deposit) dto.DepositResponse {
	resp := dto.DepositResponse{
		ID:            d.ID.String(),
		TransactionID: d.TransactionID,
		Amount:        d.Amount,
		Method:        d.Method,
		Reference:     d.Reference,
		DepositedAt:   d.DepositedAt.Format(timeLayout),
	}
	if d.ConfirmedAt != nil {
		s := d.ConfirmedAt.Format(timeLayout)
		resp.ConfirmedAt = &s
	}
	return resp
}
