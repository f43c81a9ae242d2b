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

const timeLayout = "2006-01-02T15:04:05Z07:00"

// EscrowHandler handles escrow lifecycle endpoints.
type EscrowHandler struct {
	escrowSvc ports.EscrowService
}

// NewEscrowHandler creates a new EscrowHandler.
func NewEscrowHandler(escrowSvc ports.EscrowService) *EscrowHandler {
	return &EscrowHandler{escrowSvc: escrowSvc}
}

// Create handles POST /api/v1/escrows.
func (h *EscrowHandler) Create(c *gin.Context) {
	var req dto.CreateEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	esc, err := h.escrowSvc.CreateEscrow(c.Request.Context(), ports.CreateEscrowRequest{
		Buyer:   toParticipant(req.Buyer),
		Seller:  toParticipant(req.Seller),
		Vehicle: toVehicle(req.Vehicle),
		Amount:  req.Amount,
		FeeRate: req.FeeRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toEscrowResponse(esc))
}

// Get handles GET /api/v1/escrows/:id.
func (h *EscrowHandler) Get(c *gin.Context) {
	esc, err := h.escrowSvc.GetEscrow(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponse(esc))
}

// List handles GET /api/v1/escrows with buyer_id, seller_id or status filters.
func (h *EscrowHandler) List(c *gin.Context) {
	filter := ports.EscrowListFilter{
		BuyerID:  c.Query("buyer_id"),
		SellerID: c.Query("seller_id"),
		Status:   domain.Status(c.Query("status")),
	}

	escrows, err := h.escrowSvc.ListEscrows(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.EscrowResponse, 0, len(escrows))
	for i := range escrows {
		resp = append(resp, toEscrowResponse(&escrows[i]))
	}
	response.OK(c, resp)
}

// Cancel handles POST /api/v1/escrows/:id/cancel.
func (h *EscrowHandler) Cancel(c *gin.Context) {
	var req dto.CancelEscrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	esc, err := h.escrowSvc.CancelEscrow(c.Request.Context(), c.Param("id"), req.Reason, middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toEscrowResponse(esc))
}

func toParticipant(p dto.ParticipantDTO) domain.Participant {
	return domain.Participant{UserID: p.UserID, Name: p.Name, Email: p.Email}
}

func toVehicle(v dto.VehicleDTO) domain.Vehicle {
	return domain.Vehicle{VIN: v.VIN, Manufacturer: v.Manufacturer, Model: v.Model}
}

func toParticipantDTO(p domain.Participant) dto.ParticipantDTO {
	return dto.ParticipantDTO{UserID: p.UserID, Name: p.Name, Email: p.Email}
}

func toVehicleDTO(v domain.Vehicle) dto.VehicleDTO {
	return dto.VehicleDTO{VIN: v.VIN, Manufacturer: v.Manufacturer, Model: v.Model}
}

// toEscrowResponse converts domain.EscrowTransaction to DTO.
func toEscrowResponse(esc *domain.EscrowTransaction) dto.EscrowResponse {
	resp := dto.EscrowResponse{
		ID:            esc.ID.String(),
		TransactionID: esc.TransactionID,
		Buyer:         toParticipantDTO(esc.Buyer),
		Seller:        toParticipantDTO(esc.Seller),
		Vehicle:       toVehicleDTO(esc.Vehicle),
		Amount:        esc.Amount,
		FeeRate:       esc.FeeRate,
		FeeAmount:     esc.Fee(),
		SellerAmount:  esc.SellerAmount(),
		Status:        string(esc.Status),
		CreatedAt:     esc.CreatedAt.Format(timeLayout),
		UpdatedAt:     esc.UpdatedAt.Format(timeLayout),
	}
	if esc.CompletedAt != nil {
		s := esc.CompletedAt.Format(timeLayout)
		resp.CompletedAt = &s
	}
	return resp
}
