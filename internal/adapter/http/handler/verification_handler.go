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

// VerificationHandler handles delivery, condition check and ownership
// transfer endpoints.
type VerificationHandler struct {
	verificationSvc ports.VerificationService
}

// NewVerificationHandler creates a new VerificationHandler.
func NewVerificationHandler(verificationSvc ports.VerificationService) *VerificationHandler {
	return &VerificationHandler{verificationSvc: verificationSvc}
}

// ConfirmDelivery handles POST /api/v1/escrows/:id/delivery.
func (h *VerificationHandler) ConfirmDelivery(c *gin.Context) {
	esc, err := h.verificationSvc.ConfirmDelivery(c.Request.Context(), c.Param("id"), middleware.Actor(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, toEscrowResponse(esc))
}

// VerifyVehicle handles POST /api/v1/escrows/:id/verification.
func (h *VerificationHandler) VerifyVehicle(c *gin.Context) {
	var req dto.VerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	verification, err := h.verificationSvc.VerifyVehicle(c.Request.Context(), ports.VerificationRequest{
		TransactionID: c.Param("id"),
		Type:          domain.VerificationVehicleCondition,
		Result:        domain.VerificationResult(req.Result),
		VerifiedBy:    middleware.Actor(c),
		Notes:         req.Notes,
		DocumentID:    req.DocumentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toVerificationResponse(verification))
}

// ConfirmOwnershipTransfer handles POST /api/v1/escrows/:id/ownership.
func (h *VerificationHandler) ConfirmOwnershipTransfer(c *gin.Context) {
	var req dto.OwnershipTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	verification, err := h.verificationSvc.ConfirmOwnershipTransfer(c.Request.Context(), ports.OwnershipTransferRequest{
		TransactionID: c.Param("id"),
		VerifiedBy:    middleware.Actor(c),
		Notes:         req.Notes,
		DocumentID:    req.DocumentID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toVerificationResponse(verification))
}

// ListVerifications handles GET /api/v1/escrows/:id/verifications.
func (h *VerificationHandler) ListVerifications(c *gin.Context) {
	verifications, err := h.verificationSvc.ListVerifications(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	resp := make([]dto.VerificationResponse, 0, len(verifications))
	for i := range verifications {
		resp = append(resp, toVerificationResponse(&verifications[i]))
	}
	response.OK(c, resp)
}

// toVerificationResponse converts domain.Verification to DTO.
func toVerificationResponse(v *domain.Verification) dto.VerificationResponse {
	return dto.VerificationResponse{
		ID:            v.ID.String(),
		TransactionID: v.TransactionID,
		Type:          string(v.Type),
		Result:        string(v.Result),
		VerifiedBy:    v.VerifiedBy,
		Notes:         v.Notes,
		DocumentID:    v.DocumentID,
		VerifiedAt:    v.VerifiedAt.Format(timeLayout),
	}
}
