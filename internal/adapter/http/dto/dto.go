package dto

// ParticipantDTO identifies one side of the sale in requests and responses.
type ParticipantDTO struct {
	UserID string `json:"user_id" binding:"required,safe_id,max=64"`
	Name   string `json:"name" binding:"required,max=100"`
	Email  string `json:"email" binding:"omitempty,email"`
}

// VehicleDTO describes the vehicle held in escrow.
type VehicleDTO struct {
	VIN          string `json:"vin" binding:"required,min=5,max=32"`
	Manufacturer string `json:"manufacturer" binding:"omitempty,max=64"`
	Model        string `json:"model" binding:"omitempty,max=64"`
}

// RegisterRequest is the request body for account registration.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,safe_id,min=3,max=50"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"omitempty,email"`
	Role     string `json:"role" binding:"required,oneof=BUYER SELLER ADMIN"`
}

// RegisterResponse is the response body for successful registration.
type RegisterResponse struct {
	AccountID string `json:"account_id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// CreateEscrowRequest is the request body for opening an escrow.
type CreateEscrowRequest struct {
	Buyer   ParticipantDTO `json:"buyer" binding:"required"`
	Seller  ParticipantDTO `json:"seller" binding:"required"`
	Vehicle VehicleDTO     `json:"vehicle" binding:"required"`
	Amount  int64          `json:"amount" binding:"required,gt=0"`
	FeeRate float64        `json:"fee_rate" binding:"omitempty,gt=0,lt=1"`
}

// EscrowResponse is the response body for escrow state.
type EscrowResponse struct {
	ID            string         `json:"id"`
	TransactionID string         `json:"transaction_id"`
	Buyer         ParticipantDTO `json:"buyer"`
	Seller        ParticipantDTO `json:"seller"`
	Vehicle       VehicleDTO     `json:"vehicle"`
	Amount        int64          `json:"amount"`
	FeeRate       float64        `json:"fee_rate"`
	FeeAmount     int64          `json:"fee_amount"`
	SellerAmount  int64          `json:"seller_amount"`
	Status        string         `json:"status"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
	CompletedAt   *string        `json:"completed_at,omitempty"`
}

// DepositRequest is the request body for deposit processing.
type DepositRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Method    string `json:"method" binding:"required,oneof=BANK_TRANSFER CARD EWALLET"`
	Reference string `json:"reference" binding:"omitempty,max=100"`
}

// DepositResponse is the response body for one deposit row.
type DepositResponse struct {
	ID            string  `json:"id"`
	TransactionID string  `json:"transaction_id"`
	Amount        int64   `json:"amount"`
	Method        string  `json:"method"`
	Reference     string  `json:"reference,omitempty"`
	DepositedAt   string  `json:"deposited_at"`
	ConfirmedAt   *string `json:"confirmed_at,omitempty"`
}

// VerificationRequest is the request body for the vehicle condition check.
type VerificationRequest struct {
	Result     string  `json:"result" binding:"required,oneof=PASSED FAILED"`
	Notes      string  `json:"notes" binding:"omitempty,max=1000"`
	DocumentID *string `json:"document_id,omitempty" binding:"omitempty,safe_id,max=64"`
}

// OwnershipTransferRequest is the request body for confirming title transfer.
type OwnershipTransferRequest struct {
	Notes      string  `json:"notes" binding:"omitempty,max=1000"`
	DocumentID *string `json:"document_id,omitempty" binding:"omitempty,safe_id,max=64"`
}

// VerificationResponse is the response body for one verification row.
type VerificationResponse struct {
	ID            string  `json:"id"`
	TransactionID string  `json:"transaction_id"`
	Type          string  `json:"type"`
	Result        string  `json:"result"`
	VerifiedBy    string  `json:"verified_by"`
	Notes         string  `json:"notes,omitempty"`
	DocumentID    *string `json:"document_id,omitempty"`
	VerifiedAt    string  `json:"verified_at"`
}

// CompleteSettlementRequest is the payout confirmation callback body.
type CompleteSettlementRequest struct {
	PaymentMethod    string `json:"payment_method" binding:"required,max=64"`
	PaymentReference string `json:"payment_reference" binding:"required,max=100"`
}

// FailSettlementRequest is the payout failure callback body.
type FailSettlementRequest struct {
	Reason string `json:"reason" binding:"required,max=1000"`
}

// SettlementResponse is the response body for the settlement breakdown.
type SettlementResponse struct {
	ID               string  `json:"id"`
	TransactionID    string  `json:"transaction_id"`
	TotalAmount      int64   `json:"total_amount"`
	FeeAmount        int64   `json:"fee_amount"`
	SellerAmount     int64   `json:"seller_amount"`
	SellerID         string  `json:"seller_id"`
	Status           string  `json:"status"`
	PaymentMethod    *string `json:"payment_method,omitempty"`
	PaymentReference *string `json:"payment_reference,omitempty"`
	FailureReason    *string `json:"failure_reason,omitempty"`
	InitiatedAt      string  `json:"initiated_at"`
	CompletedAt      *string `json:"completed_at,omitempty"`
}

// RaiseDisputeRequest is the request body for raising a dispute.
type RaiseDisputeRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=1000"`
}

// ResolveDisputeRequest is the request body for resolving a dispute.
type ResolveDisputeRequest struct {
	Resolution string `json:"resolution" binding:"required,min=1,max=1000"`
}

// DisputeResponse is the response body for one dispute row.
type DisputeResponse struct {
	ID             string  `json:"id"`
	TransactionID  string  `json:"transaction_id"`
	Reason         string  `json:"reason"`
	RaisedBy       string  `json:"raised_by"`
	Status         string  `json:"status"`
	PreviousStatus string  `json:"previous_status"`
	Resolution     *string `json:"resolution,omitempty"`
	ResolvedBy     *string `json:"resolved_by,omitempty"`
	RaisedAt       string  `json:"raised_at"`
	ResolvedAt     *string `json:"resolved_at,omitempty"`
}

// CancelEscrowRequest is the request body for cancellation.
type CancelEscrowRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=1000"`
}

// EventResponse is the response body for one audit log entry.
type EventResponse struct {
	ID             string         `json:"id"`
	TransactionID  string         `json:"transaction_id"`
	Sequence       int64          `json:"sequence"`
	EventType      string         `json:"event_type"`
	PreviousStatus string         `json:"previous_status,omitempty"`
	NewStatus      string         `json:"new_status"`
	Payload        map[string]any `json:"payload,omitempty"`
	TriggeredBy    string         `json:"triggered_by"`
	OccurredAt     string         `json:"occurred_at"`
}

// ProjectionResponse is the response body for reconstructed state.
type ProjectionResponse struct {
	TransactionID     string         `json:"transaction_id"`
	EventCount        int            `json:"event_count"`
	Buyer             ParticipantDTO `json:"buyer"`
	Seller            ParticipantDTO `json:"seller"`
	Vehicle           VehicleDTO     `json:"vehicle"`
	Amount            int64          `json:"amount"`
	FeeRate           float64        `json:"fee_rate"`
	Status            string         `json:"current_status"`
	FeeAmount         int64          `json:"fee_amount,omitempty"`
	SellerAmount      int64          `json:"seller_amount,omitempty"`
	RefundAmount      int64          `json:"refund_amount,omitempty"`
	LastEventType     string          `json:"last_event_type"`
	LastEventSequence int64           `json:"last_event_sequence"`
	LastEventTime     string          `json:"last_event_time"`
	Events            []EventResponse `json:"events"`
}
