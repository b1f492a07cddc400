package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/nathards133/apiless/internal/model"
)

// ─── Request DTOs ────────────────────────────────────────────────────────────

type OpenRegisterRequest struct {
	InitialAmount Amount  `json:"initialAmount" validate:"required"`
	CashLimit     *Amount `json:"cashLimit"`
}

type WithdrawalRequest struct {
	Amount Amount `json:"amount" validate:"required"`
	Reason string `json:"reason" validate:"required,min=3"`
}

type RecordSaleRequest struct {
	Amount        Amount  `json:"amount"        validate:"required"`
	PaymentMethod string  `json:"paymentMethod" validate:"required,oneof=cash credit debit pix"`
	Reference     *string `json:"reference"     validate:"omitempty,uuid"`
}

type CloseRegisterRequest struct {
	Values      map[string]Amount `json:"values" validate:"required,min=1"`
	Observation *string           `json:"observation"`
}

// CountedAmounts converts the request values into the model mapping.
func (r CloseRegisterRequest) CountedAmounts() model.MethodAmounts {
	counted := make(model.MethodAmounts, len(r.Values))
	for method, amount := range r.Values {
		counted[method] = amount.Decimal
	}
	return counted
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type LedgerEntryResponse struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

type SessionResponse struct {
	ID             string                `json:"id"`
	OwnerID        string                `json:"ownerId"`
	InitialAmount  decimal.Decimal       `json:"initialAmount"`
	CurrentAmount  decimal.Decimal       `json:"currentAmount"`
	CashLimit      *decimal.Decimal      `json:"cashLimit,omitempty"`
	Status         string                `json:"status"`
	OpenedAt       time.Time             `json:"openedAt"`
	ClosedAt       *time.Time            `json:"closedAt,omitempty"`
	Transactions   []LedgerEntryResponse `json:"transactions"`
	FinalAmounts   model.MethodAmounts   `json:"finalAmounts,omitempty"`
	ClosingSummary *model.ClosingSummary `json:"closingSummary,omitempty"`
}

type StatusResponse struct {
	IsOpen bool             `json:"isOpen"`
	Data   *SessionResponse `json:"data"`
}

type WithdrawalResponse struct {
	Message       string          `json:"message"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
}

type CloseRegisterResponse struct {
	Message string                `json:"message"`
	Summary *model.ClosingSummary `json:"summary"`
}

type LimitAlertResponse struct {
	ID         string          `json:"id"`
	SessionID  string          `json:"sessionId"`
	CashAmount decimal.Decimal `json:"cashAmount"`
	CashLimit  decimal.Decimal `json:"cashLimit"`
	Message    string          `json:"message"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// NewSessionResponse maps a session (with its ledger preloaded) to the wire
// representation.
func NewSessionResponse(s *model.RegisterSession) *SessionResponse {
	if s == nil {
		return nil
	}
	entries := make([]LedgerEntryResponse, 0, len(s.Transactions))
	for _, e := range s.Transactions {
		entries = append(entries, LedgerEntryResponse{
			ID:            e.ID.String(),
			Type:          e.Type,
			Amount:        e.Amount,
			Description:   e.Description,
			PaymentMethod: e.PaymentMethod,
			Timestamp:     e.Timestamp,
		})
	}
	return &SessionResponse{
		ID:             s.ID.String(),
		OwnerID:        s.OwnerID.String(),
		InitialAmount:  s.InitialAmount,
		CurrentAmount:  s.CurrentAmount,
		CashLimit:      s.CashLimit,
		Status:         s.Status,
		OpenedAt:       s.OpenedAt,
		ClosedAt:       s.ClosedAt,
		Transactions:   entries,
		FinalAmounts:   s.FinalAmounts,
		ClosingSummary: s.ClosingSummary,
	}
}
