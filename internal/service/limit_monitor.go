package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/nathards133/apiless/internal/model"
	"github.com/nathards133/apiless/internal/repository"
	"github.com/nathards133/apiless/internal/worker"
)

// LimitCheck is the outcome of evaluating a session against its cash limit.
type LimitCheck struct {
	Exceeded   bool
	CashAmount decimal.Decimal
	Limit      decimal.Decimal
}

// LimitMonitor evaluates whether a session's cash-only balance has reached its
// configured ceiling and, when it has, emits an alert record and enqueues an
// alert email. Both side effects are best-effort: failures are logged and
// never propagate to the triggering ledger operation.
type LimitMonitor struct {
	alerts     repository.AlertRepository
	dispatcher *worker.Dispatcher
}

func NewLimitMonitor(alerts repository.AlertRepository, dispatcher *worker.Dispatcher) *LimitMonitor {
	return &LimitMonitor{alerts: alerts, dispatcher: dispatcher}
}

// Check sums the cash-affecting entries of the session and compares against
// the cash limit. Sessions without a configured limit are never flagged.
func (m *LimitMonitor) Check(ctx context.Context, s *model.RegisterSession) LimitCheck {
	if s.CashLimit == nil {
		return LimitCheck{CashAmount: cashBalance(s.Transactions)}
	}

	check := LimitCheck{
		CashAmount: cashBalance(s.Transactions),
		Limit:      *s.CashLimit,
	}
	check.Exceeded = check.CashAmount.GreaterThanOrEqual(check.Limit)
	if !check.Exceeded {
		return check
	}

	alert := &model.LimitAlert{
		OwnerID:    s.OwnerID,
		SessionID:  s.ID,
		CashAmount: check.CashAmount,
		CashLimit:  check.Limit,
		Message: fmt.Sprintf("Caixa atingiu o limite de dinheiro: R$ %s (limite R$ %s)",
			check.CashAmount.StringFixed(2), check.Limit.StringFixed(2)),
	}

	if err := m.alerts.Create(ctx, alert); err != nil {
		log.Error().
			Err(err).
			Str("owner_id", s.OwnerID.String()).
			Str("session_id", s.ID.String()).
			Msg("limit monitor: failed to write alert record")
	}

	if m.dispatcher != nil {
		payload := worker.LimitAlertPayload{
			OwnerID:    s.OwnerID.String(),
			SessionID:  s.ID.String(),
			CashAmount: check.CashAmount.StringFixed(2),
			CashLimit:  check.Limit.StringFixed(2),
			Message:    alert.Message,
		}
		if err := m.dispatcher.EnqueueLimitAlert(ctx, payload); err != nil {
			log.Error().
				Err(err).
				Str("session_id", s.ID.String()).
				Msg("limit monitor: failed to enqueue alert email")
		}
	}

	return check
}
