package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nathards133/apiless/internal/model"
	"github.com/nathards133/apiless/internal/repository"
)

type RegisterService interface {
	// Open creates the owner's session with a seed deposit equal to the
	// initial amount, then runs the limit monitor (the seed alone may already
	// meet the limit).
	Open(ctx context.Context, ownerID uuid.UUID, initialAmount decimal.Decimal, cashLimit *decimal.Decimal) (*model.RegisterSession, error)
	// Status is a pure read; a missing session is not an error.
	Status(ctx context.Context, ownerID uuid.UUID) (*model.RegisterSession, error)
	Withdraw(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, reason string) (decimal.Decimal, error)
	// RecordSale is called by the sale collaborator to report a completed sale
	// into the open register's ledger.
	RecordSale(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, paymentMethod string, reference *uuid.UUID) error
	Close(ctx context.Context, ownerID uuid.UUID, counted model.MethodAmounts, observation *string) (*model.ClosingSummary, error)
	ListForDay(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]model.RegisterSession, error)
}

type registerService struct {
	repo    repository.RegisterRepository
	monitor *LimitMonitor
}

func NewRegisterService(repo repository.RegisterRepository, monitor *LimitMonitor) RegisterService {
	return &registerService{repo: repo, monitor: monitor}
}

// ── Open ──────────────────────────────────────────────────────────────────────

func (s *registerService) Open(ctx context.Context, ownerID uuid.UUID, initialAmount decimal.Decimal, cashLimit *decimal.Decimal) (*model.RegisterSession, error) {
	if !initialAmount.IsPositive() {
		return nil, ErrInvalidInitialAmount
	}
	if cashLimit != nil && !cashLimit.IsPositive() {
		return nil, ErrInvalidCashLimit
	}

	if existing, err := s.repo.FindOpenByOwner(ctx, ownerID); err == nil && existing != nil {
		return nil, ErrRegisterAlreadyOpen
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	session := &model.RegisterSession{
		OwnerID:       ownerID,
		InitialAmount: initialAmount,
		CurrentAmount: decimal.Zero,
		CashLimit:     cashLimit,
		Status:        model.StatusOpen,
		OpenedAt:      time.Now().UTC(),
	}
	seed := newEntry(model.EntryDeposit, initialAmount, "Valor inicial do caixa", nil)
	if err := applyEntry(session, seed); err != nil {
		return nil, err
	}

	// The partial unique index on (owner_id) WHERE status = 'open' closes the
	// race between the existence check above and this insert.
	if err := s.repo.CreateSession(ctx, session); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRegisterAlreadyOpen
		}
		return nil, err
	}

	s.monitor.Check(ctx, session)
	return session, nil
}

// ── Status ────────────────────────────────────────────────────────────────────

func (s *registerService) Status(ctx context.Context, ownerID uuid.UUID) (*model.RegisterSession, error) {
	session, err := s.repo.FindOpenByOwner(ctx, ownerID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ── Withdraw ──────────────────────────────────────────────────────────────────

func (s *registerService) Withdraw(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, reason string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}

	var updated *model.RegisterSession
	err := s.repo.MutateOpen(ctx, ownerID, func(store repository.RegisterStore, session *model.RegisterSession) error {
		// Rejected before anything is appended: a failed withdrawal leaves
		// both the ledger and the balance untouched.
		if amount.GreaterThan(session.CurrentAmount) {
			return ErrInsufficientFunds
		}
		entry := newEntry(model.EntryWithdrawal, amount, "Sangria: "+reason, nil)
		if err := applyEntry(session, entry); err != nil {
			return err
		}
		if err := store.AppendEntry(entry); err != nil {
			return err
		}
		if err := store.SaveSession(session); err != nil {
			return err
		}
		updated = session
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, ErrNoOpenRegister
		}
		return decimal.Zero, err
	}

	s.monitor.Check(ctx, updated)
	return updated.CurrentAmount, nil
}

// ── RecordSale ────────────────────────────────────────────────────────────────

func (s *registerService) RecordSale(ctx context.Context, ownerID uuid.UUID, amount decimal.Decimal, paymentMethod string, reference *uuid.UUID) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if paymentMethod == "" {
		return ErrInvalidPaymentMethod
	}

	err := s.repo.MutateOpen(ctx, ownerID, func(store repository.RegisterStore, session *model.RegisterSession) error {
		entry := newSaleEntry(amount, paymentMethod, reference)
		if err := applyEntry(session, entry); err != nil {
			return err
		}
		if err := store.AppendEntry(entry); err != nil {
			return err
		}
		return store.SaveSession(session)
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrSaleWithoutRegister
	}
	return err
}

// ── Close ─────────────────────────────────────────────────────────────────────

func (s *registerService) Close(ctx context.Context, ownerID uuid.UUID, counted model.MethodAmounts, observation *string) (*model.ClosingSummary, error) {
	var summary *model.ClosingSummary
	err := s.repo.MutateOpen(ctx, ownerID, func(store repository.RegisterStore, session *model.RegisterSession) error {
		// MutateOpen only matches status = 'open', so a closed session can
		// never get here — closing is not retryable against the same session.
		reconciled, differences := reconcile(session, counted, observation)

		// Difference entries are written after the session is terminal; they
		// document the count and do not feed CurrentAmount.
		for _, entry := range differences {
			entry.SessionID = session.ID
			if err := store.AppendEntry(entry); err != nil {
				return err
			}
			session.Transactions = append(session.Transactions, *entry)
		}

		now := time.Now().UTC()
		session.Status = model.StatusClosed
		session.ClosedAt = &now
		session.FinalAmounts = counted
		session.ClosingSummary = reconciled
		if err := store.SaveSession(session); err != nil {
			return err
		}
		summary = reconciled
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoOpenRegister
		}
		return nil, err
	}
	return summary, nil
}

// ── ListForDay ────────────────────────────────────────────────────────────────

func (s *registerService) ListForDay(ctx context.Context, ownerID uuid.UUID, day time.Time) ([]model.RegisterSession, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24*time.Hour - time.Millisecond)
	return s.repo.ListForDay(ctx, ownerID, from, to)
}
