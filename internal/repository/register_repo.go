package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nathards133/apiless/internal/model"
)

// RegisterStore is the write surface available inside a register transaction.
// The ledger is append-only: there is no update or delete for entries.
type RegisterStore interface {
	AppendEntry(e *model.LedgerEntry) error
	SaveSession(s *model.RegisterSession) error
}

type RegisterRepository interface {
	CreateSession(ctx context.Context, s *model.RegisterSession) error
	FindOpenByOwner(ctx context.Context, ownerID uuid.UUID) (*model.RegisterSession, error)
	ListForDay(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]model.RegisterSession, error)
	// MutateOpen loads the owner's open session under a row lock (SELECT ...
	// FOR UPDATE), with its ledger in insertion order, and runs fn against it.
	// All writes issued through the store commit or roll back as one unit —
	// concurrent mutations on the same owner's session are serialized here.
	// Returns gorm.ErrRecordNotFound when the owner has no open session.
	MutateOpen(ctx context.Context, ownerID uuid.UUID, fn func(store RegisterStore, s *model.RegisterSession) error) error
}

type registerRepo struct{ db *gorm.DB }

func NewRegisterRepository(db *gorm.DB) RegisterRepository { return &registerRepo{db: db} }

func (r *registerRepo) CreateSession(ctx context.Context, s *model.RegisterSession) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *registerRepo) FindOpenByOwner(ctx context.Context, ownerID uuid.UUID) (*model.RegisterSession, error) {
	var s model.RegisterSession
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp ASC") }).
		Where("owner_id = ? AND status = ?", ownerID, model.StatusOpen).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *registerRepo) ListForDay(ctx context.Context, ownerID uuid.UUID, from, to time.Time) ([]model.RegisterSession, error) {
	var sessions []model.RegisterSession
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp ASC") }).
		Where("owner_id = ? AND opened_at BETWEEN ? AND ?", ownerID, from, to).
		Order("opened_at DESC").
		Find(&sessions).Error
	return sessions, err
}

func (r *registerRepo) MutateOpen(ctx context.Context, ownerID uuid.UUID, fn func(store RegisterStore, s *model.RegisterSession) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s model.RegisterSession
		// Lock only the session row; every mutating operation goes through
		// this lock, which serializes withdrawals, sales and close per owner.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ? AND status = ?", ownerID, model.StatusOpen).
			First(&s).Error; err != nil {
			return err
		}
		if err := tx.Where("session_id = ?", s.ID).
			Order("timestamp ASC").
			Find(&s.Transactions).Error; err != nil {
			return err
		}
		return fn(&txStore{tx: tx}, &s)
	})
}

type txStore struct{ tx *gorm.DB }

func (s *txStore) AppendEntry(e *model.LedgerEntry) error {
	return s.tx.Create(e).Error
}

func (s *txStore) SaveSession(sess *model.RegisterSession) error {
	// Omit the association: ledger entries are written only via AppendEntry.
	return s.tx.Omit("Transactions").Save(sess).Error
}
