package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LimitAlert is the notification record emitted when a session's cash-only
// balance reaches its configured limit. Writes are best-effort: a failed
// insert is logged and never rolls back the triggering ledger operation.
type LimitAlert struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SessionID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	CashAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CashLimit  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Message    string          `gorm:"not null"`
	CreatedAt  time.Time
}

func (LimitAlert) TableName() string { return "limit_alerts" }
