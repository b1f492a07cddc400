package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Session status. Closed is terminal: no further mutation is permitted.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// Ledger entry types. The sign of an entry is carried by its type, never by
// the stored amount — amounts are always positive.
const (
	EntrySale       = "sale"
	EntryWithdrawal = "withdrawal"
	EntryDeposit    = "deposit"
	EntrySurplus    = "surplus"
	EntryShortage   = "shortage"
)

// Canonical payment-method vocabulary shared by the sale collaborator and the
// close payload. Withdrawals and deposits default to cash when untagged.
const (
	MethodCash   = "cash"
	MethodCredit = "credit"
	MethodDebit  = "debit"
	MethodPix    = "pix"
)

// RegisterSession is one open-to-close lifecycle of a cash drawer for one
// owner. At most one session per owner may be open at any time (enforced by a
// partial unique index on owner_id WHERE status = 'open').
type RegisterSession struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index"`

	InitialAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// CurrentAmount = InitialAmount + Σsales + Σdeposits − Σwithdrawals over
	// the ledger. Surplus/shortage entries written at close do not feed it.
	CurrentAmount decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CashLimit     *decimal.Decimal `gorm:"type:decimal(12,2)"`

	Status   string     `gorm:"type:varchar(10);not null;default:'open'"`
	OpenedAt time.Time  `gorm:"not null"`
	ClosedAt *time.Time

	// Transactions are NEVER modified or deleted — the ledger is the audit
	// trail; insertion order is significant.
	Transactions []LedgerEntry `gorm:"foreignKey:SessionID"`

	FinalAmounts   MethodAmounts   `gorm:"type:jsonb"`
	ClosingSummary *ClosingSummary `gorm:"type:jsonb"`
}

func (RegisterSession) TableName() string { return "register_sessions" }

// IsOpen reports whether the session still accepts ledger mutations.
func (s *RegisterSession) IsOpen() bool { return s.Status == StatusOpen }

// LedgerEntry is one immutable cash-affecting event in a session.
type LedgerEntry struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionID uuid.UUID `gorm:"type:uuid;index;not null"`

	Type          string          `gorm:"type:varchar(20);not null"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Description   string          `gorm:"not null"`
	PaymentMethod *string         `gorm:"type:varchar(20)"`
	// Reference links a sale entry to the originating sale record.
	Reference *uuid.UUID `gorm:"type:uuid"`
	Timestamp time.Time  `gorm:"not null;index"`
}

func (LedgerEntry) TableName() string { return "ledger_entries" }

// IsCash reports whether the entry is tagged cash or untagged (withdrawals and
// deposits are cash by default).
func (e *LedgerEntry) IsCash() bool {
	return e.PaymentMethod == nil || *e.PaymentMethod == MethodCash
}

// MethodAmounts maps a payment method to a decimal amount, stored as jsonb.
type MethodAmounts map[string]decimal.Decimal

func (m MethodAmounts) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *MethodAmounts) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if s, ok := value.(string); ok {
			b = []byte(s)
		} else {
			return errors.New("method amounts: unsupported column type")
		}
	}
	return json.Unmarshal(b, m)
}

// Get returns the amount for a method, defaulting to zero.
func (m MethodAmounts) Get(method string) decimal.Decimal {
	if v, ok := m[method]; ok {
		return v
	}
	return decimal.Zero
}

// ClosingSummary is written exactly once, atomically with the open → closed
// transition.
type ClosingSummary struct {
	InitialAmount    decimal.Decimal `json:"initialAmount"`
	TotalSales       decimal.Decimal `json:"totalSales"`
	TotalWithdrawals decimal.Decimal `json:"totalWithdrawals"`
	ExpectedBalance  MethodAmounts   `json:"expectedBalance"`
	FinalAmounts     MethodAmounts   `json:"finalAmounts"`
	Differences      MethodAmounts   `json:"differences"`
	Observation      *string         `json:"observation,omitempty"`
}

func (s ClosingSummary) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ClosingSummary) Scan(value interface{}) error {
	if value == nil {
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			b = []byte(str)
		} else {
			return errors.New("closing summary: unsupported column type")
		}
	}
	return json.Unmarshal(b, s)
}
