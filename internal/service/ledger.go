package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nathards133/apiless/internal/model"
)

// The transaction ledger. applyEntry is the ONLY mutation path for
// CurrentAmount — no other code may write that field.

// newEntry builds a ledger entry stamped with the current time.
func newEntry(entryType string, amount decimal.Decimal, description string, method *string) *model.LedgerEntry {
	return &model.LedgerEntry{
		Type:          entryType,
		Amount:        amount,
		Description:   description,
		PaymentMethod: method,
		Timestamp:     time.Now().UTC(),
	}
}

// newSaleEntry builds a sale entry. All tendered value is pooled into the
// single running balance regardless of payment method; only reconciliation at
// close distinguishes cash from non-cash.
func newSaleEntry(amount decimal.Decimal, method string, reference *uuid.UUID) *model.LedgerEntry {
	description := "Venda"
	if reference != nil {
		description = "Venda #" + reference.String()
	}
	e := newEntry(model.EntrySale, amount, description, &method)
	e.Reference = reference
	return e
}

// applyEntry validates the entry, updates the running balance per the entry's
// type, and appends it to the in-memory ledger. Surplus/shortage entries are
// appended at close outside this path and never feed CurrentAmount.
func applyEntry(s *model.RegisterSession, e *model.LedgerEntry) error {
	if !e.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	switch e.Type {
	case model.EntrySale, model.EntryDeposit:
		s.CurrentAmount = s.CurrentAmount.Add(e.Amount)
	case model.EntryWithdrawal:
		s.CurrentAmount = s.CurrentAmount.Sub(e.Amount)
	}
	e.SessionID = s.ID
	s.Transactions = append(s.Transactions, *e)
	return nil
}

// ledgerSummary is a pure aggregation over an immutable ledger.
type ledgerSummary struct {
	TotalSales       decimal.Decimal
	TotalWithdrawals decimal.Decimal
	TotalDeposits    decimal.Decimal
	SalesByMethod    model.MethodAmounts
	CashWithdrawals  decimal.Decimal
}

// summarizeLedger walks the ledger once and totals it by entry type and
// payment method. Surplus/shortage entries are reconciliation artifacts and
// are excluded.
func summarizeLedger(entries []model.LedgerEntry) ledgerSummary {
	sum := ledgerSummary{
		TotalSales:       decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		TotalDeposits:    decimal.Zero,
		SalesByMethod:    model.MethodAmounts{},
		CashWithdrawals:  decimal.Zero,
	}
	for i := range entries {
		e := &entries[i]
		switch e.Type {
		case model.EntrySale:
			sum.TotalSales = sum.TotalSales.Add(e.Amount)
			method := model.MethodCash
			if e.PaymentMethod != nil {
				method = *e.PaymentMethod
			}
			sum.SalesByMethod[method] = sum.SalesByMethod.Get(method).Add(e.Amount)
		case model.EntryWithdrawal:
			sum.TotalWithdrawals = sum.TotalWithdrawals.Add(e.Amount)
			if e.IsCash() {
				sum.CashWithdrawals = sum.CashWithdrawals.Add(e.Amount)
			}
		case model.EntryDeposit:
			sum.TotalDeposits = sum.TotalDeposits.Add(e.Amount)
		}
	}
	return sum
}

// cashBalance is the cash-only accumulated balance monitored against the cash
// limit: cash sales plus all deposits minus cash (or untagged) withdrawals.
func cashBalance(entries []model.LedgerEntry) decimal.Decimal {
	balance := decimal.Zero
	for i := range entries {
		e := &entries[i]
		switch e.Type {
		case model.EntrySale:
			if e.IsCash() {
				balance = balance.Add(e.Amount)
			}
		case model.EntryDeposit:
			balance = balance.Add(e.Amount)
		case model.EntryWithdrawal:
			if e.IsCash() {
				balance = balance.Sub(e.Amount)
			}
		}
	}
	return balance
}
