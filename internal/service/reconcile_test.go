package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathards133/apiless/internal/model"
)

func methodPtr(m string) *string { return &m }

func entry(entryType string, amount float64, method *string) model.LedgerEntry {
	return model.LedgerEntry{Type: entryType, Amount: dec(amount), PaymentMethod: method}
}

func TestSummarizeLedgerTotalsByTypeAndMethod(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(model.EntryDeposit, 100, nil),
		entry(model.EntrySale, 80, methodPtr(model.MethodCash)),
		entry(model.EntrySale, 40, methodPtr(model.MethodCredit)),
		entry(model.EntrySale, 25, methodPtr(model.MethodPix)),
		entry(model.EntryWithdrawal, 50, nil),
		entry(model.EntryWithdrawal, 10, methodPtr(model.MethodCash)),
	}

	sum := summarizeLedger(entries)
	assert.Equal(t, "145", sum.TotalSales.String())
	assert.Equal(t, "60", sum.TotalWithdrawals.String())
	assert.Equal(t, "100", sum.TotalDeposits.String())
	assert.Equal(t, "60", sum.CashWithdrawals.String())
	assert.Equal(t, "80", sum.SalesByMethod.Get(model.MethodCash).String())
	assert.Equal(t, "40", sum.SalesByMethod.Get(model.MethodCredit).String())
	assert.Equal(t, "25", sum.SalesByMethod.Get(model.MethodPix).String())
}

func TestSummarizeLedgerDefaultsUntaggedSalesToCash(t *testing.T) {
	sum := summarizeLedger([]model.LedgerEntry{entry(model.EntrySale, 15, nil)})
	assert.Equal(t, "15", sum.SalesByMethod.Get(model.MethodCash).String())
}

func TestSummarizeLedgerIgnoresDifferenceEntries(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(model.EntryDeposit, 100, nil),
		entry(model.EntrySurplus, 7, methodPtr(model.MethodCash)),
		entry(model.EntryShortage, 3, methodPtr(model.MethodCredit)),
	}
	sum := summarizeLedger(entries)
	assert.Equal(t, "100", sum.TotalDeposits.String())
	assert.True(t, sum.TotalSales.IsZero())
	assert.True(t, sum.TotalWithdrawals.IsZero())
}

func TestExpectedBalancePerMethod(t *testing.T) {
	sum := summarizeLedger([]model.LedgerEntry{
		entry(model.EntryDeposit, 100, nil),
		entry(model.EntrySale, 80, methodPtr(model.MethodCash)),
		entry(model.EntrySale, 40, methodPtr(model.MethodCredit)),
		entry(model.EntryWithdrawal, 50, nil),
	})

	expected := expectedBalance(sum)
	// 100 + 80 − 50
	assert.Equal(t, "130", expected.Get(model.MethodCash).String())
	assert.Equal(t, "40", expected.Get(model.MethodCredit).String())
	assert.True(t, expected.Get(model.MethodDebit).IsZero())
	assert.True(t, expected.Get(model.MethodPix).IsZero())
}

func TestExpectedBalanceCarriesUnknownSaleMethods(t *testing.T) {
	sum := summarizeLedger([]model.LedgerEntry{
		entry(model.EntrySale, 30, methodPtr("voucher")),
	})
	expected := expectedBalance(sum)
	assert.Equal(t, "30", expected.Get("voucher").String())
}

func TestCashBalanceExcludesNonCashSales(t *testing.T) {
	entries := []model.LedgerEntry{
		entry(model.EntryDeposit, 100, nil),
		entry(model.EntrySale, 80, methodPtr(model.MethodCash)),
		entry(model.EntrySale, 200, methodPtr(model.MethodCredit)),
		entry(model.EntryWithdrawal, 50, nil),
	}
	assert.Equal(t, "130", cashBalance(entries).String())
}

func TestReconcileOnlyCountedMethodsProduceDifferences(t *testing.T) {
	s := &model.RegisterSession{
		InitialAmount: dec(100),
		Transactions: []model.LedgerEntry{
			entry(model.EntryDeposit, 100, nil),
			entry(model.EntrySale, 40, methodPtr(model.MethodCredit)),
		},
	}

	summary, entries := reconcile(s, model.MethodAmounts{model.MethodCash: dec(95)}, nil)

	// Credit was not counted: no difference is reported for it even though
	// its expected balance is 40.
	_, ok := summary.Differences[model.MethodCredit]
	assert.False(t, ok)
	assert.Equal(t, "-5", summary.Differences.Get(model.MethodCash).String())

	require.Len(t, entries, 1)
	assert.Equal(t, model.EntryShortage, entries[0].Type)
	assert.Equal(t, "5", entries[0].Amount.String())
	assert.Equal(t, "Falta em cash", entries[0].Description)
}

func TestReconcileSurplusAndShortageEntries(t *testing.T) {
	s := &model.RegisterSession{
		InitialAmount: dec(100),
		Transactions: []model.LedgerEntry{
			entry(model.EntryDeposit, 100, nil),
			entry(model.EntrySale, 40, methodPtr(model.MethodCredit)),
		},
	}

	summary, entries := reconcile(s, model.MethodAmounts{
		model.MethodCash:   dec(110),
		model.MethodCredit: dec(35),
	}, nil)

	assert.Equal(t, "10", summary.Differences.Get(model.MethodCash).String())
	assert.Equal(t, "-5", summary.Differences.Get(model.MethodCredit).String())

	require.Len(t, entries, 2)
	// Entries come out in sorted method order
	assert.Equal(t, model.EntrySurplus, entries[0].Type)
	assert.Equal(t, "Sobra em cash", entries[0].Description)
	assert.Equal(t, model.EntryShortage, entries[1].Type)
	assert.Equal(t, "Falta em credit", entries[1].Description)
	// Entry amounts are always positive; sign lives in the type
	assert.True(t, entries[0].Amount.IsPositive())
	assert.True(t, entries[1].Amount.IsPositive())
}

func TestReconcileSummaryFields(t *testing.T) {
	obs := "caixa conferido"
	s := &model.RegisterSession{
		InitialAmount: dec(100),
		Transactions: []model.LedgerEntry{
			entry(model.EntryDeposit, 100, nil),
			entry(model.EntrySale, 80, methodPtr(model.MethodCash)),
			entry(model.EntryWithdrawal, 50, nil),
		},
	}
	counted := model.MethodAmounts{model.MethodCash: dec(130)}

	summary, entries := reconcile(s, counted, &obs)
	assert.Empty(t, entries)
	assert.Equal(t, "100", summary.InitialAmount.String())
	assert.Equal(t, "80", summary.TotalSales.String())
	assert.Equal(t, "50", summary.TotalWithdrawals.String())
	assert.Equal(t, counted, summary.FinalAmounts)
	require.NotNil(t, summary.Observation)
	assert.Equal(t, "caixa conferido", *summary.Observation)
}

func TestApplyEntryRejectsNonPositiveAmounts(t *testing.T) {
	s := &model.RegisterSession{CurrentAmount: dec(100)}

	err := applyEntry(s, newEntry(model.EntrySale, decimal.Zero, "Venda", nil))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	err = applyEntry(s, newEntry(model.EntryWithdrawal, dec(-5), "Sangria: x", nil))
	assert.ErrorIs(t, err, ErrInvalidAmount)

	assert.Equal(t, "100", s.CurrentAmount.String())
	assert.Empty(t, s.Transactions)
}
