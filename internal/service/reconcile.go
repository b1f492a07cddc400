package service

import (
	"sort"

	"github.com/nathards133/apiless/internal/model"
)

// The reconciliation engine. Runs exactly once per session, at close: a
// session can be closed once and never reopened, so none of this is ever
// recomputed against a closed session.

// expectedBalance computes, per payment method, what the drawer should hold.
// Cash expects the cash base (all deposits, the opening seed included) plus
// cash sales minus cash withdrawals; every other method expects only the sum
// of its sale entries — withdrawals never reduce non-cash methods.
func expectedBalance(sum ledgerSummary) model.MethodAmounts {
	expected := model.MethodAmounts{
		model.MethodCash:   sum.TotalDeposits.Add(sum.SalesByMethod.Get(model.MethodCash)).Sub(sum.CashWithdrawals),
		model.MethodCredit: sum.SalesByMethod.Get(model.MethodCredit),
		model.MethodDebit:  sum.SalesByMethod.Get(model.MethodDebit),
		model.MethodPix:    sum.SalesByMethod.Get(model.MethodPix),
	}
	for method, amount := range sum.SalesByMethod {
		if _, ok := expected[method]; !ok {
			expected[method] = amount
		}
	}
	return expected
}

// reconcile compares operator-counted amounts against the ledger and produces
// the closing summary plus one surplus/shortage entry per non-zero difference.
// Differences are computed only for the methods the operator counted.
func reconcile(s *model.RegisterSession, counted model.MethodAmounts, observation *string) (*model.ClosingSummary, []*model.LedgerEntry) {
	sum := summarizeLedger(s.Transactions)
	expected := expectedBalance(sum)

	differences := make(model.MethodAmounts, len(counted))
	methods := make([]string, 0, len(counted))
	for method := range counted {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	var entries []*model.LedgerEntry
	for _, method := range methods {
		diff := counted.Get(method).Sub(expected.Get(method))
		differences[method] = diff
		if diff.IsZero() {
			continue
		}
		entryType, label := model.EntrySurplus, "Sobra"
		if diff.IsNegative() {
			entryType, label = model.EntryShortage, "Falta"
		}
		m := method
		entries = append(entries, newEntry(entryType, diff.Abs(), label+" em "+method, &m))
	}

	summary := &model.ClosingSummary{
		InitialAmount:    s.InitialAmount,
		TotalSales:       sum.TotalSales,
		TotalWithdrawals: sum.TotalWithdrawals,
		ExpectedBalance:  expected,
		FinalAmounts:     counted,
		Differences:      differences,
		Observation:      observation,
	}
	return summary, entries
}
