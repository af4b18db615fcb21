package transaction

import (
	"sort"

	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from the full transaction ledger, never stored as
// an independent source of truth.
type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusFailed        PaymentStatus = "failed"
)

// NetCaptured returns successful charges plus captures minus successful
// refunds over the ledger.
func NetCaptured(txs []Transaction) decimal.Decimal {
	net := decimal.Zero
	for _, tx := range txs {
		if tx.Status != StatusSuccess {
			continue
		}
		switch tx.Type {
		case TypeCharge, TypeCapture:
			net = net.Add(tx.Amount)
		case TypeRefund:
			net = net.Sub(tx.Amount)
		}
	}

	return net
}

// DerivePaymentStatus folds the whole ledger, sorted by creation time, into a
// payment status. Using the full history rather than the latest event keeps
// the derivation stable under replay and reconciliation.
func DerivePaymentStatus(txs []Transaction, orderTotal decimal.Decimal) PaymentStatus {
	sorted := make([]Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	var anySuccess, anyRefund bool
	for _, tx := range sorted {
		switch {
		case tx.Status == StatusSuccess && (tx.Type == TypeCharge || tx.Type == TypeCapture):
			anySuccess = true
		case tx.Status == StatusSuccess && tx.Type == TypeRefund:
			anyRefund = true
		}
	}

	if !anySuccess {
		if n := len(sorted); n > 0 && sorted[n-1].Type == TypeCharge && sorted[n-1].Status == StatusFailed {
			return PaymentStatusFailed
		}

		return PaymentStatusPending
	}

	net := NetCaptured(sorted)
	switch {
	case net.LessThanOrEqual(decimal.Zero) && anyRefund:
		return PaymentStatusRefunded
	case net.GreaterThanOrEqual(orderTotal):
		return PaymentStatusPaid
	case net.GreaterThan(decimal.Zero):
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusPending
	}
}
