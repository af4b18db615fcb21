package transaction

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(typ Type, status Status, amount string, at time.Time) Transaction {
	return Transaction{
		Type:      typ,
		Status:    status,
		Amount:    decimal.RequireFromString(amount),
		CreatedAt: at,
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("100.00")

	tests := []struct {
		name string
		txs  []Transaction
		want PaymentStatus
	}{
		{
			name: "empty ledger is pending",
			txs:  nil,
			want: PaymentStatusPending,
		},
		{
			name: "full charge is paid",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "100.00", base),
			},
			want: PaymentStatusPaid,
		},
		{
			name: "partial charge is partially paid",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "40.00", base),
			},
			want: PaymentStatusPartiallyPaid,
		},
		{
			name: "overpayment still reads paid",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "60.00", base),
				tx(TypeCapture, StatusSuccess, "60.00", base.Add(time.Minute)),
			},
			want: PaymentStatusPaid,
		},
		{
			name: "full refund is refunded",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "100.00", base),
				tx(TypeRefund, StatusSuccess, "100.00", base.Add(time.Hour)),
			},
			want: PaymentStatusRefunded,
		},
		{
			name: "partial refund is partially paid",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "100.00", base),
				tx(TypeRefund, StatusSuccess, "30.00", base.Add(time.Hour)),
			},
			want: PaymentStatusPartiallyPaid,
		},
		{
			name: "trailing failed charge with no success is failed",
			txs: []Transaction{
				tx(TypeCharge, StatusFailed, "100.00", base),
			},
			want: PaymentStatusFailed,
		},
		{
			name: "failed charge after a success does not poison the status",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "100.00", base),
				tx(TypeCharge, StatusFailed, "100.00", base.Add(time.Minute)),
			},
			want: PaymentStatusPaid,
		},
		{
			name: "pending authorization only stays pending",
			txs: []Transaction{
				tx(TypeAuthorization, StatusPending, "100.00", base),
			},
			want: PaymentStatusPending,
		},
		{
			name: "failed charge then pending retry is pending",
			txs: []Transaction{
				tx(TypeCharge, StatusFailed, "100.00", base),
				tx(TypeCharge, StatusPending, "100.00", base.Add(time.Minute)),
			},
			want: PaymentStatusPending,
		},
		{
			name: "void and chargeback do not change the captured amount",
			txs: []Transaction{
				tx(TypeCharge, StatusSuccess, "100.00", base),
				tx(TypeVoid, StatusSuccess, "100.00", base.Add(time.Minute)),
				tx(TypeChargeback, StatusSuccess, "100.00", base.Add(2*time.Minute)),
			},
			want: PaymentStatusPaid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DerivePaymentStatus(tt.txs, total))
		})
	}
}

func TestDerivePaymentStatusOrderIndependent(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	total := decimal.RequireFromString("100.00")

	ledger := []Transaction{
		tx(TypeCharge, StatusFailed, "100.00", base),
		tx(TypeCharge, StatusSuccess, "100.00", base.Add(time.Minute)),
		tx(TypeRefund, StatusSuccess, "25.00", base.Add(time.Hour)),
		tx(TypeRefund, StatusSuccess, "75.00", base.Add(2*time.Hour)),
	}
	want := DerivePaymentStatus(ledger, total)
	require.Equal(t, PaymentStatusRefunded, want)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]Transaction, len(ledger))
		copy(shuffled, ledger)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		assert.Equal(t, want, DerivePaymentStatus(shuffled, total))
	}
}

func TestNetCaptured(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	txs := []Transaction{
		tx(TypeCharge, StatusSuccess, "80.00", base),
		tx(TypeCapture, StatusSuccess, "20.00", base.Add(time.Minute)),
		tx(TypeRefund, StatusSuccess, "30.00", base.Add(time.Hour)),
		tx(TypeRefund, StatusFailed, "50.00", base.Add(2*time.Hour)),
		tx(TypeCharge, StatusPending, "10.00", base.Add(3*time.Hour)),
	}

	assert.True(t, NetCaptured(txs).Equal(decimal.RequireFromString("70.00")))
}

func TestParseTypeAndStatus(t *testing.T) {
	typ, err := ParseType("chargeback")
	require.NoError(t, err)
	assert.Equal(t, TypeChargeback, typ)

	_, err = ParseType("gift")
	assert.Error(t, err)

	status, err := ParseStatus("cancelled")
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, status)

	_, err = ParseStatus("maybe")
	assert.Error(t, err)
}
