package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/currency"
	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/fulfillment"
	"github.com/commercekit/oms/internal/service/models/orderline"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCheckTotals(t *testing.T) {
	tests := []struct {
		name    string
		total   string
		wantErr bool
	}{
		{name: "exact", total: "111.00"},
		{name: "within tolerance", total: "111.004"},
		{name: "under tolerance", total: "110.996"},
		{name: "off by a cent", total: "111.01", wantErr: true},
		{name: "way off", total: "90.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{
				Currency:      currency.CurrencyUSD,
				Subtotal:      d("100.00"),
				ShippingTotal: d("5.00"),
				TaxTotal:      d("11.00"),
				DiscountTotal: d("5.00"),
				Total:         d(tt.total),
			}
			err := o.CheckTotals()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancellable(t *testing.T) {
	cancellable := map[Status]bool{
		StatusPending:    true,
		StatusConfirmed:  true,
		StatusProcessing: true,
		StatusShipped:    false,
		StatusDelivered:  false,
		StatusCompleted:  false,
		StatusCancelled:  false,
		StatusRefunded:   false,
	}

	for status, want := range cancellable {
		assert.Equal(t, want, status.Cancellable(), string(status))
	}
}

func TestCancel(t *testing.T) {
	o := Order{ID: 9, Status: StatusProcessing}
	require.NoError(t, o.Cancel())
	assert.Equal(t, StatusCancelled, o.Status)

	o = Order{ID: 9, Status: StatusShipped}
	var notCancellable *errs.OrderNotCancellableError
	require.ErrorAs(t, o.Cancel(), &notCancellable)
	assert.Equal(t, StatusShipped, o.Status)
}

func TestDeriveFulfillmentStatus(t *testing.T) {
	lines := func(pairs ...[2]int) []orderline.OrderLine {
		out := make([]orderline.OrderLine, len(pairs))
		for i, p := range pairs {
			out[i] = orderline.OrderLine{Quantity: p[0], QuantityFulfilled: p[1]}
		}

		return out
	}
	pending := []fulfillment.Fulfillment{{Status: fulfillment.StatusPending}}
	shipped := []fulfillment.Fulfillment{{Status: fulfillment.StatusShipped}}

	tests := []struct {
		name         string
		lines        []orderline.OrderLine
		fulfillments []fulfillment.Fulfillment
		want         FulfillmentStatus
	}{
		{
			name:  "nothing fulfilled",
			lines: lines([2]int{3, 0}, [2]int{2, 0}),
			want:  FulfillmentStatusUnfulfilled,
		},
		{
			name:         "some fulfilled",
			lines:        lines([2]int{3, 3}, [2]int{2, 0}),
			fulfillments: shipped,
			want:         FulfillmentStatusPartiallyFulfilled,
		},
		{
			name:         "all fulfilled",
			lines:        lines([2]int{3, 3}, [2]int{2, 2}),
			fulfillments: shipped,
			want:         FulfillmentStatusFulfilled,
		},
		{
			name:         "pending batch wins over partial coverage",
			lines:        lines([2]int{3, 3}, [2]int{2, 0}),
			fulfillments: pending,
			want:         FulfillmentStatusAwaitingApproval,
		},
		{
			name:         "pending batch wins even when nothing reserved yet",
			lines:        lines([2]int{3, 0}),
			fulfillments: pending,
			want:         FulfillmentStatusAwaitingApproval,
		},
		{
			name:         "full coverage wins over a stray pending batch",
			lines:        lines([2]int{3, 3}),
			fulfillments: pending,
			want:         FulfillmentStatusFulfilled,
		},
		{
			name: "no lines means nothing to fulfill",
			want: FulfillmentStatusUnfulfilled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveFulfillmentStatus(tt.lines, tt.fulfillments))
		})
	}
}
