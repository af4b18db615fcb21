package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/errs"
)

func TestTransitions(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		do      func(f *Fulfillment) error
		want    Status
		wantErr bool
	}{
		{name: "approve pending", from: StatusPending, do: (*Fulfillment).Approve, want: StatusApproved},
		{name: "approve approved", from: StatusApproved, do: (*Fulfillment).Approve, wantErr: true},
		{name: "approve shipped", from: StatusShipped, do: (*Fulfillment).Approve, wantErr: true},
		{name: "approve cancelled", from: StatusCancelled, do: (*Fulfillment).Approve, wantErr: true},

		{name: "ship pending skips approval", from: StatusPending, do: (*Fulfillment).MarkShipped, want: StatusShipped},
		{name: "ship approved", from: StatusApproved, do: (*Fulfillment).MarkShipped, want: StatusShipped},
		{name: "ship shipped", from: StatusShipped, do: (*Fulfillment).MarkShipped, wantErr: true},
		{name: "ship delivered", from: StatusDelivered, do: (*Fulfillment).MarkShipped, wantErr: true},
		{name: "ship cancelled", from: StatusCancelled, do: (*Fulfillment).MarkShipped, wantErr: true},

		{name: "deliver shipped", from: StatusShipped, do: (*Fulfillment).MarkDelivered, want: StatusDelivered},
		{name: "deliver pending", from: StatusPending, do: (*Fulfillment).MarkDelivered, wantErr: true},
		{name: "deliver approved", from: StatusApproved, do: (*Fulfillment).MarkDelivered, wantErr: true},

		{name: "cancel pending", from: StatusPending, do: (*Fulfillment).Cancel, want: StatusCancelled},
		{name: "cancel approved", from: StatusApproved, do: (*Fulfillment).Cancel, want: StatusCancelled},
		{name: "cancel shipped", from: StatusShipped, do: (*Fulfillment).Cancel, wantErr: true},
		{name: "cancel delivered", from: StatusDelivered, do: (*Fulfillment).Cancel, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Fulfillment{Status: tt.from}
			err := tt.do(f)
			if tt.wantErr {
				var invalid *errs.InvalidTransitionError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, "fulfillment", invalid.Entity)
				assert.Equal(t, tt.from, f.Status)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f.Status)
		})
	}
}

func TestSetTracking(t *testing.T) {
	f := &Fulfillment{Status: StatusShipped}
	require.NoError(t, f.SetTracking("1Z999", "https://tracking.example/1Z999", "ups"))
	assert.Equal(t, "1Z999", f.TrackingNumber)
	assert.Equal(t, "ups", f.Carrier)

	f.Status = StatusDelivered
	assert.Error(t, f.SetTracking("other", "", ""))
	assert.Equal(t, "1Z999", f.TrackingNumber)
}

func TestTerminalAndActive(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusApproved.Terminal())
	assert.False(t, StatusShipped.Terminal())

	assert.False(t, (&Fulfillment{Status: StatusCancelled}).Active())
	assert.True(t, (&Fulfillment{Status: StatusDelivered}).Active())
}
