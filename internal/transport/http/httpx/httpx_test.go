package httpx

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/errs"
)

func TestTenant(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)

	_, err := Tenant(r)
	assert.ErrorIs(t, err, ErrMissingTenant)

	r.Header.Set(HeaderTenantID, "acme")
	tenant, err := Tenant(r)
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant)
}

func TestActor(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/api/orders", nil)
	r.Header.Set(HeaderActorID, "u1")
	r.Header.Set(HeaderActorName, "Dana")

	actor := Actor(r)
	assert.Equal(t, "u1", actor.ID)
	assert.Equal(t, "Dana", actor.Name)
}

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: errs.ErrNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("loading order: %w", errs.ErrNotFound), want: http.StatusNotFound},
		{name: "missing tenant", err: ErrMissingTenant, want: http.StatusBadRequest},
		{name: "invalid transition", err: &errs.InvalidTransitionError{Entity: "invoice", From: "paid", To: "sent"}, want: http.StatusConflict},
		{name: "not cancellable", err: &errs.OrderNotCancellableError{OrderID: 1, Status: "shipped"}, want: http.StatusConflict},
		{name: "over fulfillment", err: &errs.OverFulfillmentError{OrderLineID: 1}, want: http.StatusUnprocessableEntity},
		{name: "invalid quantity", err: &errs.InvalidQuantityError{OrderLineID: 1}, want: http.StatusUnprocessableEntity},
		{name: "insufficient quantity", err: &errs.InsufficientQuantityError{OrderLineID: 1}, want: http.StatusUnprocessableEntity},
		{name: "refund exceeds balance", err: &errs.RefundExceedsBalanceError{OrderID: 1}, want: http.StatusUnprocessableEntity},
		{name: "unknown", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteError(w, tt.err)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
