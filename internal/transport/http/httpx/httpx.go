package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/commercekit/oms/internal/service/models/errs"
	"github.com/commercekit/oms/internal/service/models/orderevent"
)

const (
	HeaderTenantID  = "X-Tenant-ID"
	HeaderActorID   = "X-Actor-ID"
	HeaderActorName = "X-Actor-Name"
)

var ErrMissingTenant = errors.New("missing " + HeaderTenantID + " header")

// Tenant extracts the caller's tenant id. Every operation is tenant-scoped;
// there is no ambient fallback.
func Tenant(r *http.Request) (string, error) {
	tenant := r.Header.Get(HeaderTenantID)
	if tenant == "" {
		return "", ErrMissingTenant
	}

	return tenant, nil
}

// Actor extracts the acting user supplied by the identity collaborator. Both
// fields may be empty for unattributed calls.
func Actor(r *http.Request) orderevent.Actor {
	return orderevent.Actor{
		ID:   r.Header.Get(HeaderActorID),
		Name: r.Header.Get(HeaderActorName),
	}
}

// WriteJSON encodes v as the response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// WriteError maps domain errors onto HTTP status codes and writes the error
// message as the body.
func WriteError(w http.ResponseWriter, err error) {
	var (
		invalidTransition *errs.InvalidTransitionError
		overFulfillment   *errs.OverFulfillmentError
		invalidQuantity   *errs.InvalidQuantityError
		insufficientQty   *errs.InsufficientQuantityError
		refundExceeds     *errs.RefundExceedsBalanceError
		notCancellable    *errs.OrderNotCancellableError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errs.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrMissingTenant):
		status = http.StatusBadRequest
	case errors.As(err, &invalidTransition), errors.As(err, &notCancellable):
		status = http.StatusConflict
	case errors.As(err, &overFulfillment),
		errors.As(err, &invalidQuantity),
		errors.As(err, &insufficientQty),
		errors.As(err, &refundExceeds):
		status = http.StatusUnprocessableEntity
	}

	http.Error(w, err.Error(), status)
}
