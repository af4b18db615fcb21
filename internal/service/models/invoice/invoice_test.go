package invoice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commercekit/oms/internal/service/models/errs"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-000001", FormatNumber(1))
	assert.Equal(t, "INV-000042", FormatNumber(42))
	assert.Equal(t, "INV-1000000", FormatNumber(1000000))
}

func TestSend(t *testing.T) {
	at := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	for _, from := range []Status{StatusDraft, StatusPending} {
		inv := &Invoice{Status: from}
		require.NoError(t, inv.Send(at))
		assert.Equal(t, StatusSent, inv.Status)
		require.NotNil(t, inv.SentAt)
		assert.True(t, inv.SentAt.Equal(at))
	}

	for _, from := range []Status{StatusSent, StatusPaid, StatusCancelled} {
		inv := &Invoice{Status: from}
		var invalid *errs.InvalidTransitionError
		require.ErrorAs(t, inv.Send(at), &invalid)
		assert.Equal(t, from, inv.Status)
	}
}

func TestMarkPaid(t *testing.T) {
	inv := &Invoice{Status: StatusSent}
	require.NoError(t, inv.MarkPaid())
	assert.Equal(t, StatusPaid, inv.Status)

	for _, from := range []Status{StatusDraft, StatusPending, StatusPaid, StatusCancelled} {
		inv := &Invoice{Status: from}
		assert.Error(t, inv.MarkPaid())
	}
}

func TestCancel(t *testing.T) {
	for _, from := range []Status{StatusDraft, StatusPending, StatusSent} {
		inv := &Invoice{Status: from}
		require.NoError(t, inv.Cancel())
		assert.Equal(t, StatusCancelled, inv.Status)
	}

	for _, from := range []Status{StatusPaid, StatusCancelled} {
		inv := &Invoice{Status: from}
		assert.Error(t, inv.Cancel())
	}
}
