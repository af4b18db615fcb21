package inotifier

import (
	"context"

	"github.com/commercekit/oms/internal/service/models/notification"
)

// INotifier is the fire-and-forget customer notification collaborator.
// Failures are logged by callers, never propagated.
type INotifier interface {
	Notify(ctx context.Context, n notification.Notification) error
}
