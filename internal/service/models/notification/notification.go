package notification

import (
	"time"

	"github.com/google/uuid"

	"github.com/commercekit/oms/internal/service/models/orderevent"
)

// Notification is the fire-and-forget message handed to the notification
// collaborator on customer-facing events.
type Notification struct {
	ID        uuid.UUID       `json:"id"`
	TenantID  string          `json:"tenantId"`
	OrderID   int64           `json:"orderId"`
	EventType orderevent.Type `json:"eventType"`
	Recipient string          `json:"recipient"`
	CreatedAt time.Time       `json:"createdAt"`
}

// New builds a notification with a fresh correlation id.
func New(tenantID string, orderID int64, eventType orderevent.Type, recipient string) Notification {
	return Notification{
		ID:        uuid.New(),
		TenantID:  tenantID,
		OrderID:   orderID,
		EventType: eventType,
		Recipient: recipient,
		CreatedAt: time.Now(),
	}
}
