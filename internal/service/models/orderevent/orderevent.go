package orderevent

import "time"

type Type string

const (
	TypeOrderCreated         Type = "order_created"
	TypeOrderCancelled       Type = "order_cancelled"
	TypeNoteAdded            Type = "note_added"
	TypeFulfillmentCreated   Type = "fulfillment_created"
	TypeFulfillmentShipped   Type = "fulfillment_shipped"
	TypeFulfillmentCancelled Type = "fulfillment_cancelled"
	TypePaymentRecorded      Type = "payment_recorded"
	TypePaymentRefunded      Type = "payment_refunded"
	TypeInvoiceGenerated     Type = "invoice_generated"
	TypeInvoiceSent          Type = "invoice_sent"
)

// Actor identifies who performed an operation, as supplied by the identity
// collaborator. Both fields are opaque to this core.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// OrderEvent is one entry in an order's append-only audit narrative. Events
// are never mutated or deleted.
type OrderEvent struct {
	ID        int64             `json:"id"`
	TenantID  string            `json:"tenantId"`
	OrderID   int64             `json:"orderId"`
	Type      Type              `json:"type"`
	Message   string            `json:"message"`
	ActorID   string            `json:"actorId,omitempty"`
	ActorName string            `json:"actorName,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// New builds an event attributed to the given actor.
func New(tenantID string, orderID int64, typ Type, message string, actor Actor) OrderEvent {
	return OrderEvent{
		TenantID:  tenantID,
		OrderID:   orderID,
		Type:      typ,
		Message:   message,
		ActorID:   actor.ID,
		ActorName: actor.Name,
		CreatedAt: time.Now(),
	}
}
