package iinvoicerepo

import (
	"context"
	"time"

	"github.com/commercekit/oms/internal/service/models/invoice"
)

// IInvoiceRepository is an interface for the invoice postgres repository.
type IInvoiceRepository interface {
	Insert(ctx context.Context, inv invoice.Invoice) (*invoice.Invoice, error)
	Get(ctx context.Context, tenantID string, invoiceID int64) (*invoice.Invoice, error)
	GetForUpdate(ctx context.Context, tenantID string, invoiceID int64) (*invoice.Invoice, error)
	ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]invoice.Invoice, error)
	SetStatus(ctx context.Context, tenantID string, invoiceID int64, status invoice.Status, sentAt *time.Time) error

	// NextNumber allocates the tenant's next sequential invoice number inside
	// the enclosing transaction.
	NextNumber(ctx context.Context, tenantID string) (int64, error)
}
