package itransactionrepo

import (
	"context"

	"github.com/commercekit/oms/internal/service/models/transaction"
)

// ITransactionRepository is an interface for the transaction postgres
// repository. The ledger is append-only: there is no update or delete.
type ITransactionRepository interface {
	Insert(ctx context.Context, tx transaction.Transaction) (*transaction.Transaction, error)
	ListByOrder(ctx context.Context, tenantID string, orderID int64) ([]transaction.Transaction, error)
}
