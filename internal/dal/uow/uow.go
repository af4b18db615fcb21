package uow

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/commercekit/oms/internal/dal/interfaces/ifulfillmentrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iinvoicerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderlinerepo"
	"github.com/commercekit/oms/internal/dal/interfaces/iorderrepo"
	"github.com/commercekit/oms/internal/dal/interfaces/itransactionrepo"
	"github.com/commercekit/oms/internal/dal/postgres"
	fulfillmentrepo "github.com/commercekit/oms/internal/dal/repositories/fulfillment/postgres"
	invoicerepo "github.com/commercekit/oms/internal/dal/repositories/invoice/postgres"
	orderrepo "github.com/commercekit/oms/internal/dal/repositories/order/postgres"
	orderlinerepo "github.com/commercekit/oms/internal/dal/repositories/orderline/postgres"
	transactionrepo "github.com/commercekit/oms/internal/dal/repositories/transaction/postgres"
)

// UnitOfWork scopes repository operations to one database transaction. Until
// Begin is called the repositories run directly against the pool.
type UnitOfWork struct {
	client *postgres.Client
	tx     pgx.Tx

	orderRepo       iorderrepo.IOrderRepository
	orderLineRepo   iorderlinerepo.IOrderLineRepository
	fulfillmentRepo ifulfillmentrepo.IFulfillmentRepository
	transactionRepo itransactionrepo.ITransactionRepository
	invoiceRepo     iinvoicerepo.IInvoiceRepository
}

func NewUnitOfWork(client *postgres.Client) *UnitOfWork {
	u := &UnitOfWork{client: client}
	u.bind(client.Pool())

	return u
}

func (u *UnitOfWork) bind(conn postgres.DBTX) {
	u.orderRepo = orderrepo.NewPostgresOrderRepository(conn)
	u.orderLineRepo = orderlinerepo.NewPostgresOrderLineRepository(conn)
	u.fulfillmentRepo = fulfillmentrepo.NewPostgresFulfillmentRepository(conn)
	u.transactionRepo = transactionrepo.NewPostgresTransactionRepository(conn)
	u.invoiceRepo = invoicerepo.NewPostgresInvoiceRepository(conn)
}

func (u *UnitOfWork) OrderRepository() iorderrepo.IOrderRepository {
	return u.orderRepo
}

func (u *UnitOfWork) OrderLineRepository() iorderlinerepo.IOrderLineRepository {
	return u.orderLineRepo
}

func (u *UnitOfWork) FulfillmentRepository() ifulfillmentrepo.IFulfillmentRepository {
	return u.fulfillmentRepo
}

func (u *UnitOfWork) TransactionRepository() itransactionrepo.ITransactionRepository {
	return u.transactionRepo
}

func (u *UnitOfWork) InvoiceRepository() iinvoicerepo.IInvoiceRepository {
	return u.invoiceRepo
}

// Begin opens a transaction and rebinds every repository to it.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	tx, err := u.client.Pool().Begin(ctx)
	if err != nil {
		return err
	}

	u.tx = tx
	u.bind(tx)

	return nil
}

func (u *UnitOfWork) Commit(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Commit(ctx)
}

// Rollback returns pgx.ErrTxClosed after a successful Commit; callers defer
// it and ignore the error.
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	if u.tx == nil {
		return nil
	}

	return u.tx.Rollback(ctx)
}
