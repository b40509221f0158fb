// Package storage holds the tables behind the subscription store and the
// transaction ledger. Services depend on Backend only, so the in-memory tables
// can be swapped for the gorm/postgres ones without touching the scheduler.
package storage

import (
	"context"
	"errors"

	models "github.com/fatflowers/pledge/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

type SubscriptionTable interface {
	// Get returns ErrNotFound when the donor slot is empty.
	Get(ctx context.Context, donorID string) (*models.Subscription, error)
	// Insert returns ErrDuplicate when the donor slot is occupied, active or not.
	Insert(ctx context.Context, sub *models.Subscription) error
	// Update overwrites an existing record, returning ErrNotFound if there is none.
	Update(ctx context.Context, sub *models.Subscription) error
	List(ctx context.Context) ([]*models.Subscription, error)
}

type TransactionFilter struct {
	// SubscriptionIDs restricts results to these lifecycles. A non-nil empty slice matches nothing.
	SubscriptionIDs []string
	DonorID         string
}

type TransactionTable interface {
	Append(ctx context.Context, txn *models.Transaction) error
	List(ctx context.Context, filter TransactionFilter) ([]*models.Transaction, error)
}

// SubscriptionLogTable is append-only; List returns a donor's entries oldest first.
type SubscriptionLogTable interface {
	Append(ctx context.Context, entry *models.SubscriptionLog) error
	List(ctx context.Context, donorID string) ([]*models.SubscriptionLog, error)
}

// Tx is the view handed to InTx callbacks.
type Tx interface {
	Subscriptions() SubscriptionTable
	Transactions() TransactionTable
	SubscriptionLogs() SubscriptionLogTable
}

type Backend interface {
	Tx
	// InTx runs fn so that every write it makes through tx becomes visible together,
	// or not at all when fn returns an error. fn must not use the Backend's own tables.
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
