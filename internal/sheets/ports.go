package sheets

import (
	"context"

	"paisa/internal/core"
)

// Mirror keeps an external copy of the transaction list in sync with
// change events. Append and delete must be idempotent: a redelivered event
// must not produce a duplicate row or an error.
type Mirror interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) error
	DeleteTransaction(ctx context.Context, id int64) error
	// TransactionIDs lists the ids currently mirrored, in row order.
	TransactionIDs(ctx context.Context) ([]int64, error)
}
