// Package storage defines the transaction boundary shared by all
// repository implementations.
package storage

import "context"

// TxManager runs fn inside a single datastore transaction. The transaction
// travels in the context fn receives; repositories pick it up from there.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
