package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle threaded through repository calls.
// The concrete type is infra-defined (pgx.Tx for Postgres); repositories
// MUST gracefully accept nil (non-transactional path).
type Tx interface{}

// NoTX marks the non-transactional call path explicitly at call sites.
var NoTX interface{}

// TransactionManager executes a function within a database transaction,
// passing the underlying handle via `tx`. Keeping the handle opaque means
// use-case interfaces do not leak storage types, while repository
// implementations can still run SELECT ... FOR UPDATE on the tx-bound
// connection when the stock path needs it.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
