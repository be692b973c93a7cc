// Package store persists canonical transactions. The engine only depends
// on the Store interface; the flat-file and Postgres implementations are
// interchangeable collaborators.
package store

import (
	"context"

	"github.com/cardstream-dev/cardstream/internal/model"
)

// Store saves an ordered canonical sequence. Save returns the number of
// rows newly written; already-present rows (same transaction id) are
// skipped, which makes repeated loads of the same run idempotent.
type Store interface {
	Save(ctx context.Context, txns []model.CanonicalTransaction) (int, error)
}
