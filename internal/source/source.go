// Package source pulls raw property records from the upstream data provider.
package source

import (
	"context"

	"github.com/ppiankov/leadradar/internal/model"
)

// RawSource is the pull interface the cache refreshes from. Implementations
// may paginate internally but must return at most maxRecords records.
type RawSource interface {
	FetchAll(ctx context.Context, maxRecords int) ([]model.RawRecord, error)
}
