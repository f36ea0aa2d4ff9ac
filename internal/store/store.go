// Package store provides paged, filtered read access to dispensed claims
// and bulk keyed lookups over the reference tables.
package store

import (
	"context"

	"github.com/gyeh/rxrecon/internal/model"
	"github.com/gyeh/rxrecon/internal/query"
)

// Store is the record-store contract the enrichment pipeline runs
// against. Implementations must return claim batches ordered by dispense
// date descending then script ascending so pagination is stable.
type Store interface {
	// ClaimBatch returns up to limit claims starting at offset, applying
	// only the storage-native parts of the filter (dates, substring and
	// exact matches). Derived filters are the pipeline's job.
	ClaimBatch(ctx context.Context, f query.Filter, offset, limit int) ([]model.Claim, error)

	// BaselinePrices bulk-fetches baseline rows for the given NDCs.
	BaselinePrices(ctx context.Context, ndcs []string) (map[string]model.BaselinePrice, error)

	// WholesalePrices bulk-fetches wholesale rows for the given NDCs.
	WholesalePrices(ctx context.Context, ndcs []string) (map[string]model.WholesalePrice, error)

	// Payers bulk-fetches payer rows for the given bins.
	Payers(ctx context.Context, bins []string) (map[string]model.Payer, error)

	// MarkReported is the narrow write path: the reporting workflow stamps
	// claims with a status and report-file path. The read path never
	// mutates anything.
	MarkReported(ctx context.Context, scripts []string, status, reportFile string) (int64, error)
}
