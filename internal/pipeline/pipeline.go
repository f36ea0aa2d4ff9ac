// Package pipeline implements the batch enrichment engine: claims are
// streamed from the store in fixed-size batches, enriched with per-batch
// bulk reference lookups, filtered on derived fields, and only then
// paginated or aggregated. The list and KPI endpoints both run the same
// stream, which is what keeps the claim table and the KPI strip
// consistent for a given filter state.
package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gyeh/rxrecon/internal/evaluate"
	"github.com/gyeh/rxrecon/internal/model"
	"github.com/gyeh/rxrecon/internal/query"
	"github.com/gyeh/rxrecon/internal/store"
)

// BatchSize is the fixed claim fetch size. Reference lookups are issued
// once per batch over the batch's distinct keys, so I/O scales with
// distinct NDCs/bins rather than row count.
const BatchSize = 1000

// Engine runs enrichment queries against a record store. It holds no
// mutable state; concurrent queries are independent.
type Engine struct {
	store store.Store
	log   zerolog.Logger
}

// New creates an Engine over the given store.
func New(st store.Store, log zerolog.Logger) *Engine {
	return &Engine{store: st, log: log}
}

// Page is one page of evaluated claims plus the post-filter total. Total
// counts the whole filtered set, not the raw storage rows.
type Page struct {
	Rows  []model.EvaluatedClaim `json:"rows"`
	Total int                    `json:"total"`
	Page  int                    `json:"page"`
	Limit int                    `json:"limit"`
}

// stream is the single shared fetch→enrich→filter loop. onPriced fires
// for every claim with a resolved reference price (before derived
// filters); onKept fires for the subset that also passes the derived
// filters. Unpriced claims are dropped silently; that is policy, not an
// error. Any store failure aborts the whole query since partial results
// would be worse than a hard failure here.
func (e *Engine) stream(ctx context.Context, f query.Filter, onPriced, onKept func(*model.EvaluatedClaim)) error {
	offset := 0
	batches := 0
	for {
		batch, err := e.store.ClaimBatch(ctx, f, offset, BatchSize)
		if err != nil {
			return fmt.Errorf("claim batch at offset %d: %w", offset, err)
		}
		if len(batch) == 0 {
			break
		}
		batches++

		ndcs, bins := distinctKeys(batch)
		baselines, err := e.store.BaselinePrices(ctx, ndcs)
		if err != nil {
			return fmt.Errorf("baseline lookup: %w", err)
		}
		wholesales, err := e.store.WholesalePrices(ctx, ndcs)
		if err != nil {
			return fmt.Errorf("wholesale lookup: %w", err)
		}
		payers, err := e.store.Payers(ctx, bins)
		if err != nil {
			return fmt.Errorf("payer lookup: %w", err)
		}

		for i := range batch {
			ec := evaluate.Evaluate(&batch[i], baselines, wholesales, payers)
			if !ec.Priced {
				continue
			}
			if onPriced != nil {
				onPriced(&ec)
			}
			if !passesDerived(f, &ec) {
				continue
			}
			if onKept != nil {
				onKept(&ec)
			}
		}

		if len(batch) < BatchSize {
			break
		}
		offset += BatchSize
	}

	e.log.Debug().Int("batches", batches).Msg("claim stream complete")
	return nil
}

// List returns the requested page over the filtered, sorted collection.
func (e *Engine) List(ctx context.Context, f query.Filter) (*Page, error) {
	var kept []model.EvaluatedClaim
	err := e.stream(ctx, f, nil, func(ec *model.EvaluatedClaim) {
		kept = append(kept, *ec)
	})
	if err != nil {
		return nil, err
	}

	sortClaims(kept, f.SortKey, f.SortDir)

	total := len(kept)
	start := (f.Page - 1) * f.Limit
	if start > total {
		start = total
	}
	end := start + f.Limit
	if end > total {
		end = total
	}

	rows := make([]model.EvaluatedClaim, end-start)
	copy(rows, kept[start:end])

	return &Page{Rows: rows, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Aggregate folds the same stream into the dashboard KPIs. Every figure
// counts only priced claims; the Filtered counts and all sums apply the
// same derived filters List uses.
func (e *Engine) Aggregate(ctx context.Context, f query.Filter) (*model.KPIReport, error) {
	f = f.WithoutPagination()

	var k model.KPIReport
	err := e.stream(ctx, f,
		func(ec *model.EvaluatedClaim) {
			k.ScriptsAll++
			if ec.Commercial() {
				k.ScriptsCommercial++
			}
		},
		func(ec *model.EvaluatedClaim) {
			k.ScriptsAllFiltered++
			if ec.Commercial() {
				k.ScriptsCommercialFiltered++
			}

			k.OwedNetAll += ec.Owed
			if ec.Owed > 0 {
				k.UnderpaidAllAbs += ec.Owed
			}
			if ec.Commercial() {
				k.OwedNetCommercial += ec.Owed
				if ec.Owed > 0 {
					k.UnderpaidCommercialAbs += ec.Owed
				}
				if ec.NewPaid != nil {
					k.UpdatedDifferenceTotal += *ec.NewPaid - ec.Paid
				}
			}
		})
	if err != nil {
		return nil, err
	}
	return &k, nil
}

// passesDerived applies the post-enrichment filters in order: owed type,
// pricing method, payer name.
func passesDerived(f query.Filter, ec *model.EvaluatedClaim) bool {
	switch f.OwedType {
	case query.OwedUnderpaid:
		if !(ec.Owed > 0) {
			return false
		}
	case query.OwedOverpaid:
		if !(ec.Owed < 0) {
			return false
		}
	}
	if f.Method != "" && string(ec.Method) != f.Method {
		return false
	}
	if f.PBM != "" && ec.PayerName != f.PBM {
		return false
	}
	return true
}

// distinctKeys collects the batch's distinct non-empty NDCs and bins.
func distinctKeys(batch []model.Claim) (ndcs, bins []string) {
	seenNDC := make(map[string]bool)
	seenBin := make(map[string]bool)
	for i := range batch {
		if c := batch[i].DrugNDC; c != nil && *c != "" && !seenNDC[*c] {
			seenNDC[*c] = true
			ndcs = append(ndcs, *c)
		}
		if b := batch[i].Bin; b != nil && *b != "" && !seenBin[*b] {
			seenBin[*b] = true
			bins = append(bins, *b)
		}
	}
	return ndcs, bins
}
