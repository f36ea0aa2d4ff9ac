package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/rxrecon/internal/model"
	"github.com/gyeh/rxrecon/internal/query"
)

// PG is the Postgres-backed Store.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG wraps a pgx pool as a Store.
func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

const claimCols = `script, pharmacy_id, date_dispensed, drug_ndc, drug_name,
	qty, total_paid, new_paid, bin, status, report_file`

func (s *PG) ClaimBatch(ctx context.Context, f query.Filter, offset, limit int) ([]model.Claim, error) {
	sql := `SELECT ` + claimCols + `
		FROM rx.claims
		WHERE ($1::date IS NULL OR date_dispensed >= $1)
		  AND ($2::date IS NULL OR date_dispensed <= $2)
		  AND ($3::text = '' OR script ILIKE '%' || $3 || '%')
		  AND ($4::text = '' OR drug_ndc ILIKE '%' || $4 || '%')
		  AND ($5::text = '' OR drug_name ILIKE '%' || $5 || '%')
		  AND ($6::text = '' OR bin = $6)
		  AND ($7::text = '' OR status = $7)
		ORDER BY date_dispensed DESC NULLS LAST, script ASC
		OFFSET $8 LIMIT $9`

	rows, err := s.pool.Query(ctx, sql,
		f.DateFrom, f.DateTo, f.Script, f.NDC, f.Drug, f.Bin, f.Status,
		offset, limit)
	if err != nil {
		return nil, fmt.Errorf("query claims: %w", err)
	}
	defer rows.Close()

	var out []model.Claim
	for rows.Next() {
		var c model.Claim
		if err := rows.Scan(&c.Script, &c.PharmacyID, &c.DateDispensed,
			&c.DrugNDC, &c.DrugName, &c.Qty, &c.TotalPaid, &c.NewPaid,
			&c.Bin, &c.Status, &c.ReportFile); err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read claims: %w", err)
	}
	return out, nil
}

func (s *PG) BaselinePrices(ctx context.Context, ndcs []string) (map[string]model.BaselinePrice, error) {
	out := make(map[string]model.BaselinePrice, len(ndcs))
	if len(ndcs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT ndc, drug_name, aac, effective_date FROM ref.baseline_prices WHERE ndc = ANY($1)`,
		ndcs)
	if err != nil {
		return nil, fmt.Errorf("query baseline prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var b model.BaselinePrice
		if err := rows.Scan(&b.NDC, &b.DrugName, &b.AAC, &b.EffectiveDate); err != nil {
			return nil, fmt.Errorf("scan baseline price: %w", err)
		}
		out[b.NDC] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read baseline prices: %w", err)
	}
	return out, nil
}

func (s *PG) WholesalePrices(ctx context.Context, ndcs []string) (map[string]model.WholesalePrice, error) {
	out := make(map[string]model.WholesalePrice, len(ndcs))
	if len(ndcs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT ndc, wac, pkg_size, pkg_size_mult, generic_indicator
		 FROM ref.wholesale_prices WHERE ndc = ANY($1)`,
		ndcs)
	if err != nil {
		return nil, fmt.Errorf("query wholesale prices: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var w model.WholesalePrice
		if err := rows.Scan(&w.NDC, &w.WAC, &w.PkgSize, &w.PkgSizeMult, &w.GenericIndicator); err != nil {
			return nil, fmt.Errorf("scan wholesale price: %w", err)
		}
		out[w.NDC] = w
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read wholesale prices: %w", err)
	}
	return out, nil
}

func (s *PG) Payers(ctx context.Context, bins []string) (map[string]model.Payer, error) {
	out := make(map[string]model.Payer, len(bins))
	if len(bins) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT bin, pbm_name, contact_email FROM ref.payers WHERE bin = ANY($1)`,
		bins)
	if err != nil {
		return nil, fmt.Errorf("query payers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p model.Payer
		if err := rows.Scan(&p.Bin, &p.PBMName, &p.ContactEmail); err != nil {
			return nil, fmt.Errorf("scan payer: %w", err)
		}
		out[p.Bin] = p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read payers: %w", err)
	}
	return out, nil
}

func (s *PG) MarkReported(ctx context.Context, scripts []string, status, reportFile string) (int64, error) {
	if len(scripts) == 0 {
		return 0, nil
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE rx.claims SET status = $2, report_file = $3 WHERE script = ANY($1)`,
		scripts, status, reportFile)
	if err != nil {
		return 0, fmt.Errorf("mark reported: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time check.
var _ Store = (*PG)(nil)
