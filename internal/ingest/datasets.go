package ingest

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gyeh/rxrecon/internal/model"
	"github.com/gyeh/rxrecon/internal/normalize"
	embedsql "github.com/gyeh/rxrecon/internal/sql"
)

// dataset describes one loadable table: where its rows stage, how they
// merge into the serving table, and how a parquet row becomes a staged
// value row.
type dataset struct {
	name         string
	stagingTable pgx.Identifier
	stagingCols  []string
	mergeSQL     string
	stage        stageFunc
}

var stagingMeta = []string{"ingest_batch_id", "load_file_id", "source_row_number"}

var datasets = map[string]*dataset{
	"claims": {
		name:         "claims",
		stagingTable: pgx.Identifier{"ingest", "stage_claims"},
		stagingCols: append(stagingMeta[:len(stagingMeta):len(stagingMeta)],
			"script", "pharmacy_id", "date_dispensed", "drug_ndc", "drug_name",
			"qty", "total_paid", "new_paid", "bin", "status"),
		mergeSQL: embedsql.MergeClaims,
		stage:    makeStage(decodeClaimRow),
	},
	"baseline": {
		name:         "baseline",
		stagingTable: pgx.Identifier{"ingest", "stage_baseline_prices"},
		stagingCols: append(stagingMeta[:len(stagingMeta):len(stagingMeta)],
			"ndc", "drug_name", "aac", "effective_date"),
		mergeSQL: embedsql.MergeBaselinePrices,
		stage:    makeStage(decodeBaselineRow),
	},
	"wholesale": {
		name:         "wholesale",
		stagingTable: pgx.Identifier{"ingest", "stage_wholesale_prices"},
		stagingCols: append(stagingMeta[:len(stagingMeta):len(stagingMeta)],
			"ndc", "wac", "pkg_size", "pkg_size_mult", "generic_indicator"),
		mergeSQL: embedsql.MergeWholesalePrices,
		stage:    makeStage(decodeWholesaleRow),
	},
	"payers": {
		name:         "payers",
		stagingTable: pgx.Identifier{"ingest", "stage_payers"},
		stagingCols: append(stagingMeta[:len(stagingMeta):len(stagingMeta)],
			"bin", "pbm_name", "contact_email"),
		mergeSQL: embedsql.MergePayers,
		stage:    makeStage(decodePayerRow),
	},
}

// KnownDataset reports whether name is a loadable dataset.
func KnownDataset(name string) bool {
	_, ok := datasets[name]
	return ok
}

// DatasetNames returns the loadable dataset names, comma-separated.
func DatasetNames() string {
	names := make([]string, 0, len(datasets))
	for n := range datasets {
		names = append(names, n)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// decodeClaimRow normalizes one parquet claim row into staging values.
// The values follow the dataset's stagingCols order after the batch
// metadata columns.
func decodeClaimRow(r *model.ClaimParquetRow) ([]any, error) {
	script := strings.TrimSpace(r.Script)
	if script == "" {
		return nil, fmt.Errorf("missing script")
	}
	return []any{
		script,
		strings.TrimSpace(r.PharmacyID),
		normalize.ParseDate(r.DateDispensed),
		normalize.Code(r.DrugNDC),
		normalize.Name(r.DrugName),
		r.Qty,
		r.TotalPaid,
		r.NewPaid,
		normalize.Code(r.Bin),
		normalize.Name(r.Status),
	}, nil
}

func decodeBaselineRow(r *model.BaselineParquetRow) ([]any, error) {
	ndc := normalize.Code(&r.NDC)
	if ndc == nil {
		return nil, fmt.Errorf("missing ndc")
	}
	return []any{
		*ndc,
		normalize.Name(r.DrugName),
		r.AAC,
		normalize.ParseDate(r.EffectiveDate),
	}, nil
}

func decodeWholesaleRow(r *model.WholesaleParquetRow) ([]any, error) {
	ndc := normalize.Code(&r.NDC)
	if ndc == nil {
		return nil, fmt.Errorf("missing ndc")
	}
	return []any{
		*ndc,
		r.WAC,
		r.PkgSize,
		r.PkgSizeMult,
		normalize.Name(r.GenericIndicator),
	}, nil
}

func decodePayerRow(r *model.PayerParquetRow) ([]any, error) {
	bin := normalize.Code(&r.Bin)
	if bin == nil {
		return nil, fmt.Errorf("missing bin")
	}
	return []any{
		*bin,
		normalize.Name(r.PBMName),
		normalize.Name(r.ContactEmail),
	}, nil
}
