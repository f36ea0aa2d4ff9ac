// Package query defines the filter contract shared by the claim list and
// KPI endpoints. Both must interpret the same parameter names with the
// same semantics or the two views drift apart.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultLimit matches the dashboard's default page size.
	DefaultLimit = 25
	// MaxLimit caps a single page; large enough for "show all" exports.
	MaxLimit = 10000
)

// Owed-type filter values. Empty or "all" means no filter.
const (
	OwedUnderpaid = "underpaid"
	OwedOverpaid  = "overpaid"
	OwedAll       = "all"
)

// PBMAll is the sentinel payer filter value meaning "no payer filter".
const PBMAll = "All"

// sortKeys is the allowlist for sortKey. Unknown keys fall back to the
// default (dispense date).
var sortKeys = map[string]bool{
	"date_dispensed": true,
	"script":         true,
	"drug_ndc":       true,
	"drug_name":      true,
	"qty":            true,
	"total_paid":     true,
	"new_paid":       true,
	"bin":            true,
	"owed":           true,
	"expected":       true,
}

// Filter is the parsed query contract. Storage-native fields (dates,
// substring and exact matches) push down to the record store; OwedType,
// Method, and PBM are derived filters that only apply after enrichment.
type Filter struct {
	DateFrom *time.Time
	DateTo   *time.Time

	Script string // substring match on script id
	NDC    string // substring match on drug NDC
	Drug   string // substring match on drug name

	Bin    string // exact
	Status string // exact

	OwedType string // underpaid | overpaid | all/""
	Method   string // AAC | WAC | ""
	PBM      string // exact payer name; "" or "All" = no filter

	SortKey string
	SortDir string // "asc" | "desc"

	Page  int // 1-indexed
	Limit int
}

// Parse builds a Filter from request query parameters, applying defaults
// and bounds. It rejects malformed dates and unknown owed-type/method
// values rather than silently ignoring them.
func Parse(values url.Values) (Filter, error) {
	f := Filter{
		Script:  values.Get("script"),
		NDC:     values.Get("ndc"),
		Drug:    values.Get("drug"),
		Bin:     values.Get("bin"),
		Status:  values.Get("status"),
		PBM:     values.Get("pbm"),
		SortKey: values.Get("sortKey"),
		SortDir: values.Get("sortDir"),
		Page:    1,
		Limit:   DefaultLimit,
	}

	var err error
	if f.DateFrom, err = parseDate(values.Get("dateFrom")); err != nil {
		return f, fmt.Errorf("dateFrom: %w", err)
	}
	if f.DateTo, err = parseDate(values.Get("dateTo")); err != nil {
		return f, fmt.Errorf("dateTo: %w", err)
	}

	switch ot := values.Get("owedType"); ot {
	case "", OwedAll:
		f.OwedType = ""
	case OwedUnderpaid, OwedOverpaid:
		f.OwedType = ot
	default:
		return f, fmt.Errorf("owedType: unknown value %q", ot)
	}

	switch m := values.Get("method"); m {
	case "", "AAC", "WAC":
		f.Method = m
	default:
		return f, fmt.Errorf("method: unknown value %q", m)
	}

	if f.PBM == PBMAll {
		f.PBM = ""
	}

	if !sortKeys[f.SortKey] {
		f.SortKey = "date_dispensed"
	}
	if f.SortDir != "asc" {
		f.SortDir = "desc"
	}

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("page: %w", err)
		}
		f.Page = max(n, 1)
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("limit: %w", err)
		}
		f.Limit = min(max(n, 1), MaxLimit)
	}

	return f, nil
}

// WithoutPagination returns a copy with page/limit reset so the KPI path
// sees the whole filtered universe.
func (f Filter) WithoutPagination() Filter {
	f.Page = 1
	f.Limit = MaxLimit
	return f
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, fmt.Errorf("want YYYY-MM-DD, got %q", s)
	}
	return &t, nil
}
