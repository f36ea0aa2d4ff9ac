package pipeline

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/rxrecon/internal/model"
	"github.com/gyeh/rxrecon/internal/query"
)

func fp(v float64) *float64 { return &v }
func sp(s string) *string   { return &s }

// memStore implements store.Store over in-memory slices with the same
// contract the Postgres store honors: storage-native filters, date desc
// then script asc ordering, offset/limit windows.
type memStore struct {
	claims     []model.Claim
	baselines  map[string]model.BaselinePrice
	wholesales map[string]model.WholesalePrice
	payers     map[string]model.Payer

	batchCalls  int
	lookupCalls int
	failBatch   bool
}

func (m *memStore) ClaimBatch(_ context.Context, f query.Filter, offset, limit int) ([]model.Claim, error) {
	m.batchCalls++
	if m.failBatch {
		return nil, errors.New("store unavailable")
	}

	var out []model.Claim
	for _, c := range m.claims {
		if f.DateFrom != nil && (c.DateDispensed == nil || c.DateDispensed.Before(*f.DateFrom)) {
			continue
		}
		if f.DateTo != nil && (c.DateDispensed == nil || c.DateDispensed.After(*f.DateTo)) {
			continue
		}
		if f.Script != "" && !strings.Contains(strings.ToLower(c.Script), strings.ToLower(f.Script)) {
			continue
		}
		if f.NDC != "" && (c.DrugNDC == nil || !strings.Contains(*c.DrugNDC, f.NDC)) {
			continue
		}
		if f.Bin != "" && (c.Bin == nil || *c.Bin != f.Bin) {
			continue
		}
		if f.Status != "" && (c.Status == nil || *c.Status != f.Status) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].DateDispensed, out[j].DateDispensed
		switch {
		case a == nil && b != nil:
			return false
		case a != nil && b == nil:
			return true
		case a != nil && b != nil && !a.Equal(*b):
			return a.After(*b)
		}
		return out[i].Script < out[j].Script
	})

	if offset > len(out) {
		offset = len(out)
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memStore) BaselinePrices(_ context.Context, ndcs []string) (map[string]model.BaselinePrice, error) {
	m.lookupCalls++
	res := make(map[string]model.BaselinePrice)
	for _, ndc := range ndcs {
		if b, ok := m.baselines[ndc]; ok {
			res[ndc] = b
		}
	}
	return res, nil
}

func (m *memStore) WholesalePrices(_ context.Context, ndcs []string) (map[string]model.WholesalePrice, error) {
	m.lookupCalls++
	res := make(map[string]model.WholesalePrice)
	for _, ndc := range ndcs {
		if w, ok := m.wholesales[ndc]; ok {
			res[ndc] = w
		}
	}
	return res, nil
}

func (m *memStore) Payers(_ context.Context, bins []string) (map[string]model.Payer, error) {
	m.lookupCalls++
	res := make(map[string]model.Payer)
	for _, bin := range bins {
		if p, ok := m.payers[bin]; ok {
			res[bin] = p
		}
	}
	return res, nil
}

func (m *memStore) MarkReported(_ context.Context, scripts []string, status, reportFile string) (int64, error) {
	var n int64
	for i := range m.claims {
		for _, s := range scripts {
			if m.claims[i].Script == s {
				m.claims[i].Status = &status
				m.claims[i].ReportFile = &reportFile
				n++
			}
		}
	}
	return n, nil
}

func day(d int) *time.Time {
	t := time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
	return &t
}

// newFixture builds a small universe: two AAC drugs, one brand WAC drug,
// one orphan NDC, two commercial payers plus a federal bin.
func newFixture() *memStore {
	return &memStore{
		claims: []model.Claim{
			// underpaid commercial: expected 30*0.12+10.64 = 14.24, paid 9.76, owed 4.48
			{Script: "RX001", DateDispensed: day(10), DrugNDC: sp("0002831901"), Qty: fp(30), TotalPaid: fp(9.76), Bin: sp("610011")},
			// overpaid commercial: expected 10*0.08+10.64 = 11.44, paid 20, owed -8.56
			{Script: "RX002", DateDispensed: day(11), DrugNDC: sp("0006050601"), Qty: fp(10), TotalPaid: fp(20), Bin: sp("610014")},
			// underpaid federal brand WAC: unit 0.96*120/100 = 1.152, expected 3*1.152+10.64 = 14.096, paid 10, owed 4.096
			{Script: "RX003", DateDispensed: day(12), DrugNDC: sp("0001900101"), Qty: fp(3), TotalPaid: fp(10), Bin: sp("610000")},
			// unpriced orphan, excluded from everything
			{Script: "RX004", DateDispensed: day(13), DrugNDC: sp("0009999901"), Qty: fp(5), TotalPaid: fp(50), Bin: sp("610011")},
			// underpaid commercial with an updated payment
			{Script: "RX005", DateDispensed: day(14), DrugNDC: sp("0002831901"), Qty: fp(10), TotalPaid: fp(5), NewPaid: fp(11.84), Bin: sp("610011")},
		},
		baselines: map[string]model.BaselinePrice{
			"0002831901": {NDC: "0002831901", DrugName: sp("AMOXICILLIN 500MG CAP"), AAC: fp(0.12)},
			"0006050601": {NDC: "0006050601", DrugName: sp("LISINOPRIL 10MG TAB"), AAC: fp(0.08)},
		},
		wholesales: map[string]model.WholesalePrice{
			"0001900101": {NDC: "0001900101", WAC: fp(120), PkgSize: fp(100), PkgSizeMult: fp(1), GenericIndicator: sp("N")},
		},
		payers: map[string]model.Payer{
			"610011": {Bin: "610011", PBMName: sp("Express Scripts")},
			"610014": {Bin: "610014", PBMName: sp("Caremark")},
		},
	}
}

func newEngine(st *memStore) *Engine {
	return New(st, zerolog.Nop())
}

func emptyFilter() query.Filter {
	return query.Filter{SortKey: "date_dispensed", SortDir: "desc", Page: 1, Limit: query.DefaultLimit}
}

func TestList_DropsUnpricedClaims(t *testing.T) {
	e := newEngine(newFixture())
	page, err := e.List(context.Background(), emptyFilter())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("total = %d, want 4 priced claims", page.Total)
	}
	for _, r := range page.Rows {
		if r.Script == "RX004" {
			t.Error("unpriced claim leaked into the page")
		}
	}
}

func TestList_DefaultOrdering(t *testing.T) {
	e := newEngine(newFixture())
	page, err := e.List(context.Background(), emptyFilter())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"RX005", "RX003", "RX002", "RX001"}
	for i, r := range page.Rows {
		if r.Script != want[i] {
			t.Fatalf("row %d = %s, want %s (date desc)", i, r.Script, want[i])
		}
	}
}

func TestList_OwedTypeFilter(t *testing.T) {
	e := newEngine(newFixture())

	f := emptyFilter()
	f.OwedType = query.OwedUnderpaid
	page, err := e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 3 {
		t.Fatalf("underpaid total = %d, want 3", page.Total)
	}
	for _, r := range page.Rows {
		if r.Owed <= 0 {
			t.Errorf("%s: owed = %v, want > 0", r.Script, r.Owed)
		}
	}

	f.OwedType = query.OwedOverpaid
	page, err = e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Rows[0].Script != "RX002" {
		t.Errorf("overpaid should match only RX002, got %+v", page.Rows)
	}
}

func TestList_MethodAndPBMFilters(t *testing.T) {
	e := newEngine(newFixture())

	f := emptyFilter()
	f.Method = "WAC"
	page, err := e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 1 || page.Rows[0].Script != "RX003" {
		t.Errorf("method=WAC should match only RX003, got total=%d", page.Total)
	}

	f = emptyFilter()
	f.PBM = "Express Scripts"
	page, err = e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("pbm filter total = %d, want 2", page.Total)
	}

	f.PBM = model.FederalPayer
	page, _ = e.List(context.Background(), f)
	if page.Total != 1 || page.Rows[0].Script != "RX003" {
		t.Errorf("pbm=Federal should match only RX003, got total=%d", page.Total)
	}
}

func TestList_PaginationWindows(t *testing.T) {
	e := newEngine(newFixture())

	f := emptyFilter()
	f.Limit = 2

	var seen []string
	for pageNum := 1; pageNum <= 3; pageNum++ {
		f.Page = pageNum
		page, err := e.List(context.Background(), f)
		if err != nil {
			t.Fatalf("List page %d: %v", pageNum, err)
		}
		if page.Total != 4 {
			t.Errorf("page %d total = %d, want 4", pageNum, page.Total)
		}
		for _, r := range page.Rows {
			seen = append(seen, r.Script)
		}
	}
	if len(seen) != 4 {
		t.Fatalf("pages overlapped or dropped rows: %v", seen)
	}
	uniq := make(map[string]bool)
	for _, s := range seen {
		if uniq[s] {
			t.Fatalf("script %s appeared on two pages", s)
		}
		uniq[s] = true
	}

	// a page past the end is empty, not an error
	f.Page = 50
	page, err := e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Rows) != 0 || page.Total != 4 {
		t.Errorf("past-the-end page: rows=%d total=%d, want 0/4", len(page.Rows), page.Total)
	}
}

func TestList_SortByOwedAscending(t *testing.T) {
	e := newEngine(newFixture())
	f := emptyFilter()
	f.SortKey = "owed"
	f.SortDir = "asc"
	page, err := e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for i := 1; i < len(page.Rows); i++ {
		if page.Rows[i-1].Owed > page.Rows[i].Owed {
			t.Fatalf("rows %d/%d out of order: %v > %v", i-1, i, page.Rows[i-1].Owed, page.Rows[i].Owed)
		}
	}
}

func TestList_StorageFiltersPushDown(t *testing.T) {
	e := newEngine(newFixture())
	f := emptyFilter()
	f.DateFrom = day(12)
	page, err := e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("dateFrom total = %d, want 2", page.Total)
	}

	f = emptyFilter()
	f.Bin = "610014"
	page, _ = e.List(context.Background(), f)
	if page.Total != 1 || page.Rows[0].Script != "RX002" {
		t.Errorf("bin filter should match only RX002, got total=%d", page.Total)
	}
}

func TestList_StoreErrorAborts(t *testing.T) {
	st := newFixture()
	st.failBatch = true
	e := newEngine(st)
	if _, err := e.List(context.Background(), emptyFilter()); err == nil {
		t.Fatal("expected an error when the store fails")
	}
}

func TestAggregate_KPIValues(t *testing.T) {
	e := newEngine(newFixture())
	k, err := e.Aggregate(context.Background(), emptyFilter())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if k.ScriptsAll != 4 {
		t.Errorf("scriptsAll = %d, want 4", k.ScriptsAll)
	}
	if k.ScriptsCommercial != 3 {
		t.Errorf("scriptsCommercial = %d, want 3", k.ScriptsCommercial)
	}
	if k.ScriptsAllFiltered != 4 || k.ScriptsCommercialFiltered != 3 {
		t.Errorf("filtered counts = %d/%d, want 4/3", k.ScriptsAllFiltered, k.ScriptsCommercialFiltered)
	}

	owedRX001 := -(9.76 - (30*0.12 + 10.64))
	owedRX002 := -(20.0 - (10*0.08 + 10.64))
	owedRX003 := -(10.0 - (3*(0.96*120.0/100.0) + 10.64))
	owedRX005 := -(5.0 - (10*0.12 + 10.64))

	wantNet := owedRX001 + owedRX002 + owedRX003 + owedRX005
	if math.Abs(k.OwedNetAll-wantNet) > 1e-9 {
		t.Errorf("owedNetAll = %v, want %v", k.OwedNetAll, wantNet)
	}
	wantUnderAll := owedRX001 + owedRX003 + owedRX005
	if math.Abs(k.UnderpaidAllAbs-wantUnderAll) > 1e-9 {
		t.Errorf("underpaidAllAbs = %v, want %v", k.UnderpaidAllAbs, wantUnderAll)
	}
	wantUnderComm := owedRX001 + owedRX005
	if math.Abs(k.UnderpaidCommercialAbs-wantUnderComm) > 1e-9 {
		t.Errorf("underpaidCommercialAbs = %v, want %v", k.UnderpaidCommercialAbs, wantUnderComm)
	}
	wantUpdated := 11.84 - 5.0
	if math.Abs(k.UpdatedDifferenceTotal-wantUpdated) > 1e-9 {
		t.Errorf("updatedDifferenceTotal = %v, want %v", k.UpdatedDifferenceTotal, wantUpdated)
	}
}

func TestAggregate_MatchesListUnderSharedFilter(t *testing.T) {
	e := newEngine(newFixture())

	filters := []query.Filter{
		emptyFilter(),
		func() query.Filter { f := emptyFilter(); f.OwedType = query.OwedUnderpaid; return f }(),
		func() query.Filter { f := emptyFilter(); f.PBM = "Express Scripts"; return f }(),
		func() query.Filter { f := emptyFilter(); f.Method = "AAC"; f.OwedType = query.OwedOverpaid; return f }(),
	}
	for i, f := range filters {
		f.Limit = query.MaxLimit
		page, err := e.List(context.Background(), f)
		if err != nil {
			t.Fatalf("filter %d List: %v", i, err)
		}
		k, err := e.Aggregate(context.Background(), f)
		if err != nil {
			t.Fatalf("filter %d Aggregate: %v", i, err)
		}
		if k.ScriptsAllFiltered != page.Total {
			t.Errorf("filter %d: kpi filtered=%d, list total=%d", i, k.ScriptsAllFiltered, page.Total)
		}
		var net float64
		for _, r := range page.Rows {
			net += r.Owed
		}
		if math.Abs(k.OwedNetAll-net) > 1e-9 {
			t.Errorf("filter %d: kpi net=%v, sum of list owed=%v", i, k.OwedNetAll, net)
		}
	}
}

func TestAggregate_IgnoresPagination(t *testing.T) {
	e := newEngine(newFixture())
	f := emptyFilter()
	f.Page = 3
	f.Limit = 1
	k, err := e.Aggregate(context.Background(), f)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if k.ScriptsAll != 4 {
		t.Errorf("scriptsAll = %d, want 4 regardless of page/limit", k.ScriptsAll)
	}
}

func TestStream_BatchesLargeSets(t *testing.T) {
	st := newFixture()
	// pad past one batch so the loop has to page through storage
	for i := 0; i < BatchSize+50; i++ {
		st.claims = append(st.claims, model.Claim{
			Script:        fmt.Sprintf("PAD%05d", i),
			DateDispensed: day(1),
			DrugNDC:       sp("0002831901"),
			Qty:           fp(1),
			TotalPaid:     fp(1),
			Bin:           sp("610011"),
		})
	}
	e := newEngine(st)

	f := emptyFilter()
	f.Limit = query.MaxLimit
	page, err := e.List(context.Background(), f)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if want := 4 + BatchSize + 50; page.Total != want {
		t.Errorf("total = %d, want %d", page.Total, want)
	}
	if st.batchCalls < 2 {
		t.Errorf("batchCalls = %d, want at least 2 fetches", st.batchCalls)
	}
	// three reference lookups per non-empty batch, not per row
	if st.lookupCalls > st.batchCalls*3 {
		t.Errorf("lookupCalls = %d with %d batch calls; lookups must be per batch", st.lookupCalls, st.batchCalls)
	}
}
