// mkclaims writes a small synthetic fixture set (claims plus the three
// reference tables) as Parquet files for local development and the
// integration tests. The data deliberately covers the interesting
// pricing paths: baseline-priced drugs, wholesale-only drugs (brand and
// generic), unpriceable NDCs, and bins with no payer match.
// Usage: go run ./cmd/mkclaims --out testdata --rows 200
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/rxrecon/internal/model"
)

type baselineSeed struct {
	ndc  string
	name string
	aac  float64
}

var baselineSeeds = []baselineSeed{
	{"0001000101", "Drug A", 0.12},
	{"0001000201", "Drug B", 0.08},
	{"0001000301", "Drug C", 0.21},
	{"0001000401", "Drug D", 0.05},
	{"0001000501", "Drug E", 0.33},
	{"0001000601", "Drug F", 0.15},
	{"0001000701", "Drug G", 0.27},
}

type wholesaleSeed struct {
	ndc       string
	wac       float64
	pkgSize   float64
	pkgMult   float64
	indicator string
}

var wholesaleSeeds = []wholesaleSeed{
	{"0001900101", 120.0, 100.0, 1.0, "N"},
	{"0001900201", 80.0, 30.0, 1.0, "Y"},
	{"0001900301", 50.0, 60.0, 2.0, "Y"},
}

type payerSeed struct {
	bin   string
	name  string
	email string
}

var payerSeeds = []payerSeed{
	{"610011", "Express Scripts", "networkcompliance@express-scripts.com"},
	{"610014", "Caremark", "somebox@caremark.com"},
	{"610515", "Optum", "networkops@optum.com"},
}

// Bins with no payer row; claims carrying them classify as Federal.
var federalBins = []string{"610000", "999999"}

// An NDC absent from both reference tables; claims carrying it resolve
// no price and are excluded downstream.
const orphanNDC = "0009999901"

func main() {
	out := flag.String("out", "testdata", "output directory")
	rows := flag.Int("rows", 200, "number of claims to generate")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	if err := os.MkdirAll(*out, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "mkdir: %v\n", err)
		os.Exit(1)
	}
	rng := rand.New(rand.NewSource(*seed))

	writeBaseline(*out)
	writeWholesale(*out)
	writePayers(*out)
	writeClaims(*out, *rows, rng)

	fmt.Printf("wrote fixtures to %s (%d claims)\n", *out, *rows)
}

func writeBaseline(dir string) {
	rows := make([]model.BaselineParquetRow, 0, len(baselineSeeds))
	for _, s := range baselineSeeds {
		name, aac := s.name, s.aac
		rows = append(rows, model.BaselineParquetRow{
			NDC:           s.ndc,
			DrugName:      &name,
			AAC:           &aac,
			EffectiveDate: "2025-07-01",
		})
	}
	writeParquet(filepath.Join(dir, "baseline.parquet"), rows)
}

func writeWholesale(dir string) {
	rows := make([]model.WholesaleParquetRow, 0, len(wholesaleSeeds))
	for _, s := range wholesaleSeeds {
		wac, pkg, mult, gi := s.wac, s.pkgSize, s.pkgMult, s.indicator
		rows = append(rows, model.WholesaleParquetRow{
			NDC:              s.ndc,
			WAC:              &wac,
			PkgSize:          &pkg,
			PkgSizeMult:      &mult,
			GenericIndicator: &gi,
		})
	}
	writeParquet(filepath.Join(dir, "wholesale.parquet"), rows)
}

func writePayers(dir string) {
	rows := make([]model.PayerParquetRow, 0, len(payerSeeds))
	for _, s := range payerSeeds {
		name, email := s.name, s.email
		rows = append(rows, model.PayerParquetRow{
			Bin:          s.bin,
			PBMName:      &name,
			ContactEmail: &email,
		})
	}
	writeParquet(filepath.Join(dir, "payers.parquet"), rows)
}

func writeClaims(dir string, n int, rng *rand.Rand) {
	ndcs := make([]string, 0, len(baselineSeeds)+len(wholesaleSeeds)+1)
	for _, s := range baselineSeeds {
		ndcs = append(ndcs, s.ndc)
	}
	for _, s := range wholesaleSeeds {
		ndcs = append(ndcs, s.ndc)
	}
	ndcs = append(ndcs, orphanNDC)

	bins := make([]string, 0, len(payerSeeds)+len(federalBins))
	for _, s := range payerSeeds {
		bins = append(bins, s.bin)
	}
	bins = append(bins, federalBins...)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]model.ClaimParquetRow, 0, n)
	for i := 0; i < n; i++ {
		ndc := ndcs[rng.Intn(len(ndcs))]
		bin := bins[rng.Intn(len(bins))]
		qty := float64(rng.Intn(90) + 10)
		paid := round2(rng.Float64()*200 + 5)
		date := base.AddDate(0, 0, rng.Intn(60)).Format("2006-01-02")

		row := model.ClaimParquetRow{
			Script:        fmt.Sprintf("RX%06d", i+1),
			PharmacyID:    "PH001",
			DateDispensed: date,
			DrugNDC:       &ndc,
			Qty:           &qty,
			TotalPaid:     &paid,
			Bin:           &bin,
		}
		// A fifth of claims carry a payer payment revision.
		if rng.Intn(5) == 0 {
			np := round2(paid + rng.Float64()*20)
			row.NewPaid = &np
		}
		rows = append(rows, row)
	}
	writeParquet(filepath.Join(dir, "claims.parquet"), rows)
}

func writeParquet[T any](path string, rows []T) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create %s: %v\n", path, err)
		os.Exit(1)
	}
	w := goparquet.NewGenericWriter[T](f)
	if _, err := w.Write(rows); err != nil {
		fmt.Fprintf(os.Stderr, "write %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := w.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close %s: %v\n", path, err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close file %s: %v\n", path, err)
		os.Exit(1)
	}
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}
