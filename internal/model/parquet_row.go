package model

// Parquet row shapes for the four loadable datasets. Dates travel as
// strings in the files and get parsed during normalization; money and
// quantity fields stay float64 to match the engine's arithmetic.

// ClaimParquetRow mirrors the claims export schema.
type ClaimParquetRow struct {
	Script        string   `parquet:"script"`
	PharmacyID    string   `parquet:"pharmacy_id"`
	DateDispensed string   `parquet:"date_dispensed"`
	DrugNDC       *string  `parquet:"drug_ndc,optional"`
	DrugName      *string  `parquet:"drug_name,optional"`
	Qty           *float64 `parquet:"qty,optional"`
	TotalPaid     *float64 `parquet:"total_paid,optional"`
	NewPaid       *float64 `parquet:"new_paid,optional"`
	Bin           *string  `parquet:"bin,optional"`
	Status        *string  `parquet:"status,optional"`
}

// BaselineParquetRow mirrors the baseline (AAC) price table export.
type BaselineParquetRow struct {
	NDC           string   `parquet:"ndc"`
	DrugName      *string  `parquet:"drug_name,optional"`
	AAC           *float64 `parquet:"aac,optional"`
	EffectiveDate string   `parquet:"effective_date"`
}

// WholesaleParquetRow mirrors the wholesale (WAC) rate table export.
type WholesaleParquetRow struct {
	NDC              string   `parquet:"ndc"`
	WAC              *float64 `parquet:"wac,optional"`
	PkgSize          *float64 `parquet:"pkg_size,optional"`
	PkgSizeMult      *float64 `parquet:"pkg_size_mult,optional"`
	GenericIndicator *string  `parquet:"generic_indicator,optional"`
}

// PayerParquetRow mirrors the PBM info table export.
type PayerParquetRow struct {
	Bin          string  `parquet:"bin"`
	PBMName      *string `parquet:"pbm_name,optional"`
	ContactEmail *string `parquet:"contact_email,optional"`
}
