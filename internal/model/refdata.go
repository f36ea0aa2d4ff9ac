package model

import "time"

// BaselinePrice is the directly-quoted AAC reference price for a drug.
// One row per NDC; last write wins on ingestion.
type BaselinePrice struct {
	NDC           string
	DrugName      *string
	AAC           *float64
	EffectiveDate *time.Time
}

// WholesalePrice is the WAC-based alternate reference for a drug, used
// only when no valid baseline price exists for the NDC.
type WholesalePrice struct {
	NDC              string
	WAC              *float64
	PkgSize          *float64
	PkgSizeMult      *float64
	GenericIndicator *string
}

// Payer maps a claim's bin to a PBM name and contact email. Bins with no
// payer row classify as the federal bucket.
type Payer struct {
	Bin          string
	PBMName      *string
	ContactEmail *string
}
