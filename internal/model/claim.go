package model

import "time"

// Claim is one dispensed-prescription record as stored in rx.claims.
// Claims are created by the loader and read-only to the query engine;
// the only write path is the reporting workflow updating status and
// report_file.
type Claim struct {
	Script        string
	PharmacyID    string
	DateDispensed *time.Time
	DrugNDC       *string
	DrugName      *string
	Qty           *float64
	TotalPaid     *float64
	NewPaid       *float64
	Bin           *string
	Status        *string
	ReportFile    *string
}

// PricingMethod identifies how a claim's reference unit price was resolved.
type PricingMethod string

const (
	MethodAAC   PricingMethod = "AAC"
	MethodWAC   PricingMethod = "WAC"
	MethodOther PricingMethod = "Other"
)

// FederalPayer is the sentinel payer name for claims whose bin is absent
// or has no matching payer record.
const FederalPayer = "Federal"

// EvaluatedClaim is a Claim enriched with resolved pricing and payer
// classification. It is recomputed on every query and never persisted.
// When Priced is false no reference price could be resolved and
// UnitPrice, Expected, and Owed are meaningless; such claims are dropped
// from every list and KPI result.
type EvaluatedClaim struct {
	Script     string        `json:"script"`
	Date       *time.Time    `json:"date"`
	NDC        string        `json:"ndc"`
	DrugName   string        `json:"drugName"`
	Qty        float64       `json:"qty"`
	UnitPrice  float64       `json:"unitPrice"`
	Method     PricingMethod `json:"method"`
	Expected   float64       `json:"expected"`
	Paid       float64       `json:"paid"`
	NewPaid    *float64      `json:"newPaid"`
	Owed       float64       `json:"owed"`
	Bin        *string       `json:"bin"`
	PayerName  string        `json:"pbmName"`
	Status     *string       `json:"status"`
	ReportFile *string       `json:"reportFile"`

	Priced bool `json:"-"`
}

// Federal reports whether the claim landed in the federal payer bucket.
func (e *EvaluatedClaim) Federal() bool {
	return e.PayerName == FederalPayer
}

// Commercial reports whether the claim belongs to a commercial PBM.
func (e *EvaluatedClaim) Commercial() bool {
	return !e.Federal()
}
