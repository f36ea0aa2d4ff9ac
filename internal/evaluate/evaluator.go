// Package evaluate derives the expected reimbursement, owed amount, and
// payer classification for a single dispensed claim.
package evaluate

import (
	"math"
	"strings"

	"github.com/gyeh/rxrecon/internal/model"
	"github.com/gyeh/rxrecon/internal/pricing"
)

// DispensingFee is the fixed per-script fee added to every expected
// reimbursement. Not configurable per drug or payer.
const DispensingFee = 10.64

// Evaluate enriches one claim with resolved pricing and payer
// classification using the batch-local lookup maps. A claim with no
// resolvable price comes back with Priced == false and zero
// UnitPrice/Expected/Owed; callers must exclude such claims from every
// count and sum.
func Evaluate(c *model.Claim, baselines map[string]model.BaselinePrice, wholesales map[string]model.WholesalePrice, payers map[string]model.Payer) model.EvaluatedClaim {
	ndc := ""
	if c.DrugNDC != nil {
		ndc = *c.DrugNDC
	}

	ec := model.EvaluatedClaim{
		Script:     c.Script,
		Date:       c.DateDispensed,
		NDC:        ndc,
		DrugName:   drugName(c, ndc, baselines),
		Qty:        coerce(c.Qty),
		Paid:       coerce(c.TotalPaid),
		NewPaid:    c.NewPaid,
		Bin:        c.Bin,
		PayerName:  payerName(c.Bin, payers),
		Status:     c.Status,
		ReportFile: c.ReportFile,
	}

	price := pricing.Resolve(ndc, baselines, wholesales)
	ec.Method = price.Method
	if price.Resolved {
		ec.Priced = true
		ec.UnitPrice = price.UnitPrice
		ec.Expected = ec.Qty*price.UnitPrice + DispensingFee
		// difference = paid - expected is the payer's own accounting view;
		// owed flips the sign so positive means the pharmacy was underpaid.
		ec.Owed = -(ec.Paid - ec.Expected)
	}
	return ec
}

// payerName maps a bin to its PBM name. A nil bin, a bin with no payer
// row, and a payer row with a blank name all classify as Federal.
func payerName(bin *string, payers map[string]model.Payer) string {
	if bin == nil || *bin == "" {
		return model.FederalPayer
	}
	p, ok := payers[*bin]
	if !ok || p.PBMName == nil || strings.TrimSpace(*p.PBMName) == "" {
		return model.FederalPayer
	}
	return *p.PBMName
}

// drugName prefers the claim's own drug name, falling back to the
// baseline table's.
func drugName(c *model.Claim, ndc string, baselines map[string]model.BaselinePrice) string {
	if c.DrugName != nil && *c.DrugName != "" {
		return *c.DrugName
	}
	if b, ok := baselines[ndc]; ok && b.DrugName != nil {
		return *b.DrugName
	}
	return ""
}

// coerce maps missing or non-numeric upstream values to 0 rather than
// letting them poison downstream sums.
func coerce(v *float64) float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return 0
	}
	return *v
}
