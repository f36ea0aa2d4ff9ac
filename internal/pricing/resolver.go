// Package pricing resolves the per-unit reference price for a drug from
// the baseline (AAC) and wholesale (WAC) reference tables.
package pricing

import (
	"math"
	"strings"

	"github.com/gyeh/rxrecon/internal/model"
)

// brandDiscount applies to brand drugs (generic_indicator == "N") when
// computing a unit price from the wholesale rate. Fixed business
// constant.
const brandDiscount = 0.96

// Price is a resolved per-unit reference price. Resolved is false when
// neither table yields a usable price, in which case Method is
// MethodOther and UnitPrice is meaningless.
type Price struct {
	UnitPrice float64
	Method    model.PricingMethod
	Resolved  bool
}

// Resolve picks the reference unit price for an NDC with strict
// precedence: a baseline row with a positive finite AAC always wins;
// otherwise a wholesale row with positive finite wac, pkg_size, and
// pkg_size_mult yields the computed WAC unit price. There is no
// blending between the two tables.
func Resolve(ndc string, baselines map[string]model.BaselinePrice, wholesales map[string]model.WholesalePrice) Price {
	if ndc == "" {
		return Price{Method: model.MethodOther}
	}

	if b, ok := baselines[ndc]; ok && positive(b.AAC) {
		return Price{UnitPrice: *b.AAC, Method: model.MethodAAC, Resolved: true}
	}

	w, ok := wholesales[ndc]
	if !ok || !positive(w.WAC) || !positive(w.PkgSize) || !positive(w.PkgSizeMult) {
		return Price{Method: model.MethodOther}
	}

	denom := *w.PkgSize * *w.PkgSizeMult
	unit := *w.WAC / denom
	if isBrand(w.GenericIndicator) {
		unit = brandDiscount * *w.WAC / denom
	}
	return Price{UnitPrice: unit, Method: model.MethodWAC, Resolved: true}
}

// isBrand treats only an indicator of "N" (case-insensitive, trimmed) as
// brand; anything else, including absent, is generic.
func isBrand(indicator *string) bool {
	if indicator == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(*indicator), "N")
}

func positive(v *float64) bool {
	if v == nil {
		return false
	}
	return !math.IsNaN(*v) && !math.IsInf(*v, 0) && *v > 0
}
