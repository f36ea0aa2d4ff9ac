package model

// KPIReport is the aggregate produced by folding the evaluated-claim
// stream. Scripts* counts are taken before derived filters apply,
// Scripts*Filtered after; every figure counts only claims with a
// resolved reference price.
type KPIReport struct {
	ScriptsAll                int     `json:"scriptsAll"`
	ScriptsCommercial         int     `json:"scriptsCommercial"`
	ScriptsAllFiltered        int     `json:"scriptsAllFiltered"`
	ScriptsCommercialFiltered int     `json:"scriptsCommercialFiltered"`
	UnderpaidAllAbs           float64 `json:"underpaidAllAbs"`
	UnderpaidCommercialAbs    float64 `json:"underpaidCommercialAbs"`
	OwedNetAll                float64 `json:"owedNetAll"`
	OwedNetCommercial         float64 `json:"owedNetCommercial"`
	UpdatedDifferenceTotal    float64 `json:"updatedDifferenceTotal"`
}
