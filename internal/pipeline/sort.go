package pipeline

import (
	"sort"
	"time"

	"github.com/gyeh/rxrecon/internal/model"
)

// sortClaims orders the filtered collection by the requested key with a
// stable ascending script tie-break, so repeated queries paginate
// identically. Nil dates and nil optional fields compare greater.
func sortClaims(claims []model.EvaluatedClaim, key, dir string) {
	desc := dir == "desc"
	sort.SliceStable(claims, func(i, j int) bool {
		a, b := &claims[i], &claims[j]
		c := compareBy(key, a, b)
		if c == 0 {
			return a.Script < b.Script
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func compareBy(key string, a, b *model.EvaluatedClaim) int {
	switch key {
	case "script":
		return compareString(a.Script, b.Script)
	case "drug_ndc":
		return compareString(a.NDC, b.NDC)
	case "drug_name":
		return compareString(a.DrugName, b.DrugName)
	case "bin":
		return compareString(deref(a.Bin), deref(b.Bin))
	case "qty":
		return compareFloat(a.Qty, b.Qty)
	case "total_paid":
		return compareFloat(a.Paid, b.Paid)
	case "new_paid":
		return compareOptFloat(a.NewPaid, b.NewPaid)
	case "owed":
		return compareFloat(a.Owed, b.Owed)
	case "expected":
		return compareFloat(a.Expected, b.Expected)
	default: // date_dispensed
		return compareDate(a.Date, b.Date)
	}
}

func compareString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareOptFloat(a, b *float64) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}
	return compareFloat(*a, *b)
}

func compareDate(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	case a.Before(*b):
		return -1
	case a.After(*b):
		return 1
	}
	return 0
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
