package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// Name collapses whitespace and trims the input, preserving case (payer
// names are matched exactly by the pbm filter). Returns nil if the input
// is nil or the result is empty.
func Name(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = multiSpace.ReplaceAllString(s, " ")
	return &s
}
