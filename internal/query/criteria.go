// Package query implements the filter, derive, sort and flag stages of a
// query cycle over a loaded record set.
package query

import (
	"math"
	"strings"
)

// All is the categorical sentinel meaning "no constraint". The empty string
// means the same.
const All = "all"

// allLabels are accepted spellings of All, including the label of the
// published data portal.
var allLabels = map[string]bool{"": true, All: true, "全部": true}

// IsAll reports whether a categorical criterion value means "no constraint".
func IsAll(v string) bool {
	return allLabels[strings.ToLower(strings.TrimSpace(v))]
}

// Range is an inclusive numeric bound. Infinite bounds leave that side open.
type Range struct {
	Min float64
	Max float64
}

// AnyRange places no constraint.
func AnyRange() Range { return Range{Min: math.Inf(-1), Max: math.Inf(1)} }

// Between is a closed range [lo, hi].
func Between(lo, hi float64) Range { return Range{Min: lo, Max: hi} }

// Active reports whether the range constrains anything.
func (r Range) Active() bool {
	return !(math.IsInf(r.Min, -1) && math.IsInf(r.Max, 1))
}

// Valid reports whether Min <= Max. An invalid range selects nothing.
func (r Range) Valid() bool {
	return !math.IsNaN(r.Min) && !math.IsNaN(r.Max) && r.Min <= r.Max
}

// Contains reports whether x lies within the bounds, inclusive.
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x <= r.Max
}

// Criteria is the filter configuration of one query. It is a value: build a
// fresh one per query.
type Criteria struct {
	// Name selects records whose name contains it. Empty means no constraint.
	Name string
	// NameCaseInsensitive folds case before the containment test.
	NameCaseInsensitive bool

	Party     string
	DonorType string
	District  string

	Years         Range
	DonationTotal Range
}

// NoConstraints selects every record.
func NoConstraints() Criteria {
	return Criteria{
		Party:         All,
		DonorType:     All,
		District:      All,
		Years:         AnyRange(),
		DonationTotal: AnyRange(),
	}
}

// DefaultCriteria mirrors the defaults of the public search form: every
// category, years 2020-2025, totals between 0 and one billion.
func DefaultCriteria() Criteria {
	c := NoConstraints()
	c.Years = Between(2020, 2025)
	c.DonationTotal = Between(0, 1e9)
	return c
}

// Satisfiable reports whether every range is well formed.
func (c Criteria) Satisfiable() bool {
	return c.Years.Valid() && c.DonationTotal.Valid()
}
