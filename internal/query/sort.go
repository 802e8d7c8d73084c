package query

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// SortKey names the value rows are ordered by.
type SortKey string

const (
	SortNone           SortKey = "none"
	SortDonationTotal  SortKey = SortKey(record.FieldDonationTotal)
	SortDonationAmount SortKey = SortKey(record.FieldDonationAmount)
	SortDonationYear   SortKey = SortKey(record.FieldDonationYear)
	SortAssets2024     SortKey = SortKey(record.FieldAssets2024)
	SortAssets2025     SortKey = SortKey(record.FieldAssets2025)
	SortGrowthRate     SortKey = "growth_rate"
	SortProposalCount  SortKey = "proposal_count"
)

// SortKeys lists the supported keys.
var SortKeys = []SortKey{
	SortNone, SortDonationTotal, SortDonationAmount, SortDonationYear,
	SortAssets2024, SortAssets2025, SortGrowthRate, SortProposalCount,
}

// ErrUnknownSortKey is returned by ParseSortKey for unsupported keys.
var ErrUnknownSortKey = errors.New("unknown sort key")

// sortLabels maps the options of the public search form to keys.
var sortLabels = map[string]SortKey{
	"無排序":     SortNone,
	"捐款金額降序":  SortDonationTotal,
	"財產增長率降序": SortGrowthRate,
	"提案數降序":   SortProposalCount,
}

// ParseSortKey accepts a key name or a search-form label. Empty means none.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortNone, nil
	}
	if k, ok := sortLabels[s]; ok {
		return k, nil
	}
	k := SortKey(strings.ToLower(s))
	if slices.Contains(SortKeys, k) {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
}

// Needs reports which derived metrics ordering by k requires.
func (k SortKey) Needs() MetricSet {
	return MetricSet{GrowthRate: k == SortGrowthRate, ProposalCount: k == SortProposalCount}
}

// keyOf extracts the sort value of a row. Missing raw values and undefined
// or uncomputed metrics report false.
func keyOf(r Row, k SortKey) (float64, bool) {
	var m *Metric
	switch k {
	case SortGrowthRate:
		m = r.GrowthRate
	case SortProposalCount:
		m = r.ProposalCount
	default:
		v, ok := r.Number(record.Field(k))
		if !ok || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	}
	if m == nil || !m.Defined || math.IsNaN(m.Value) {
		return 0, false
	}
	return m.Value, true
}

// Sort returns a stably ordered copy of rows. Rows without a value for the
// key come after every row with one, whatever the direction. SortNone keeps
// the input order.
func Sort(rows []Row, k SortKey, descending bool) []Row {
	out := slices.Clone(rows)
	if k == SortNone || k == "" {
		return out
	}
	type keyed struct {
		v  float64
		ok bool
	}
	keys := make([]keyed, len(out))
	idx := make([]int, len(out))
	for i := range out {
		idx[i] = i
		v, ok := keyOf(out[i], k)
		keys[i] = keyed{v, ok}
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		ka, kb := keys[a], keys[b]
		switch {
		case !ka.ok && !kb.ok:
			return 0
		case !ka.ok:
			return 1
		case !kb.ok:
			return -1
		}
		c := cmpFloat(ka.v, kb.v)
		if descending {
			return -c
		}
		return c
	})
	sorted := make([]Row, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
