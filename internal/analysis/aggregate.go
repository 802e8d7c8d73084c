// Package analysis computes per-group summaries and rankings over query results.
package analysis

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// ErrUnsupportedField is returned when grouping by a field that is not categorical.
var ErrUnsupportedField = errors.New("unsupported group-by field")

// GroupFields lists the fields Aggregate can group by.
var GroupFields = []record.Field{
	record.FieldParty, record.FieldDonorType, record.FieldDistrict, record.FieldDonationYear,
	record.FieldTopDonor, record.FieldName, record.FieldAssociation,
}

// MetricFields are summarized within every group.
var MetricFields = []record.Field{
	record.FieldDonationTotal, record.FieldDonationAmount, record.FieldDonationYear,
}

// Stat summarizes the defined values of one numeric field within a group.
type Stat struct {
	Count int     `json:"count" yaml:"count"`
	Sum   float64 `json:"sum" yaml:"sum"`
	Mean  float64 `json:"mean" yaml:"mean"`
	Max   float64 `json:"max" yaml:"max"`
	Mode  float64 `json:"mode" yaml:"mode"`
}

// GroupSummary captures aggregated metrics for one group key.
type GroupSummary struct {
	Key     string                `json:"key" yaml:"key"`
	Size    int                   `json:"size" yaml:"size"`
	Metrics map[record.Field]Stat `json:"metrics" yaml:"metrics"`
}

// Aggregate groups records by a categorical field and summarizes the
// donation fields of each group. Records without a value for the field are
// left out, so grouping by a column the table lacks yields no groups.
// Groups are ordered by key, numerically when both keys are numbers.
func Aggregate(records []record.Record, by record.Field) ([]GroupSummary, error) {
	if !slices.Contains(GroupFields, by) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedField, by)
	}
	type gAcc struct {
		size   int
		values map[record.Field][]float64
	}
	groups := map[string]*gAcc{}
	for _, r := range records {
		key, ok := groupKey(r, by)
		if !ok {
			continue
		}
		ga := groups[key]
		if ga == nil {
			ga = &gAcc{values: map[record.Field][]float64{}}
			groups[key] = ga
		}
		ga.size++
		for _, f := range MetricFields {
			if v, ok := r.Number(f); ok {
				ga.values[f] = append(ga.values[f], v)
			}
		}
	}

	out := make([]GroupSummary, 0, len(groups))
	for key, ga := range groups {
		gs := GroupSummary{Key: key, Size: ga.size, Metrics: map[record.Field]Stat{}}
		for _, f := range MetricFields {
			if vals := ga.values[f]; len(vals) > 0 {
				gs.Metrics[f] = summarize(vals)
			}
		}
		out = append(out, gs)
	}
	slices.SortFunc(out, func(a, b GroupSummary) int { return compareKeys(a.Key, b.Key) })
	return out, nil
}

func groupKey(r record.Record, by record.Field) (string, bool) {
	if by == record.FieldDonationYear {
		y, ok := r.DonationYear.Get()
		return strconv.Itoa(y), ok
	}
	return r.Text(by)
}

// summarize computes count, sum, mean, max and mode of vals. The mode is
// the most frequent value; on a tie the one seen first wins.
func summarize(vals []float64) Stat {
	s := Stat{Count: len(vals), Max: vals[0]}
	counts := map[float64]int{}
	var order []float64
	for _, v := range vals {
		s.Sum += v
		if v > s.Max {
			s.Max = v
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}
	s.Mean = s.Sum / float64(s.Count)
	best := 0
	for _, v := range order {
		if counts[v] > best {
			best = counts[v]
			s.Mode = v
		}
	}
	return s
}

func compareKeys(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil && fa != fb {
		if fa < fb {
			return -1
		}
		return 1
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// CategoryCount is the number of records carrying one categorical value.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// Share counts records per value of a categorical field, most frequent
// first; ties keep first-appearance order.
func Share(records []record.Record, by record.Field) []CategoryCount {
	idx := map[string]int{}
	var out []CategoryCount
	for _, r := range records {
		v, ok := groupKey(r, by)
		if !ok {
			continue
		}
		i, seen := idx[v]
		if !seen {
			i = len(out)
			idx[v] = i
			out = append(out, CategoryCount{Value: v})
		}
		out[i].Count++
	}
	slices.SortStableFunc(out, func(a, b CategoryCount) int { return b.Count - a.Count })
	return out
}

// DonorTypeShare is Share over donor_type.
func DonorTypeShare(records []record.Record) []CategoryCount {
	return Share(records, record.FieldDonorType)
}

// DefaultTopDonors is the length of the largest-donation ranking.
const DefaultTopDonors = 15

// DonorRank is one entry of the largest-donation ranking.
type DonorRank struct {
	Name     string  `json:"name" yaml:"name"`
	TopDonor string  `json:"top_donor" yaml:"top_donor"`
	Amount   float64 `json:"donation_amount" yaml:"donation_amount"`
}

// TopDonors ranks records by the amount from their top donor, largest
// first, keeping record order on ties. Records without an amount are left
// out. limit <= 0 uses DefaultTopDonors.
func TopDonors(records []record.Record, limit int) []DonorRank {
	if limit <= 0 {
		limit = DefaultTopDonors
	}
	rows := query.Sort(query.Derive(records, query.MetricSet{}), query.SortDonationAmount, true)
	out := make([]DonorRank, 0, min(limit, len(rows)))
	for _, r := range rows {
		amt, ok := r.DonationAmount.Get()
		if !ok || len(out) == limit {
			break
		}
		out = append(out, DonorRank{Name: r.Name.V, TopDonor: r.TopDonor.V, Amount: amt})
	}
	return out
}
