package query

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/text/width"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// Metric is a derived numeric value. Defined is false for the "undefined"
// sentinel: division by zero, missing inputs, or nothing to extract.
type Metric struct {
	Value   float64
	Defined bool
}

// Undefined is the sentinel for a metric that has no value.
var Undefined = Metric{}

func defined(v float64) Metric { return Metric{Value: v, Defined: true} }

func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// MarshalYAML renders the undefined sentinel as null.
func (m Metric) MarshalYAML() (any, error) {
	if !m.Defined {
		return nil, nil
	}
	return m.Value, nil
}

// GrowthRate is the percentage change from assets_2024 to assets_2025.
func GrowthRate(r record.Record) Metric {
	before, ok1 := r.Assets2024.Get()
	after, ok2 := r.Assets2025.Get()
	if !ok1 || !ok2 || before == 0 {
		return Undefined
	}
	g := (after - before) / before * 100
	if math.IsNaN(g) || math.IsInf(g, 0) {
		return Undefined
	}
	return defined(g)
}

// ProposalCount is the first number embedded in the legislation record.
func ProposalCount(r record.Record) Metric {
	n, ok := ExtractCount(r.LegislationRecord.V)
	if !r.LegislationRecord.OK || !ok {
		return Undefined
	}
	return defined(float64(n))
}

var digitRun = regexp.MustCompile(`[0-9０-９]+`)

// ExtractCount returns the first maximal run of decimal digits in text as a
// non-negative integer. Full-width digits are accepted. Text without digits,
// or a run too long to fit an int, reports false.
func ExtractCount(text string) (int, bool) {
	run := digitRun.FindString(text)
	if run == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(width.Narrow.String(run), 10, 0)
	if err != nil {
		return 0, false
	}
	return int(n), true
}

// MetricSet selects which derived metrics a query computes.
type MetricSet struct {
	GrowthRate    bool
	ProposalCount bool
}

// Row is a record annotated with derived values. A nil metric was not
// requested; Warning is always set, empty when the row is not flagged.
type Row struct {
	record.Record `yaml:",inline"`
	GrowthRate    *Metric `json:"growth_rate,omitempty" yaml:"growth_rate,omitempty"`
	ProposalCount *Metric `json:"proposal_count,omitempty" yaml:"proposal_count,omitempty"`
	Warning       string  `json:"warning" yaml:"warning"`
}

// Derive annotates each record with the requested metrics. It copies; the
// input slice is left untouched.
func Derive(records []record.Record, want MetricSet) []Row {
	rows := make([]Row, len(records))
	for i, r := range records {
		rows[i] = Row{Record: r}
		if want.GrowthRate {
			m := GrowthRate(r)
			rows[i].GrowthRate = &m
		}
		if want.ProposalCount {
			m := ProposalCount(r)
			rows[i].ProposalCount = &m
		}
	}
	return rows
}
