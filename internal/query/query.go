package query

import "github.com/KaramelBytes/polittrack-cli/internal/record"

// Options are the request-scoped parameters of a query besides its criteria.
type Options struct {
	SortKey    SortKey
	Descending bool
	// Metrics asks for derived metrics beyond what the sort key needs.
	Metrics MetricSet
}

// Result is the annotated, ordered outcome of a query cycle.
type Result struct {
	Rows          []Row `json:"rows" yaml:"rows"`
	WarningsCount int   `json:"warnings_count" yaml:"warnings_count"`
}

// Run executes filter, derive, sort and flag over set. It has no side
// effects; an empty result is a valid outcome.
func Run(set *record.Set, c Criteria, opt Options) Result {
	filtered := Apply(set, c)
	need := opt.SortKey.Needs()
	want := MetricSet{
		GrowthRate:    need.GrowthRate || opt.Metrics.GrowthRate,
		ProposalCount: need.ProposalCount || opt.Metrics.ProposalCount,
	}
	rows := Sort(Derive(filtered, want), opt.SortKey, opt.Descending)
	n := FlagRows(rows)
	return Result{Rows: rows, WarningsCount: n}
}

// Records strips the annotations, returning the underlying records in order.
func (r Result) Records() []record.Record {
	out := make([]record.Record, len(r.Rows))
	for i, row := range r.Rows {
		out[i] = row.Record
	}
	return out
}
