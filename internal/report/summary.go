package report

import (
	"strconv"

	"github.com/KaramelBytes/polittrack-cli/internal/analysis"
	"github.com/KaramelBytes/polittrack-cli/internal/graph"
)

// GroupsTable flattens group summaries into one row per group with
// sum, mean, max, mode and count columns for each summarized field.
func GroupsTable(groups []analysis.GroupSummary) Table {
	t := Table{Header: []string{"key", "size"}}
	for _, f := range analysis.MetricFields {
		for _, s := range []string{"sum", "mean", "max", "mode", "count"} {
			t.Header = append(t.Header, string(f)+"_"+s)
		}
	}
	for _, g := range groups {
		row := []string{g.Key, strconv.Itoa(g.Size)}
		for _, f := range analysis.MetricFields {
			m, ok := g.Metrics[f]
			if !ok {
				row = append(row, "", "", "", "", "0")
				continue
			}
			row = append(row, num(m.Sum), num(m.Mean), num(m.Max), num(m.Mode), strconv.Itoa(m.Count))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// ShareTable lists category counts.
func ShareTable(shares []analysis.CategoryCount) Table {
	t := Table{Header: []string{"value", "count"}}
	for _, s := range shares {
		t.Rows = append(t.Rows, []string{s.Value, strconv.Itoa(s.Count)})
	}
	return t
}

// TopDonorsTable lists the ranking with raw amounts.
func TopDonorsTable(ranks []analysis.DonorRank) Table {
	t := Table{Header: []string{"name", "top_donor", "donation_amount"}}
	for _, r := range ranks {
		t.Rows = append(t.Rows, []string{r.Name, r.TopDonor, num(r.Amount)})
	}
	return t
}

// EdgesTable lists graph edges with their weight in millions.
func EdgesTable(g *graph.Graph) Table {
	t := Table{Header: []string{"source", "target", "weight"}}
	for _, e := range g.Edges {
		t.Rows = append(t.Rows, []string{e.Source, e.Target, num(e.Weight)})
	}
	return t
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
