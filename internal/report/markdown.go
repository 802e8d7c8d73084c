package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/analysis"
	"github.com/KaramelBytes/polittrack-cli/internal/graph"
	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// QueryMarkdown renders a query result with its row and warning counts.
func QueryMarkdown(res query.Result, schema record.Schema) string {
	var b strings.Builder
	b.WriteString("[QUERY RESULT]\n")
	b.WriteString(fmt.Sprintf("Rows: %d\n", len(res.Rows)))
	b.WriteString(fmt.Sprintf("Warnings: %d\n", res.WarningsCount))
	if missing := schema.Missing(); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		b.WriteString(fmt.Sprintf("Missing columns: %s\n", strings.Join(names, ", ")))
	}
	if len(res.Rows) == 0 {
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(QueryTable(res, schema).Markdown())
	return b.String()
}

// GroupsMarkdown renders per-group summaries in group order.
func GroupsMarkdown(by record.Field, groups []analysis.GroupSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[GROUP-BY %s]\n", by))
	if len(groups) == 0 {
		b.WriteString("(no groups)\n")
		return b.String()
	}
	for _, g := range groups {
		b.WriteString(fmt.Sprintf("- %s (n=%d)\n", safeName(g.Key), g.Size))
		for _, f := range analysis.MetricFields {
			m, ok := g.Metrics[f]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("  • %s: sum %s, mean %s, max %s, mode %s (count %d)\n",
				f, fmtFloat(m.Sum), fmtFloat(m.Mean), fmtFloat(m.Max), fmtFloat(m.Mode), m.Count))
		}
	}
	return b.String()
}

// ShareMarkdown renders category counts with their percentage of the total.
func ShareMarkdown(by record.Field, shares []analysis.CategoryCount) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("[SHARE %s]\n", by))
	total := 0
	for _, s := range shares {
		total += s.Count
	}
	for _, s := range shares {
		b.WriteString(fmt.Sprintf("- %s: %d (%.1f%%)\n", safeName(s.Value), s.Count, pct(s.Count, total)))
	}
	return b.String()
}

// TopDonorsMarkdown renders the largest-donation ranking.
func TopDonorsMarkdown(ranks []analysis.DonorRank) string {
	t := Table{Header: []string{"#", "name", "top_donor", "donation_amount"}}
	for i, r := range ranks {
		t.Rows = append(t.Rows, []string{fmt.Sprint(i + 1), r.Name, r.TopDonor, Amount(r.Amount)})
	}
	return "[TOP DONORS]\n" + t.Markdown()
}

// GraphMarkdown renders node and edge tables of a relation graph.
func GraphMarkdown(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("[RELATION GRAPH]\n")
	b.WriteString(fmt.Sprintf("Relation: %s\nPolicy: %s\n", g.Relation, g.Policy))
	b.WriteString(fmt.Sprintf("Nodes: %d\nEdges: %d\n", len(g.Nodes), len(g.Edges)))
	if len(g.Nodes) == 0 {
		return b.String()
	}

	nodes := Table{Header: []string{"id", "category", "degree", "size", "x", "y"}}
	for _, n := range g.Nodes {
		nodes.Rows = append(nodes.Rows, []string{
			n.ID, string(n.Category), fmt.Sprint(n.Degree), fmtFloat(n.Size),
			fmt.Sprintf("%.3f", n.X), fmt.Sprintf("%.3f", n.Y),
		})
	}
	b.WriteString("\n[NODES]\n")
	b.WriteString(nodes.Markdown())

	if len(g.Edges) > 0 {
		edges := Table{Header: []string{"source", "target", "weight (M)"}}
		for _, e := range g.Edges {
			edges.Rows = append(edges.Rows, []string{e.Source, e.Target, fmtFloat(e.Weight)})
		}
		b.WriteString("\n[EDGES]\n")
		b.WriteString(edges.Markdown())
	}
	return b.String()
}

// ErrCandidateNotFound is returned when no row carries the requested name.
var ErrCandidateNotFound = errors.New("candidate not found")

// NoAnomaly is shown in place of an empty warning.
const NoAnomaly = "無異常"

// Candidate is the single-person summary of the export report.
type Candidate struct {
	Name              string                `json:"name" yaml:"name"`
	Party             record.Value[string]  `json:"party" yaml:"party"`
	DonationTotal     record.Value[float64] `json:"donation_total" yaml:"donation_total"`
	Assets2025        record.Value[float64] `json:"assets_2025" yaml:"assets_2025"`
	LegislationRecord record.Value[string]  `json:"legislation_record" yaml:"legislation_record"`
	Warning           string                `json:"warning" yaml:"warning"`
}

// FindCandidate picks the first flagged row whose name equals name.
func FindCandidate(rows []query.Row, name string) (Candidate, error) {
	name = strings.TrimSpace(name)
	for _, r := range rows {
		if n, ok := r.Name.Get(); !ok || n != name {
			continue
		}
		c := Candidate{
			Name:              name,
			Party:             r.Party,
			DonationTotal:     r.DonationTotal,
			Assets2025:        r.Assets2025,
			LegislationRecord: r.LegislationRecord,
			Warning:           r.Warning,
		}
		if c.Warning == "" {
			c.Warning = NoAnomaly
		}
		return c, nil
	}
	return Candidate{}, fmt.Errorf("%w: %q", ErrCandidateNotFound, name)
}

// Markdown renders the candidate report.
func (c Candidate) Markdown() string {
	var b strings.Builder
	b.WriteString("# Taiwan PoliTrack 個人報告\n\n")
	b.WriteString(fmt.Sprintf("- 姓名: %s\n", c.Name))
	b.WriteString(fmt.Sprintf("- 黨籍: %s\n", c.Party.Or("-")))
	b.WriteString(fmt.Sprintf("- 捐款總額: %s\n", amountOrDash(c.DonationTotal)))
	b.WriteString(fmt.Sprintf("- 財產 (2025): %s\n", amountOrDash(c.Assets2025)))
	b.WriteString(fmt.Sprintf("- 立法紀錄: %s\n", safeVal(c.LegislationRecord.Or("-"))))
	b.WriteString(fmt.Sprintf("- 警示: %s\n", c.Warning))
	return b.String()
}

func amountOrDash(v record.Value[float64]) string {
	x, ok := v.Get()
	if !ok {
		return "-"
	}
	return Amount(x) + " 元"
}
