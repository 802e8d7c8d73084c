// Package report renders query results, summaries and graphs as Markdown
// and CSV for the command line.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/record"
	"github.com/KaramelBytes/polittrack-cli/internal/source"
)

// Extra column names appended after the record fields.
const (
	ColumnGrowthRate    = "growth_rate"
	ColumnProposalCount = "proposal_count"
	ColumnWarning       = "warning"
)

// maxCell bounds the width of a Markdown cell.
const maxCell = 80

var printer = message.NewPrinter(language.English)

// Table is a rectangular rendering of annotated rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// QueryTable lays out the rows of a query result. Columns are the record
// fields present in schema, followed by any derived metric that was
// computed and the warning column.
func QueryTable(res query.Result, schema record.Schema) Table {
	fields := schema.Present()
	var growth, proposals bool
	for _, r := range res.Rows {
		growth = growth || r.GrowthRate != nil
		proposals = proposals || r.ProposalCount != nil
	}

	t := Table{}
	for _, f := range fields {
		t.Header = append(t.Header, string(f))
	}
	if growth {
		t.Header = append(t.Header, ColumnGrowthRate)
	}
	if proposals {
		t.Header = append(t.Header, ColumnProposalCount)
	}
	t.Header = append(t.Header, ColumnWarning)

	t.Rows = make([][]string, 0, len(res.Rows))
	for _, r := range res.Rows {
		row := make([]string, 0, len(t.Header))
		for _, f := range fields {
			row = append(row, cell(r.Record, f))
		}
		if growth {
			row = append(row, metricCell(r.GrowthRate))
		}
		if proposals {
			row = append(row, metricCell(r.ProposalCount))
		}
		row = append(row, r.Warning)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// WriteCSV writes the table as UTF-8 CSV with a byte order mark.
func (t Table) WriteCSV(w io.Writer) error {
	return source.WriteCSV(w, t.Header, t.Rows)
}

// Markdown renders the table as a GitHub-flavoured pipe table.
func (t Table) Markdown() string {
	var b strings.Builder
	writeRow(&b, t.Header, safeName)
	sep := make([]string, len(t.Header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep, func(s string) string { return s })
	for _, row := range t.Rows {
		writeRow(&b, row, func(s string) string { return safeVal(truncate(s)) })
	}
	return b.String()
}

func writeRow(b *strings.Builder, cols []string, esc func(string) string) {
	b.WriteString("| ")
	for i, c := range cols {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(esc(c))
	}
	b.WriteString(" |\n")
}

func cell(r record.Record, f record.Field) string {
	if f == record.FieldDonationYear {
		if y, ok := r.DonationYear.Get(); ok {
			return strconv.Itoa(y)
		}
		return ""
	}
	if record.IsNumeric(f) {
		if v, ok := r.Number(f); ok {
			return num(v)
		}
		return ""
	}
	s, _ := r.Text(f)
	return s
}

func metricCell(m *query.Metric) string {
	if m == nil || !m.Defined {
		return ""
	}
	return num(m.Value)
}

// Amount formats a currency value with thousands separators.
func Amount(v float64) string {
	return printer.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) > maxCell {
		return string(r[:maxCell-3]) + "..."
	}
	return s
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}

func fmtFloat(v float64) string { return fmt.Sprintf("%.4g", v) }
