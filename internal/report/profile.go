package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/analysis"
)

// maxCorrPairs bounds the correlation pairs listed.
const maxCorrPairs = 10

// ProfileMarkdown renders a compact dataset profile.
func ProfileMarkdown(p *analysis.DatasetProfile) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if p.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", p.Name))
	}
	b.WriteString(fmt.Sprintf("Rows: %d\n", p.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d\n", len(p.Cols)))
	if len(p.Missing) > 0 {
		names := make([]string, len(p.Missing))
		for i, f := range p.Missing {
			names[i] = string(f)
		}
		b.WriteString(fmt.Sprintf("Absent columns: %s\n", strings.Join(names, ", ")))
	}
	b.WriteString("\n[SCHEMA]\n")
	for _, c := range p.Cols {
		b.WriteString(fmt.Sprintf("- %s: %s (non-null %d, missing %.1f%%)", c.Field, c.Kind, c.NonNull, pct(c.Missing, c.NonNull+c.Missing)))
		switch c.Kind {
		case "numeric":
			if c.NonNull == 0 {
				break
			}
			b.WriteString(fmt.Sprintf("; min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std))
			if c.OutlierThreshold > 0 {
				b.WriteString(fmt.Sprintf("; outliers: %d above |z|>%.1f", c.OutliersCount, c.OutlierThreshold))
				if c.OutliersMaxAbsZ > 0 {
					b.WriteString(fmt.Sprintf(" (max |z|≈%.2f)", c.OutliersMaxAbsZ))
				}
			}
		default:
			if len(c.TopValues) > 0 {
				b.WriteString("; top: ")
				for i, kv := range c.TopValues {
					if i > 0 {
						b.WriteString(", ")
					}
					b.WriteString(fmt.Sprintf("%s(%d)", safeVal(truncate(kv.Value)), kv.Count))
				}
				if c.Unique > len(c.TopValues) {
					b.WriteString(fmt.Sprintf("; unique=%d", c.Unique))
				}
			}
		}
		b.WriteString("\n")
	}
	if len(p.Corr) > 0 {
		b.WriteString("\n[CORRELATIONS]\n")
		for _, c := range p.Corr[:min(maxCorrPairs, len(p.Corr))] {
			b.WriteString(fmt.Sprintf("- %s ~ %s: r=%.3f (n=%d)\n", c.A, c.B, c.R, c.N))
		}
	}
	return b.String()
}
