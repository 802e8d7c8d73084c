package query

import (
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

const (
	// AnomalyThreshold is the single-donor amount above which a row is a candidate.
	AnomalyThreshold = 10_000_000
	// CorporateDonorMarker marks a corporate top donor.
	CorporateDonorMarker = "企業"
	// BillMarker marks an association with a bill.
	BillMarker = "法案"
	// AnomalyWarning is the fixed message attached to flagged rows.
	AnomalyWarning = "⚠️ 異常捐款警示：金額高且議題高度相關"
)

// Flag returns AnomalyWarning when the amount from the top donor exceeds
// AnomalyThreshold, the top donor is a company and the association names a
// bill. Any other record gets "". Missing values count as 0 and "".
func Flag(r record.Record) string {
	if r.DonationAmount.Or(0) > AnomalyThreshold &&
		strings.Contains(r.TopDonor.Or(""), CorporateDonorMarker) &&
		strings.Contains(r.Association.Or(""), BillMarker) {
		return AnomalyWarning
	}
	return ""
}

// FlagRows sets Warning on every row and returns how many were flagged.
func FlagRows(rows []Row) int {
	n := 0
	for i := range rows {
		rows[i].Warning = Flag(rows[i].Record)
		if rows[i].Warning != "" {
			n++
		}
	}
	return n
}
