package record

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// Table is a raw header-plus-rows view of a tabular source.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Load validates the table shape and converts rows into typed records.
// Known columns missing from the header are recorded in the schema and read
// as absent values; unknown columns are ignored. Only a table that cannot be
// read as name->value mappings fails, with a *SchemaError.
func Load(t *Table) (*Set, error) {
	if t == nil || len(t.Columns) == 0 {
		return nil, &SchemaError{Reason: "no columns"}
	}
	index := make(map[Field]int)
	seen := make(map[string]bool, len(t.Columns))
	for i, raw := range t.Columns {
		name := strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		if name == "" {
			return nil, &SchemaError{Reason: fmt.Sprintf("column %d has no name", i+1)}
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, &SchemaError{Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[key] = true
		if f, ok := ParseField(name); ok {
			index[f] = i
		}
	}

	set := &Set{Schema: Schema{present: make(map[Field]bool, len(index))}}
	for f := range index {
		set.Schema.present[f] = true
	}
	set.Records = make([]Record, 0, len(t.Rows))
	ncol := len(t.Columns)
	for n, row := range t.Rows {
		if len(row) > ncol {
			return nil, &SchemaError{Row: n + 1, Reason: fmt.Sprintf("%d cells for %d columns", len(row), ncol)}
		}
		set.Records = append(set.Records, parseRow(row, index))
	}
	return set, nil
}

func parseRow(row []string, index map[Field]int) Record {
	cell := func(f Field) string {
		i, ok := index[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	var r Record
	r.Name = text(cell(FieldName))
	r.Party = text(cell(FieldParty))
	if v := cell(FieldDonorType); v != "" {
		r.DonorType = Some(ParseDonorType(v))
	}
	r.DonationYear = year(cell(FieldDonationYear))
	r.DonationTotal = number(cell(FieldDonationTotal))
	r.DonationAmount = number(cell(FieldDonationAmount))
	r.TopDonor = text(cell(FieldTopDonor))
	r.Association = text(cell(FieldAssociation))
	r.District = text(cell(FieldDistrict))
	r.Assets2024 = number(cell(FieldAssets2024))
	r.Assets2025 = number(cell(FieldAssets2025))
	r.LegislationRecord = text(cell(FieldLegislationRecord))
	return r
}

func text(s string) Value[string] {
	if s == "" {
		return Value[string]{}
	}
	return Some(s)
}

func number(s string) Value[float64] {
	if x, ok := ParseAmount(s); ok {
		return Some(x)
	}
	return Value[float64]{}
}

func year(s string) Value[int] {
	x, ok := ParseAmount(s)
	if !ok || x != math.Trunc(x) || math.Abs(x) > math.MaxInt32 {
		return Value[int]{}
	}
	return Some(int(x))
}

// ParseAmount parses a money or count cell. Thousands separators, NT$ and 元
// decorations, full-width digits and non-breaking spaces are tolerated.
// Non-finite values are rejected.
func ParseAmount(s string) (float64, bool) {
	raw := strings.ReplaceAll(width.Narrow.String(strings.TrimSpace(s)), "\u00a0", " ")
	raw = strings.TrimPrefix(raw, "NT$")
	raw = strings.TrimPrefix(raw, "$")
	raw = strings.TrimSuffix(raw, "元")
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, " ", "")
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
