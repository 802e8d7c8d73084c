// Package record defines the political-finance row model and turns raw tables
// into typed, schema-aware record sets.
package record

import (
	"encoding/json"
	"strings"
)

// Field names a column of the source table.
type Field string

const (
	FieldName              Field = "name"
	FieldParty             Field = "party"
	FieldDonorType         Field = "donor_type"
	FieldDonationYear      Field = "donation_year"
	FieldDonationTotal     Field = "donation_total"
	FieldDonationAmount    Field = "donation_amount"
	FieldTopDonor          Field = "top_donor"
	FieldAssociation       Field = "association"
	FieldDistrict          Field = "district"
	FieldAssets2024        Field = "assets_2024"
	FieldAssets2025        Field = "assets_2025"
	FieldLegislationRecord Field = "legislation_record"
)

// Fields lists every known column in canonical table order.
var Fields = []Field{
	FieldName, FieldParty, FieldDonorType, FieldDonationYear, FieldDonationTotal,
	FieldDonationAmount, FieldTopDonor, FieldAssociation, FieldDistrict,
	FieldAssets2024, FieldAssets2025, FieldLegislationRecord,
}

// ParseField resolves a column name, ignoring case and surrounding spaces.
func ParseField(s string) (Field, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, f := range Fields {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Value is an optional cell value. OK is false when the column is absent
// from the table or the cell is empty or unparseable.
type Value[T any] struct {
	V  T
	OK bool
}

// Some wraps a present value.
func Some[T any](v T) Value[T] { return Value[T]{V: v, OK: true} }

// Get returns the value and whether it is present.
func (v Value[T]) Get() (T, bool) { return v.V, v.OK }

// Or returns the value, or def when it is absent.
func (v Value[T]) Or(def T) T {
	if !v.OK {
		return def
	}
	return v.V
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.OK {
		return []byte("null"), nil
	}
	return json.Marshal(v.V)
}

// MarshalYAML renders an absent value as null.
func (v Value[T]) MarshalYAML() (any, error) {
	if !v.OK {
		return nil, nil
	}
	return v.V, nil
}

// DonorType is the kind of the top donor behind a record.
type DonorType string

const (
	DonorCorporate  DonorType = "corporate"
	DonorIndividual DonorType = "individual"
	DonorGroup      DonorType = "group"
)

// ParseDonorType maps both the published Chinese labels and the English
// names onto the canonical values. Unknown labels are kept verbatim.
func ParseDonorType(s string) DonorType {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "企業", "corporate":
		return DonorCorporate
	case "個人", "individual":
		return DonorIndividual
	case "團體", "group":
		return DonorGroup
	}
	return DonorType(s)
}

// Record is one candidate row of disclosed political-finance data.
type Record struct {
	Name              Value[string]    `json:"name" yaml:"name"`
	Party             Value[string]    `json:"party" yaml:"party"`
	DonorType         Value[DonorType] `json:"donor_type" yaml:"donor_type"`
	DonationYear      Value[int]       `json:"donation_year" yaml:"donation_year"`
	DonationTotal     Value[float64]   `json:"donation_total" yaml:"donation_total"`
	DonationAmount    Value[float64]   `json:"donation_amount" yaml:"donation_amount"`
	TopDonor          Value[string]    `json:"top_donor" yaml:"top_donor"`
	Association       Value[string]    `json:"association" yaml:"association"`
	District          Value[string]    `json:"district" yaml:"district"`
	Assets2024        Value[float64]   `json:"assets_2024" yaml:"assets_2024"`
	Assets2025        Value[float64]   `json:"assets_2025" yaml:"assets_2025"`
	LegislationRecord Value[string]    `json:"legislation_record" yaml:"legislation_record"`
}

// Text returns the string form of a categorical or free-text field.
// Numeric fields and absent values report false.
func (r Record) Text(f Field) (string, bool) {
	switch f {
	case FieldName:
		return r.Name.Get()
	case FieldParty:
		return r.Party.Get()
	case FieldDonorType:
		v, ok := r.DonorType.Get()
		return string(v), ok
	case FieldTopDonor:
		return r.TopDonor.Get()
	case FieldAssociation:
		return r.Association.Get()
	case FieldDistrict:
		return r.District.Get()
	case FieldLegislationRecord:
		return r.LegislationRecord.Get()
	}
	return "", false
}

// Number returns a numeric field as float64. Text fields report false.
func (r Record) Number(f Field) (float64, bool) {
	switch f {
	case FieldDonationYear:
		v, ok := r.DonationYear.Get()
		return float64(v), ok
	case FieldDonationTotal:
		return r.DonationTotal.Get()
	case FieldDonationAmount:
		return r.DonationAmount.Get()
	case FieldAssets2024:
		return r.Assets2024.Get()
	case FieldAssets2025:
		return r.Assets2025.Get()
	}
	return 0, false
}

// IsNumeric reports whether f holds a number.
func IsNumeric(f Field) bool {
	switch f {
	case FieldDonationYear, FieldDonationTotal, FieldDonationAmount, FieldAssets2024, FieldAssets2025:
		return true
	}
	return false
}

// Set is a loaded table: the typed records plus the schema they came from.
// Stages never modify a Set; they copy.
type Set struct {
	Schema  Schema
	Records []Record
}

// Len returns the number of records.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}

// Clone returns a copy whose record slice can be changed freely.
func (s *Set) Clone() *Set {
	if s == nil {
		return &Set{}
	}
	out := &Set{Schema: s.Schema.clone(), Records: make([]Record, len(s.Records))}
	copy(out.Records, s.Records)
	return out
}
