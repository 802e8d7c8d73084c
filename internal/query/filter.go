package query

import (
	"strings"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

type predicate func(record.Record) bool

// Apply returns the records matching every active criterion, in their
// original order. A criterion on a column absent from the schema is
// skipped; a present column with an empty cell fails the criterion.
// Ill-formed ranges select nothing.
func Apply(set *record.Set, c Criteria) []record.Record {
	if set == nil || len(set.Records) == 0 || !c.Satisfiable() {
		return []record.Record{}
	}
	preds := predicates(set.Schema, c)
	out := make([]record.Record, 0, len(set.Records))
	for _, r := range set.Records {
		if matchAll(preds, r) {
			out = append(out, r)
		}
	}
	return out
}

// predicates orders the active checks from cheapest to most expensive:
// categorical equality, numeric ranges, then substring search.
func predicates(schema record.Schema, c Criteria) []predicate {
	var preds []predicate
	categorical := []struct {
		field record.Field
		want  string
	}{
		{record.FieldParty, c.Party},
		{record.FieldDonorType, c.DonorType},
		{record.FieldDistrict, c.District},
	}
	for _, cat := range categorical {
		if IsAll(cat.want) || !schema.Has(cat.field) {
			continue
		}
		preds = append(preds, equals(cat.field, cat.want))
	}
	if c.Years.Active() && schema.Has(record.FieldDonationYear) {
		preds = append(preds, within(record.FieldDonationYear, c.Years))
	}
	if c.DonationTotal.Active() && schema.Has(record.FieldDonationTotal) {
		preds = append(preds, within(record.FieldDonationTotal, c.DonationTotal))
	}
	if c.Name != "" && schema.Has(record.FieldName) {
		preds = append(preds, nameContains(c.Name, c.NameCaseInsensitive))
	}
	return preds
}

func equals(f record.Field, want string) predicate {
	if f == record.FieldDonorType {
		want = string(record.ParseDonorType(want))
	}
	return func(r record.Record) bool {
		v, ok := r.Text(f)
		return ok && v == want
	}
}

func within(f record.Field, rng Range) predicate {
	return func(r record.Record) bool {
		v, ok := r.Number(f)
		return ok && rng.Contains(v)
	}
}

func nameContains(sub string, foldCase bool) predicate {
	if foldCase {
		sub = strings.ToLower(sub)
	}
	return func(r record.Record) bool {
		name, ok := r.Name.Get()
		if !ok {
			return false
		}
		if foldCase {
			name = strings.ToLower(name)
		}
		return strings.Contains(name, sub)
	}
}

func matchAll(preds []predicate, r record.Record) bool {
	for _, p := range preds {
		if !p(r) {
			return false
		}
	}
	return true
}
