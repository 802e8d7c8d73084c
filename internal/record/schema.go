package record

import (
	"errors"
	"fmt"
)

// ErrSchema marks input that cannot be read as field-name to value mappings.
var ErrSchema = errors.New("schema error")

// SchemaError reports catastrophic malformation of an input table.
type SchemaError struct {
	Row    int // 1-based data row, 0 for the header
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("schema error: header: %s", e.Reason)
	}
	return fmt.Sprintf("schema error: row %d: %s", e.Row, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// Schema records which known fields the source table carried.
type Schema struct {
	present map[Field]bool
}

// NewSchema builds a schema from the given fields.
func NewSchema(fields ...Field) Schema {
	s := Schema{present: make(map[Field]bool, len(fields))}
	for _, f := range fields {
		s.present[f] = true
	}
	return s
}

// FullSchema has every known field.
func FullSchema() Schema { return NewSchema(Fields...) }

// Has reports whether the table carried column f.
func (s Schema) Has(f Field) bool { return s.present[f] }

// Missing lists known fields absent from the table, in canonical order.
func (s Schema) Missing() []Field {
	var out []Field
	for _, f := range Fields {
		if !s.present[f] {
			out = append(out, f)
		}
	}
	return out
}

// Present lists the known fields carried by the table, in canonical order.
func (s Schema) Present() []Field {
	var out []Field
	for _, f := range Fields {
		if s.present[f] {
			out = append(out, f)
		}
	}
	return out
}

// Intersect keeps only the fields both schemas carry.
func (s Schema) Intersect(o Schema) Schema {
	out := Schema{present: map[Field]bool{}}
	for f := range s.present {
		if o.present[f] {
			out.present[f] = true
		}
	}
	return out
}

func (s Schema) clone() Schema {
	out := Schema{present: make(map[Field]bool, len(s.present))}
	for f, ok := range s.present {
		out.present[f] = ok
	}
	return out
}
