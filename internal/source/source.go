// Package source reads tabular record sources (CSV, TSV, XLSX) into record sets.
package source

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/polittrack-cli/internal/record"
)

// Reader reads one tabular file format.
type Reader interface {
	CanRead(path string) bool
	Read(path string, opt Options) (*record.Table, error)
}

// Options tune how a file is read.
type Options struct {
	// Delimiter for CSV. If 0, chosen by file extension.
	Delimiter rune
	// SheetName selects an XLSX sheet by name; SheetIndex (1-based) is used otherwise.
	SheetName  string
	SheetIndex int
}

var registry []Reader

// Register adds a reader implementation to the registry.
func Register(r Reader) {
	registry = append(registry, r)
}

// ErrUnsupported indicates a file format no registered reader accepts.
var ErrUnsupported = errors.New("unsupported data format")

// ReadTable selects a reader by file name and returns the raw table.
func ReadTable(path string, opt Options) (*record.Table, error) {
	for _, r := range registry {
		if r.CanRead(path) {
			return r.Read(path, opt)
		}
	}
	return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrUnsupported)
}

// LoadFile reads and validates a single data file.
func LoadFile(path string, opt Options) (*record.Set, error) {
	t, err := ReadTable(path, opt)
	if err != nil {
		return nil, err
	}
	set, err := record.Load(t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return set, nil
}

// LoadAll reads the given files concurrently and concatenates them in
// argument order. A field belongs to the merged schema only when every file
// carries it.
func LoadAll(ctx context.Context, paths []string, opt Options) (*record.Set, error) {
	if len(paths) == 0 {
		return nil, errors.New("no data files given")
	}
	sets := make([]*record.Set, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := LoadFile(p, opt)
			if err != nil {
				return err
			}
			sets[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return Merge(sets...), nil
}

// Merge concatenates record sets, intersecting their schemas.
func Merge(sets ...*record.Set) *record.Set {
	if len(sets) == 0 {
		return &record.Set{}
	}
	out := sets[0].Clone()
	for _, s := range sets[1:] {
		out.Schema = out.Schema.Intersect(s.Schema)
		out.Records = append(out.Records, s.Records...)
	}
	return out
}

func init() {
	Register(csvReader{})
	Register(xlsxReader{})
}
