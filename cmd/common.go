package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/record"
	"github.com/KaramelBytes/polittrack-cli/internal/report"
	"github.com/KaramelBytes/polittrack-cli/internal/source"
	"github.com/KaramelBytes/polittrack-cli/internal/utils"
)

// loadRecords reads every configured data file into one record set.
func loadRecords(ctx context.Context) (*record.Set, error) {
	c := effectiveConfig()
	if len(c.DataFiles) == 0 {
		return nil, fmt.Errorf("no data files configured (use --data or `polittrack config set data_files <path>`)")
	}
	set, err := source.LoadAll(ctx, c.DataFiles, source.Options{SheetName: c.SheetName, SheetIndex: c.SheetIndex})
	if err != nil {
		return nil, err
	}
	fields := func(fs []record.Field) []string {
		out := make([]string, len(fs))
		for i, f := range fs {
			out[i] = string(f)
		}
		return out
	}
	logger.Info("records loaded",
		zap.Int("files", len(c.DataFiles)),
		zap.Int("records", set.Len()),
		zap.Strings("missing_columns", fields(set.Schema.Missing())))
	return set, nil
}

// filterFlags are the request-scoped query parameters shared by the
// commands that run a query cycle.
type filterFlags struct {
	name       string
	party      string
	donorType  string
	district   string
	yearMin    int
	yearMax    int
	totalMin   float64
	totalMax   float64
	ignoreCase bool
	defaults   bool
	sortBy     string
	ascending  bool
	metrics    bool
}

func (f *filterFlags) bind(cmd *cobra.Command, withSort bool) {
	fl := cmd.Flags()
	fl.StringVar(&f.name, "name", "", "select names containing this text")
	fl.StringVar(&f.party, "party", query.All, "party to select (all = no constraint)")
	fl.StringVar(&f.donorType, "donor-type", query.All, "donor type: corporate | individual | group | 企業 | 個人 | 團體 | all")
	fl.StringVar(&f.district, "district", query.All, "district to select (all = no constraint)")
	fl.IntVar(&f.yearMin, "year-min", 0, "earliest donation year (inclusive)")
	fl.IntVar(&f.yearMax, "year-max", 0, "latest donation year (inclusive)")
	fl.Float64Var(&f.totalMin, "total-min", 0, "minimum donation total (inclusive)")
	fl.Float64Var(&f.totalMax, "total-max", 0, "maximum donation total (inclusive)")
	fl.BoolVarP(&f.ignoreCase, "ignore-case", "i", false, "match --name case-insensitively (overrides name_case_insensitive)")
	fl.BoolVar(&f.defaults, "form-defaults", false, "start from the search form defaults: years 2020-2025, totals 0-1e9")
	if withSort {
		fl.StringVarP(&f.sortBy, "sort", "s", "", "sort key: "+sortKeyList()+" (or a search form label)")
		fl.BoolVar(&f.ascending, "asc", false, "sort ascending (default descending)")
		fl.BoolVar(&f.metrics, "metrics", false, "compute growth_rate and proposal_count for every row")
	}
}

func sortKeyList() string {
	keys := make([]string, len(query.SortKeys))
	for i, k := range query.SortKeys {
		keys[i] = string(k)
	}
	return strings.Join(keys, " | ")
}

// criteria builds a fresh Criteria from the flags. Ranges only constrain
// the sides that were set explicitly.
func (f *filterFlags) criteria(cmd *cobra.Command) query.Criteria {
	c := query.NoConstraints()
	if f.defaults {
		c = query.DefaultCriteria()
	}
	c.Name = f.name
	c.NameCaseInsensitive = effectiveConfig().NameCaseInsensitive
	fl := cmd.Flags()
	if fl.Changed("ignore-case") {
		c.NameCaseInsensitive = f.ignoreCase
	}
	c.Party = f.party
	c.DonorType = f.donorType
	c.District = f.district
	if fl.Changed("year-min") {
		c.Years.Min = float64(f.yearMin)
	}
	if fl.Changed("year-max") {
		c.Years.Max = float64(f.yearMax)
	}
	if fl.Changed("total-min") {
		c.DonationTotal.Min = f.totalMin
	}
	if fl.Changed("total-max") {
		c.DonationTotal.Max = f.totalMax
	}
	if !c.Satisfiable() {
		logger.Warn("empty range criteria select nothing",
			zap.Float64s("years", []float64{c.Years.Min, c.Years.Max}),
			zap.Float64s("donation_total", []float64{c.DonationTotal.Min, c.DonationTotal.Max}))
	}
	return c
}

func (f *filterFlags) options() (query.Options, error) {
	key, err := query.ParseSortKey(f.sortBy)
	if err != nil {
		return query.Options{}, err
	}
	return query.Options{
		SortKey:    key,
		Descending: !f.ascending,
		Metrics:    query.MetricSet{GrowthRate: f.metrics, ProposalCount: f.metrics},
	}, nil
}

// runQuery loads the data and runs one query cycle.
func (f *filterFlags) runQuery(cmd *cobra.Command) (*record.Set, query.Result, error) {
	opt, err := f.options()
	if err != nil {
		return nil, query.Result{}, err
	}
	set, err := loadRecords(cmd.Context())
	if err != nil {
		return nil, query.Result{}, err
	}
	res := query.Run(set, f.criteria(cmd), opt)
	logger.Info("query complete", zap.Int("rows", len(res.Rows)), zap.Int("warnings", res.WarningsCount), zap.String("sort", string(opt.SortKey)))
	return set, res, nil
}

// output is what a command can render in each supported format.
type output struct {
	value    any
	markdown string
	table    *report.Table
}

// emit renders out in the configured format to --output or stdout.
func emit(cmd *cobra.Command, out output) error {
	format := strings.ToLower(effectiveConfig().OutputFormat)
	var buf bytes.Buffer
	switch format {
	case "", "markdown", "md":
		buf.WriteString(out.markdown)
		if !strings.HasSuffix(out.markdown, "\n") {
			buf.WriteByte('\n')
		}
	case "json":
		b, err := utils.PrettyJSON(out.value)
		if err != nil {
			return err
		}
		buf.Write(b)
	case "yaml":
		b, err := utils.YAML(out.value)
		if err != nil {
			return err
		}
		buf.Write(b)
	case "csv":
		if out.table == nil {
			return fmt.Errorf("csv output is not supported by %q", cmd.Name())
		}
		if err := out.table.WriteCSV(&buf); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported --format: %s (use markdown|json|yaml|csv)", format)
	}
	return writeOut(cmd, buf.Bytes())
}

func writeOut(cmd *cobra.Command, data []byte) error {
	if flagOutput == "" {
		_, err := io.Copy(cmd.OutOrStdout(), bytes.NewReader(data))
		return err
	}
	if err := utils.SafeWriteFile(flagOutput, data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s output to %s\n", cmd.Name(), flagOutput)
	return nil
}

// finite replaces infinities so values survive JSON encoding.
func finite(v float64) any {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return v
}
