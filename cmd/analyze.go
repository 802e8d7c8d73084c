package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/polittrack-cli/internal/analysis"
	"github.com/KaramelBytes/polittrack-cli/internal/query"
	"github.com/KaramelBytes/polittrack-cli/internal/record"
	"github.com/KaramelBytes/polittrack-cli/internal/report"
	"github.com/KaramelBytes/polittrack-cli/internal/source"
)

var (
	anaFlags     filterFlags
	anaCorr      bool
	anaOutlierTh float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [files...]",
	Short: "Profile the columns of the data files",
	Long: `Reports per-column non-null counts, numeric statistics with robust (MAD)
outlier counts, top categorical values and, with --correlations, Pearson
correlations among the numeric columns.

Without arguments the configured data files are merged, filtered and profiled
together. File arguments (globs allowed) are profiled one by one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analysis.ProfileOptions{Correlations: anaCorr, OutlierThreshold: anaOutlierTh}
		if len(args) == 0 {
			set, err := loadRecords(cmd.Context())
			if err != nil {
				return err
			}
			filtered := &record.Set{Schema: set.Schema, Records: query.Apply(set, anaFlags.criteria(cmd))}
			p := analysis.Profile(filtered, opt)
			return emit(cmd, output{value: p, markdown: report.ProfileMarkdown(p)})
		}

		files, err := expandFiles(args)
		if err != nil {
			return err
		}
		c := effectiveConfig()
		var (
			profiles []*analysis.DatasetProfile
			parts    []string
		)
		for i, path := range files {
			set, err := source.LoadFile(path, source.Options{SheetName: c.SheetName, SheetIndex: c.SheetIndex})
			if err != nil {
				return err
			}
			p := analysis.Profile(set, opt)
			p.Name = filepath.Base(path)
			profiles = append(profiles, p)
			parts = append(parts, report.ProfileMarkdown(p))
			logger.Info("profiled", zap.String("file", path), zap.Int("rows", p.Rows), zap.Int("index", i+1), zap.Int("total", len(files)))
		}
		return emit(cmd, output{value: profiles, markdown: strings.Join(parts, "\n")})
	},
}

// expandFiles resolves globs, drops duplicates and sorts the result.
func expandFiles(args []string) ([]string, error) {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files matched")
	}
	sort.Strings(files)
	return files, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaFlags.bind(analyzeCmd, false)
	analyzeCmd.Flags().BoolVar(&anaCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeCmd.Flags().Float64Var(&anaOutlierTh, "outlier-threshold", analysis.DefaultOutlierThreshold, "robust |z| threshold for outliers (MAD-based)")
}
