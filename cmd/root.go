package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	cfgpkg "github.com/KaramelBytes/polittrack-cli/internal/config"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagData      []string
	flagSheetName string
	flagSheetIdx  int
	flagFormat    string
	flagOutput    string

	// Loaded configuration
	cfg *cfgpkg.Global

	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "polittrack",
	Short: "PoliTrack CLI: query and audit political-finance disclosures",
	Long: `PoliTrack loads candidate donation, asset and legislation records from CSV or
XLSX files and answers filtered, sorted queries with derived metrics, anomaly
warnings, group summaries and a donor relation graph.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		applyOverrides(cmd, c)
		cfg = c

		l, err := newLogger(cfg.LogLevel, debug)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l.With(zap.String("run_id", uuid.NewString()))
		logger.Debug("configuration loaded", zap.Strings("data_files", cfg.DataFiles), zap.String("format", cfg.OutputFormat))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.polittrack/config.yaml)")
	pf.BoolVar(&debug, "debug", false, "enable debug logging")
	pf.StringSliceVarP(&flagData, "data", "d", nil, "data file(s) to load: .csv, .tsv or .xlsx (repeatable; overrides data_files)")
	pf.StringVar(&flagSheetName, "sheet-name", "", "XLSX: sheet name to read")
	pf.IntVar(&flagSheetIdx, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	pf.StringVarP(&flagFormat, "format", "f", "", "output format: markdown | json | yaml | csv (overrides output_format)")
	pf.StringVarP(&flagOutput, "output", "o", "", "write output to this path instead of stdout")
}

// applyOverrides copies explicitly set global flags over the loaded config.
func applyOverrides(cmd *cobra.Command, c *cfgpkg.Global) {
	f := cmd.Flags()
	if f.Changed("data") && len(flagData) > 0 {
		c.DataFiles = flagData
	}
	if f.Changed("sheet-name") {
		c.SheetName = flagSheetName
	}
	if f.Changed("sheet-index") && flagSheetIdx > 0 {
		c.SheetIndex = flagSheetIdx
	}
	if f.Changed("format") && flagFormat != "" {
		c.OutputFormat = flagFormat
	}
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		lvl = parsed
	}
	if debug {
		lvl = zapcore.DebugLevel
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	return config.Build()
}

// effectiveConfig returns the loaded configuration, or defaults when a
// command runs without the root pre-run hook.
func effectiveConfig() *cfgpkg.Global {
	if cfg == nil {
		return cfgpkg.Default()
	}
	return cfg
}
