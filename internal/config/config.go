package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/polittrack-cli/internal/graph"
)

// Global configuration structure.
type Global struct {
	DataFiles  []string `mapstructure:"data_files" yaml:"data_files"`
	SheetName  string   `mapstructure:"sheet_name" yaml:"sheet_name"`
	SheetIndex int      `mapstructure:"sheet_index" yaml:"sheet_index"`

	// Query behaviour
	NameCaseInsensitive bool   `mapstructure:"name_case_insensitive" yaml:"name_case_insensitive"`
	TopDonorsLimit      int    `mapstructure:"top_donors_limit" yaml:"top_donors_limit"`
	OutputFormat        string `mapstructure:"output_format" yaml:"output_format"`

	// Relation graph
	CollapsePolicy   string `mapstructure:"collapse_policy" yaml:"collapse_policy"`
	Relation         string `mapstructure:"relation" yaml:"relation"`
	LayoutSeed       uint64 `mapstructure:"layout_seed" yaml:"layout_seed"`
	LayoutIterations int    `mapstructure:"layout_iterations" yaml:"layout_iterations"`

	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

// OutputFormats lists the accepted values of output_format.
var OutputFormats = []string{"markdown", "json", "yaml", "csv"}

// Keys lists the settable configuration keys.
var Keys = []string{
	"data_files", "sheet_name", "sheet_index", "name_case_insensitive", "top_donors_limit",
	"output_format", "collapse_policy", "relation", "layout_seed", "layout_iterations", "log_level",
}

// Default returns the built-in configuration.
func Default() *Global {
	return &Global{
		DataFiles:        []string{"polittrack_data.csv"},
		SheetIndex:       1,
		TopDonorsLimit:   15,
		OutputFormat:     "markdown",
		CollapsePolicy:   string(graph.CollapseSum),
		Relation:         string(graph.RelationAssociation),
		LayoutSeed:       graph.DefaultLayoutSeed,
		LayoutIterations: graph.DefaultLayoutIterations,
		LogLevel:         "info",
	}
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".polittrack"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.polittrack/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := defaultDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("POLITTRACK")
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("data_files", d.DataFiles)
	v.SetDefault("sheet_name", d.SheetName)
	v.SetDefault("sheet_index", d.SheetIndex)
	v.SetDefault("name_case_insensitive", d.NameCaseInsensitive)
	v.SetDefault("top_donors_limit", d.TopDonorsLimit)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("collapse_policy", d.CollapsePolicy)
	v.SetDefault("relation", d.Relation)
	v.SetDefault("layout_seed", d.LayoutSeed)
	v.SetDefault("layout_iterations", d.LayoutIterations)
	v.SetDefault("log_level", d.LogLevel)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := defaultDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks enumerated and numeric settings.
func (c *Global) Validate() error {
	if _, err := graph.ParsePolicy(c.CollapsePolicy); err != nil {
		return fmt.Errorf("collapse_policy: %w", err)
	}
	if _, err := graph.ParseRelation(c.Relation); err != nil {
		return fmt.Errorf("relation: %w", err)
	}
	if c.OutputFormat != "" && !slices.Contains(OutputFormats, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("output_format: unsupported %q (want one of %s)", c.OutputFormat, strings.Join(OutputFormats, ", "))
	}
	if c.SheetIndex < 0 {
		return fmt.Errorf("sheet_index: must be >= 0, got %d", c.SheetIndex)
	}
	if c.TopDonorsLimit < 0 {
		return fmt.Errorf("top_donors_limit: must be >= 0, got %d", c.TopDonorsLimit)
	}
	if c.LayoutIterations < 0 {
		return fmt.Errorf("layout_iterations: must be >= 0, got %d", c.LayoutIterations)
	}
	return nil
}

// Set assigns a single key from its string form, as used by `config set`.
func (c *Global) Set(key, value string) error {
	value = strings.TrimSpace(value)
	switch strings.ToLower(key) {
	case "data_files":
		c.DataFiles = splitList(value)
	case "sheet_name":
		c.SheetName = value
	case "sheet_index":
		if err := setInt(&c.SheetIndex, key, value); err != nil {
			return err
		}
	case "name_case_insensitive":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.NameCaseInsensitive = b
	case "top_donors_limit":
		if err := setInt(&c.TopDonorsLimit, key, value); err != nil {
			return err
		}
	case "output_format":
		c.OutputFormat = strings.ToLower(value)
	case "collapse_policy":
		p, err := graph.ParsePolicy(value)
		if err != nil {
			return err
		}
		c.CollapsePolicy = string(p)
	case "relation":
		r, err := graph.ParseRelation(value)
		if err != nil {
			return err
		}
		c.Relation = string(r)
	case "layout_seed":
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		c.LayoutSeed = n
	case "layout_iterations":
		if err := setInt(&c.LayoutIterations, key, value); err != nil {
			return err
		}
	case "log_level":
		c.LogLevel = strings.ToLower(value)
	default:
		return fmt.Errorf("unknown key: %s (known: %s)", key, strings.Join(Keys, ", "))
	}
	return c.Validate()
}

func setInt(dst *int, key, value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
