package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	InputPath   string `mapstructure:"input_path" yaml:"input_path" validate:"required"`
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter,omitempty" validate:"omitempty,max=4"`
	Sheet       string `mapstructure:"sheet" yaml:"sheet,omitempty"`
	PreviewRows int    `mapstructure:"preview_rows" yaml:"preview_rows" validate:"min=1"`

	AnomalyColumn string `mapstructure:"anomaly_column" yaml:"anomaly_column" validate:"required"`

	// Chart output
	ChartsEnabled bool   `mapstructure:"charts_enabled" yaml:"charts_enabled"`
	ChartsDir     string `mapstructure:"charts_dir" yaml:"charts_dir" validate:"required_if=ChartsEnabled true"`
	ChartWidth    int    `mapstructure:"chart_width" yaml:"chart_width" validate:"min=200,max=8192"`
	ChartHeight   int    `mapstructure:"chart_height" yaml:"chart_height" validate:"min=200,max=8192"`

	// Run report
	ReportPath   string `mapstructure:"report_path" yaml:"report_path,omitempty"`
	ReportFormat string `mapstructure:"report_format" yaml:"report_format" validate:"oneof=json yaml markdown"`
}

var validate = validator.New()

// Validate checks field constraints and returns one error listing every
// offending key.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", keyFor(fe.StructField()), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// keyFor maps a struct field back to its config key.
func keyFor(field string) string {
	if f, ok := fieldTags[field]; ok {
		return f
	}
	return field
}

var fieldTags = map[string]string{
	"InputPath":     "input_path",
	"Delimiter":     "delimiter",
	"PreviewRows":   "preview_rows",
	"AnomalyColumn": "anomaly_column",
	"ChartsDir":     "charts_dir",
	"ChartWidth":    "chart_width",
	"ChartHeight":   "chart_height",
	"ReportFormat":  "report_format",
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".healthprep"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.healthprep/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
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
// A .env file in the working directory is read into the environment first.
func Load(cfgFile string) (*Global, error) {
	// Missing .env is normal.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("HEALTHPREP")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("input_path", "healthcare_messy_data.csv")
	v.SetDefault("delimiter", "")
	v.SetDefault("sheet", "")
	v.SetDefault("preview_rows", 15)
	v.SetDefault("anomaly_column", "Cholesterol")
	v.SetDefault("charts_enabled", true)
	v.SetDefault("charts_dir", "charts")
	v.SetDefault("chart_width", 1024)
	v.SetDefault("chart_height", 640)
	v.SetDefault("report_path", "")
	v.SetDefault("report_format", "json")

	// Config file
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
