package meltr

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config represents the meltr configuration, typically loaded from a
// meltr.yaml next to the data being melted. Every field has a usable
// default so an absent file is not an error.
type Config struct {
	// Delim is the field delimiter for delimited melts (one character).
	Delim string `yaml:"delim"`
	// Quote is the quoting character; empty disables quoting.
	Quote string `yaml:"quote"`
	// Comment is a prefix that comments out the rest of a line.
	Comment string `yaml:"comment"`
	// Skip is the number of leading lines to drop.
	Skip int `yaml:"skip"`
	// NA lists the missing value markers.
	NA []string `yaml:"na"`
	// TrimWS trims surrounding blanks from unquoted fields.
	TrimWS bool `yaml:"trim_ws"`
	// Progress enables the console progress indicator.
	Progress bool `yaml:"progress"`
	// Locale configures decoding and type guessing.
	Locale LocaleConfig `yaml:"locale"`
}

// LocaleConfig represents the locale block of the configuration
type LocaleConfig struct {
	DecimalMark  string   `yaml:"decimal_mark"`
	GroupingMark string   `yaml:"grouping_mark"`
	DateFormat   string   `yaml:"date_format"`
	TimeFormat   string   `yaml:"time_format"`
	TrueValues   []string `yaml:"true_values"`
	FalseValues  []string `yaml:"false_values"`
	TZ           string   `yaml:"tz"`
	Encoding     string   `yaml:"encoding"`
}

// LoadConfig loads configuration from the given path. An empty path means
// "search for one": the working directory and its ancestors are scanned
// for meltr.yaml, and defaults apply when none exists. A missing file at
// an explicit path is an error.
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	if configPath == "" {
		configPath = FindConfigFile()
		if configPath == "" {
			return getDefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	config := getDefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, config, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	expandConfigEnvVars(config)

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// configFileNames are the recognized config file names, in preference
// order.
var configFileNames = []string{"meltr.yaml", "meltr.yml"}

// FindConfigFile searches for a config file starting in the working
// directory and walking up to the filesystem root. It returns the first
// hit, or "" when no config file exists.
func FindConfigFile() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		for _, name := range configFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func getDefaultConfig() *Config {
	l := DefaultLocale()

	return &Config{
		Delim: ",",
		Quote: `"`,
		NA:    []string{"NA"},
		Locale: LocaleConfig{
			DecimalMark:  string(l.DecimalMark),
			GroupingMark: string(l.GroupingMark),
			DateFormat:   l.DateFormat,
			TimeFormat:   l.TimeFormat,
			TrueValues:   l.TrueValues,
			FalseValues:  l.FalseValues,
			TZ:           l.TZ,
			Encoding:     l.Encoding,
		},
	}
}

func validateConfig(config *Config) error {
	if len(config.Delim) != 1 {
		return fmt.Errorf("%w: delim must be a single character, got %q", ErrConfigValidation, config.Delim)
	}
	if len(config.Quote) > 1 {
		return fmt.Errorf("%w: quote must be a single character or empty, got %q", ErrConfigValidation, config.Quote)
	}
	if config.Skip < 0 {
		return fmt.Errorf("%w: skip must not be negative", ErrConfigValidation)
	}

	l, err := config.NewLocale()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}

	return l.Validate()
}

// NewLocale builds a Locale from the configuration's locale block, falling
// back to the default locale for unset fields.
func (c *Config) NewLocale() (*Locale, error) {
	l := DefaultLocale()

	lc := c.Locale
	if lc.DecimalMark != "" {
		if len([]rune(lc.DecimalMark)) != 1 {
			return nil, fmt.Errorf("%w: decimal_mark must be a single character", ErrConfigValidation)
		}
		l.DecimalMark = []rune(lc.DecimalMark)[0]
	}
	if lc.GroupingMark != "" {
		if len([]rune(lc.GroupingMark)) != 1 {
			return nil, fmt.Errorf("%w: grouping_mark must be a single character", ErrConfigValidation)
		}
		l.GroupingMark = []rune(lc.GroupingMark)[0]
	}
	if lc.DateFormat != "" {
		l.DateFormat = lc.DateFormat
	}
	if lc.TimeFormat != "" {
		l.TimeFormat = lc.TimeFormat
	}
	if len(lc.TrueValues) > 0 {
		l.TrueValues = lc.TrueValues
	}
	if len(lc.FalseValues) > 0 {
		l.FalseValues = lc.FalseValues
	}
	if lc.TZ != "" {
		l.TZ = lc.TZ
	}
	if lc.Encoding != "" {
		l.Encoding = lc.Encoding
	}

	return l, nil
}

// loadEnvFiles loads a .env file from the working directory when present.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{(\w+)\}`)

// expandEnvVars expands environment variables in the format ${VAR}
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
}

// expandConfigEnvVars expands environment variables in config
func expandConfigEnvVars(config *Config) {
	config.Delim = expandEnvVars(config.Delim)
	config.Comment = expandEnvVars(config.Comment)
	for i, na := range config.NA {
		config.NA[i] = expandEnvVars(na)
	}
	config.Locale.TZ = expandEnvVars(config.Locale.TZ)
	config.Locale.Encoding = expandEnvVars(config.Locale.Encoding)
}
