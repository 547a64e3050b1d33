package cli

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/viper"
	"github.com/toyz/blanket/internal/errors"
	"github.com/toyz/blanket/internal/generator"
	"github.com/toyz/blanket/internal/parser"
	"github.com/toyz/blanket/internal/utils"
)

const (
	// DefaultSuffix is appended to a source file stem to name its expansion
	DefaultSuffix = ".expanded.rs"

	// ConfigName is the base name of the project config file (blanket.yaml,
	// blanket.toml, ...)
	ConfigName = "blanket"

	// EnvPrefix prefixes every environment override, e.g. BLANKET_STRICT
	EnvPrefix = "BLANKET"
)

// Config holds the configuration for the CLI generator
type Config struct {
	// Directories is the list of directories to scan for annotated source files
	Directories []string `mapstructure:"-"`

	// Attribute is the attribute that marks a trait for expansion
	Attribute string `mapstructure:"attribute"`

	// Suffix names generated files: src/lib.rs becomes src/lib<Suffix>
	Suffix string `mapstructure:"suffix"`

	// Crate overrides the crate name otherwise read from Cargo.toml
	Crate string `mapstructure:"crate"`

	Strict        bool `mapstructure:"strict"`
	CopyItemAttrs bool `mapstructure:"copy_item_attrs"`
	MoveDefaults  bool `mapstructure:"move_defaults"`

	// Exclude holds doublestar patterns relative to each scanned directory
	Exclude []string `mapstructure:"exclude"`

	// Verbose enables detailed logging and error reporting
	Verbose bool `mapstructure:"verbose"`
	Quiet   bool `mapstructure:"quiet"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() *Config {
	return &Config{
		Attribute: parser.DefaultAttribute,
		Suffix:    DefaultSuffix,
		Exclude:   []string{},
	}
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	defaults := DefaultConfig()
	v.SetDefault("attribute", defaults.Attribute)
	v.SetDefault("suffix", defaults.Suffix)
	v.SetDefault("crate", "")
	v.SetDefault("strict", false)
	v.SetDefault("copy_item_attrs", false)
	v.SetDefault("move_defaults", false)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
}

// NewViper builds the configuration sources in precedence order: defaults,
// config file, BLANKET_* environment. Flags are bound by the caller. Without
// configFile, blanket.{yaml,toml,json} is looked up in dir and a missing file
// is not an error.
func NewViper(configFile, dir string) (*viper.Viper, error) {
	v := viper.New()

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigName)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.WrapConfigurationError(ConfigName, "read", err)
		}
	}

	return v, nil
}

// LoadConfig decodes and validates the configuration held by v
func LoadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.WrapConfigurationError(ConfigName, "decode", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks every key that has a constrained format
func (c *Config) Validate() error {
	checks := []func() error{
		func() error { return utils.ValidateAttributePath("attribute")(c.Attribute) },
		func() error { return utils.ValidateOutputSuffix("suffix")(c.Suffix) },
		func() error { return utils.ValidateExcludePatterns("exclude")(c.Exclude) },
	}

	for _, check := range checks {
		if err := check(); err != nil {
			return errors.WrapConfigurationError(ConfigName, "validate", err).
				WithSuggestion("Check blanket.yaml, BLANKET_* variables and command flags")
		}
	}
	return nil
}

// GeneratorOptions returns the expansion options selected by the config
func (c *Config) GeneratorOptions() generator.Options {
	return generator.Options{
		Strict:        c.Strict,
		CopyItemAttrs: c.CopyItemAttrs,
		MoveDefaults:  c.MoveDefaults,
	}
}

// DiagnosticLevel returns the output level selected by verbose and quiet
func (c *Config) DiagnosticLevel() utils.DiagnosticLevel {
	return utils.LevelFor(c.Verbose, c.Quiet)
}

// Patterns returns the directories to scan, defaulting to the working directory
func (c *Config) Patterns() []string {
	if len(c.Directories) == 0 {
		return []string{"."}
	}
	return c.Directories
}
