// Package config layers CLI settings from defaults, an optional config file,
// RECONCILER_ environment variables and command-line flags.
package config

import (
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"dataset-reconciler/internal/matcher"
	"dataset-reconciler/internal/parsers"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/internal/reporter"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

// EnvPrefix prefixes every environment variable read by the CLI
const EnvPrefix = "RECONCILER"

// Setting keys. Environment variables replace dots with underscores, so
// matching.amount_tolerance is read from RECONCILER_MATCHING_AMOUNT_TOLERANCE.
const (
	KeyLogLevel  = "log.level"
	KeyLogFormat = "log.format"
	KeyLogFile   = "log.file"

	KeyPreset           = "matching.preset"
	KeyAmountTolerance  = "matching.amount_tolerance"
	KeyDateTolerance    = "matching.date_tolerance"
	KeyWorkers          = "matching.workers"
	KeyReportDuplicates = "matching.report_duplicates"

	KeyEncoding     = "input.encoding"
	KeySheet        = "input.sheet"
	KeyDelimiter    = "input.delimiter"
	KeyCheckQuality = "input.check_quality"
	KeyMaxIssues    = "input.max_issues"

	KeyOutputFormat   = "output.format"
	KeyOutputScope    = "output.scope"
	KeyOutputFile     = "output.file"
	KeyMaxItems       = "output.max_items"
	KeyIncludeMatched = "output.include_matched"
)

// Settings is the resolved CLI configuration
type Settings struct {
	Log      LogSettings      `mapstructure:"log"`
	Matching MatchingSettings `mapstructure:"matching"`
	Input    InputSettings    `mapstructure:"input"`
	Output   OutputSettings   `mapstructure:"output"`
}

// LogSettings configures the global logger
type LogSettings struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json text"`
	File   string `mapstructure:"file"`
}

// MatchingSettings selects a preset and optionally overrides its tolerances
type MatchingSettings struct {
	Preset           string  `mapstructure:"preset" validate:"oneof=default strict relaxed parallel"`
	AmountTolerance  float64 `mapstructure:"amount_tolerance"`
	DateTolerance    int     `mapstructure:"date_tolerance"`
	Workers          int     `mapstructure:"workers"`
	ReportDuplicates bool    `mapstructure:"report_duplicates"`

	// explicitly set keys override the preset
	amountSet  bool
	dateSet    bool
	workersSet bool
}

// InputSettings controls how datasets are read
type InputSettings struct {
	Encoding     string `mapstructure:"encoding"`
	Sheet        string `mapstructure:"sheet"`
	Delimiter    string `mapstructure:"delimiter" validate:"len=1"`
	CheckQuality bool   `mapstructure:"check_quality"`
	MaxIssues    int    `mapstructure:"max_issues" validate:"gte=0"`
}

// OutputSettings controls the report
type OutputSettings struct {
	Format         string `mapstructure:"format"`
	Scope          string `mapstructure:"scope"`
	File           string `mapstructure:"file"`
	MaxItems       int    `mapstructure:"max_items" validate:"gte=0"`
	IncludeMatched bool   `mapstructure:"include_matched"`
}

var validate = validator.New()

// SetDefaults registers default values and environment lookup on v.
// Tolerances and workers have no default so a preset is only overridden
// when they are set explicitly.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, "warn")
	v.SetDefault(KeyLogFormat, "text")

	v.SetDefault(KeyPreset, "default")
	v.SetDefault(KeyReportDuplicates, true)

	v.SetDefault(KeyEncoding, "utf-8")
	v.SetDefault(KeyDelimiter, ",")
	v.SetDefault(KeyCheckQuality, true)
	v.SetDefault(KeyMaxIssues, reconciler.DefaultMaxIssues)

	v.SetDefault(KeyOutputFormat, string(reporter.FormatConsole))
	v.SetDefault(KeyOutputScope, string(reporter.ScopeComplete))
	v.SetDefault(KeyMaxItems, 10)
	v.SetDefault(KeyIncludeMatched, true)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range []string{KeyAmountTolerance, KeyDateTolerance, KeyWorkers, KeyLogFile, KeySheet, KeyOutputFile} {
		_ = v.BindEnv(key)
	}
}

// Load resolves the settings held by v
func Load(v *viper.Viper) (*Settings, error) {
	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "settings", nil, err).
			WithSuggestion("Check the types of the values in the config file and environment")
	}

	if err := validate.Struct(settings); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
			first := verrs[0]
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, first.Namespace(), first.Value(), err)
		}
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "settings", nil, err)
	}

	settings.Matching.amountSet = v.IsSet(KeyAmountTolerance)
	settings.Matching.dateSet = v.IsSet(KeyDateTolerance)
	settings.Matching.workersSet = v.IsSet(KeyWorkers)
	return settings, nil
}

// EngineConfig builds the matching configuration: the preset with any
// explicitly set tolerance or worker count applied on top
func (s *Settings) EngineConfig() (*matcher.EngineConfig, error) {
	config, err := matcher.PresetConfig(s.Matching.Preset)
	if err != nil {
		return nil, err
	}

	if s.Matching.amountSet {
		config.Comparison.AmountTolerancePercent = s.Matching.AmountTolerance
	}
	if s.Matching.dateSet {
		config.Comparison.DateToleranceDays = s.Matching.DateTolerance
	}
	if s.Matching.workersSet {
		config.Workers = s.Matching.Workers
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ServiceConfig builds the reconciliation service configuration
func (s *Settings) ServiceConfig() (*reconciler.Config, error) {
	engine, err := s.EngineConfig()
	if err != nil {
		return nil, err
	}

	config := reconciler.DefaultConfig()
	config.Engine = engine
	config.ReportDuplicates = s.Matching.ReportDuplicates
	config.CheckDataQuality = s.Input.CheckQuality
	config.MaxIssues = s.Input.MaxIssues
	return config, nil
}

// LoaderOptions builds the dataset reading options
func (s *Settings) LoaderOptions() (*parsers.Options, error) {
	delimiter, _ := utf8.DecodeRuneInString(s.Input.Delimiter)
	options := &parsers.Options{
		Encoding:  s.Input.Encoding,
		Sheet:     s.Input.Sheet,
		Delimiter: delimiter,
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}
	return options, nil
}

// ReportConfig builds the report configuration
func (s *Settings) ReportConfig() (*reporter.ReportConfig, error) {
	config := reporter.DefaultReportConfig()
	config.Format = reporter.OutputFormat(strings.ToLower(s.Output.Format))
	config.Scope = reporter.Scope(strings.ToLower(s.Output.Scope))
	config.MaxListItems = s.Output.MaxItems
	config.IncludeMatched = s.Output.IncludeMatched

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoggerConfig builds the logger configuration
func (s *Settings) LoggerConfig() *logger.Config {
	config := logger.DefaultConfig()
	config.Level = logger.Level(s.Log.Level)
	config.Format = logger.Format(s.Log.Format)
	if s.Log.File != "" {
		config.Output = logger.FileOutput
		config.File = s.Log.File
	}
	return config
}
