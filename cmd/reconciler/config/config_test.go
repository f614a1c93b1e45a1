package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-reconciler/internal/matcher"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/internal/reporter"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoad_Defaults(t *testing.T) {
	settings, err := Load(newViper())
	require.NoError(t, err)

	engine, err := settings.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, matcher.DefaultEngineConfig(), engine)

	service, err := settings.ServiceConfig()
	require.NoError(t, err)
	assert.True(t, service.ReportDuplicates)
	assert.True(t, service.CheckDataQuality)
	assert.Equal(t, reconciler.DefaultMaxIssues, service.MaxIssues)

	options, err := settings.LoaderOptions()
	require.NoError(t, err)
	assert.Equal(t, ',', options.Delimiter)
	assert.Equal(t, "utf-8", options.Encoding)

	report, err := settings.ReportConfig()
	require.NoError(t, err)
	assert.Equal(t, reporter.FormatConsole, report.Format)
	assert.Equal(t, reporter.ScopeComplete, report.Scope)
	assert.Equal(t, 10, report.MaxListItems)

	log := settings.LoggerConfig()
	assert.Equal(t, logger.WarnLevel, log.Level)
	assert.Equal(t, logger.StderrOutput, log.Output)
}

func TestLoad_PresetWithOverrides(t *testing.T) {
	t.Setenv("RECONCILER_MATCHING_PRESET", "strict")
	t.Setenv("RECONCILER_MATCHING_AMOUNT_TOLERANCE", "2.5")

	settings, err := Load(newViper())
	require.NoError(t, err)

	engine, err := settings.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 2.5, engine.Comparison.AmountTolerancePercent)
	assert.Equal(t, 0, engine.Comparison.DateToleranceDays)
	assert.Equal(t, 1, engine.Workers)
}

func TestLoad_PresetWithoutOverrides(t *testing.T) {
	v := newViper()
	v.Set(KeyPreset, "relaxed")

	settings, err := Load(v)
	require.NoError(t, err)

	engine, err := settings.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, matcher.RelaxedEngineConfig(), engine)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reconciler.yaml")
	content := `
log:
  level: debug
  format: json
matching:
  date_tolerance: 7
  workers: 4
  report_duplicates: false
input:
  encoding: windows-1252
  delimiter: ";"
  check_quality: false
  max_issues: 5
output:
  format: csv
  scope: summary
  include_matched: false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	settings, err := Load(v)
	require.NoError(t, err)

	engine, err := settings.EngineConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, engine.Comparison.DateToleranceDays)
	assert.Equal(t, float64(5), engine.Comparison.AmountTolerancePercent)
	assert.Equal(t, 4, engine.Workers)

	service, err := settings.ServiceConfig()
	require.NoError(t, err)
	assert.False(t, service.ReportDuplicates)
	assert.False(t, service.CheckDataQuality)
	assert.Equal(t, 5, service.MaxIssues)

	options, err := settings.LoaderOptions()
	require.NoError(t, err)
	assert.Equal(t, ';', options.Delimiter)

	report, err := settings.ReportConfig()
	require.NoError(t, err)
	assert.Equal(t, reporter.FormatCSV, report.Format)
	assert.Equal(t, reporter.ScopeSummary, report.Scope)
	assert.False(t, report.IncludeMatched)

	log := settings.LoggerConfig()
	assert.Equal(t, logger.DebugLevel, log.Level)
	assert.Equal(t, logger.JSONFormat, log.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
	}{
		{name: "unknown preset", key: KeyPreset, value: "fuzzy"},
		{name: "unknown log level", key: KeyLogLevel, value: "trace"},
		{name: "long delimiter", key: KeyDelimiter, value: ";;"},
		{name: "negative max items", key: KeyMaxItems, value: -1},
		{name: "negative max issues", key: KeyMaxIssues, value: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newViper()
			v.Set(tt.key, tt.value)

			_, err := Load(v)
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
		})
	}
}

func TestSettings_InvalidDerivedConfigs(t *testing.T) {
	v := newViper()
	v.Set(KeyAmountTolerance, 50)
	v.Set(KeyOutputFormat, "pdf")
	v.Set(KeyEncoding, "ebcdic")

	settings, err := Load(v)
	require.NoError(t, err)

	_, err = settings.EngineConfig()
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = settings.ServiceConfig()
	assert.Error(t, err)

	_, err = settings.ReportConfig()
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = settings.LoaderOptions()
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestLoggerConfig_File(t *testing.T) {
	v := newViper()
	v.Set(KeyLogFile, "/tmp/reconciler.log")

	settings, err := Load(v)
	require.NoError(t, err)

	log := settings.LoggerConfig()
	assert.Equal(t, logger.FileOutput, log.Output)
	assert.Equal(t, "/tmp/reconciler.log", log.File)
	assert.NoError(t, log.Validate())
}
