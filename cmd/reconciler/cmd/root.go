package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"dataset-reconciler/cmd/reconciler/config"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

var (
	cfgFile string
	envFile string
	verbose bool
	version = "dev"
	commit  = "unknown"
	date    = "unknown"

	// settings is resolved before every command runs
	settings *config.Settings
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Dataset reconciliation tool",
	Long: `Reconciler compares two tabular datasets that describe the same business
documents, such as vendor invoices and payment records. Records are joined on
the document number and classified as matched, partial, or present in only
one dataset. A summary, diagnostics and recommendations are reported.

Settings are read from flags, RECONCILER_ environment variables (a .env file
is loaded when present) and an optional config file.

Examples:
  reconciler reconcile --file-a invoices.csv --file-b payments.xlsx
  reconciler reconcile --file-a a.csv --file-b b.json --output-format csv --scope results
  reconciler detect payments.csv --write payments-mapping.yaml
  reconciler demo`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadSettings,
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	err := rootCmd.Execute()
	return NewCLIErrorHandler().HandleError(err)
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (optional)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded when present")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-format", "text", "log format: text, json")
	flags.String("log-file", "", "write logs to this file instead of stderr")

	flags.StringP("output-format", "f", "console", "output format: console, json, csv, xlsx")
	flags.String("scope", "complete", "report scope: results, summary, insights, complete")
	flags.StringP("output-file", "o", "", "output file path (default: stdout)")
	flags.Int("max-items", 10, "records listed per console section, 0 for all")
	flags.Bool("include-matched", true, "list matched records in reports")

	config.SetDefaults(viper.GetViper())
}

// flagKeys binds command-line flags to setting keys. Only flags defined on
// the running command are bound.
var flagKeys = map[string]string{
	"verbose":           "verbose",
	"log-level":         config.KeyLogLevel,
	"log-format":        config.KeyLogFormat,
	"log-file":          config.KeyLogFile,
	"preset":            config.KeyPreset,
	"amount-tolerance":  config.KeyAmountTolerance,
	"date-tolerance":    config.KeyDateTolerance,
	"workers":           config.KeyWorkers,
	"report-duplicates": config.KeyReportDuplicates,
	"encoding":          config.KeyEncoding,
	"sheet":             config.KeySheet,
	"delimiter":         config.KeyDelimiter,
	"output-format":     config.KeyOutputFormat,
	"scope":             config.KeyOutputScope,
	"output-file":       config.KeyOutputFile,
	"max-items":         config.KeyMaxItems,
	"include-matched":   config.KeyIncludeMatched,
}

func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return errors.InternalError(errors.CodeUnexpectedError, "bind_flag", err).
				WithContext("flag", name)
		}
	}
	return nil
}

// initConfig reads the dotenv file and the config file
func initConfig() {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: could not read %s: %v\n", envFile, err)
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadSettings resolves the layered settings and configures logging
func loadSettings(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}

	if cfgFile != "" {
		if err := viper.ReadInConfig(); err != nil {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).
				WithSuggestion("Check that the config file exists and is valid YAML, JSON or TOML")
		}
	}

	resolved, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	if viper.GetBool("verbose") {
		resolved.Log.Level = string(logger.DebugLevel)
	}

	if err := logger.Configure(resolved.LoggerConfig()); err != nil {
		return err
	}
	if file := viper.ConfigFileUsed(); file != "" {
		logger.GetGlobalLogger().WithField("config_file", file).Debug("Using config file")
	}

	settings = resolved
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
