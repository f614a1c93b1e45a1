package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"dataset-reconciler/internal/parsers"
	"dataset-reconciler/internal/reconciler"
	"dataset-reconciler/internal/reporter"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

// Flags for the reconcile command
var (
	fileA        string
	fileB        string
	mappingFileA string
	mappingFileB string
	showProgress bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile two datasets",
	Long: `Reconcile joins two datasets on the document number and classifies every
record as matched, partial, only in file A or only in file B.

Datasets may be CSV, JSON or XLSX files. Columns are detected from common
header names unless a mapping file is given (see 'reconciler detect').

Examples:
  # Basic reconciliation with detected columns
  reconciler reconcile --file-a invoices.csv --file-b payments.csv

  # Explicit column mappings and a stricter amount tolerance
  reconciler reconcile --file-a invoices.csv --file-b payments.xlsx \
    --mapping-a invoices.yaml --mapping-b payments.yaml --amount-tolerance 1

  # Export the records as CSV
  reconciler reconcile --file-a a.csv --file-b b.csv \
    --output-format csv --scope results --output-file results.csv

  # Excel workbook with one sheet per outcome
  reconciler reconcile --file-a a.csv --file-b b.csv -f xlsx -o report.xlsx`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	flags := reconcileCmd.Flags()
	flags.StringVar(&fileA, "file-a", "", "path to the first dataset (required)")
	flags.StringVar(&fileB, "file-b", "", "path to the second dataset (required)")
	flags.StringVar(&mappingFileA, "mapping-a", "", "column mapping file for the first dataset")
	flags.StringVar(&mappingFileB, "mapping-b", "", "column mapping file for the second dataset")
	flags.BoolVar(&showProgress, "progress", false, "show progress on stderr")

	addMatchingFlags(reconcileCmd)
	addInputFlags(reconcileCmd)

	_ = reconcileCmd.MarkFlagRequired("file-a")
	_ = reconcileCmd.MarkFlagRequired("file-b")
}

func addMatchingFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("preset", "default", "matching preset: default, strict, relaxed, parallel")
	flags.Float64("amount-tolerance", 5, "amount tolerance in percent (0-20), overrides the preset")
	flags.Int("date-tolerance", 3, "date tolerance in days (0-30), overrides the preset")
	flags.Int("workers", 1, "matching goroutines, overrides the preset")
	flags.Bool("report-duplicates", true, "report repeated document numbers")
}

func addInputFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String("encoding", "utf-8", "CSV encoding: utf-8, windows-1252, latin1, iso-8859-15")
	flags.String("sheet", "", "XLSX sheet to read (default: first sheet)")
	flags.String("delimiter", ",", "CSV field delimiter")
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	if err := validateFileExists(fileA, "file_a"); err != nil {
		return err
	}
	if err := validateFileExists(fileB, "file_b"); err != nil {
		return err
	}
	for _, mapping := range []string{mappingFileA, mappingFileB} {
		if mapping == "" {
			continue
		}
		if err := validateFileExists(mapping, "mapping"); err != nil {
			return err
		}
	}
	return validateOutput()
}

// validateOutput checks the report settings before any work is done
func validateOutput() error {
	reportConfig, err := settings.ReportConfig()
	if err != nil {
		return err
	}

	outputFile := settings.Output.File
	if reportConfig.Format.IsBinary() && outputFile == "" {
		return errors.ConfigurationError(errors.CodeMissingConfig, "output_file", nil, nil).
			WithSuggestion(fmt.Sprintf("%s reports must be written to a file, use --output-file", reportConfig.Format))
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return errors.FileError(errors.CodeFileNotFound, dir, err).
				WithSuggestion("Create the output directory first")
		}
	}
	return nil
}

func validateFileExists(filePath, field string) error {
	if filePath == "" {
		return errors.ValidationError(errors.CodeMissingField, field, nil, nil)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err)
	}
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err)
	}

	if info.IsDir() {
		return errors.FileError(errors.CodeInvalidFormat, filePath, fmt.Errorf("%s is a directory, expected a file", field))
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log := logger.GetGlobalLogger().WithComponent("cli")
	log.WithFields(logger.Fields{
		"file_a": fileA,
		"file_b": fileB,
	}).Debug("Starting reconciliation")

	service, err := newService(cmd)
	if err != nil {
		return err
	}

	engineConfig, err := settings.EngineConfig()
	if err != nil {
		return err
	}

	result, err := service.ProcessFiles(ctx, &reconciler.FileRequest{
		FileA:        fileA,
		FileB:        fileB,
		MappingFileA: mappingFileA,
		MappingFileB: mappingFileB,
		Config:       engineConfig,
	})
	if err != nil {
		return err
	}

	return writeReport(cmd, result)
}

// newService builds a reconciliation service from the resolved settings
func newService(cmd *cobra.Command) (*reconciler.ReconciliationService, error) {
	serviceConfig, err := settings.ServiceConfig()
	if err != nil {
		return nil, err
	}
	options, err := settings.LoaderOptions()
	if err != nil {
		return nil, err
	}

	service, err := reconciler.NewReconciliationService(serviceConfig, parsers.NewLoader(options))
	if err != nil {
		return nil, err
	}

	if showProgress {
		stderr := cmd.ErrOrStderr()
		service.AddProgressCallback(func(p *reconciler.ReconciliationProgress) {
			fmt.Fprintf(stderr, "[%d/%d] %s\n", p.Stats.Current, p.Stats.Total, p.Stage)
		})
	}
	return service, nil
}

// writeReport renders result to the output file, or to stdout
func writeReport(cmd *cobra.Command, result *reconciler.ReconciliationResult) error {
	reportConfig, err := settings.ReportConfig()
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	outputFile := settings.Output.File
	if outputFile == "" {
		return generator.GenerateReportSafely(result, cmd.OutOrStdout())
	}

	written, err := generator.WriteReportFile(result, outputFile)
	if err != nil {
		return err
	}
	if written != outputFile {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not write to %s, report saved to %s\n", outputFile, written)
	}

	logger.GetGlobalLogger().WithFields(logger.Fields{
		"run_id": result.RunID,
		"file":   written,
	}).Info("Report written")
	return nil
}
