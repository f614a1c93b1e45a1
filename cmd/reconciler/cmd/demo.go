package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"dataset-reconciler/internal/sample"
)

var exportDir string

// demoCmd represents the demo command
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Reconcile the built-in sample datasets",
	Long: `Demo reconciles 40 sample vendor invoices against 36 payment records.
The pair contains exact matches, amount, date and party differences, and
records present in only one dataset.

Examples:
  reconciler demo
  reconciler demo --scope insights --output-format json
  reconciler demo --export-dir ./sample`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return validateOutput()
	},
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)

	demoCmd.Flags().StringVar(&exportDir, "export-dir", "", "also write the sample datasets as CSV files to this directory")
	addMatchingFlags(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	if exportDir != "" {
		invoicesPath, paymentsPath, err := sample.WriteCSV(exportDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Sample datasets written to %s and %s\n", invoicesPath, paymentsPath)
	}

	service, err := newService(cmd)
	if err != nil {
		return err
	}

	result, err := service.ProcessReconciliation(cmd.Context(), sample.Request())
	if err != nil {
		return err
	}

	return writeReport(cmd, result)
}
