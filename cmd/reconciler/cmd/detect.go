package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/parsers"
	"dataset-reconciler/pkg/errors"
)

var (
	mappingOutput string
	previewRows   int
)

// detectCmd represents the detect command
var detectCmd = &cobra.Command{
	Use:   "detect FILE",
	Short: "Detect the column mapping of a dataset",
	Long: `Detect reads a dataset, guesses which columns hold the document number,
party, date, amount and tax, and prints the mapping as YAML with a preview of
the first rows. The mapping can be saved, edited and passed to reconcile with
--mapping-a or --mapping-b.

Examples:
  reconciler detect payments.csv
  reconciler detect payments.xlsx --sheet Payments --write payments.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	detectCmd.Flags().StringVarP(&mappingOutput, "write", "w", "", "save the detected mapping to this file")
	detectCmd.Flags().IntVarP(&previewRows, "preview", "n", parsers.DefaultPreviewRows, "rows to preview")
	addInputFlags(detectCmd)
}

func runDetect(cmd *cobra.Command, args []string) error {
	path := args[0]
	if err := validateFileExists(path, "file"); err != nil {
		return err
	}

	options, err := settings.LoaderOptions()
	if err != nil {
		return err
	}

	dataset, err := parsers.NewLoader(options).Load(cmd.Context(), path)
	if err != nil {
		return err
	}

	mapping := parsers.DetectColumnMapping(dataset.Headers)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Dataset: %s (%s, %d rows)\n\n", dataset.Name, dataset.Format, dataset.Len())
	fmt.Fprintf(out, "Detected mapping:\n")
	if err := parsers.WriteMapping(out, mapping); err != nil {
		return err
	}
	if missing := mapping.Missing(); len(missing) > 0 {
		fmt.Fprintf(out, "\nUnmapped fields: %s\n", joinFieldNames(missing))
	}

	fmt.Fprintf(out, "\nPreview:\n")
	if err := printPreview(out, dataset.Headers, parsers.PreviewRows(dataset.Rows, previewRows)); err != nil {
		return err
	}

	if mappingOutput != "" {
		if err := saveMapping(mappingOutput, mapping); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nMapping saved to %s\n", mappingOutput)
	}
	return nil
}

func saveMapping(path string, mapping models.ColumnMapping) error {
	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, path, err)
	}
	defer file.Close()

	return parsers.WriteMapping(file, mapping)
}

// printPreview prints rows as aligned columns in header order
func printPreview(w io.Writer, headers []string, rows []models.Row) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = cast.ToString(row[h])
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func joinFieldNames(fields []models.Field) string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.String()
	}
	return strings.Join(names, ", ")
}
