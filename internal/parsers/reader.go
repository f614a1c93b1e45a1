// Package parsers loads tabular datasets and turns them into canonical records.
//
// Ingestion reads CSV, JSON and XLSX files into rows keyed by header. The
// normalizer then uses a ColumnMapping to reduce each row to the canonical
// docNo, party, date, amount and tax fields consumed by the matcher.
//
// Example usage:
//
//	ds, err := parsers.LoadDataset(ctx, "invoices.csv", nil)
//	mapping := parsers.DetectColumnMapping(ds.Headers)
//	if err := parsers.ValidateMapping(ds.Name, ds.Rows, mapping); err != nil {
//		return err
//	}
//	records := parsers.Normalize(ds.Rows, mapping)
package parsers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

// Format identifies an input file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
)

// cancelCheckInterval is how many rows are read between context checks
const cancelCheckInterval = 1000

// DetectFormat picks the format from the file extension
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	default:
		return "", errors.FileError(errors.CodeUnsupportedFormat, path, nil)
	}
}

// Options controls how input files are read
type Options struct {
	// Encoding of CSV input: utf-8, windows-1252 or latin1
	Encoding string `json:"encoding" mapstructure:"encoding"`
	// Sheet to read from XLSX input; the first sheet when empty
	Sheet     string `json:"sheet" mapstructure:"sheet"`
	Delimiter rune   `json:"delimiter" mapstructure:"delimiter"`
}

// DefaultOptions returns options for comma-separated UTF-8 input
func DefaultOptions() *Options {
	return &Options{
		Encoding:  "utf-8",
		Delimiter: ',',
	}
}

// Validate checks the options
func (o *Options) Validate() error {
	if _, err := lookupEncoding(o.Encoding); err != nil {
		return err
	}
	if o.Delimiter == '\n' || o.Delimiter == '\r' || o.Delimiter == '"' {
		return errors.ConfigurationError(errors.CodeInvalidConfig, "delimiter", string(o.Delimiter), nil)
	}
	return nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252, nil
	case "latin1", "latin-1", "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15", "latin9":
		return charmap.ISO8859_15, nil
	default:
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "encoding", name, nil).
			WithSuggestion("use one of utf-8, windows-1252, latin1, iso-8859-15")
	}
}

// Dataset is a loaded table: headers in file order and one row per record
type Dataset struct {
	Name    string       `json:"name"`
	Path    string       `json:"path,omitempty"`
	Format  Format       `json:"format"`
	Headers []string     `json:"headers"`
	Rows    []models.Row `json:"rows"`
}

// Len returns the number of rows
func (d *Dataset) Len() int {
	return len(d.Rows)
}

// Loader reads datasets from disk
type Loader struct {
	options *Options
	logger  logger.Logger
}

// NewLoader creates a Loader with the given options
func NewLoader(options *Options) *Loader {
	if options == nil {
		options = DefaultOptions()
	}
	if options.Delimiter == 0 {
		options.Delimiter = ','
	}

	return &Loader{
		options: options,
		logger:  logger.GetGlobalLogger().WithComponent("loader"),
	}
}

// LoadDataset reads path with the given options
func LoadDataset(ctx context.Context, path string, options *Options) (*Dataset, error) {
	return NewLoader(options).Load(ctx, path)
}

// Load reads the file at path, choosing the reader by extension
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	if err := l.options.Validate(); err != nil {
		return nil, err
	}

	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	log := l.logger.WithFields(logger.Fields{
		"file_path": path,
		"format":    format,
	})
	log.Debug("Loading dataset")

	ds := &Dataset{
		Name:   filepath.Base(path),
		Path:   path,
		Format: format,
	}

	switch format {
	case FormatXLSX:
		ds.Headers, ds.Rows, err = l.readXLSX(ctx, path)
	default:
		var file *os.File
		file, err = openFile(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		if format == FormatJSON {
			ds.Headers, ds.Rows, err = ReadJSON(file, path)
		} else {
			ds.Headers, ds.Rows, err = l.ReadCSV(ctx, file, path)
		}
	}
	if err != nil {
		log.WithError(err).Warn("Failed to load dataset")
		return nil, err
	}

	log.WithFields(logger.Fields{
		"headers": len(ds.Headers),
		"rows":    len(ds.Rows),
	}).Info("Dataset loaded")

	return ds, nil
}

func openFile(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		if os.IsPermission(err) {
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		return nil, errors.FileError(errors.CodeDirectoryError, path, err)
	}
	return file, nil
}

// ReadCSV parses CSV content with a header row. Headers are trimmed and
// blank lines are skipped. A row whose field count differs from the header
// is a parse error.
func (l *Loader) ReadCSV(ctx context.Context, r io.Reader, name string) ([]string, []models.Row, error) {
	enc, err := lookupEncoding(l.options.Encoding)
	if err != nil {
		return nil, nil, err
	}
	decodeUTF8 := enc == unicode.UTF8
	if !decodeUTF8 {
		r = transform.NewReader(r, enc.NewDecoder())
	}

	reader := csv.NewReader(r)
	reader.Comma = l.options.Delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return []string{}, []models.Row{}, nil
	}
	if err != nil {
		return nil, nil, csvError(name, err)
	}

	headers := cleanHeaders(header)
	rows := make([]models.Row, 0)

	for count := 0; ; count++ {
		if count%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, errors.ReconciliationError(errors.CodeCancelled, "loading "+name, err)
			}
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, csvError(name, err)
		}

		line, _ := reader.FieldPos(0)
		if isEmptyRecord(record) {
			continue
		}
		if decodeUTF8 && !validUTF8(record) {
			return nil, nil, errors.ParseError(errors.CodeEncodingError, name, line, nil)
		}
		if len(record) != len(headers) {
			return nil, nil, errors.ParseError(errors.CodeInvalidData, name, line,
				fmt.Errorf("expected %d fields, found %d", len(headers), len(record)))
		}

		row := make(models.Row, len(headers))
		for i, h := range headers {
			row[h] = record[i]
		}
		rows = append(rows, row)
	}

	l.logger.WithFields(logger.Fields{"file": name, "rows": len(rows)}).Debug("Parsed CSV")
	return headers, rows, nil
}

func csvError(name string, err error) error {
	if perr, ok := err.(*csv.ParseError); ok {
		return errors.ParseError(errors.CodeInvalidFormat, name, perr.Line, err)
	}
	return errors.ParseError(errors.CodeInvalidFormat, name, 0, err)
}

// cleanHeaders trims whitespace and a leading byte order mark
func cleanHeaders(headers []string) []string {
	cleaned := make([]string, len(headers))
	for i, h := range headers {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}

func isEmptyRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func validUTF8(record []string) bool {
	for _, field := range record {
		if !utf8.ValidString(field) {
			return false
		}
	}
	return true
}

// ReadJSON parses an array of objects, or a single object, into rows.
// Headers are the keys of the first object in document order.
func ReadJSON(r io.Reader, name string) ([]string, []models.Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, errors.FileError(errors.CodeDirectoryError, name, err)
	}

	trimmed := bytes.TrimSpace(data)
	var raw []json.RawMessage
	switch {
	case len(trimmed) > 0 && trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, nil, jsonError(name, err)
		}
	default:
		raw = []json.RawMessage{trimmed}
	}

	rows := make([]models.Row, 0, len(raw))
	for _, item := range raw {
		dec := json.NewDecoder(bytes.NewReader(item))
		dec.UseNumber()

		var row models.Row
		if err := dec.Decode(&row); err != nil {
			return nil, nil, jsonError(name, err)
		}
		if row == nil {
			row = models.Row{}
		}
		rows = append(rows, row)
	}

	headers := []string{}
	if len(raw) > 0 {
		headers, err = objectKeys(raw[0])
		if err != nil {
			return nil, nil, jsonError(name, err)
		}
	}

	return headers, rows, nil
}

// objectKeys returns the top-level keys of a JSON object in document order
func objectKeys(obj json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(obj))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return []string{}, nil
	}

	var keys []string
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func jsonError(name string, err error) error {
	rerr := errors.ParseError(errors.CodeInvalidFormat, name, 0, err).
		WithSuggestion("provide a JSON array of objects or a single object")
	if serr, ok := err.(*json.SyntaxError); ok {
		rerr.WithContext("offset", serr.Offset)
	}
	return rerr
}

func (l *Loader) readXLSX(ctx context.Context, path string) ([]string, []models.Row, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errors.FileError(errors.CodeFileNotFound, path, err)
		}
		return nil, nil, errors.FileError(errors.CodeFilePermission, path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, err)
	}
	defer f.Close()

	sheet := l.options.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return []string{}, []models.Row{}, nil
		}
		sheet = sheets[0]
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, errors.ParseError(errors.CodeInvalidFormat, path, 0, err).
			WithContext("sheet", sheet)
	}

	return l.rowsFromGrid(ctx, records, path)
}

// rowsFromGrid converts a header-first grid of cells into rows.
// Short rows are padded with empty cells.
func (l *Loader) rowsFromGrid(ctx context.Context, grid [][]string, name string) ([]string, []models.Row, error) {
	if len(grid) == 0 {
		return []string{}, []models.Row{}, nil
	}

	headers := cleanHeaders(grid[0])
	rows := make([]models.Row, 0, len(grid)-1)
	for i, record := range grid[1:] {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, errors.ReconciliationError(errors.CodeCancelled, "loading "+name, err)
			}
		}
		if isEmptyRecord(record) {
			continue
		}

		row := make(models.Row, len(headers))
		for j, h := range headers {
			if j < len(record) {
				row[h] = record[j]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}

	l.logger.WithFields(logger.Fields{"file": name, "rows": len(rows)}).Debug("Parsed sheet")
	return headers, rows, nil
}
