// Package reconciler runs a complete reconciliation of two datasets.
//
// A run validates both column mappings, normalizes the rows, joins them with
// the matching engine and then derives the summary and insights from the
// finished result set. Every run recomputes from its inputs; nothing is cached
// between runs, so changing the tolerances and running again is always safe.
//
// Example usage:
//
//	service, err := reconciler.NewReconciliationService(nil, nil)
//	if err != nil {
//		return err
//	}
//
//	result, err := service.ProcessFiles(ctx, &reconciler.FileRequest{
//		FileA: "invoices.csv",
//		FileB: "payments.xlsx",
//	})
package reconciler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"dataset-reconciler/internal/insights"
	"dataset-reconciler/internal/matcher"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/parsers"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

//go:generate mockgen -destination=mocks/mock_loader.go -package=mock_reconciler dataset-reconciler/internal/reconciler DatasetLoader

// DatasetLoader reads a dataset from a path
type DatasetLoader interface {
	Load(ctx context.Context, path string) (*parsers.Dataset, error)
}

// Default dataset names used when a request leaves them empty
const (
	DefaultNameA = "File A"
	DefaultNameB = "File B"
)

// Config holds configuration options for the reconciliation service
type Config struct {
	// Engine holds the tolerances and worker settings used when a request
	// does not carry its own
	Engine *matcher.EngineConfig `json:"engine"`

	// Insights holds the recommendation thresholds
	Insights *insights.Config `json:"insights"`

	// ReportDuplicates adds duplicate document number diagnostics to results
	ReportDuplicates bool `json:"report_duplicates"`

	// CheckDataQuality reports values that normalization could not read
	CheckDataQuality bool `json:"check_data_quality"`

	// MaxIssues caps the data quality issues kept per dataset, 0 keeps all
	MaxIssues int `json:"max_issues"`
}

// DefaultConfig returns a default configuration for the reconciliation service
func DefaultConfig() *Config {
	return &Config{
		Engine:           matcher.DefaultEngineConfig(),
		Insights:         insights.DefaultConfig(),
		ReportDuplicates: true,
		CheckDataQuality: true,
		MaxIssues:        DefaultMaxIssues,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Engine == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "engine", nil, nil)
	}
	if c.MaxIssues < 0 {
		return errors.ConfigurationError(errors.CodeOutOfRange, "max_issues", c.MaxIssues, nil).
			WithSuggestion("Use 0 to keep every issue")
	}
	return c.Engine.Validate()
}

// DatasetInput is one side of a reconciliation: its rows and column mapping
type DatasetInput struct {
	Name    string               `json:"name"`
	Rows    []models.Row         `json:"-"`
	Mapping models.ColumnMapping `json:"mapping"`
}

// ReconciliationRequest reconciles two in-memory datasets
type ReconciliationRequest struct {
	A DatasetInput
	B DatasetInput

	// Config overrides the service engine configuration when set
	Config *matcher.EngineConfig
}

// FileRequest reconciles two dataset files. For each side the mapping is
// taken from Mapping, else from MappingFile, else detected from the headers.
type FileRequest struct {
	FileA string
	FileB string

	MappingA     *models.ColumnMapping
	MappingB     *models.ColumnMapping
	MappingFileA string
	MappingFileB string

	Config *matcher.EngineConfig
}

// Validate validates the file request
func (r *FileRequest) Validate() error {
	if r.FileA == "" {
		return errors.ValidationError(errors.CodeMissingField, "file_a", nil, nil).
			WithSuggestion("Provide the path of the first dataset")
	}
	if r.FileB == "" {
		return errors.ValidationError(errors.CodeMissingField, "file_b", nil, nil).
			WithSuggestion("Provide the path of the second dataset")
	}
	return nil
}

// DatasetInfo describes one input of a finished run
type DatasetInfo struct {
	Name         string               `json:"name"`
	Records      int                  `json:"records"`
	Mapping      models.ColumnMapping `json:"mapping"`
	AutoDetected bool                 `json:"autoDetected,omitempty"`
	Quality      *DataQuality         `json:"quality,omitempty"`
}

// ReconciliationResult contains the complete results of one run
type ReconciliationResult struct {
	RunID       string                `json:"runId"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Config      *matcher.EngineConfig `json:"config"`

	DatasetA DatasetInfo `json:"datasetA"`
	DatasetB DatasetInfo `json:"datasetB"`

	Summary  models.Summary     `json:"summary"`
	Results  *models.ResultSet  `json:"results"`
	Insights *insights.Insights `json:"insights"`

	// Duplicates lists repeated document numbers per dataset. Only the last
	// row of a repeated key in dataset B takes part in matching.
	Duplicates []*matcher.DuplicateDetectionResult `json:"duplicates,omitempty"`

	Duration time.Duration `json:"duration"`
}

// ReconciliationService orchestrates the complete reconciliation process
type ReconciliationService struct {
	config   *Config
	loader   DatasetLoader
	analyzer *insights.Analyzer
	logger   logger.Logger

	progressCallbacks []ProgressCallback
}

// NewReconciliationService creates a service. A nil config uses the defaults
// and a nil loader reads files with the default parser options.
func NewReconciliationService(config *Config, loader DatasetLoader) (*ReconciliationService, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if loader == nil {
		loader = parsers.NewLoader(nil)
	}

	return &ReconciliationService{
		config:   config,
		loader:   loader,
		analyzer: insights.NewAnalyzer(config.Insights),
		logger:   logger.GetGlobalLogger().WithComponent("reconciliation_service"),
	}, nil
}

// AddProgressCallback registers a function called after every stage of a run
func (rs *ReconciliationService) AddProgressCallback(callback ProgressCallback) {
	rs.progressCallbacks = append(rs.progressCallbacks, callback)
}

// GetConfiguration returns the service configuration
func (rs *ReconciliationService) GetConfiguration() *Config {
	return rs.config
}

// UpdateConfiguration replaces the service configuration
func (rs *ReconciliationService) UpdateConfiguration(config *Config) error {
	if config == nil {
		return errors.ConfigurationError(errors.CodeMissingConfig, "config", nil, nil)
	}
	if err := config.Validate(); err != nil {
		return err
	}
	rs.config = config
	rs.analyzer = insights.NewAnalyzer(config.Insights)
	return nil
}

// ProcessFiles loads both files concurrently, resolves their mappings and
// runs the reconciliation
func (rs *ReconciliationService) ProcessFiles(ctx context.Context, request *FileRequest) (*ReconciliationResult, error) {
	if request == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "request", nil, nil)
	}
	if err := request.Validate(); err != nil {
		return nil, err
	}

	op := logger.NewOperationLogger("load_datasets", rs.logger).WithFields(logger.Fields{
		"file_a": request.FileA,
		"file_b": request.FileB,
	})

	var dsA, dsB *parsers.Dataset
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dsA, err = rs.loader.Load(gctx, request.FileA)
		return err
	})
	g.Go(func() error {
		var err error
		dsB, err = rs.loader.Load(gctx, request.FileB)
		return err
	})
	if err := g.Wait(); err != nil {
		op.Error(err, "Failed to load datasets")
		return nil, errors.WrapIfNeeded(err, errors.CategoryFile, errors.CodeProcessingError, "failed to load datasets")
	}

	inputA, detectedA, err := resolveInput(dsA, request.MappingA, request.MappingFileA)
	if err != nil {
		op.Error(err, "Failed to resolve mapping for dataset A")
		return nil, err
	}
	inputB, detectedB, err := resolveInput(dsB, request.MappingB, request.MappingFileB)
	if err != nil {
		op.Error(err, "Failed to resolve mapping for dataset B")
		return nil, err
	}

	op.Success("Datasets loaded", logger.Fields{
		"rows_a":          len(dsA.Rows),
		"rows_b":          len(dsB.Rows),
		"auto_detected_a": detectedA,
		"auto_detected_b": detectedB,
	})

	result, err := rs.ProcessReconciliation(ctx, &ReconciliationRequest{
		A:      inputA,
		B:      inputB,
		Config: request.Config,
	})
	if err != nil {
		return nil, err
	}

	result.DatasetA.AutoDetected = detectedA
	result.DatasetB.AutoDetected = detectedB
	return result, nil
}

// resolveInput picks the mapping for a loaded dataset and reports whether it
// was detected from the headers
func resolveInput(ds *parsers.Dataset, mapping *models.ColumnMapping, mappingFile string) (DatasetInput, bool, error) {
	input := DatasetInput{Name: ds.Name, Rows: ds.Rows}

	switch {
	case mapping != nil:
		input.Mapping = *mapping
		return input, false, nil
	case mappingFile != "":
		m, err := parsers.LoadMappingFile(mappingFile)
		if err != nil {
			return input, false, err
		}
		input.Mapping = m
		return input, false, nil
	default:
		input.Mapping = parsers.DetectColumnMapping(ds.Headers)
		return input, true, nil
	}
}

// ProcessReconciliation validates both mappings, normalizes the rows, runs
// the matching engine and derives the summary and insights.
//
// A mapping that lacks a required field, or names a column absent from the
// first row, aborts the run with a configuration error before any matching.
func (rs *ReconciliationService) ProcessReconciliation(ctx context.Context, request *ReconciliationRequest) (*ReconciliationResult, error) {
	if request == nil {
		return nil, errors.ValidationError(errors.CodeMissingField, "request", nil, nil)
	}

	start := time.Now()
	runID := uuid.NewString()
	log := rs.logger.WithField("run_id", runID)

	engineConfig := rs.config.Engine
	if request.Config != nil {
		engineConfig = request.Config
	}

	nameA := datasetName(request.A.Name, DefaultNameA)
	nameB := datasetName(request.B.Name, DefaultNameB)

	log.WithFields(logger.Fields{
		"dataset_a": nameA,
		"dataset_b": nameB,
		"rows_a":    len(request.A.Rows),
		"rows_b":    len(request.B.Rows),
		"config":    engineConfig.String(),
	}).Info("Starting reconciliation")

	progress := rs.newProgress(runID)

	progress.begin(StageValidating)
	if err := engineConfig.Validate(); err != nil {
		log.WithError(err).Error("Invalid engine configuration")
		return nil, err
	}
	if err := parsers.ValidateMapping(nameA, request.A.Rows, request.A.Mapping); err != nil {
		log.WithError(err).Error("Invalid mapping for dataset A")
		return nil, err
	}
	if err := parsers.ValidateMapping(nameB, request.B.Rows, request.B.Mapping); err != nil {
		log.WithError(err).Error("Invalid mapping for dataset B")
		return nil, err
	}

	progress.advance(StageNormalizing)
	recordsA := parsers.Normalize(request.A.Rows, request.A.Mapping)
	recordsB := parsers.Normalize(request.B.Rows, request.B.Mapping)

	progress.advance(StageMatching)
	results, err := matcher.NewEngine(engineConfig).Reconcile(ctx, recordsA, recordsB)
	if err != nil {
		log.WithError(err).Error("Matching failed")
		return nil, errors.WrapIfNeeded(err, errors.CategoryReconciliation, errors.CodeMatchingFailed, "matching failed")
	}

	progress.advance(StageAnalyzing)
	result := &ReconciliationResult{
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Config:      engineConfig.Clone(),
		DatasetA:    DatasetInfo{Name: nameA, Records: len(recordsA), Mapping: request.A.Mapping},
		DatasetB:    DatasetInfo{Name: nameB, Records: len(recordsB), Mapping: request.B.Mapping},
		Results:     results,
	}

	// Summary, insights and diagnostics only read the finished result set
	var g errgroup.Group
	g.Go(func() error {
		result.Summary = CalculateSummary(results)
		return nil
	})
	g.Go(func() error {
		result.Insights = rs.analyzer.Generate(results)
		return nil
	})
	if rs.config.ReportDuplicates {
		g.Go(func() error {
			result.Duplicates = duplicateDiagnostics(nameA, recordsA, nameB, recordsB)
			return nil
		})
	}
	if rs.config.CheckDataQuality {
		g.Go(func() error {
			result.DatasetA.Quality = inspectRecords(nameA, recordsA, request.A.Mapping, rs.config.MaxIssues)
			result.DatasetB.Quality = inspectRecords(nameB, recordsB, request.B.Mapping, rs.config.MaxIssues)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.WrapIfNeeded(err, errors.CategoryInternal, errors.CodeUnexpectedError, "analysis failed")
	}

	result.Duration = time.Since(start)
	progress.complete()

	for _, info := range []DatasetInfo{result.DatasetA, result.DatasetB} {
		if info.Quality.HasIssues() {
			log.WithFields(logger.Fields{
				"dataset": info.Name,
				"issues":  info.Quality.Total,
			}).Warn("Dataset contains values that could not be read")
		}
	}

	log.WithFields(logger.Fields{
		"matched":         result.Summary.MatchedCount,
		"partial":         result.Summary.PartialCount,
		"unmatched_a":     result.Summary.UnmatchedACount,
		"unmatched_b":     result.Summary.UnmatchedBCount,
		"duplicate_sets":  len(result.Duplicates),
		"recommendations": len(result.Insights.Recommendations),
		"duration":        result.Duration.String(),
	}).Info("Reconciliation completed")

	return result, nil
}

// duplicateDiagnostics returns the duplicate groups of A then B, leaving
// out a dataset without duplicates
func duplicateDiagnostics(nameA string, recordsA []models.NormalizedRecord, nameB string, recordsB []models.NormalizedRecord) []*matcher.DuplicateDetectionResult {
	var out []*matcher.DuplicateDetectionResult
	if d := matcher.DetectDuplicates(nameA, recordsA); d.HasDuplicates() {
		out = append(out, d)
	}
	if d := matcher.DetectDuplicates(nameB, recordsB); d.HasDuplicates() {
		out = append(out, d)
	}
	return out
}

func datasetName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
