package reconciler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-reconciler/internal/matcher"
	"dataset-reconciler/internal/models"
	"dataset-reconciler/internal/parsers"
	"dataset-reconciler/internal/reconciler"
	mock_reconciler "dataset-reconciler/internal/reconciler/mocks"
	"dataset-reconciler/pkg/errors"
)

var (
	invoiceMapping = models.ColumnMapping{
		DocNo: "InvoiceNo", Party: "VendorName", Date: "Date", Amount: "Amount", Tax: "Tax",
	}
	paymentMapping = models.ColumnMapping{
		DocNo: "DocumentNo", Party: "Supplier", Date: "TransactionDate", Amount: "Total", Tax: "VAT",
	}
)

func invoices() []models.Row {
	return []models.Row{
		{"InvoiceNo": "INV001", "VendorName": "Acme Corp", "Date": "2024-01-15", "Amount": 1000.0, "Tax": 180.0},
		{"InvoiceNo": "INV006", "VendorName": "Global Tech", "Date": "2024-01-20", "Amount": "980", "Tax": "176.40"},
		{"InvoiceNo": "INV007", "VendorName": "Beta Ltd", "Date": "2024-01-22", "Amount": "1200", "Tax": "216"},
		{"InvoiceNo": "INV015", "VendorName": "Delta LLC", "Date": "2024-02-01", "Amount": "500", "Tax": "90"},
	}
}

func payments() []models.Row {
	return []models.Row{
		{"DocumentNo": "INV001", "Supplier": "ACME CORP", "TransactionDate": "15/01/2024", "Total": "1,000.00", "VAT": "180"},
		{"DocumentNo": "INV006", "Supplier": "GLOBAL TECH", "TransactionDate": "2024-01-21", "Total": "1020", "VAT": "183.60"},
		{"DocumentNo": "INV007", "Supplier": "Beta Ltd", "TransactionDate": "2024-01-22", "Total": "1450", "VAT": "216"},
		{"DocumentNo": "PAY900", "Supplier": "Omega", "TransactionDate": "2024-02-10", "Total": "75", "VAT": "0"},
	}
}

func newService(t *testing.T, loader reconciler.DatasetLoader) *reconciler.ReconciliationService {
	t.Helper()
	service, err := reconciler.NewReconciliationService(nil, loader)
	require.NoError(t, err)
	return service
}

func request() *reconciler.ReconciliationRequest {
	return &reconciler.ReconciliationRequest{
		A: reconciler.DatasetInput{Name: "invoices", Rows: invoices(), Mapping: invoiceMapping},
		B: reconciler.DatasetInput{Name: "payments", Rows: payments(), Mapping: paymentMapping},
	}
}

func TestProcessReconciliation(t *testing.T) {
	service := newService(t, nil)

	result, err := service.ProcessReconciliation(context.Background(), request())
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.False(t, result.GeneratedAt.IsZero())
	assert.Equal(t, models.DefaultComparisonConfig(), result.Config.Comparison)

	assert.Equal(t, "invoices", result.DatasetA.Name)
	assert.Equal(t, 4, result.DatasetA.Records)
	assert.Equal(t, paymentMapping, result.DatasetB.Mapping)

	results := result.Results
	require.Len(t, results.Matched, 2)
	assert.Equal(t, "INV001", results.Matched[0].DocNo)
	assert.Equal(t, "INV006", results.Matched[1].DocNo)

	require.Len(t, results.Partial, 1)
	assert.Equal(t, "INV007", results.Partial[0].DocNo)
	assert.Equal(t, []models.Field{models.FieldAmount}, results.Partial[0].DifferenceFields())
	assert.Equal(t, "250", results.Partial[0].Variance.Amount.String())

	require.Len(t, results.UnmatchedA, 1)
	assert.Equal(t, "INV015", results.UnmatchedA[0].DocNo)
	require.Len(t, results.UnmatchedB, 1)
	assert.Equal(t, "PAY900", results.UnmatchedB[0].DocNo)

	summary := result.Summary
	assert.Equal(t, 5, summary.TotalRecords)
	assert.Equal(t, "40", summary.MatchedPercentage.String())
	assert.Equal(t, "20", summary.PartialPercentage.String())
	assert.Equal(t, "40", summary.UnmatchedPercentage.String())
	// 250 + 500 - 75
	assert.Equal(t, "675", summary.TotalVariance.Amount.String())
	// 0 + 90 - 0
	assert.Equal(t, "90", summary.TotalVariance.Tax.String())

	require.NotNil(t, result.Insights)
	assert.Equal(t, "amount", result.Insights.ProblematicFields.MostProblematic)
	assert.NotEmpty(t, result.Insights.Recommendations)
	assert.Empty(t, result.Duplicates)
}

func TestProcessReconciliation_MappingErrorsAbort(t *testing.T) {
	service := newService(t, nil)

	t.Run("unmapped field in A", func(t *testing.T) {
		req := request()
		req.A.Mapping.Party = ""

		_, err := service.ProcessReconciliation(context.Background(), req)
		require.Error(t, err)
		re, ok := errors.AsReconcilerError(err)
		require.True(t, ok)
		assert.Equal(t, errors.CategoryConfiguration, re.Category)
		assert.Equal(t, errors.CodeUnmappedField, re.Code)
		assert.Equal(t, "invoices", re.Context["dataset"])
	})

	t.Run("missing column in B", func(t *testing.T) {
		req := request()
		req.B.Mapping.Amount = "Amount"

		_, err := service.ProcessReconciliation(context.Background(), req)
		re, ok := errors.AsReconcilerError(err)
		require.True(t, ok)
		assert.Equal(t, errors.CodeMissingColumn, re.Code)
		assert.Equal(t, "payments", re.Context["dataset"])
	})

	t.Run("empty dataset", func(t *testing.T) {
		req := request()
		req.B.Rows = nil

		_, err := service.ProcessReconciliation(context.Background(), req)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	})

	t.Run("unmapped tax is allowed", func(t *testing.T) {
		req := request()
		req.A.Mapping.Tax = ""
		req.B.Mapping.Tax = ""

		result, err := service.ProcessReconciliation(context.Background(), req)
		require.NoError(t, err)
		assert.True(t, result.Summary.TotalVariance.Tax.IsZero())
	})
}

func TestProcessReconciliation_DefaultNames(t *testing.T) {
	req := request()
	req.A.Name = ""
	req.B.Name = ""
	req.A.Mapping.DocNo = ""

	_, err := newService(t, nil).ProcessReconciliation(context.Background(), req)
	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, reconciler.DefaultNameA, re.Context["dataset"])
}

func TestProcessReconciliation_ConfigOverrideRecomputes(t *testing.T) {
	service := newService(t, nil)

	strict, err := service.ProcessReconciliation(context.Background(), &reconciler.ReconciliationRequest{
		A:      request().A,
		B:      request().B,
		Config: matcher.StrictEngineConfig(),
	})
	require.NoError(t, err)

	relaxed := request()
	relaxed.Config = matcher.DefaultEngineConfig()
	relaxed.Config.Comparison.AmountTolerancePercent = 20
	loose, err := service.ProcessReconciliation(context.Background(), relaxed)
	require.NoError(t, err)

	// strict: INV006 differs on amount, tax and date
	assert.Equal(t, 1, strict.Summary.MatchedCount)
	assert.Equal(t, 2, strict.Summary.PartialCount)
	assert.Equal(t, 3, loose.Summary.MatchedCount)
	assert.Equal(t, 0, loose.Summary.PartialCount)
	assert.NotEqual(t, strict.RunID, loose.RunID)
}

func TestProcessReconciliation_InvalidOverride(t *testing.T) {
	req := request()
	req.Config = matcher.DefaultEngineConfig()
	req.Config.Comparison.DateToleranceDays = 31

	_, err := newService(t, nil).ProcessReconciliation(context.Background(), req)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestProcessReconciliation_Duplicates(t *testing.T) {
	req := request()
	req.B.Rows = append(req.B.Rows, models.Row{
		"DocumentNo": "INV007", "Supplier": "Beta Ltd", "TransactionDate": "2024-01-22", "Total": "1200", "VAT": "216",
	})

	result, err := newService(t, nil).ProcessReconciliation(context.Background(), req)
	require.NoError(t, err)

	// the later INV007 row wins the join
	assert.Len(t, result.Results.Matched, 3)
	assert.Empty(t, result.Results.Partial)

	require.Len(t, result.Duplicates, 1)
	assert.Equal(t, "payments", result.Duplicates[0].Dataset)
	assert.Equal(t, 1, result.Duplicates[0].ShadowedCount())
	assert.Equal(t, 4, result.Duplicates[0].Groups[0].KeptRowIndex)
}

func TestProcessReconciliation_DuplicateReportingDisabled(t *testing.T) {
	config := reconciler.DefaultConfig()
	config.ReportDuplicates = false
	service, err := reconciler.NewReconciliationService(config, nil)
	require.NoError(t, err)

	req := request()
	req.A.Rows = append(req.A.Rows, req.A.Rows[0])

	result, err := service.ProcessReconciliation(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, result.Duplicates)
}

func TestProcessReconciliation_DataQuality(t *testing.T) {
	req := request()
	req.A.Rows[1]["Amount"] = "n/a"
	req.B.Rows[3]["TransactionDate"] = "sometime"
	req.B.Rows[3]["Supplier"] = " "

	result, err := newService(t, nil).ProcessReconciliation(context.Background(), req)
	require.NoError(t, err)

	qa := result.DatasetA.Quality
	require.NotNil(t, qa)
	require.Equal(t, 1, qa.Total)
	assert.Equal(t, "unreadable amount at invoices row 2 column 'Amount' (value 'n/a')", qa.Issues[0].Error())

	qb := result.DatasetB.Quality
	require.NotNil(t, qb)
	require.Equal(t, 2, qb.Total)
	assert.Equal(t, "Supplier", qb.Issues[0].Location.Column)
	assert.Equal(t, "TransactionDate", qb.Issues[1].Location.Column)

	// the unreadable amount is normalized to zero and still joined
	require.Len(t, result.Results.Partial, 2)
	assert.Equal(t, "INV006", result.Results.Partial[0].DocNo)
}

func TestProcessReconciliation_DataQualityDisabled(t *testing.T) {
	config := reconciler.DefaultConfig()
	config.CheckDataQuality = false
	service, err := reconciler.NewReconciliationService(config, nil)
	require.NoError(t, err)

	result, err := service.ProcessReconciliation(context.Background(), request())
	require.NoError(t, err)
	assert.Nil(t, result.DatasetA.Quality)
	assert.Nil(t, result.DatasetB.Quality)
}

func TestProcessReconciliation_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newService(t, nil).ProcessReconciliation(ctx, request())
	require.Error(t, err)
	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeCancelled, re.Code)
}

func TestProcessReconciliation_Progress(t *testing.T) {
	service := newService(t, nil)

	var stages []reconciler.Stage
	var last *reconciler.ReconciliationProgress
	service.AddProgressCallback(func(p *reconciler.ReconciliationProgress) {
		stages = append(stages, p.Stage)
		last = p
	})

	result, err := service.ProcessReconciliation(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, []reconciler.Stage{
		reconciler.StageValidating,
		reconciler.StageNormalizing,
		reconciler.StageMatching,
		reconciler.StageAnalyzing,
		reconciler.StageCompleted,
	}, stages)
	require.NotNil(t, last)
	assert.Equal(t, result.RunID, last.RunID)
	assert.Equal(t, float64(100), last.Stats.Percentage)
}

func TestNewReconciliationService_InvalidConfig(t *testing.T) {
	config := reconciler.DefaultConfig()
	config.Engine.Workers = -1
	_, err := reconciler.NewReconciliationService(config, nil)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))

	_, err = reconciler.NewReconciliationService(&reconciler.Config{}, nil)
	assert.Error(t, err)
}

func TestUpdateConfiguration(t *testing.T) {
	service := newService(t, nil)

	assert.Error(t, service.UpdateConfiguration(nil))

	config := reconciler.DefaultConfig()
	config.Engine = matcher.RelaxedEngineConfig()
	require.NoError(t, service.UpdateConfiguration(config))
	assert.Equal(t, 10.0, service.GetConfiguration().Engine.Comparison.AmountTolerancePercent)
}

func TestProcessFiles_WithMockLoader(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loader := mock_reconciler.NewMockDatasetLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "invoices.csv").Return(&parsers.Dataset{
		Name:    "invoices.csv",
		Headers: []string{"InvoiceNo", "VendorName", "Date", "Amount", "Tax"},
		Rows:    invoices(),
	}, nil)
	loader.EXPECT().Load(gomock.Any(), "payments.json").Return(&parsers.Dataset{
		Name:    "payments.json",
		Headers: []string{"DocumentNo", "Supplier", "TransactionDate", "Total", "VAT"},
		Rows:    payments(),
	}, nil)

	result, err := newService(t, loader).ProcessFiles(context.Background(), &reconciler.FileRequest{
		FileA: "invoices.csv",
		FileB: "payments.json",
	})
	require.NoError(t, err)

	assert.True(t, result.DatasetA.AutoDetected)
	assert.True(t, result.DatasetB.AutoDetected)
	assert.Equal(t, invoiceMapping, result.DatasetA.Mapping)
	assert.Equal(t, paymentMapping, result.DatasetB.Mapping)
	assert.Equal(t, "invoices.csv", result.DatasetA.Name)
	assert.Equal(t, 2, result.Summary.MatchedCount)
}

func TestProcessFiles_ExplicitMappingWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loader := mock_reconciler.NewMockDatasetLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(&parsers.Dataset{
		Name:    "data",
		Headers: []string{"Ref", "Who", "When", "Net", "Levy"},
		Rows: []models.Row{
			{"Ref": "X1", "Who": "Acme", "When": "2024-01-01", "Net": "10", "Levy": "1"},
		},
	}, nil).Times(2)

	mapping := models.ColumnMapping{DocNo: "Ref", Party: "Who", Date: "When", Amount: "Net", Tax: "Levy"}
	result, err := newService(t, loader).ProcessFiles(context.Background(), &reconciler.FileRequest{
		FileA:    "a.csv",
		FileB:    "b.csv",
		MappingA: &mapping,
		MappingB: &mapping,
	})
	require.NoError(t, err)
	assert.False(t, result.DatasetA.AutoDetected)
	assert.Equal(t, 1, result.Summary.MatchedCount)
}

func TestProcessFiles_LoaderError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loadErr := errors.FileError(errors.CodeFileNotFound, "missing.csv", os.ErrNotExist)
	loader := mock_reconciler.NewMockDatasetLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), "missing.csv").Return(nil, loadErr)
	loader.EXPECT().Load(gomock.Any(), "payments.csv").Return(&parsers.Dataset{Rows: payments()}, nil).AnyTimes()

	_, err := newService(t, loader).ProcessFiles(context.Background(), &reconciler.FileRequest{
		FileA: "missing.csv",
		FileB: "payments.csv",
	})
	require.Error(t, err)
	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeFileNotFound, re.Code)
}

func TestProcessFiles_Validation(t *testing.T) {
	service := newService(t, nil)

	_, err := service.ProcessFiles(context.Background(), nil)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = service.ProcessFiles(context.Background(), &reconciler.FileRequest{FileA: "a.csv"})
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestProcessFiles_FromDisk(t *testing.T) {
	dir := t.TempDir()

	fileA := filepath.Join(dir, "invoices.csv")
	require.NoError(t, os.WriteFile(fileA, []byte(
		"InvoiceNo,VendorName,Date,Amount,Tax\n"+
			"INV001,Acme Corp,2024-01-15,1000,180\n"+
			"INV002,Beta Ltd,2024-01-16,\"2,500.00\",450\n"), 0644))

	fileB := filepath.Join(dir, "payments.json")
	require.NoError(t, os.WriteFile(fileB, []byte(`[
		{"Ref": "INV001", "Payee": "ACME CORP", "Paid": "2024-01-16", "Gross": 1000, "Levy": 180},
		{"Ref": "INV003", "Payee": "Gamma", "Paid": "2024-01-20", "Gross": 300, "Levy": 0}
	]`), 0644))

	mappingFile := filepath.Join(dir, "mapping-b.yaml")
	require.NoError(t, os.WriteFile(mappingFile, []byte(
		"docNo: Ref\nparty: Payee\ndate: Paid\namount: Gross\ntax: Levy\n"), 0644))

	result, err := newService(t, nil).ProcessFiles(context.Background(), &reconciler.FileRequest{
		FileA:        fileA,
		FileB:        fileB,
		MappingFileB: mappingFile,
	})
	require.NoError(t, err)

	assert.True(t, result.DatasetA.AutoDetected)
	assert.False(t, result.DatasetB.AutoDetected)
	assert.Equal(t, "Payee", result.DatasetB.Mapping.Party)

	assert.Equal(t, 1, result.Summary.MatchedCount)
	assert.Equal(t, 1, result.Summary.UnmatchedACount)
	assert.Equal(t, 1, result.Summary.UnmatchedBCount)
	assert.Equal(t, "2500", result.Results.UnmatchedA[0].Variance.Amount.String())
}

func TestProcessFiles_MappingFileError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	loader := mock_reconciler.NewMockDatasetLoader(ctrl)
	loader.EXPECT().Load(gomock.Any(), gomock.Any()).Return(&parsers.Dataset{Rows: invoices()}, nil).Times(2)

	_, err := newService(t, loader).ProcessFiles(context.Background(), &reconciler.FileRequest{
		FileA:        "a.csv",
		FileB:        "b.csv",
		MappingFileA: filepath.Join(t.TempDir(), "missing.yaml"),
	})
	assert.True(t, errors.IsCategory(err, errors.CategoryFile))
}
