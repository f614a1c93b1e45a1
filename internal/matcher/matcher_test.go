package matcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/errors"
)

func record(index int, docNo, party, date, amount, tax string) models.NormalizedRecord {
	return models.NormalizedRecord{
		DocNo:    docNo,
		Party:    party,
		Date:     date,
		Amount:   d(amount),
		Tax:      d(tax),
		RowIndex: index,
	}
}

func reconcile(t *testing.T, config *EngineConfig, a, b []models.NormalizedRecord) *models.ResultSet {
	t.Helper()
	results, err := NewEngine(config).Reconcile(context.Background(), a, b)
	require.NoError(t, err)
	return results
}

func docNos(records []models.ReconciliationRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.DocNo)
	}
	return out
}

func TestReconcile_ScenarioA_TolerancePass(t *testing.T) {
	a := []models.NormalizedRecord{record(0, "INV006", "Acme", "2024-01-20", "980", "176.40")}
	b := []models.NormalizedRecord{record(0, "INV006", "ACME", "2024-01-21", "1020", "183.60")}

	results := reconcile(t, nil, a, b)

	require.Len(t, results.Matched, 1)
	matched := results.Matched[0]
	assert.Equal(t, models.RecordMatched, matched.Type)
	assert.True(t, matched.Variance.IsZero(), "matched variance is forced to zero")
	assert.Empty(t, matched.Differences)
	assert.NotNil(t, matched.FileA)
	assert.NotNil(t, matched.FileB)
}

func TestReconcile_ScenarioB_ToleranceFail(t *testing.T) {
	a := []models.NormalizedRecord{record(0, "INV010", "Acme", "2024-01-20", "1200", "216")}
	b := []models.NormalizedRecord{record(0, "INV010", "Acme", "2024-01-20", "1450", "216")}

	results := reconcile(t, nil, a, b)

	require.Len(t, results.Partial, 1)
	partial := results.Partial[0]
	assert.Equal(t, []models.Field{models.FieldAmount}, partial.DifferenceFields())
	assert.Equal(t, "250", partial.Variance.Amount.String())
	assert.True(t, partial.Variance.Tax.IsZero())
}

func TestReconcile_ScenarioC_Unmatched(t *testing.T) {
	a := []models.NormalizedRecord{
		record(0, "INV001", "Acme", "2024-01-01", "100", "18"),
		record(1, "INV015", "Beta", "2024-01-02", "750", "135"),
	}
	b := []models.NormalizedRecord{
		record(0, "INV001", "Acme", "2024-01-01", "100", "18"),
		record(1, "PAY999", "Gamma", "2024-01-03", "300", "54"),
	}

	results := reconcile(t, nil, a, b)

	require.Len(t, results.UnmatchedA, 1)
	ua := results.UnmatchedA[0]
	assert.Equal(t, "INV015", ua.DocNo)
	assert.Nil(t, ua.FileB)
	assert.Equal(t, "750", ua.Variance.Amount.String())
	assert.Equal(t, "135", ua.Variance.Tax.String())
	assert.Empty(t, ua.Differences)

	require.Len(t, results.UnmatchedB, 1)
	ub := results.UnmatchedB[0]
	assert.Equal(t, "PAY999", ub.DocNo)
	assert.Nil(t, ub.FileA)
	assert.Equal(t, "-300", ub.Variance.Amount.String())
	assert.Equal(t, "-54", ub.Variance.Tax.String())
}

func TestReconcile_ScenarioD_DateFallback(t *testing.T) {
	a := []models.NormalizedRecord{record(0, "X1", "Acme", "Q1-2024", "10", "0")}
	b := []models.NormalizedRecord{record(0, "X1", "Acme", "Q1-2024", "10", "0")}

	config := DefaultEngineConfig()
	config.Comparison.DateToleranceDays = 0
	results := reconcile(t, config, a, b)

	assert.Len(t, results.Matched, 1)
}

func TestReconcile_PartialVarianceIsLiteralDifference(t *testing.T) {
	// Party mismatch only; amounts drift within tolerance but variance is still B - A
	a := []models.NormalizedRecord{record(0, "INV002", "Acme", "2024-01-01", "1000", "180")}
	b := []models.NormalizedRecord{record(0, "INV002", "Other Co", "2024-01-01", "1010", "181")}

	results := reconcile(t, nil, a, b)

	require.Len(t, results.Partial, 1)
	assert.Equal(t, []models.Field{models.FieldParty}, results.Partial[0].DifferenceFields())
	assert.Equal(t, "10", results.Partial[0].Variance.Amount.String())
	assert.Equal(t, "1", results.Partial[0].Variance.Tax.String())
}

func TestReconcile_DuplicateKeysInB(t *testing.T) {
	a := []models.NormalizedRecord{record(0, "INV001", "Acme", "2024-01-01", "100", "0")}
	b := []models.NormalizedRecord{
		record(0, "INV001", "Acme", "2024-01-01", "500", "0"),
		record(1, "DUP", "Beta", "2024-01-01", "1", "0"),
		record(2, "INV001", "Acme", "2024-01-01", "100", "0"),
		record(3, "DUP", "Beta", "2024-01-01", "2", "0"),
	}

	results := reconcile(t, nil, a, b)

	require.Len(t, results.Matched, 1, "last B row with the key is joined")
	assert.Equal(t, 2, results.Matched[0].FileB.RowIndex)
	assert.Equal(t, []string{"DUP", "DUP"}, docNos(results.UnmatchedB))
	assert.Empty(t, results.Partial)
}

func TestReconcile_JoinIsCaseSensitive(t *testing.T) {
	a := []models.NormalizedRecord{record(0, "inv001", "Acme", "2024-01-01", "1", "0")}
	b := []models.NormalizedRecord{record(0, "INV001", "Acme", "2024-01-01", "1", "0")}

	results := reconcile(t, nil, a, b)
	assert.Len(t, results.UnmatchedA, 1)
	assert.Len(t, results.UnmatchedB, 1)
}

func TestReconcile_EmptyInputs(t *testing.T) {
	results := reconcile(t, nil, nil, nil)
	assert.Equal(t, 0, results.Total())
	assert.NotNil(t, results.Matched)

	b := []models.NormalizedRecord{record(0, "B1", "x", "2024-01-01", "5", "1")}
	results = reconcile(t, nil, nil, b)
	assert.Equal(t, []string{"B1"}, docNos(results.UnmatchedB))
}

func TestReconcile_OrderAndPartition(t *testing.T) {
	a, b := generateDatasets(500)

	results := reconcile(t, nil, a, b)

	// every A row is accounted for exactly once
	assert.Equal(t, len(a), len(results.Matched)+len(results.Partial)+len(results.UnmatchedA))

	keysA := make(map[string]bool)
	for _, r := range a {
		keysA[r.DocNo] = true
	}
	expectedB := 0
	for _, r := range b {
		if !keysA[r.DocNo] {
			expectedB++
		}
	}
	assert.Equal(t, expectedB, len(results.UnmatchedB))

	// A-derived sequences follow A order, unmatchedB follows B order
	for _, seq := range [][]models.ReconciliationRecord{results.Matched, results.Partial, results.UnmatchedA} {
		for i := 1; i < len(seq); i++ {
			assert.Less(t, seq[i-1].FileA.RowIndex, seq[i].FileA.RowIndex)
		}
	}
	for i := 1; i < len(results.UnmatchedB); i++ {
		assert.Less(t, results.UnmatchedB[i-1].FileB.RowIndex, results.UnmatchedB[i].FileB.RowIndex)
	}

	for _, m := range results.Matched {
		assert.True(t, m.Variance.IsZero())
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	a, b := generateDatasets(300)

	first := reconcile(t, nil, a, b)
	second := reconcile(t, nil, a, b)
	assert.Equal(t, first, second)
}

func TestReconcile_ParallelMatchesSequential(t *testing.T) {
	a, b := generateDatasets(2000)
	sequential := reconcile(t, nil, a, b)

	for _, workers := range []int{2, 3, 8} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			config := DefaultEngineConfig()
			config.Workers = workers
			config.MinShardSize = 10

			parallel := reconcile(t, config, a, b)
			assert.Equal(t, sequential, parallel)
		})
	}
}

func TestReconcile_Cancelled(t *testing.T) {
	a, b := generateDatasets(10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(nil).Reconcile(ctx, a, b)
	require.Error(t, err)
	rerr, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeCancelled, rerr.Code)
}

func TestReconcile_InvalidConfig(t *testing.T) {
	config := DefaultEngineConfig()
	config.Comparison.AmountTolerancePercent = 50

	_, err := NewEngine(config).Reconcile(context.Background(), nil, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestReconcile_ToleranceChangeRecomputes(t *testing.T) {
	a := []models.NormalizedRecord{record(0, "INV010", "Acme", "2024-01-20", "1200", "0")}
	b := []models.NormalizedRecord{record(0, "INV010", "Acme", "2024-01-20", "1450", "0")}

	assert.Len(t, reconcile(t, nil, a, b).Partial, 1)

	config := DefaultEngineConfig()
	config.Comparison.AmountTolerancePercent = 20
	assert.Len(t, reconcile(t, config, a, b).Matched, 1)
}

func TestShardBounds(t *testing.T) {
	e := NewEngine(&EngineConfig{Comparison: models.DefaultComparisonConfig(), Workers: 4, MinShardSize: 10})

	assert.Equal(t, [][2]int{{0, 25}, {25, 50}, {50, 75}, {75, 100}}, e.shardBounds(100))
	assert.Equal(t, [][2]int{{0, 10}, {10, 15}}, e.shardBounds(15))
	assert.Equal(t, [][2]int{{0, 0}}, e.shardBounds(0))

	sequential := NewEngine(nil)
	assert.Equal(t, [][2]int{{0, 100}}, sequential.shardBounds(100))
}

func TestEngineConfig(t *testing.T) {
	for _, name := range []string{"", "default", "strict", "relaxed", "parallel"} {
		config, err := PresetConfig(name)
		require.NoError(t, err, name)
		assert.NoError(t, config.Validate(), name)
	}

	_, err := PresetConfig("aggressive")
	assert.Error(t, err)

	config := DefaultEngineConfig()
	config.Workers = MaxWorkers + 1
	assert.Error(t, config.Validate())

	clone := DefaultEngineConfig().Clone()
	clone.Workers = 9
	assert.Equal(t, 1, DefaultEngineConfig().Workers)
	assert.Contains(t, clone.String(), "Workers: 9")
}

func TestDetectDuplicates(t *testing.T) {
	records := []models.NormalizedRecord{
		record(0, "A", "", "", "1", "0"),
		record(1, "B", "", "", "1", "0"),
		record(2, "A", "", "", "1", "0"),
		record(3, "C", "", "", "1", "0"),
		record(4, "A", "", "", "1", "0"),
		record(5, "C", "", "", "1", "0"),
	}

	result := DetectDuplicates("B", records)
	require.True(t, result.HasDuplicates())
	require.Len(t, result.Groups, 2)
	assert.Equal(t, DuplicateGroup{DocNo: "A", RowIndexes: []int{0, 2, 4}, KeptRowIndex: 4}, result.Groups[0])
	assert.Equal(t, "C", result.Groups[1].DocNo)
	assert.Equal(t, 3, result.ShadowedCount())

	stats := NewKeyIndex(records).GetIndexStats()
	assert.Equal(t, IndexStats{TotalRecords: 6, UniqueKeys: 3, DuplicateKeys: 2, ShadowedRecords: 3}, stats)

	assert.False(t, DetectDuplicates("A", records[:2]).HasDuplicates())
}

// generateDatasets builds n A records and a B set that mixes exact matches,
// out-of-tolerance amounts, missing keys and B-only keys
func generateDatasets(n int) ([]models.NormalizedRecord, []models.NormalizedRecord) {
	a := make([]models.NormalizedRecord, 0, n)
	b := make([]models.NormalizedRecord, 0, n)

	for i := 0; i < n; i++ {
		docNo := fmt.Sprintf("INV%05d", i)
		amount := decimal.NewFromInt(int64(100 + i))
		a = append(a, models.NormalizedRecord{
			DocNo: docNo, Party: "Vendor " + fmt.Sprint(i%7), Date: "2024-03-01",
			Amount: amount, Tax: amount.Div(decimal.NewFromInt(10)), RowIndex: i,
		})

		switch i % 5 {
		case 0:
			// missing from B
		case 1:
			b = append(b, models.NormalizedRecord{
				DocNo: docNo, Party: "vendor " + fmt.Sprint(i%7), Date: "2024-03-02",
				Amount: amount.Mul(decimal.NewFromInt(2)), Tax: amount.Div(decimal.NewFromInt(10)), RowIndex: len(b),
			})
		default:
			b = append(b, models.NormalizedRecord{
				DocNo: docNo, Party: "VENDOR " + fmt.Sprint(i%7), Date: "2024-03-01",
				Amount: amount, Tax: amount.Div(decimal.NewFromInt(10)), RowIndex: len(b),
			})
		}

		if i%9 == 0 {
			b = append(b, models.NormalizedRecord{
				DocNo: fmt.Sprintf("PAY%05d", i), Party: "Other", Date: "2024-03-05",
				Amount: decimal.NewFromInt(50), RowIndex: len(b),
			})
		}
	}
	return a, b
}
