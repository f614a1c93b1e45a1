package matcher

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"dataset-reconciler/internal/models"
	"dataset-reconciler/pkg/errors"
	"dataset-reconciler/pkg/logger"
)

// cancelCheckInterval is how many records are classified between context checks
const cancelCheckInterval = 512

// Engine joins two normalized datasets and classifies every record
type Engine struct {
	config *EngineConfig
	logger logger.Logger
}

// NewEngine creates a matching engine with the specified configuration
func NewEngine(config *EngineConfig) *Engine {
	if config == nil {
		config = DefaultEngineConfig()
	}

	return &Engine{
		config: config.Clone(),
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() *EngineConfig {
	return e.config.Clone()
}

// Reconcile joins a and b on the document number.
//
// Every record of a is classified, in order, as matched, partial or
// unmatchedA. Every record of b whose key is absent from a is then emitted as
// unmatchedB, in order. When b repeats a key only its last record is joined.
// The output is the same for any number of workers.
func (e *Engine) Reconcile(ctx context.Context, a, b []models.NormalizedRecord) (*models.ResultSet, error) {
	if err := e.config.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	indexB := NewKeyIndex(b)
	keysA := make(map[string]struct{}, len(a))
	for i := range a {
		keysA[a[i].DocNo] = struct{}{}
	}

	e.logger.WithFields(logger.Fields{
		"records_a": len(a),
		"records_b": len(b),
		"index":     indexB.GetIndexStats(),
		"workers":   e.config.Workers,
	}).Debug("Built key index")

	outcomes := make([]models.ReconciliationRecord, len(a))
	if err := e.classifyAll(ctx, a, indexB, outcomes); err != nil {
		return nil, err
	}

	results := models.NewResultSet()
	for _, rec := range outcomes {
		results.Add(rec)
	}

	for i := range b {
		if _, ok := keysA[b[i].DocNo]; ok {
			continue
		}
		results.Add(unmatchedB(&b[i]))
	}

	e.logger.WithFields(logger.Fields{
		"matched":     len(results.Matched),
		"partial":     len(results.Partial),
		"unmatched_a": len(results.UnmatchedA),
		"unmatched_b": len(results.UnmatchedB),
		"duration":    time.Since(start).String(),
	}).Debug("Matching completed")

	return results, nil
}

// classifyAll fills outcomes[i] for every a[i]. Large inputs are split into
// contiguous shards that run concurrently; each shard writes only its own
// indexes.
func (e *Engine) classifyAll(ctx context.Context, a []models.NormalizedRecord, indexB *KeyIndex, outcomes []models.ReconciliationRecord) error {
	shards := e.shardBounds(len(a))
	if len(shards) <= 1 {
		return e.classifyRange(ctx, a, indexB, outcomes, 0, len(a))
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, shard := range shards {
		lo, hi := shard[0], shard[1]
		g.Go(func() error {
			return e.classifyRange(gctx, a, indexB, outcomes, lo, hi)
		})
	}
	return g.Wait()
}

func (e *Engine) classifyRange(ctx context.Context, a []models.NormalizedRecord, indexB *KeyIndex, outcomes []models.ReconciliationRecord, lo, hi int) error {
	for i := lo; i < hi; i++ {
		if (i-lo)%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return errors.ReconciliationError(errors.CodeCancelled, "matching", err)
			}
		}
		outcomes[i] = e.classify(&a[i], indexB)
	}
	return nil
}

// shardBounds splits n records into at most Workers contiguous [lo, hi) ranges
// of at least MinShardSize records each
func (e *Engine) shardBounds(n int) [][2]int {
	workers := e.config.Workers
	if workers <= 1 || n == 0 {
		return [][2]int{{0, n}}
	}

	minShard := e.config.MinShardSize
	if minShard < 1 {
		minShard = 1
	}

	size := (n + workers - 1) / workers
	if size < minShard {
		size = minShard
	}

	var bounds [][2]int
	for lo := 0; lo < n; lo += size {
		hi := lo + size
		if hi > n {
			hi = n
		}
		bounds = append(bounds, [2]int{lo, hi})
	}
	return bounds
}

func (e *Engine) classify(recA *models.NormalizedRecord, indexB *KeyIndex) models.ReconciliationRecord {
	recB, ok := indexB.Get(recA.DocNo)
	if !ok {
		return models.ReconciliationRecord{
			Type:        models.RecordUnmatchedA,
			DocNo:       recA.DocNo,
			FileA:       recA,
			Differences: []models.FieldDifference{},
			Variance:    models.Variance{Amount: recA.Amount, Tax: recA.Tax},
		}
	}

	differences := CompareRecords(recA, recB, e.config.Comparison)
	if len(differences) == 0 {
		return models.ReconciliationRecord{
			Type:        models.RecordMatched,
			DocNo:       recA.DocNo,
			FileA:       recA,
			FileB:       recB,
			Differences: differences,
			Variance:    models.ZeroVariance(),
		}
	}

	return models.ReconciliationRecord{
		Type:        models.RecordPartial,
		DocNo:       recA.DocNo,
		FileA:       recA,
		FileB:       recB,
		Differences: differences,
		Variance: models.Variance{
			Amount: recB.Amount.Sub(recA.Amount),
			Tax:    recB.Tax.Sub(recA.Tax),
		},
	}
}

func unmatchedB(recB *models.NormalizedRecord) models.ReconciliationRecord {
	return models.ReconciliationRecord{
		Type:        models.RecordUnmatchedB,
		DocNo:       recB.DocNo,
		FileB:       recB,
		Differences: []models.FieldDifference{},
		Variance:    models.Variance{Amount: recB.Amount.Neg(), Tax: recB.Tax.Neg()},
	}
}
