package reconciler

import (
	"dataset-reconciler/pkg/logger"
)

// Stage names a step of a reconciliation run
type Stage string

const (
	StageValidating  Stage = "validating mappings"
	StageNormalizing Stage = "normalizing records"
	StageMatching    Stage = "matching records"
	StageAnalyzing   Stage = "building summary and insights"
	StageCompleted   Stage = "completed"
)

// runStages is the number of stages a run completes
const runStages = 4

// ReconciliationProgress reports how far a run has progressed
type ReconciliationProgress struct {
	RunID string               `json:"run_id"`
	Stage Stage                `json:"stage"`
	Stats logger.ProgressStats `json:"stats"`
}

// ProgressCallback is called to report reconciliation progress
type ProgressCallback func(*ReconciliationProgress)

type runProgress struct {
	runID     string
	tracker   *logger.ProgressTracker
	callbacks []ProgressCallback
}

func (rs *ReconciliationService) newProgress(runID string) *runProgress {
	return &runProgress{
		runID: runID,
		tracker: logger.NewProgressTracker(logger.ProgressConfig{
			Operation: "reconcile",
			Total:     runStages,
			Logger:    rs.logger.WithField("run_id", runID),
		}),
		callbacks: rs.progressCallbacks,
	}
}

func (p *runProgress) begin(stage Stage) {
	p.tracker.Begin(string(stage))
	p.notify(stage)
}

func (p *runProgress) advance(stage Stage) {
	p.tracker.Advance(string(stage))
	p.notify(stage)
}

func (p *runProgress) complete() {
	p.tracker.Complete()
	p.notify(StageCompleted)
}

func (p *runProgress) notify(stage Stage) {
	if len(p.callbacks) == 0 {
		return
	}
	progress := &ReconciliationProgress{
		RunID: p.runID,
		Stage: stage,
		Stats: p.tracker.GetStats(),
	}
	for _, callback := range p.callbacks {
		callback(progress)
	}
}
