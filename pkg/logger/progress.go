package logger

import (
	"fmt"
	"sync"
	"time"
)

// ProgressTracker counts completed steps of a long-running operation and
// logs at most once per interval
type ProgressTracker struct {
	logger      Logger
	operation   string
	total       int64
	current     int64
	step        string
	startTime   time.Time
	lastLogTime time.Time
	logInterval time.Duration
	mutex       sync.RWMutex
}

// ProgressConfig configures progress tracking behavior
type ProgressConfig struct {
	Operation   string        `json:"operation"`
	Total       int64         `json:"total"`
	LogInterval time.Duration `json:"log_interval"`
	Logger      Logger        `json:"-"`
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(config ProgressConfig) *ProgressTracker {
	if config.Logger == nil {
		config.Logger = GetGlobalLogger()
	}
	if config.LogInterval == 0 {
		config.LogInterval = 5 * time.Second
	}

	now := time.Now()
	return &ProgressTracker{
		logger:      config.Logger.WithComponent("progress"),
		operation:   config.Operation,
		total:       config.Total,
		startTime:   now,
		lastLogTime: now,
		logInterval: config.LogInterval,
	}
}

// Advance records one completed step and names the step now running
func (p *ProgressTracker) Advance(step string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current++
	p.step = step
	p.maybeLog()
}

// Begin names the step now running without counting it as completed
func (p *ProgressTracker) Begin(step string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.step = step
	p.maybeLog()
}

func (p *ProgressTracker) maybeLog() {
	now := time.Now()
	if now.Sub(p.lastLogTime) < p.logInterval {
		return
	}
	p.lastLogTime = now
	p.logger.WithFields(p.statsLocked(now).fields()).Debug("Progress update")
}

// Complete marks every step as done and logs the final statistics
func (p *ProgressTracker) Complete() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.current = p.total
	p.logger.WithFields(p.statsLocked(time.Now()).fields()).Debug("Operation completed")
}

// GetStats returns current progress statistics
func (p *ProgressTracker) GetStats() ProgressStats {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	return p.statsLocked(time.Now())
}

func (p *ProgressTracker) statsLocked(now time.Time) ProgressStats {
	var percentage float64
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100
	}

	return ProgressStats{
		Operation:  p.operation,
		Step:       p.step,
		Total:      p.total,
		Current:    p.current,
		Percentage: percentage,
		Elapsed:    now.Sub(p.startTime),
	}
}

// ProgressStats is a snapshot of a tracker
type ProgressStats struct {
	Operation  string        `json:"operation"`
	Step       string        `json:"step"`
	Total      int64         `json:"total"`
	Current    int64         `json:"current"`
	Percentage float64       `json:"percentage"`
	Elapsed    time.Duration `json:"elapsed"`
}

func (ps ProgressStats) fields() Fields {
	return Fields{
		"operation":  ps.Operation,
		"step":       ps.Step,
		"completed":  ps.Current,
		"total":      ps.Total,
		"percentage": fmt.Sprintf("%.1f%%", ps.Percentage),
		"elapsed":    ps.Elapsed.String(),
	}
}

// String returns a human-readable representation of the progress
func (ps ProgressStats) String() string {
	if ps.Total > 0 {
		return fmt.Sprintf("%s: %d/%d (%.1f%%) %s", ps.Operation, ps.Current, ps.Total, ps.Percentage, ps.Step)
	}
	return fmt.Sprintf("%s: %s, elapsed: %v", ps.Operation, ps.Step, ps.Elapsed)
}

// OperationLogger logs the start, steps and outcome of one operation with
// its duration
type OperationLogger struct {
	logger    Logger
	operation string
	startTime time.Time
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(operation string, logger Logger) *OperationLogger {
	if logger == nil {
		logger = GetGlobalLogger()
	}

	ol := &OperationLogger{
		logger:    logger.WithField("operation", operation),
		operation: operation,
		startTime: time.Now(),
	}
	ol.logger.Debug("Starting operation")
	return ol
}

// WithFields adds fields to every later entry
func (ol *OperationLogger) WithFields(fields Fields) *OperationLogger {
	ol.logger = ol.logger.WithFields(fields)
	return ol
}

// Step logs a step within the operation
func (ol *OperationLogger) Step(step string) {
	ol.logger.WithField("step", step).Debug("Operation step")
}

// Success completes the operation successfully
func (ol *OperationLogger) Success(message string, fields Fields) {
	ol.logger.WithFields(fields).WithFields(Fields{
		"duration": time.Since(ol.startTime).String(),
		"status":   "success",
	}).Info(message)
}

// Error completes the operation with an error
func (ol *OperationLogger) Error(err error, message string) {
	ol.logger.WithError(err).WithFields(Fields{
		"duration": time.Since(ol.startTime).String(),
		"status":   "error",
	}).Error(message)
}

// TimedOperation runs fn and logs its outcome and duration
func TimedOperation(operation string, logger Logger, fn func() error) error {
	ol := NewOperationLogger(operation, logger)

	if err := fn(); err != nil {
		ol.Error(err, "Operation failed")
		return err
	}
	ol.Success("Operation completed", nil)
	return nil
}
