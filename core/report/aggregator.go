package report

import (
	"sort"
	"sync"
	"time"

	"catalog-sync/core/models"
)

// Stage of a failure that happened before any update.
const (
	StageResolve = "resolve"
	StageInput   = "input"
)

// Failure is one row of the failures report.
type Failure struct {
	SKU       string           `json:"sku"`
	Error     string           `json:"error"`
	Stage     string           `json:"stage"`
	Backend   models.Backend   `json:"service"`
	Operation models.Operation `json:"operation"`
}

// BackendStats counts results for one backend.
type BackendStats struct {
	Succeeded int `json:"succeeded"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Summary is the immutable outcome of a run.
type Summary struct {
	RunID         string       `json:"run_id"`
	GeneratedAt   time.Time    `json:"generated_at"`
	DryRun        bool         `json:"dry_run"`
	TotalRows     int          `json:"total_rows"`
	ProcessedRows int          `json:"processed_rows"`
	SkippedRows   int          `json:"skipped_rows"`
	Retail        BackendStats `json:"retail"`
	Ecom          BackendStats `json:"ecom"`
	Errors        int          `json:"errors"`
	Warnings      []string     `json:"warnings"`
	Failures      []Failure    `json:"failures"`
}

// Updates is the number of successful results across both backends.
func (s Summary) Updates() int {
	return s.Retail.Succeeded + s.Ecom.Succeeded
}

// Aggregator collects results from concurrent updaters.
type Aggregator struct {
	mu       sync.Mutex
	runID    string
	dryRun   bool
	total    int
	done     int
	skipped  int
	backends map[models.Backend]*BackendStats
	failures []Failure
	warnings []string
}

// NewAggregator starts an empty aggregation.
func NewAggregator(runID string, dryRun bool) *Aggregator {
	return &Aggregator{
		runID:  runID,
		dryRun: dryRun,
		backends: map[models.Backend]*BackendStats{
			models.BackendRetail: {},
			models.BackendEcom:   {},
		},
	}
}

// SetRows records the input row counts.
func (a *Aggregator) SetRows(total, processed, skipped int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total, a.done, a.skipped = total, processed, skipped
}

// Add records update results. Failed results also become failure rows.
func (a *Aggregator) Add(results ...models.UpdateResult) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, r := range results {
		stats, ok := a.backends[r.Backend]
		if !ok {
			stats = &BackendStats{}
			a.backends[r.Backend] = stats
		}

		if !r.Success {
			stats.Failed++
			stage := r.Stage
			if stage == "" {
				stage = "update"
			}
			a.failures = append(a.failures, Failure{
				SKU: r.SKU, Error: r.Error, Stage: stage, Backend: r.Backend, Operation: r.Operation,
			})
			continue
		}

		stats.Succeeded++
		if r.Unchanged() {
			stats.Unchanged++
		}
		if r.Error != "" {
			a.warnings = append(a.warnings, r.SKU+": "+r.Error)
		}
	}
}

// AddFailure records a failure outside the updaters.
func (a *Aggregator) AddFailure(f Failure) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.failures = append(a.failures, f)
}

// AddWarning records a non-fatal note.
func (a *Aggregator) AddWarning(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.warnings = append(a.warnings, msg)
}

// Summary snapshots the aggregation. Failures are sorted by SKU, backend and
// operation so reports are stable across concurrent runs.
func (a *Aggregator) Summary(now time.Time) Summary {
	a.mu.Lock()
	defer a.mu.Unlock()

	failures := append([]Failure(nil), a.failures...)
	sort.SliceStable(failures, func(i, j int) bool {
		if failures[i].SKU != failures[j].SKU {
			return failures[i].SKU < failures[j].SKU
		}
		if failures[i].Backend != failures[j].Backend {
			return failures[i].Backend < failures[j].Backend
		}
		return failures[i].Operation < failures[j].Operation
	})

	s := Summary{
		RunID:         a.runID,
		GeneratedAt:   now,
		DryRun:        a.dryRun,
		TotalRows:     a.total,
		ProcessedRows: a.done,
		SkippedRows:   a.skipped,
		Retail:        *a.backends[models.BackendRetail],
		Ecom:          *a.backends[models.BackendEcom],
		Errors:        len(failures),
		Warnings:      append([]string{}, a.warnings...),
		Failures:      failures,
	}
	if s.Failures == nil {
		s.Failures = []Failure{}
	}
	return s
}
