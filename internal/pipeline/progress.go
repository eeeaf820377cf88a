package pipeline

import (
	"sync"
	"time"

	"solar-catalog-api/internal/model"
)

// Run phases reported by the progress tracker.
const (
	PhaseLoading = "loading"
	PhaseDedup   = "dedup"
	PhaseKits    = "kits"
	PhaseReport  = "report"
	PhaseOutput  = "output"
	PhaseDone    = "completed"
	PhaseFailed  = "failed"
)

// ProgressTracker tracks pipeline progress. It is safe for concurrent use by
// the per-category workers and the HTTP monitor.
type ProgressTracker struct {
	mu sync.RWMutex

	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	Phase           string
	TotalProducts   int
	Processed       int
	SkusCreated     int
	OffersMerged    int
	Rejected        int
	KitsNormalized  int
	CategoriesDone  []model.Category
	CurrentCategory string
	LastError       string
}

// NewProgressTracker creates a new progress tracker
func NewProgressTracker(runID string) *ProgressTracker {
	return &ProgressTracker{
		RunID:     runID,
		StartedAt: time.Now(),
		Phase:     PhaseLoading,
	}
}

// SetTotal sets the number of raw products to process.
func (p *ProgressTracker) SetTotal(total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.TotalProducts = total
}

// SetPhase records the current phase.
func (p *ProgressTracker) SetPhase(phase string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Phase = phase
	if phase == PhaseDone || phase == PhaseFailed {
		p.FinishedAt = time.Now()
	}
}

// StartCategory marks category as in progress.
func (p *ProgressTracker) StartCategory(category model.Category) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CurrentCategory = string(category)
}

// FinishCategory adds a category's counts.
func (p *ProgressTracker) FinishCategory(category model.Category, processed, skus, merged, rejected int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Processed += processed
	p.SkusCreated += skus
	p.OffersMerged += merged
	p.Rejected += rejected
	p.CategoriesDone = append(p.CategoriesDone, category)
}

// FinishKits adds the kit phase counts.
func (p *ProgressTracker) FinishKits(processed, kits, rejected int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Processed += processed
	p.KitsNormalized += kits
	p.Rejected += rejected
	p.CategoriesDone = append(p.CategoriesDone, model.CategoryKits)
}

// Fail records err and marks the run failed.
func (p *ProgressTracker) Fail(err error) {
	p.mu.Lock()
	p.LastError = err.Error()
	p.mu.Unlock()
	p.SetPhase(PhaseFailed)
}

// GetSnapshot returns a snapshot of current progress
func (p *ProgressTracker) GetSnapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	end := time.Now()
	if !p.FinishedAt.IsZero() {
		end = p.FinishedAt
	}
	elapsed := end.Sub(p.StartedAt)

	percentage := 0.0
	if p.TotalProducts > 0 {
		percentage = (float64(p.Processed) / float64(p.TotalProducts)) * 100
	}

	perSecond := 0.0
	if elapsed.Seconds() > 0 {
		perSecond = float64(p.Processed) / elapsed.Seconds()
	}

	var remaining time.Duration
	if p.Processed > 0 && p.Processed < p.TotalProducts {
		avg := elapsed / time.Duration(p.Processed)
		remaining = avg * time.Duration(p.TotalProducts-p.Processed)
	}

	done := make([]model.Category, len(p.CategoriesDone))
	copy(done, p.CategoriesDone)

	return ProgressSnapshot{
		RunID:             p.RunID,
		Status:            p.Phase,
		StartedAt:         p.StartedAt,
		Elapsed:           elapsed,
		TotalProducts:     p.TotalProducts,
		Processed:         p.Processed,
		SkusCreated:       p.SkusCreated,
		OffersMerged:      p.OffersMerged,
		Rejected:          p.Rejected,
		KitsNormalized:    p.KitsNormalized,
		Percentage:        percentage,
		ProductsPerSecond: perSecond,
		Remaining:         remaining,
		CategoriesDone:    done,
		CurrentCategory:   p.CurrentCategory,
		LastError:         p.LastError,
	}
}

// ProgressSnapshot is a point-in-time snapshot of progress
type ProgressSnapshot struct {
	RunID             string
	Status            string
	StartedAt         time.Time
	Elapsed           time.Duration
	TotalProducts     int
	Processed         int
	SkusCreated       int
	OffersMerged      int
	Rejected          int
	KitsNormalized    int
	Percentage        float64
	ProductsPerSecond float64
	Remaining         time.Duration
	CategoriesDone    []model.Category
	CurrentCategory   string
	LastError         string
}
