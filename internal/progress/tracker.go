package progress

import (
	"context"
	"sync"

	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

// Tracker binds one identity's aggregate to the record store. Every mutation
// re-derives the full progress snapshot and pushes it with a single
// MergeField call: no debouncing, no batching, no retry loop. A failed push
// is implicitly retried by the next mutation's full-state write.
//
// Two clients syncing the same field concurrently (e.g. two tabs of the same
// student) are last-write-wins with no detection. That race is inherited
// from the field-granular merge model and intentionally left as is.
type Tracker struct {
	store store.RecordStore
	key   string
	admin bool

	mu  sync.Mutex
	agg *Aggregate
}

// NewTracker wraps agg for the given identity. Admin trackers never write:
// the reserved administrator has no record and must not create one.
func NewTracker(st store.RecordStore, key string, admin bool, agg *Aggregate) *Tracker {
	if agg == nil {
		agg = New()
	}
	return &Tracker{store: st, key: key, admin: admin, agg: agg}
}

func (t *Tracker) Key() string { return t.key }
func (t *Tracker) Admin() bool { return t.admin }

// SubmitQuiz grades the answers, records the score, marks the module
// complete regardless of the score, and syncs.
func (t *Tracker) SubmitQuiz(ctx context.Context, m course.Module, answers []int) (int, error) {
	score := m.GradeQuiz(answers)
	t.mu.Lock()
	t.agg.CompleteModule(m.ID, score)
	t.mu.Unlock()
	return score, t.sync(ctx)
}

func (t *Tracker) ToggleModule(ctx context.Context, moduleID string) error {
	t.mu.Lock()
	t.agg.ToggleModule(moduleID)
	t.mu.Unlock()
	return t.sync(ctx)
}

func (t *Tracker) CompleteSimulation(ctx context.Context, simulationID string) error {
	t.mu.Lock()
	t.agg.CompleteSimulation(simulationID)
	t.mu.Unlock()
	return t.sync(ctx)
}

func (t *Tracker) MarkCertificateDownloaded(ctx context.Context) error {
	t.mu.Lock()
	t.agg.MarkCertificateDownloaded()
	t.mu.Unlock()
	return t.sync(ctx)
}

func (t *Tracker) SetAdminFeedback(ctx context.Context, text string) error {
	t.mu.Lock()
	t.agg.SetAdminFeedback(text)
	t.mu.Unlock()
	return t.sync(ctx)
}

// Snapshot returns the current serializable progress.
func (t *Tracker) Snapshot() store.Progress {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.agg.Snapshot()
}

func (t *Tracker) Percent(totalModules int) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.agg.Percent(totalModules)
}

// ResumePoint derives where a returning student should land.
func (t *Tracker) ResumePoint(cat course.Catalog) string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cat.NextIncomplete(t.agg.HasModule)
}

func (t *Tracker) sync(ctx context.Context) error {
	if t.admin {
		return nil
	}
	t.mu.Lock()
	snap := t.agg.Snapshot()
	t.mu.Unlock()
	return t.store.MergeField(ctx, t.key, "progress", snap)
}
