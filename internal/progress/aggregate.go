// Package progress holds the in-memory course state for one student and the
// policy that keeps the record store eventually consistent with it.
package progress

import (
	"math"
	"sort"

	"github.com/mciskills/ai-foundations-lms/internal/store"
)

// Aggregate is the authoritative in-memory progress state for the active
// session. Mutations are plain set/map operations; Snapshot derives a fresh
// serializable copy, so the last-synced state never aliases live maps.
type Aggregate struct {
	completedModules     map[string]struct{}
	completedSimulations map[string]struct{}
	moduleScores         map[string]int
	certDownloaded       bool
	adminFeedback        string
}

func New() *Aggregate {
	return &Aggregate{
		completedModules:     map[string]struct{}{},
		completedSimulations: map[string]struct{}{},
		moduleScores:         map[string]int{},
	}
}

// FromRecord hydrates an aggregate from a stored progress object.
func FromRecord(p store.Progress) *Aggregate {
	a := New()
	for _, id := range p.CompletedModules {
		a.completedModules[id] = struct{}{}
	}
	for _, id := range p.CompletedSimulations {
		a.completedSimulations[id] = struct{}{}
	}
	for id, s := range p.ModuleScores {
		a.moduleScores[id] = s
	}
	a.certDownloaded = p.CertificateDownloaded
	a.adminFeedback = p.AdminFeedback
	return a
}

// CompleteModule records a quiz submission: the score overwrites any earlier
// one and the module is marked complete unconditionally. There is no passing
// threshold.
func (a *Aggregate) CompleteModule(moduleID string, score int) {
	a.completedModules[moduleID] = struct{}{}
	a.moduleScores[moduleID] = score
}

// ToggleModule flips completion without touching scores (manual override).
func (a *Aggregate) ToggleModule(moduleID string) {
	if _, ok := a.completedModules[moduleID]; ok {
		delete(a.completedModules, moduleID)
	} else {
		a.completedModules[moduleID] = struct{}{}
	}
}

func (a *Aggregate) CompleteSimulation(simulationID string) {
	a.completedSimulations[simulationID] = struct{}{}
}

// MarkCertificateDownloaded is sticky: it is never reset except by logout
// discarding the whole aggregate.
func (a *Aggregate) MarkCertificateDownloaded() {
	a.certDownloaded = true
}

func (a *Aggregate) SetAdminFeedback(text string) {
	a.adminFeedback = text
}

func (a *Aggregate) HasModule(moduleID string) bool {
	_, ok := a.completedModules[moduleID]
	return ok
}

func (a *Aggregate) HasSimulation(simulationID string) bool {
	_, ok := a.completedSimulations[simulationID]
	return ok
}

func (a *Aggregate) Score(moduleID string) (int, bool) {
	s, ok := a.moduleScores[moduleID]
	return s, ok
}

func (a *Aggregate) CertificateDownloaded() bool { return a.certDownloaded }
func (a *Aggregate) AdminFeedback() string       { return a.adminFeedback }
func (a *Aggregate) CompletedCount() int         { return len(a.completedModules) }

// Percent derives the completion percentage over totalModules.
func (a *Aggregate) Percent(totalModules int) int {
	return DerivePercent(len(a.completedModules), totalModules)
}

// Complete reports whether every module of the course is done.
func (a *Aggregate) Complete(totalModules int) bool {
	return a.Percent(totalModules) == 100
}

// Snapshot derives the serializable progress object pushed to the store.
// Slices are sorted copies; order is not a stored property but determinism
// keeps diffs and tests stable.
func (a *Aggregate) Snapshot() store.Progress {
	p := store.Progress{
		CompletedModules:      make([]string, 0, len(a.completedModules)),
		CompletedSimulations:  make([]string, 0, len(a.completedSimulations)),
		ModuleScores:          make(map[string]int, len(a.moduleScores)),
		CertificateDownloaded: a.certDownloaded,
		AdminFeedback:         a.adminFeedback,
	}
	for id := range a.completedModules {
		p.CompletedModules = append(p.CompletedModules, id)
	}
	for id := range a.completedSimulations {
		p.CompletedSimulations = append(p.CompletedSimulations, id)
	}
	sort.Strings(p.CompletedModules)
	sort.Strings(p.CompletedSimulations)
	for id, s := range a.moduleScores {
		p.ModuleScores[id] = s
	}
	return p
}

// DerivePercent is the one completion formula used everywhere: the roster
// computes it per record with the same rounding as the student view.
func DerivePercent(completed, totalModules int) int {
	if totalModules == 0 {
		return 0
	}
	pct := int(math.Round(100 * float64(completed) / float64(totalModules)))
	if pct > 100 {
		pct = 100
	}
	return pct
}
