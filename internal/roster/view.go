// Package roster is the administrator-side aggregation: it subscribes to the
// whole student collection and re-derives summary rows and cohort statistics
// on every emission, regardless of whether the backend pushes changes or
// polls for them.
package roster

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/progress"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

// Row is one denormalized per-student summary line.
type Row struct {
	ID                    string          `json:"id"`
	FullName              string          `json:"fullName"`
	Email                 string          `json:"email"`
	Grade                 string          `json:"grade"`
	SchoolName            string          `json:"schoolName"`
	Mobile                string          `json:"mobile"`
	RegistrationDate      string          `json:"registrationDate"` // date portion only
	Progress              int             `json:"progress"`         // completion percent
	CompletedModules      []string        `json:"completedModules"`
	ModuleScores          map[string]int  `json:"moduleScores"`
	AverageScore          int             `json:"averageScore"`
	CertificateDownloaded bool            `json:"certificateDownloaded"`
	AdminFeedback         string          `json:"adminFeedback"`
	StudentFeedback       *store.Feedback `json:"studentFeedback,omitempty"`
}

// Stats are the cohort numbers recomputed from the full row list.
type Stats struct {
	Total         int     `json:"total"`
	Certified     int     `json:"certified"` // progress == 100
	AvgCompletion int     `json:"avgCompletion"`
	AvgRating     float64 `json:"avgRating"` // over students who rated; 0 if none
}

// View holds the latest summary and the live subscription feeding it.
type View struct {
	store   store.RecordStore
	catalog course.Catalog

	mu     sync.RWMutex
	rows   []Row
	cancel func()
}

// Open subscribes to the collection; the first emission arrives before Open
// returns. Close must be called when the administrator navigates away, or
// the local backend's poll ticker leaks.
func Open(st store.RecordStore, cat course.Catalog) (*View, error) {
	v := &View{store: st, catalog: cat}
	cancel, err := st.SubscribeAll(v.apply)
	if err != nil {
		return nil, err
	}
	v.cancel = cancel
	return v, nil
}

func (v *View) Close() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

func (v *View) apply(entries []store.Entry) {
	rows := make([]Row, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, buildRow(e, v.catalog))
	}
	v.mu.Lock()
	v.rows = rows
	v.mu.Unlock()
}

// Rows returns a copy of the latest summary list.
func (v *View) Rows() []Row {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]Row, len(v.rows))
	copy(out, v.rows)
	return out
}

// Search is a pure client-side filter: case-insensitive substring match over
// name, institution, and email. An empty term returns everything.
func (v *View) Search(term string) []Row {
	rows := v.Rows()
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows
	}
	out := rows[:0]
	for _, r := range rows {
		if strings.Contains(strings.ToLower(r.FullName), term) ||
			strings.Contains(strings.ToLower(r.SchoolName), term) ||
			strings.Contains(strings.ToLower(r.Email), term) {
			out = append(out, r)
		}
	}
	return out
}

// Stats recomputes cohort statistics from the latest rows.
func (v *View) Stats() Stats {
	rows := v.Rows()
	s := Stats{Total: len(rows)}
	if len(rows) == 0 {
		return s
	}
	sumPct, sumRating, rated := 0, 0, 0
	for _, r := range rows {
		sumPct += r.Progress
		if r.Progress == 100 {
			s.Certified++
		}
		if r.StudentFeedback != nil {
			sumRating += r.StudentFeedback.Rating
			rated++
		}
	}
	s.AvgCompletion = int(math.Round(float64(sumPct) / float64(len(rows))))
	if rated > 0 {
		s.AvgRating = float64(sumRating) / float64(rated)
	}
	return s
}

// SaveFeedback writes instructor feedback for one student. The local rows
// are updated optimistically so the admin sees their own edit immediately,
// without waiting for the next emission (the polling backend lags up to one
// interval).
func (v *View) SaveFeedback(ctx context.Context, email, text string) error {
	key := store.NormalizeKey(email)

	v.mu.Lock()
	for i := range v.rows {
		if v.rows[i].ID == key {
			v.rows[i].AdminFeedback = text
			break
		}
	}
	v.mu.Unlock()

	return v.store.MergeField(ctx, key, "progress", map[string]any{"adminFeedback": text})
}

func buildRow(e store.Entry, cat course.Catalog) Row {
	rec := e.Record
	p := rec.Profile

	mobile := "N/A"
	switch {
	case p.CountryCode != "" && p.MobileNumber != "":
		mobile = p.CountryCode + " " + p.MobileNumber
	case p.MobileNumber != "":
		mobile = p.MobileNumber
	}

	regDate := "N/A"
	if rec.RegistrationDate != "" {
		regDate, _, _ = strings.Cut(rec.RegistrationDate, "T")
	}

	avg := 0
	if n := len(rec.Progress.ModuleScores); n > 0 {
		sum := 0
		for _, s := range rec.Progress.ModuleScores {
			sum += s
		}
		avg = int(math.Round(float64(sum) / float64(n)))
	}

	return Row{
		ID:                    e.Key,
		FullName:              p.FullName,
		Email:                 p.Email,
		Grade:                 p.Grade,
		SchoolName:            p.SchoolName,
		Mobile:                mobile,
		RegistrationDate:      regDate,
		Progress:              progress.DerivePercent(len(rec.Progress.CompletedModules), cat.Len()),
		CompletedModules:      rec.Progress.CompletedModules,
		ModuleScores:          rec.Progress.ModuleScores,
		AverageScore:          avg,
		CertificateDownloaded: rec.Progress.CertificateDownloaded,
		AdminFeedback:         rec.Progress.AdminFeedback,
		StudentFeedback:       rec.Feedback,
	}
}
