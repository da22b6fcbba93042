package progress

import (
	"context"
	"reflect"
	"testing"

	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

/* ---- in-memory fake satisfying store.RecordStore ---- */

type mergeCall struct {
	key, field string
	partial    any
}

type fakeStore struct {
	puts   int
	merges []mergeCall
}

func (f *fakeStore) Get(ctx context.Context, key string) (store.UserRecord, bool, error) {
	return store.UserRecord{}, false, nil
}

func (f *fakeStore) Put(ctx context.Context, key string, rec store.UserRecord) error {
	f.puts++
	return nil
}

func (f *fakeStore) MergeField(ctx context.Context, key, field string, partial any) error {
	f.merges = append(f.merges, mergeCall{key: key, field: field, partial: partial})
	return nil
}

func (f *fakeStore) SubscribeAll(cb func([]store.Entry)) (func(), error) {
	cb(nil)
	return func() {}, nil
}

func (f *fakeStore) Online() bool { return false }
func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) writes() int { return f.puts + len(f.merges) }

/* ---------------------------------------------------- */

func testModule() course.Module {
	m := course.Module{ID: "week-1"}
	for i := 0; i < 10; i++ {
		m.QuizQuestions = append(m.QuizQuestions, course.QuizQuestion{
			Options:      []string{"a", "b", "c"},
			CorrectIndex: 0,
		})
	}
	return m
}

func TestEveryMutationSyncsFullSnapshot(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStore{}
	tr := NewTracker(fs, "a@x.com", false, New())

	answers := []int{0, 0, 0, 0, 0, 0, 0, 1, 1, 1} // 7 correct
	score, err := tr.SubmitQuiz(ctx, testModule(), answers)
	if err != nil {
		t.Fatal(err)
	}
	if score != 70 {
		t.Fatalf("score = %d, want 70", score)
	}
	if err := tr.CompleteSimulation(ctx, "week-4-sim-3"); err != nil {
		t.Fatal(err)
	}
	if err := tr.MarkCertificateDownloaded(ctx); err != nil {
		t.Fatal(err)
	}

	if len(fs.merges) != 3 {
		t.Fatalf("got %d writes, want one per mutation", len(fs.merges))
	}
	for i, c := range fs.merges {
		if c.key != "a@x.com" || c.field != "progress" {
			t.Fatalf("write %d went to %s.%s", i, c.key, c.field)
		}
	}

	// The last write carries the complete derived state, not a delta.
	last, ok := fs.merges[2].partial.(store.Progress)
	if !ok {
		t.Fatalf("partial is %T", fs.merges[2].partial)
	}
	want := store.Progress{
		CompletedModules:      []string{"week-1"},
		CompletedSimulations:  []string{"week-4-sim-3"},
		ModuleScores:          map[string]int{"week-1": 70},
		CertificateDownloaded: true,
	}
	if !reflect.DeepEqual(last, want) {
		t.Fatalf("synced state = %+v, want %+v", last, want)
	}
}

func TestQuizSubmissionAlwaysCompletes(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStore{}
	tr := NewTracker(fs, "a@x.com", false, New())

	// Zero correct answers still completes the module.
	score, err := tr.SubmitQuiz(ctx, testModule(), []int{2, 2, 2, 2, 2, 2, 2, 2, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	if score != 0 {
		t.Fatalf("score = %d", score)
	}
	snap := tr.Snapshot()
	if len(snap.CompletedModules) != 1 || snap.ModuleScores["week-1"] != 0 {
		t.Fatalf("failing submission did not complete the module: %+v", snap)
	}
}

func TestAdminTrackerNeverWrites(t *testing.T) {
	ctx := context.Background()
	fs := &fakeStore{}
	tr := NewTracker(fs, "mcimarcommteam@gmail.com", true, New())

	if _, err := tr.SubmitQuiz(ctx, testModule(), []int{0}); err != nil {
		t.Fatal(err)
	}
	if err := tr.ToggleModule(ctx, "week-2"); err != nil {
		t.Fatal(err)
	}
	if err := tr.CompleteSimulation(ctx, "week-4-sim-3"); err != nil {
		t.Fatal(err)
	}
	if err := tr.MarkCertificateDownloaded(ctx); err != nil {
		t.Fatal(err)
	}
	if err := tr.SetAdminFeedback(ctx, "note"); err != nil {
		t.Fatal(err)
	}

	if fs.writes() != 0 {
		t.Fatalf("admin identity produced %d store writes", fs.writes())
	}
}

func TestResumePoint(t *testing.T) {
	cat := course.Catalog{{ID: "week-1"}, {ID: "week-2"}, {ID: "week-3"}}
	fs := &fakeStore{}
	tr := NewTracker(fs, "a@x.com", false, New())

	if got := tr.ResumePoint(cat); got != "week-1" {
		t.Fatalf("resume = %q", got)
	}
	_ = tr.ToggleModule(context.Background(), "week-1")
	if got := tr.ResumePoint(cat); got != "week-2" {
		t.Fatalf("resume = %q", got)
	}
}
