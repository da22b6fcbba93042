package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	auth "github.com/mciskills/ai-foundations-lms/internal/auth/middleware"
	"github.com/mciskills/ai-foundations-lms/internal/config"
	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/roster"
	"github.com/mciskills/ai-foundations-lms/internal/session"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	cfg := config.Config{
		DataDir:      t.TempDir(),
		PollInterval: 50 * time.Millisecond,
		AdminEmail:   "mcimarcommteam@gmail.com",
		AuthSecret:   "test-secret",
	}
	st, err := store.Open(ctx, "", cfg.DataDir, cfg.PollInterval)
	if err != nil {
		t.Fatal(err)
	}
	state, err := session.NewStateFile(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	mgr := session.NewManager(st, state, course.Default, cfg.AdminEmail)
	srv := NewServer(cfg, st, mgr, auth.NewAuthService(cfg.AuthSecret), course.Default)

	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		st.Close()
	})
	return ts
}

func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any, out any) int {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, ts.URL+path, rd)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil && resp.StatusCode < 300 && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func register(t *testing.T, ts *httptest.Server, email string) authResponse {
	t.Helper()
	var resp authResponse
	code := doJSON(t, ts, http.MethodPost, "/auth/register", "", store.Profile{
		FullName:     "Asha Verma",
		Email:        email,
		Grade:        "12",
		SchoolName:   "Springdale High",
		CountryCode:  "+91",
		MobileNumber: "9876543210",
	}, &resp)
	if code != http.StatusOK {
		t.Fatalf("register = %d", code)
	}
	return resp
}

func adminLogin(t *testing.T, ts *httptest.Server) authResponse {
	t.Helper()
	var resp authResponse
	code := doJSON(t, ts, http.MethodPost, "/auth/login", "",
		map[string]any{"email": "mcimarcommteam@gmail.com", "admin": true}, &resp)
	if code != http.StatusOK {
		t.Fatalf("admin login = %d", code)
	}
	return resp
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	var body struct {
		OK     bool `json:"ok"`
		Online bool `json:"online"`
	}
	if code := doJSON(t, ts, http.MethodGet, "/healthz", "", nil, &body); code != http.StatusOK {
		t.Fatalf("healthz = %d", code)
	}
	if !body.OK || body.Online {
		t.Fatalf("healthz body = %+v", body)
	}
}

func TestRegisterLoginSession(t *testing.T) {
	ts := newTestServer(t)

	got := register(t, ts, "A.Student@X.com")
	if got.AccessToken == "" {
		t.Fatal("no token issued")
	}
	if got.Account.Email != "a.student@x.com" || got.Account.Admin {
		t.Fatalf("account = %+v", got.Account)
	}
	if got.Account.ResumeModuleID != "week-1" {
		t.Fatalf("resume = %q", got.Account.ResumeModuleID)
	}

	// Duplicate registration conflicts.
	code := doJSON(t, ts, http.MethodPost, "/auth/register", "",
		store.Profile{FullName: "X", Email: "a.student@x.com"}, nil)
	if code != http.StatusConflict {
		t.Fatalf("duplicate register = %d", code)
	}

	// The reserved administrator address cannot self-register.
	code = doJSON(t, ts, http.MethodPost, "/auth/register", "",
		store.Profile{FullName: "X", Email: "mcimarcommteam@gmail.com"}, nil)
	if code != http.StatusForbidden {
		t.Fatalf("reserved register = %d", code)
	}

	// Session resolves from the bearer token alone.
	var sess accountPayload
	if code := doJSON(t, ts, http.MethodGet, "/auth/session", got.AccessToken, nil, &sess); code != http.StatusOK {
		t.Fatalf("session = %d", code)
	}
	if sess.Profile.FullName != "Asha Verma" {
		t.Fatalf("session = %+v", sess)
	}

	// No token, no session.
	if code := doJSON(t, ts, http.MethodGet, "/auth/session", "", nil, nil); code != http.StatusUnauthorized {
		t.Fatalf("anonymous session = %d", code)
	}
	if code := doJSON(t, ts, http.MethodPost, "/auth/login", "",
		map[string]any{"email": "ghost@x.com"}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown login = %d", code)
	}
}

func TestAdminPassword(t *testing.T) {
	ts := newTestServer(t)

	// No hash configured: admin mode is gated by email alone.
	adminLogin(t, ts)

	code := doJSON(t, ts, http.MethodPost, "/auth/login", "",
		map[string]any{"email": "someone@x.com", "admin": true}, nil)
	if code != http.StatusForbidden {
		t.Fatalf("non-admin email in admin mode = %d", code)
	}
}

func TestProgressEndpoints(t *testing.T) {
	ts := newTestServer(t)
	tok := register(t, ts, "a@x.com").AccessToken

	mod, _ := course.Default.ByID("week-1")
	answers := make([]int, len(mod.QuizQuestions))
	for i, q := range mod.QuizQuestions {
		answers[i] = q.CorrectIndex
	}

	var quiz struct {
		Score    int             `json:"score"`
		Progress progressPayload `json:"progress"`
	}
	code := doJSON(t, ts, http.MethodPost, "/progress/modules/week-1/quiz", tok,
		map[string]any{"answers": answers}, &quiz)
	if code != http.StatusOK {
		t.Fatalf("quiz = %d", code)
	}
	if quiz.Score != 100 {
		t.Fatalf("score = %d", quiz.Score)
	}
	if quiz.Progress.ResumeModuleID != "week-2" {
		t.Fatalf("resume = %q", quiz.Progress.ResumeModuleID)
	}

	if code := doJSON(t, ts, http.MethodPost, "/progress/modules/week-99/quiz", tok,
		map[string]any{"answers": []int{}}, nil); code != http.StatusNotFound {
		t.Fatalf("unknown module quiz = %d", code)
	}

	var p progressPayload
	if code := doJSON(t, ts, http.MethodPost, "/progress/simulations/week-4-sim-3", tok, nil, &p); code != http.StatusOK {
		t.Fatalf("simulation = %d", code)
	}
	if len(p.Progress.CompletedSimulations) != 1 {
		t.Fatalf("simulations = %v", p.Progress.CompletedSimulations)
	}

	if code := doJSON(t, ts, http.MethodPost, "/progress/certificate", tok, nil, &p); code != http.StatusOK {
		t.Fatalf("certificate = %d", code)
	}
	if !p.Progress.CertificateDownloaded {
		t.Fatal("certificate flag not set")
	}

	if code := doJSON(t, ts, http.MethodGet, "/progress", tok, nil, &p); code != http.StatusOK {
		t.Fatalf("get progress = %d", code)
	}
	if p.ProgressPercent != 10 || p.Progress.ModuleScores["week-1"] != 100 {
		t.Fatalf("progress = %+v", p)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	ts := newTestServer(t)
	tok := register(t, ts, "a@x.com").AccessToken

	if code := doJSON(t, ts, http.MethodPost, "/feedback", tok,
		map[string]any{"rating": 9, "comment": "x"}, nil); code != http.StatusBadRequest {
		t.Fatalf("out-of-range rating = %d", code)
	}

	var fb store.Feedback
	if code := doJSON(t, ts, http.MethodPost, "/feedback", tok,
		map[string]any{"rating": 5, "comment": "great course"}, &fb); code != http.StatusOK {
		t.Fatalf("feedback = %d", code)
	}
	if fb.Rating != 5 || fb.Date == "" {
		t.Fatalf("feedback = %+v", fb)
	}

	// Admins have no record to rate.
	admTok := adminLogin(t, ts).AccessToken
	if code := doJSON(t, ts, http.MethodPost, "/feedback", admTok,
		map[string]any{"rating": 5}, nil); code != http.StatusForbidden {
		t.Fatalf("admin feedback = %d", code)
	}
}

func TestRosterAuthorization(t *testing.T) {
	ts := newTestServer(t)
	stuTok := register(t, ts, "a@x.com").AccessToken

	if code := doJSON(t, ts, http.MethodGet, "/roster", stuTok, nil, nil); code != http.StatusForbidden {
		t.Fatalf("student roster access = %d", code)
	}

	admTok := adminLogin(t, ts).AccessToken
	var rows []roster.Row
	if code := doJSON(t, ts, http.MethodGet, "/roster", admTok, nil, &rows); code != http.StatusOK {
		t.Fatalf("admin roster = %d", code)
	}
	if len(rows) != 1 || rows[0].Email != "a@x.com" {
		t.Fatalf("rows = %+v", rows)
	}

	var stats roster.Stats
	if code := doJSON(t, ts, http.MethodGet, "/roster/stats", admTok, nil, &stats); code != http.StatusOK {
		t.Fatalf("stats = %d", code)
	}
	if stats.Total != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	if code := doJSON(t, ts, http.MethodPut, "/roster/a@x.com/feedback", admTok,
		map[string]any{"text": "keep going"}, nil); code != http.StatusNoContent {
		t.Fatalf("roster feedback = %d", code)
	}
	if code := doJSON(t, ts, http.MethodGet, "/roster", admTok, nil, &rows); code != http.StatusOK {
		t.Fatalf("roster reread = %d", code)
	}
	if rows[0].AdminFeedback != "keep going" {
		t.Fatalf("admin feedback = %q", rows[0].AdminFeedback)
	}
}

func TestRosterExport(t *testing.T) {
	ts := newTestServer(t)
	register(t, ts, "a@x.com")
	admTok := adminLogin(t, ts).AccessToken

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/roster/export", nil)
	req.Header.Set("Authorization", "Bearer "+admTok)
	resp, err := ts.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("content type = %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	if len(lines) != 2 {
		t.Fatalf("csv lines = %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "Name,Email,") {
		t.Fatalf("csv header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "a@x.com") {
		t.Fatalf("csv row = %q", lines[1])
	}
}
