package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyplan/internal/clock"
	"studyplan/internal/config"
	"studyplan/internal/metrics"
	"studyplan/internal/notify"
	"studyplan/internal/planner"
	"studyplan/internal/storage"
)

var testNow = time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Topics = []string{"Setup", "Syntax, types; and \\ escapes", "Loops"}
	cfg.Quotes = []string{"Stay curious."}
	if mutate != nil {
		mutate(cfg)
	}
	store := storage.NewJSONStore(filepath.Join(t.TempDir(), "state.json"))
	m := metrics.New()
	p := planner.New(cfg, store,
		planner.WithClock(clock.Fixed(testNow)),
		planner.WithNotifier(notify.LogNotifier{}),
		planner.WithMetrics(m),
	)
	return NewServer(cfg, p, m)
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		if strings.HasPrefix(body, "{") {
			req.Header.Set("Content-Type", "application/json")
		} else {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestServer(t, nil).Handler(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestICSHeadersAndDefaults(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/ics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/calendar; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=20-day-python-ai.ics", rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	assert.Equal(t, 3, strings.Count(body, "BEGIN:VEVENT\r\n"))
	// No start: day 0 is today at the default 09:00.
	assert.Contains(t, body, "DTSTART:20240520T090000\r\n")
	assert.Contains(t, body, `SUMMARY:Day 2: Syntax\, types\; and \\ escapes`)
}

func TestICSQueryParameters(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	body := do(t, h, http.MethodGet, "/api/ics?start=2024-12-31&hour=18&minute=45", "").Body.String()
	assert.Contains(t, body, "DTSTART:20241231T184500\r\n")
	assert.Contains(t, body, "DTSTART:20250101T184500\r\n")
	assert.Contains(t, body, "DTSTART:20250102T184500\r\n")

	body = do(t, h, http.MethodGet, "/api/ics?start=garbage&hour=x&minute=", "").Body.String()
	assert.Contains(t, body, "DTSTART:20240520T090000\r\n")
}

func TestICSRejectsOtherMethods(t *testing.T) {
	rec := do(t, newTestServer(t, nil).Handler(), http.MethodPost, "/api/ics", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestICSCustomFilename(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Export.Filename = "plan.ics" }).Handler()
	rec := do(t, h, http.MethodGet, "/api/ics", "")
	assert.Equal(t, "attachment; filename=plan.ics", rec.Header().Get("Content-Disposition"))
}

func TestStateRoundTrip(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plannerCompleted":[]}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/state", `{"plannerStartYmd":"2024-05-18","plannerTime":"08:15","plannerCompleted":[0,2]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"plannerStartYmd":"2024-05-18","plannerTime":"08:15","plannerCompleted":[0,2]}`, rec.Body.String())

	rec = do(t, h, http.MethodPut, "/api/state", `{"plannerTime":"99:99"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")

	rec = do(t, h, http.MethodPut, "/api/state", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScheduleAndToggle(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	do(t, h, http.MethodPut, "/api/state", `{"plannerStartYmd":"2024-05-19","plannerTime":"09:00"}`)

	rec := do(t, h, http.MethodPost, "/api/progress/toggle", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"index":1,"done":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/progress/toggle", `{"index":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"index":2,"done":true}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/progress/toggle", `{"index":7}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/schedule?seed=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"current_index":1`)
	assert.Contains(t, body, `"progress_percent":67`)
	assert.Contains(t, body, `"quote":"Stay curious."`)

	rec = do(t, h, http.MethodPost, "/api/progress/reset", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.JSONEq(t, `{"plannerStartYmd":"2024-05-19","plannerTime":"09:00","plannerCompleted":[]}`,
		do(t, h, http.MethodGet, "/api/state", "").Body.String())
}

func TestNotifications(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/api/notifications", "")
	assert.JSONEq(t, `{"status":"default"}`, rec.Body.String())

	rec = do(t, h, http.MethodPost, "/api/notifications", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"granted"}`, rec.Body.String())
}

func TestQuoteIsDeterministicPerSeed(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) { c.Quotes = []string{"a", "b", "c", "d"} }).Handler()

	first := do(t, h, http.MethodGet, "/api/quote?seed=42", "").Body.String()
	second := do(t, h, http.MethodGet, "/api/quote?seed=42", "").Body.String()
	assert.Equal(t, first, second)
	assert.Contains(t, first, `"seed":42`)
}

func TestIndexPage(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, `data-ready="true"`)
	assert.Contains(t, body, "<title>20-Day Python &#43; AI Planner</title>")
	assert.Contains(t, body, "Day 1 &middot; Setup")
	assert.Contains(t, body, `/api/ics?start=2024-05-20&amp;hour=9&amp;minute=0`)

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/nope", "").Code)
}

func TestUIForms(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := do(t, h, http.MethodPost, "/ui/settings", "start=2024-05-18&time=07:30")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = do(t, h, http.MethodPost, "/ui/toggle", "index=0")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	assert.JSONEq(t, `{"plannerStartYmd":"2024-05-18","plannerTime":"07:30","plannerCompleted":[0]}`,
		do(t, h, http.MethodGet, "/api/state", "").Body.String())

	rec = do(t, h, http.MethodPost, "/ui/settings", "time=25:00")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?error="))

	rec = do(t, h, http.MethodPost, "/ui/reset", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	rec = do(t, h, http.MethodPost, "/ui/notifications", "")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, do(t, h, http.MethodGet, "/", "").Body.String(), "Notifications enabled")
}

func TestBasicAuth(t *testing.T) {
	h := newTestServer(t, func(c *config.Config) {
		c.BasicAuth = &config.BasicAuthConfig{Username: "me", Password: "secret"}
	}).Handler()

	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health", "").Code)

	rec := do(t, h, http.MethodGet, "/api/ics", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/ics", nil)
	req.SetBasicAuth("me", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/ics", nil)
	req.SetBasicAuth("me", "secret")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t, nil).Handler()
	do(t, h, http.MethodGet, "/api/ics", "")

	rec := do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `studyplan_exports_total{source="http"} 1`)
	assert.Contains(t, body, `studyplan_http_requests_total{code="200",route="/api/ics"} 1`)
}

func TestSecureCompare(t *testing.T) {
	assert.True(t, secureCompare("abc", "abc"))
	assert.False(t, secureCompare("abc", "abd"))
	assert.False(t, secureCompare("abc", "abcd"))
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 7, parseIntDefault("", 7))
	assert.Equal(t, 7, parseIntDefault("x", 7))
	assert.Equal(t, 12, parseIntDefault("12", 7))
}
