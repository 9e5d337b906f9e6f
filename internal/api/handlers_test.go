package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bilgisen/zenstudio/internal/articles"
	"github.com/bilgisen/zenstudio/internal/cache"
	"github.com/bilgisen/zenstudio/internal/checklist"
	"github.com/bilgisen/zenstudio/internal/events"
	"github.com/bilgisen/zenstudio/internal/export"
	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/middleware"
	"github.com/bilgisen/zenstudio/internal/posts"
	"github.com/bilgisen/zenstudio/internal/projectconfig"
	"github.com/bilgisen/zenstudio/internal/storage"
)

type recordingSink struct {
	names []string
	data  [][]byte
}

func (s *recordingSink) Deliver(_ context.Context, name, _ string, data []byte) (string, error) {
	s.names = append(s.names, name)
	s.data = append(s.data, data)
	return "mem://" + name, nil
}

type testServer struct {
	app     *fiber.App
	project string
	sink    *recordingSink
}

func newTestServer(t *testing.T, token string, withSink bool) *testServer {
	t.Helper()
	root := t.TempDir()
	layout := storage.Layout{DataRoot: filepath.Join(root, "data")}
	bus := events.NewBus()
	fsys := storage.OS{}

	deps := Deps{
		Projects:  projectconfig.NewStore(fsys, filepath.Join(root, "app"), bus),
		Schedule:  posts.NewStore(fsys, layout, bus),
		Articles:  articles.NewIndex(fsys, layout, bus),
		Checklist: checklist.NewStore(fsys, layout, cache.NewMemoryStore("test:"), bus),
		Calendar:  export.CalendarOptions{Name: export.DefaultCalendarName, Timezone: export.DefaultCalendarTimezone},
	}
	ts := &testServer{project: filepath.Join(root, "project")}
	if withSink {
		ts.sink = &recordingSink{}
		deps.Sink = ts.sink
	}

	h := NewHandlers(deps)
	h.now = func() time.Time { return time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC) }

	registry := prometheus.NewRegistry()
	metrics.MustRegister(registry)

	ts.app = fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler})
	SetupRoutes(ts.app, h, RouteOptions{APIToken: token, Gatherer: registry})
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string, query url.Values) (*http.Response, string) {
	t.Helper()
	if query == nil {
		query = url.Values{}
	}
	if query.Get("project") == "" {
		query.Set("project", ts.project)
	}

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path+"?"+query.Encode(), r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp, string(data)
}

const schedulePayload = `{"posts":[{"id":"p1","platform":"linkedin","title":"Launch","content":"Hello world","scheduledDate":"2025-06-01","scheduledTime":"09:30","status":"scheduled","characterCount":11,"wordCount":2}]}`

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t, "", false)
	resp, body := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"status":"ok"`) {
		t.Errorf("health = %d %s", resp.StatusCode, body)
	}
}

func TestScheduleLifecycle(t *testing.T) {
	ts := newTestServer(t, "", false)

	resp, body := ts.do(t, http.MethodPut, "/api/v1/schedule", schedulePayload, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put schedule = %d %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/schedule", "", nil)
	var got struct {
		Posts []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"posts"`
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("decode %s: %v", body, err)
	}
	if len(got.Posts) != 1 || got.Posts[0].Status != "scheduled" {
		t.Errorf("schedule = %s", body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/schedule/stats", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"scheduled":1`) {
		t.Errorf("stats = %d %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodPatch, "/api/v1/posts/p1", `{"title":"Relaunch"}`, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"title":"Relaunch"`) {
		t.Errorf("patch = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodPatch, "/api/v1/posts/missing", `{"title":"x"}`, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("patch unknown = %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodPatch, "/api/v1/posts/p1", `{"status":"published"}`, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("patch to published = %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/v1/posts/p1/archive", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "archive") {
		t.Errorf("archive = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/v1/posts/p1", "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
}

func TestScheduleRequiresProject(t *testing.T) {
	ts := newTestServer(t, "", false)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	resp, err := ts.app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestPutScheduleRejectsUnknownPlatform(t *testing.T) {
	ts := newTestServer(t, "", false)
	resp, _ := ts.do(t, http.MethodPut, "/api/v1/schedule", `{"posts":[{"id":"x","platform":"myspace"}]}`, nil)
	if resp.StatusCode < 400 || resp.StatusCode >= 500 {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRejectsIDsThatNameOtherFiles(t *testing.T) {
	ts := newTestServer(t, "", false)

	resp, body := ts.do(t, http.MethodPut, "/api/v1/schedule", `{"posts":[{"id":"../../../../escaped","platform":"reddit","title":"x"}]}`, url.Values{"files": {"true"}})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("schedule = %d %s", resp.StatusCode, body)
	}
	resp, body = ts.do(t, http.MethodPost, "/api/v1/articles", `{"id":"../../escaped","title":"x","content":"c"}`, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("article = %d %s", resp.StatusCode, body)
	}
}

func TestAutoSchedule(t *testing.T) {
	ts := newTestServer(t, "", false)
	body := `{"posts":[{"platform":"devto","title":"T","content":"Body"}],"schedules":{"devto":{"date":"2025-06-02","time":"10:00"}}}`

	resp, out := ts.do(t, http.MethodPost, "/api/v1/schedule/auto", body, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("auto = %d %s", resp.StatusCode, out)
	}
	if !strings.Contains(out, `"status":"scheduled"`) || !strings.Contains(out, "devto-") {
		t.Errorf("auto result = %s", out)
	}
}

func TestArticlesEndpoints(t *testing.T) {
	ts := newTestServer(t, "", false)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/articles", `{"title":"Hello: World","content":"Body text"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save = %d %s", resp.StatusCode, body)
	}
	var saved struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(body), &saved); err != nil || saved.ID == "" {
		t.Fatalf("saved = %s", body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/articles/"+saved.ID, "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Body text") {
		t.Errorf("load = %d %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/articles", "", url.Values{"rescan": {"true"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"total":1`) {
		t.Errorf("list = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/articles", `{"content":"no title"}`, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("save without title = %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/v1/articles/"+saved.ID, "", nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete = %d", resp.StatusCode)
	}
	resp, _ = ts.do(t, http.MethodGet, "/api/v1/articles/"+saved.ID, "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("load deleted = %d", resp.StatusCode)
	}
}

func TestChecklistEndpoints(t *testing.T) {
	ts := newTestServer(t, "", false)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/checklist", "", url.Values{"platform": {"reddit"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"outcome":"empty"`) {
		t.Errorf("get = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/checklist", "", url.Values{"platform": {"myspace"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad platform = %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPut, "/api/v1/checklist", `{"items":[{"id":"c1","text":"Proofread","completed":true,"source":"custom"}]}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put = %d %s", resp.StatusCode, body)
	}

	_, body = ts.do(t, http.MethodGet, "/api/v1/checklist", "", nil)
	if !strings.Contains(body, "Proofread") || !strings.Contains(body, `"outcome":"loaded"`) {
		t.Errorf("reloaded = %s", body)
	}
}

func TestExportCalendar(t *testing.T) {
	ts := newTestServer(t, "", false)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/export/calendar", "", nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("empty calendar = %d", resp.StatusCode)
	}

	ts.do(t, http.MethodPut, "/api/v1/schedule", schedulePayload, nil)
	resp, body := ts.do(t, http.MethodGet, "/api/v1/export/calendar", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("calendar = %d %s", resp.StatusCode, body)
	}
	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "text/calendar") {
		t.Errorf("content type = %s", resp.Header.Get("Content-Type"))
	}
	if !strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n") || !strings.Contains(body, "UID:p1@zenpost.studio") {
		t.Errorf("calendar body = %q", body)
	}
}

func TestExportPayloadFormats(t *testing.T) {
	ts := newTestServer(t, "", true)
	ts.do(t, http.MethodPut, "/api/v1/schedule", schedulePayload, nil)

	resp, body := ts.do(t, http.MethodPost, "/api/v1/export/csv", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"p1"`) {
		t.Errorf("csv = %d %s", resp.StatusCode, body)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "zenstudio-export-20250520-080000.csv") {
		t.Errorf("disposition = %s", resp.Header.Get("Content-Disposition"))
	}

	inline := `{"posts":[{"id":"x","platform":"medium","title":"Inline","content":"c"}]}`
	resp, body = ts.do(t, http.MethodPost, "/api/v1/export/markdown", inline, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, "Inline") {
		t.Errorf("markdown = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodPost, "/api/v1/export/docx", "", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown format = %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/v1/export/csv", "", url.Values{"upload": {"true"}})
	if resp.StatusCode != http.StatusCreated || !strings.Contains(body, "mem://") {
		t.Errorf("upload = %d %s", resp.StatusCode, body)
	}
	if len(ts.sink.names) != 1 || !strings.HasSuffix(ts.sink.names[0], ".csv") {
		t.Errorf("sink = %v", ts.sink.names)
	}
}

func TestExportChecklist(t *testing.T) {
	ts := newTestServer(t, "", true)
	ts.do(t, http.MethodPut, "/api/v1/checklist", `{"items":[{"id":"c1","text":"Proofread","completed":true,"source":"custom"}]}`, nil)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/checklist/export", "", url.Values{"format": {"csv"}})
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `done,"Proofread"`) {
		t.Errorf("csv = %d %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/checklist/export", "", url.Values{"format": {"xlsx"}})
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(body, "PK") {
		t.Errorf("xlsx = %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "spreadsheetml") {
		t.Errorf("content type = %s", resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "zenstudio-checklist.xlsx") {
		t.Errorf("disposition = %s", resp.Header.Get("Content-Disposition"))
	}

	resp, body = ts.do(t, http.MethodGet, "/api/v1/checklist/export", "", url.Values{"title": {"Launch"}})
	if resp.StatusCode != http.StatusOK || !strings.HasPrefix(body, "# Launch\n") {
		t.Errorf("markdown = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/checklist/export", "", url.Values{"format": {"docx"}})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("unknown format = %d", resp.StatusCode)
	}

	resp, _ = ts.do(t, http.MethodGet, "/api/v1/checklist/export", "", url.Values{"format": {"xlsx"}, "upload": {"true"}})
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("upload = %d", resp.StatusCode)
	}
	if len(ts.sink.names) != 1 || ts.sink.names[0] != "zenstudio-checklist.xlsx" {
		t.Errorf("sink = %v", ts.sink.names)
	}
}

func TestExportUploadWithoutSink(t *testing.T) {
	ts := newTestServer(t, "", false)
	ts.do(t, http.MethodPut, "/api/v1/schedule", schedulePayload, nil)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/export/calendar", "", url.Values{"upload": {"true"}})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestConfigEndpoints(t *testing.T) {
	ts := newTestServer(t, "", false)

	resp, body := ts.do(t, http.MethodGet, "/api/v1/config", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"defaultProjectPath"`) {
		t.Errorf("config = %d %s", resp.StatusCode, body)
	}

	resp, body = ts.do(t, http.MethodPut, "/api/v1/config/last-project", `{"path":"/tmp/site"}`, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"lastProjectPath":"/tmp/site"`) {
		t.Errorf("last project = %d %s", resp.StatusCode, body)
	}

	if !strings.Contains(body, `"recentProjectPaths":["/tmp/site"]`) {
		t.Errorf("recent projects = %s", body)
	}

	resp, body = ts.do(t, http.MethodDelete, "/api/v1/config/recent-projects", `{"path":"/tmp/site"}`, nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"recentProjectPaths":[]`) {
		t.Errorf("remove recent = %d %s", resp.StatusCode, body)
	}

	resp, _ = ts.do(t, http.MethodDelete, "/api/v1/config/recent-projects", `{}`, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("remove without path = %d", resp.StatusCode)
	}

	resp, body = ts.do(t, http.MethodPost, "/api/v1/config/bootstrap-notice", "", nil)
	if resp.StatusCode != http.StatusOK || !strings.Contains(body, `"hasSeenBootstrapNotice":true`) {
		t.Errorf("bootstrap = %d %s", resp.StatusCode, body)
	}
}

func TestAPITokenAndMetrics(t *testing.T) {
	ts := newTestServer(t, "s3cret", false)

	resp, _ := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("without token = %d", resp.StatusCode)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-API-Key", "s3cret")
	resp, err := ts.app.Test(req, -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("with token = %v, %v", resp.StatusCode, err)
	}

	resp, err = ts.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Errorf("metrics = %v, %v", resp.StatusCode, err)
	}

	resp, err = ts.app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil), -1)
	if err != nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route = %v, %v", resp.StatusCode, err)
	}
}
