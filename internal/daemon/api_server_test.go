package daemon

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/metrics"
	"clipforge/internal/queue"
	"clipforge/internal/stage"
	"clipforge/internal/testsupport"
	"clipforge/internal/workflow"
)

type idleHandler struct{}

func (idleHandler) Prepare(context.Context, *queue.Job) error { return nil }
func (idleHandler) Execute(context.Context, *queue.Job) error { return nil }
func (idleHandler) HealthCheck(context.Context) stage.Health  { return stage.Healthy("analysis") }

func newTestServer(t *testing.T, opts ...testsupport.ConfigOption) (*httptest.Server, *queue.Store, *config.Config) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)
	logger := logging.NewNop()

	manager := workflow.NewManager(cfg, store, idleHandler{}, logger, nil)
	d, err := New(cfg, store, manager, metrics.New(), logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if d.api == nil {
		t.Fatal("expected api server to be configured")
	}
	server := httptest.NewServer(d.api.server.Handler)
	t.Cleanup(server.Close)
	return server, store, cfg
}

func decodeJob(t *testing.T, resp *http.Response) jobView {
	t.Helper()
	defer resp.Body.Close()
	var view jobView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		t.Fatalf("decode job view: %v", err)
	}
	return view
}

func TestAPISubmitAndFetchJob(t *testing.T) {
	server, _, _ := newTestServer(t)

	body := `{"video_id":"vid-1","source_path":"/videos/vid-1.mp4","params":{"clip_target_s":12}}`
	resp, err := http.Post(server.URL+"/api/jobs", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	created := decodeJob(t, resp)
	if created.VideoID != "vid-1" || created.Status != string(queue.StatusPending) {
		t.Fatalf("unexpected created job: %+v", created)
	}

	resp, err = http.Get(server.URL + "/api/jobs/" + created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	fetched := decodeJob(t, resp)
	if fetched.ID != created.ID || fetched.SourcePath != "/videos/vid-1.mp4" {
		t.Fatalf("unexpected fetched job: %+v", fetched)
	}
}

func TestAPISubmitRejectsMissingFields(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Post(server.URL+"/api/jobs", "application/json", strings.NewReader(`{"video_id":"vid-1"}`))
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAPIListJobsFiltersByStatus(t *testing.T) {
	server, store, _ := newTestServer(t)

	job := testsupport.NewJob(t, store, "vid-1", "/videos/vid-1.mp4")
	job.Status = queue.StatusCompleted
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("update: %v", err)
	}
	testsupport.NewJob(t, store, "vid-2", "/videos/vid-2.mp4")

	resp, err := http.Get(server.URL + "/api/jobs?status=pending")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	defer resp.Body.Close()
	var payload struct {
		Jobs []jobView `json:"jobs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(payload.Jobs) != 1 || payload.Jobs[0].VideoID != "vid-2" {
		t.Fatalf("unexpected jobs: %+v", payload.Jobs)
	}

	resp, err = http.Get(server.URL + "/api/jobs?status=nonsense")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestAPICancelPendingJob(t *testing.T) {
	server, store, _ := newTestServer(t)
	job := testsupport.NewJob(t, store, "vid-1", "/videos/vid-1.mp4")

	resp, err := http.Post(server.URL+"/api/jobs/"+job.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	view := decodeJob(t, resp)
	if view.Status != string(queue.StatusFailed) || view.Error != queue.CancelledReason {
		t.Fatalf("unexpected cancelled job: %+v", view)
	}
}

func TestAPICancelFinishedJobConflicts(t *testing.T) {
	server, store, _ := newTestServer(t)
	job := testsupport.NewJob(t, store, "vid-1", "/videos/vid-1.mp4")
	job.Status = queue.StatusCompleted
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("update: %v", err)
	}

	resp, err := http.Post(server.URL+"/api/jobs/"+job.ID+"/cancel", "application/json", nil)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestAPIRetryFailedJob(t *testing.T) {
	server, store, _ := newTestServer(t)
	job := testsupport.NewJob(t, store, "vid-1", "/videos/vid-1.mp4")
	job.SetFailed("extractor: motion: boom")
	if err := store.Update(context.Background(), job); err != nil {
		t.Fatalf("update: %v", err)
	}

	resp, err := http.Post(server.URL+"/api/jobs/"+job.ID+"/retry", "application/json", nil)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	view := decodeJob(t, resp)
	if view.Status != string(queue.StatusPending) || view.Progress != 0 {
		t.Fatalf("unexpected retried job: %+v", view)
	}

	resp, err = http.Post(server.URL+"/api/jobs/"+job.ID+"/retry", "application/json", nil)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusConflict)
	}
}

func TestAPITranscriptNotFound(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/videos/vid-1/transcript")
	if err != nil {
		t.Fatalf("transcript: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
}

func TestAPIHealthSkipsAuth(t *testing.T) {
	server, _, _ := newTestServer(t, testsupport.WithAPIToken("sekrit"))

	resp, err := http.Get(server.URL + "/api/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}

func TestAPIAuthRequiredForJobRoutes(t *testing.T) {
	server, _, _ := newTestServer(t, testsupport.WithAPIToken("sekrit"))

	resp, err := http.Get(server.URL + "/api/jobs")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status without token = %d, want %d", resp.StatusCode, http.StatusUnauthorized)
	}

	req, err := http.NewRequest(http.MethodGet, server.URL+"/api/jobs", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer sekrit")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d, want %d", resp.StatusCode, http.StatusOK)
	}
}
