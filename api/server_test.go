package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"json2video/jobs"
	"json2video/timeline"
	"json2video/types"
)

type recordingSubmitter struct {
	store *jobs.MemoryStatusStore
	got   []jobs.RenderRequest
	err   error
}

func (r *recordingSubmitter) Submit(ctx context.Context, req jobs.RenderRequest) error {
	if r.err != nil {
		return r.err
	}
	r.got = append(r.got, req)
	return r.store.Save(ctx, jobs.Status{JobID: req.JobID, State: jobs.StateQueued})
}

type fakePlanner struct {
	err error
}

func (f *fakePlanner) Plan(_ context.Context, doc *types.Document) (*timeline.Timeline, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &timeline.Timeline{Canvas: timeline.Canvas{Width: 1920, Height: 1080}, TotalDuration: 3}, nil
}

func newTestRouter() (*gin.Engine, *recordingSubmitter) {
	gin.SetMode(gin.TestMode)
	store := jobs.NewMemoryStatusStore()
	sub := &recordingSubmitter{store: store}
	return NewRouter(&Server{Submitter: sub, Store: store, Planner: &fakePlanner{}}), sub
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter()
	w := do(r, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestRenderAcceptsDocument(t *testing.T) {
	r, sub := newTestRouter()
	w := do(r, http.MethodPost, "/api/render", `{"document": {"script": [{"_id": "a", "text": "hi"}]}}`)
	if w.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", w.Code, w.Body.String())
	}

	var resp RenderResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.JobID == "" || resp.State != "queued" || resp.StatusURL != "/api/jobs/"+resp.JobID {
		t.Errorf("unexpected response %+v", resp)
	}
	if len(sub.got) != 1 || sub.got[0].JobID != resp.JobID {
		t.Errorf("expected the job to be submitted, got %+v", sub.got)
	}

	w = do(r, http.MethodGet, resp.StatusURL, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for status, got %d", w.Code)
	}
	var status jobs.Status
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatal(err)
	}
	if status.State != jobs.StateQueued {
		t.Errorf("expected queued, got %s", status.State)
	}
}

func TestRenderRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"document":`},
		{"no document", `{"job_id": "x"}`},
		{"both sources", `{"document": {"script": [{"_id": "a", "text": "hi"}]}, "document_path": "a.json"}`},
		{"empty document", `{"document": {}}`},
		{"bad job id", `{"job_id": "../x", "document_path": "a.json"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sub := newTestRouter()
			w := do(r, http.MethodPost, "/api/render", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
			}
			if len(sub.got) != 0 {
				t.Error("rejected request must not be submitted")
			}
		})
	}
}

func TestRenderQueueUnavailable(t *testing.T) {
	r, sub := newTestRouter()
	sub.err = jobs.ErrQueueClosed
	w := do(r, http.MethodPost, "/api/render", `{"job_id": "j", "document_path": "a.json"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
}

func TestGetUnknownJob(t *testing.T) {
	r, _ := newTestRouter()
	w := do(r, http.MethodGet, "/api/jobs/nope", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPlan(t *testing.T) {
	r, _ := newTestRouter()
	w := do(r, http.MethodPost, "/api/plan", `{"script": [{"_id": "a", "text": "hi"}]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var tl timeline.Timeline
	if err := json.Unmarshal(w.Body.Bytes(), &tl); err != nil {
		t.Fatal(err)
	}
	if tl.TotalDuration != 3 {
		t.Errorf("expected total duration 3, got %v", tl.TotalDuration)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&types.InputError{Reason: "bad"}, http.StatusUnprocessableEntity},
		{&types.ResolutionError{Raw: "x.start_time"}, http.StatusUnprocessableEntity},
		{&types.UnsupportedFormatError{Path: "a.mov"}, http.StatusUnprocessableEntity},
		{&types.SynthesisError{SegmentID: "a", Err: errors.New("down")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%T) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
