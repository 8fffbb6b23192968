package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"interview-chatter/internal/chat"
	"interview-chatter/internal/interview"
	"interview-chatter/internal/poll"
)

type fakeGenerator struct {
	release chan struct{}
	payload *interview.Payload
}

func (f *fakeGenerator) CreateInterview(ctx context.Context, req interview.Request) (string, error) {
	if f.release != nil {
		<-f.release
	}
	return "job-1", nil
}

func (f *fakeGenerator) GetInterview(ctx context.Context, id string) (interview.Status, error) {
	return interview.Status{InterviewID: id, State: interview.StateCompleted, Label: "completed", Interview: f.payload}, nil
}

func newTestServer(t *testing.T, gen *fakeGenerator) (*Server, *chat.Controller, http.Handler) {
	t.Helper()
	p, err := interview.NewPayload([]byte(`{"topic":"Software Engineering","difficulty":"mid-level","total_duration_minutes":30,` +
		`"participants":{"interviewer":{"name":"Alex"},"interviewee":{"name":"Sam"}},"chapters":[]}`))
	if err != nil {
		t.Fatalf("payload: %v", err)
	}
	gen.payload = p
	ctrl := chat.NewController(gen, chat.WithPolicy(poll.Policy{
		MaxAttempts: 3,
		Interval:    time.Millisecond,
		Sleep:       func(ctx context.Context, _ time.Duration) error { return ctx.Err() },
	}))
	srv := NewServer(context.Background(), ctrl, nil)
	return srv, ctrl, srv.Router()
}

func waitIdle(t *testing.T, ctrl *chat.Controller) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for ctrl.Busy() {
		if time.Now().After(deadline) {
			t.Fatalf("turn did not finish")
		}
		time.Sleep(time.Millisecond)
	}
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	_, _, h := newTestServer(t, &fakeGenerator{})
	rec := do(h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("want 200 ok, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestSendAndShare(t *testing.T) {
	_, ctrl, h := newTestServer(t, &fakeGenerator{})

	rec := do(h, http.MethodPost, "/api/messages", `{"text":"software engineering interview"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("want 202, got %d, body=%s", rec.Code, rec.Body.String())
	}
	waitIdle(t, ctrl)

	rec = do(h, http.MethodGet, "/api/messages", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	var body struct {
		Messages []json.RawMessage `json:"messages"`
		Total    int               `json:"total"`
		Busy     bool              `json:"busy"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total != 4 || len(body.Messages) != 4 || body.Busy {
		t.Fatalf("unexpected list: total=%d len=%d busy=%v", body.Total, len(body.Messages), body.Busy)
	}

	rec = do(h, http.MethodGet, "/api/messages?since=3", "")
	var tail struct {
		Messages []chat.Message `json:"messages"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&tail); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tail.Messages) != 1 || tail.Messages[0].Outcome != chat.OutcomeResolved || tail.Messages[0].Interview == nil {
		t.Fatalf("unexpected tail: %+v", tail.Messages)
	}
	id := tail.Messages[0].ID

	rec = do(h, http.MethodGet, "/api/messages/"+id+"/interview", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "{\n  \"topic\": \"Software Engineering\"") {
		t.Fatalf("unexpected copy response %d %q", rec.Code, rec.Body.String())
	}

	rec = do(h, http.MethodGet, "/api/messages/"+id+"/download", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", rec.Code)
	}
	cd := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(cd, "attachment") || !strings.Contains(cd, "interview-software-engineering.json") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
}

func TestSendRejections(t *testing.T) {
	gen := &fakeGenerator{release: make(chan struct{})}
	_, ctrl, h := newTestServer(t, gen)

	if rec := do(h, http.MethodPost, "/api/messages", `{"text":"   "}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("empty text: want 400, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/messages", `not json`); rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json: want 400, got %d", rec.Code)
	}
	if rec := do(h, http.MethodPost, "/api/messages", `{"text":"frontend interview"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("want 202, got %d", rec.Code)
	}
	before := ctrl.Transcript().Len()
	if rec := do(h, http.MethodPost, "/api/messages", `{"text":"backend interview"}`); rec.Code != http.StatusConflict {
		t.Fatalf("busy: want 409, got %d", rec.Code)
	}
	if ctrl.Transcript().Len() != before {
		t.Fatalf("busy send changed the transcript")
	}
	close(gen.release)
	waitIdle(t, ctrl)
}

func TestNotFoundAndBadQuery(t *testing.T) {
	_, _, h := newTestServer(t, &fakeGenerator{})
	if rec := do(h, http.MethodGet, "/api/messages/nope/interview", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/messages/nope/download", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", rec.Code)
	}
	if rec := do(h, http.MethodGet, "/api/messages?since=-1", ""); rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}

func TestIndexAndForm(t *testing.T) {
	_, ctrl, h := newTestServer(t, &fakeGenerator{})

	rec := do(h, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "interview generator") {
		t.Fatalf("page missing greeting: %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `http-equiv="refresh"`) {
		t.Fatalf("idle page should not auto-refresh")
	}

	form := url.Values{"text": {"mobile interview for a junior"}}
	req := httptest.NewRequest(http.MethodPost, "/messages", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/" {
		t.Fatalf("want redirect to /, got %d %q", rr.Code, rr.Header().Get("Location"))
	}
	waitIdle(t, ctrl)

	rec = do(h, http.MethodGet, "/", "")
	if !strings.Contains(rec.Body.String(), "/download") {
		t.Fatalf("resolved interview has no download link")
	}
}
