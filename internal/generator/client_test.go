package generator

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"interview-chatter/internal/interview"
)

const completedBody = `{"interview_id":"abc","status":"completed","generated_at":"2026-10-18T10:00:00",` +
	`"interview":{"topic":"Backend Engineering","difficulty":"junior","total_duration_minutes":20,` +
	`"participants":{"interviewer":{"name":"Lisa Moore"},"interviewee":{"name":"Tom Reed"}},"chapters":[],"metadata":{"k":"v"}}}`

func newTestClient(t *testing.T, h http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTP(srv.URL+"/", time.Second, nil)
}

func TestCreateInterview_PostsRequest(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/v1/generate-interview" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		_, _ = w.Write([]byte(`{"interview_id":"job-1","status":"generating"}`))
	})

	req := interview.Request{Topic: "Data Science", Difficulty: "staff", DurationMinutes: 60, CompanyType: "consulting", FocusAreas: []string{"technical", "behavioral"}}
	id, err := c.CreateInterview(context.Background(), req)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id != "job-1" {
		t.Fatalf("unexpected id %q", id)
	}
	if got["topic"] != "Data Science" || got["duration_minutes"] != float64(60) || got["company_type"] != "consulting" {
		t.Fatalf("unexpected body: %v", got)
	}
	if fa, _ := got["focus_areas"].([]any); len(fa) != 2 {
		t.Fatalf("focus areas not sent: %v", got)
	}
}

func TestCreateInterview_NonSuccessStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":"duration_minutes must be >= 15"}`))
	})
	_, err := c.CreateInterview(context.Background(), interview.Request{Topic: "x"})
	if err == nil {
		t.Fatalf("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "failed to generate interview") || !strings.Contains(msg, "422") || !strings.Contains(msg, "must be >= 15") {
		t.Fatalf("unexpected error text: %q", msg)
	}
}

func TestCreateInterview_MissingID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"generating"}`))
	})
	if _, err := c.CreateInterview(context.Background(), interview.Request{}); err == nil || !strings.Contains(err.Error(), "interview_id") {
		t.Fatalf("expected missing id error, got %v", err)
	}
}

func TestCreateInterview_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewHTTP(srv.URL, time.Second, nil)
	if _, err := c.CreateInterview(context.Background(), interview.Request{}); err == nil || !strings.HasPrefix(err.Error(), "failed to generate interview") {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGetInterview_Completed(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/interviews/abc" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte(completedBody))
	})
	st, err := c.GetInterview(context.Background(), "abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if st.State != interview.StateCompleted || st.Interview == nil || st.GeneratedAt == "" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Interview.Transcript.Participants.Interviewee.Name != "Tom Reed" {
		t.Fatalf("payload not decoded: %+v", st.Interview.Transcript)
	}
	if !strings.Contains(string(st.Interview.Raw), `"metadata":{"k":"v"}`) {
		t.Fatalf("raw payload not kept: %s", st.Interview.Raw)
	}
}

func TestGetInterview_PendingAndFailed(t *testing.T) {
	bodies := []string{
		`{"interview_id":"abc","status":"generating","interview":null}`,
		`{"interview_id":"abc","status":"failed","error_message":"OpenAI quota exceeded"}`,
		`{"interview_id":"abc","status":"failed"}`,
	}
	i := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(bodies[i]))
		i++
	})

	st, err := c.GetInterview(context.Background(), "abc")
	if err != nil || st.State != interview.StatePending || st.Label != "generating" || st.Interview != nil {
		t.Fatalf("unexpected pending status: %+v, %v", st, err)
	}
	st, err = c.GetInterview(context.Background(), "abc")
	if err != nil || st.State != interview.StateFailed || st.ErrorMessage != "OpenAI quota exceeded" {
		t.Fatalf("unexpected failed status: %+v, %v", st, err)
	}
	st, err = c.GetInterview(context.Background(), "abc")
	if err != nil || st.State != interview.StateFailed || st.ErrorMessage != "" {
		t.Fatalf("unexpected failed status without message: %+v, %v", st, err)
	}
}

func TestGetInterview_NotFoundAndBrokenPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/missing") {
			http.Error(w, `{"detail":"Interview not found"}`, http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"interview_id":"x","status":"completed"}`))
	})
	_, err := c.GetInterview(context.Background(), "missing")
	if err == nil || !strings.Contains(err.Error(), "failed to check interview status") || !strings.Contains(err.Error(), "Interview not found") {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := c.GetInterview(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "no payload") {
		t.Fatalf("completed without payload accepted: %v", err)
	}
}
