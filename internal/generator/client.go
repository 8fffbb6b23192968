package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/oops"

	"interview-chatter/internal/interview"
	"interview-chatter/internal/logging"
	"interview-chatter/internal/metrics"
)

const (
	generatePath   = "/api/v1/generate-interview"
	interviewsPath = "/api/v1/interviews/"

	maxErrorBody = 4 << 10
)

// Client talks to the interview generation service.
type Client interface {
	// CreateInterview submits a request and returns the new job's id.
	CreateInterview(ctx context.Context, req interview.Request) (string, error)
	// GetInterview fetches the current status of a job.
	GetInterview(ctx context.Context, id string) (interview.Status, error)
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     *zerolog.Logger
}

func NewHTTP(baseURL string, timeout time.Duration, logger *zerolog.Logger) *HTTPClient {
	if logger == nil {
		logger = logging.Nop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

type createResponse struct {
	InterviewID string `json:"interview_id"`
	Status      string `json:"status"`
}

type statusResponse struct {
	InterviewID  string          `json:"interview_id"`
	Status       string          `json:"status"`
	Interview    json.RawMessage `json:"interview"`
	ErrorMessage *string         `json:"error_message"`
	GeneratedAt  *string         `json:"generated_at"`
}

func (c *HTTPClient) CreateInterview(ctx context.Context, req interview.Request) (id string, err error) {
	defer metrics.ObserveServiceCall("create", time.Now(), &err)
	errb := oops.In("generator").With("op", "create", "topic", req.Topic)

	body, err := json.Marshal(req)
	if err != nil {
		return "", errb.Wrapf(err, "encode request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", errb.Wrapf(err, "build request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	var out createResponse
	if err := c.do(httpReq, &out, "failed to generate interview"); err != nil {
		return "", err
	}
	if out.InterviewID == "" {
		return "", errb.Errorf("failed to generate interview: response has no interview_id")
	}
	c.log.Debug().Str("interview_id", out.InterviewID).Str("status", out.Status).Msg("interview job created")
	return out.InterviewID, nil
}

func (c *HTTPClient) GetInterview(ctx context.Context, id string) (st interview.Status, err error) {
	defer metrics.ObserveServiceCall("status", time.Now(), &err)
	errb := oops.In("generator").With("op", "status", "interview_id", id)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+interviewsPath+url.PathEscape(id), nil)
	if err != nil {
		return interview.Status{}, errb.Wrapf(err, "build request")
	}

	var out statusResponse
	if err := c.do(httpReq, &out, "failed to check interview status"); err != nil {
		return interview.Status{}, err
	}

	st = interview.Status{
		InterviewID: out.InterviewID,
		State:       interview.ParseState(out.Status),
		Label:       out.Status,
	}
	if st.InterviewID == "" {
		st.InterviewID = id
	}
	if out.ErrorMessage != nil {
		st.ErrorMessage = *out.ErrorMessage
	}
	if out.GeneratedAt != nil {
		st.GeneratedAt = *out.GeneratedAt
	}
	if len(out.Interview) > 0 && string(out.Interview) != "null" {
		p, err := interview.NewPayload(out.Interview)
		if err != nil {
			return interview.Status{}, errb.Wrapf(err, "failed to check interview status")
		}
		st.Interview = p
	}
	if st.State == interview.StateCompleted && st.Interview == nil {
		return interview.Status{}, errb.Errorf("failed to check interview status: completed interview has no payload")
	}
	c.log.Debug().Str("interview_id", id).Str("status", out.Status).Msg("interview status fetched")
	return st, nil
}

// do sends req and decodes a 2xx JSON body into out. Any other status is
// an error prefixed with what.
func (c *HTTPClient) do(req *http.Request, out any, what string) error {
	errb := oops.In("generator").With("method", req.Method, "url", req.URL.String())

	resp, err := c.http.Do(req)
	if err != nil {
		return errb.Wrapf(err, "%s", what)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := errorDetail(resp.Body)
		errb = errb.With("status", resp.StatusCode)
		if detail != "" {
			return errb.Errorf("%s: service responded %s: %s", what, resp.Status, detail)
		}
		return errb.Errorf("%s: service responded %s", what, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errb.Wrapf(err, "%s: decode response", what)
	}
	return nil
}

// errorDetail extracts a FastAPI-style {"detail": ...} message, falling
// back to the trimmed body.
func errorDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(b) == 0 {
		return ""
	}
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(b, &env) == nil && len(env.Detail) > 0 {
		var s string
		if json.Unmarshal(env.Detail, &s) == nil {
			return s
		}
		return string(env.Detail)
	}
	return strings.TrimSpace(string(b))
}

var _ Client = (*HTTPClient)(nil)
