package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"interview-chatter/internal/generator"
	"interview-chatter/internal/interpreter"
	"interview-chatter/internal/interview"
	"interview-chatter/internal/logging"
	"interview-chatter/internal/metrics"
	"interview-chatter/internal/poll"
)

var (
	ErrEmptyInput = errors.New("empty input")
	ErrBusy       = errors.New("a previous request is still in progress")
)

// Listener is called for every appended message, in transcript order.
// It runs on the goroutine driving the turn and must not block for long.
type Listener func(Message)

type Option func(*Controller)

// WithPolicy overrides the default 1s x 30 polling policy.
func WithPolicy(p poll.Policy) Option { return func(c *Controller) { c.policy = p } }

func WithLogger(l *zerolog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithListener(l Listener) Option { return func(c *Controller) { c.listener = l } }

func WithClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

func WithIDs(next func() string) Option { return func(c *Controller) { c.newID = next } }

// Controller owns one conversation: its transcript and the request/poll
// lifecycle of the turn in flight. At most one turn runs at a time.
type Controller struct {
	gen      generator.Client
	policy   poll.Policy
	log      *zerolog.Logger
	listener Listener
	now      func() time.Time
	newID    func() string

	busy atomic.Bool

	mu         sync.RWMutex
	transcript Log
}

func NewController(gen generator.Client, opts ...Option) *Controller {
	c := &Controller{
		gen:    gen,
		policy: poll.Default(),
		log:    logging.Nop(),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.transcript = NewLog(c.message(RoleAssistant, Greeting()))
	return c
}

// Transcript returns the current log.
func (c *Controller) Transcript() Log {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcript
}

// Busy reports whether a turn is in flight.
func (c *Controller) Busy() bool { return c.busy.Load() }

// Start accepts text as a new turn and runs it in the background. Empty
// input and input arriving while a turn is in flight are rejected with
// ErrEmptyInput and ErrBusy without touching the transcript. ctx bounds
// the whole turn, not just the call. The returned channel yields the
// turn's outcome once its terminal message is in the transcript.
func (c *Controller) Start(ctx context.Context, text string) (<-chan Outcome, error) {
	if strings.TrimSpace(text) == "" {
		metrics.IncRejected("empty")
		return nil, ErrEmptyInput
	}
	if !c.busy.CompareAndSwap(false, true) {
		metrics.IncRejected("busy")
		return nil, ErrBusy
	}
	c.append(c.message(RoleUser, text))

	done := make(chan Outcome, 1)
	go func() {
		out := c.runTurn(ctx, text)
		c.busy.Store(false)
		metrics.IncTurn(string(out))
		done <- out
		close(done)
	}()
	return done, nil
}

// Send is Start followed by waiting for the outcome.
func (c *Controller) Send(ctx context.Context, text string) (Outcome, error) {
	done, err := c.Start(ctx, text)
	if err != nil {
		return OutcomeNone, err
	}
	return <-done, nil
}

func (c *Controller) runTurn(ctx context.Context, text string) Outcome {
	defer logging.TraceDuration(c.log, "chat.turn")()

	// Parsing
	req := interpreter.Parse(text)
	if err := interpreter.Validate(req); err != nil {
		c.log.Info().Err(err).Str("text", text).Msg("request not understood")
		return c.finish(OutcomeParseFailed, guidanceText, nil)
	}

	// Submitting
	notice := c.message(RoleSystem, submittingText(req))
	notice.Request = &req
	c.append(notice)

	id, err := c.gen.CreateInterview(ctx, req)
	if err != nil {
		c.log.Error().Err(err).Str("topic", req.Topic).Msg("failed to submit interview request")
		return c.finish(OutcomeFailed, errorText(err), nil)
	}
	log := c.log.With().Str("interview_id", id).Logger()
	log.Info().Str("topic", req.Topic).Str("difficulty", req.Difficulty).Int("duration", req.DurationMinutes).Msg("interview requested")

	// Polling
	res, err := poll.Until(ctx, c.policy,
		func(ctx context.Context) (interview.Status, error) { return c.gen.GetInterview(ctx, id) },
		func(s interview.Status) bool { return s.State != interview.StatePending },
	)
	metrics.ObservePollAttempts(res.Attempts)
	switch {
	case errors.Is(err, poll.ErrExhausted):
		log.Warn().Int("attempts", res.Attempts).Str("last_status", res.Value.Label).Msg("gave up waiting for interview")
		return c.finish(OutcomeTimedOut, timeoutText, nil)
	case err != nil:
		log.Error().Err(err).Int("attempts", res.Attempts).Msg("failed to check interview status")
		return c.finish(OutcomeFailed, errorText(err), nil)
	}

	st := res.Value
	if st.State == interview.StateFailed {
		log.Warn().Str("error_message", st.ErrorMessage).Int("attempts", res.Attempts).Msg("interview generation failed")
		return c.finish(OutcomeFailed, failedText(st.ErrorMessage), nil)
	}
	log.Info().Int("attempts", res.Attempts).Str("generated_at", st.GeneratedAt).Int("chapters", len(st.Interview.Transcript.Chapters)).
		Int("exchanges", st.Interview.Transcript.ExchangeCount()).Msg("interview ready")
	return c.finish(OutcomeResolved, resolvedText(st.Interview.Transcript), st.Interview)
}

// finish appends the single terminal message of a turn.
func (c *Controller) finish(out Outcome, text string, payload *interview.Payload) Outcome {
	m := c.message(RoleAssistant, text)
	m.Outcome = out
	m.Interview = payload
	c.append(m)
	return out
}

func (c *Controller) message(role Role, text string) Message {
	return Message{ID: c.newID(), Role: role, Text: text, CreatedAt: c.now()}
}

func (c *Controller) append(msgs ...Message) {
	c.mu.Lock()
	c.transcript = c.transcript.Append(msgs...)
	c.mu.Unlock()
	if c.listener == nil {
		return
	}
	for _, m := range msgs {
		c.listener(m)
	}
}
