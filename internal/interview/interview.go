package interview

import (
	"encoding/json"
	"fmt"
)

const (
	DifficultyJunior   = "junior"
	DifficultyMidLevel = "mid-level"
	DifficultySenior   = "senior"
	DifficultyStaff    = "staff"
)

const (
	CompanyStartup    = "startup"
	CompanyBigTech    = "big-tech"
	CompanyEnterprise = "enterprise"
	CompanyConsulting = "consulting"
)

// Request is what the generation service needs to produce one interview.
type Request struct {
	Topic           string   `json:"topic" validate:"required"`
	Difficulty      string   `json:"difficulty" validate:"oneof=junior mid-level senior staff"`
	DurationMinutes int      `json:"duration_minutes" validate:"gt=0"`
	CompanyType     string   `json:"company_type" validate:"oneof=startup big-tech enterprise consulting"`
	FocusAreas      []string `json:"focus_areas" validate:"required,min=1,dive,required"`
}

// State is the lifecycle of a generation job as seen by the client.
type State string

const (
	StatePending   State = "pending"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// ParseState maps a service status label to a State. Unknown labels
// ("generating", "running", ...) mean the job is still in progress.
func ParseState(label string) State {
	switch label {
	case string(StateCompleted):
		return StateCompleted
	case string(StateFailed):
		return StateFailed
	default:
		return StatePending
	}
}

// Status is a snapshot of a generation job.
type Status struct {
	InterviewID  string
	State        State
	Label        string
	Interview    *Payload
	ErrorMessage string
	GeneratedAt  string
}

type Participant struct {
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Company string `json:"company,omitempty"`
}

type Participants struct {
	Interviewer Participant `json:"interviewer"`
	Interviewee Participant `json:"interviewee"`
}

type Exchange struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

type Chapter struct {
	Title           string     `json:"title"`
	DurationMinutes int        `json:"duration_minutes"`
	Description     string     `json:"description"`
	Exchanges       []Exchange `json:"exchanges"`
}

// Transcript is the typed view of a generated interview.
type Transcript struct {
	Topic                string         `json:"topic"`
	Difficulty           string         `json:"difficulty"`
	TotalDurationMinutes int            `json:"total_duration_minutes"`
	Participants         Participants   `json:"participants"`
	Chapters             []Chapter      `json:"chapters"`
	Metadata             map[string]any `json:"metadata,omitempty"`
}

// Payload is a completed interview. Raw keeps the object exactly as the
// service sent it so exports carry fields the typed view does not know.
type Payload struct {
	Transcript Transcript
	Raw        json.RawMessage
}

// NewPayload decodes raw into a Payload.
func NewPayload(raw json.RawMessage) (*Payload, error) {
	var t Transcript
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, fmt.Errorf("decode interview: %w", err)
	}
	cp := make(json.RawMessage, len(raw))
	copy(cp, raw)
	return &Payload{Transcript: t, Raw: cp}, nil
}

// MarshalJSON emits the payload as received.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p.Raw) > 0 {
		return p.Raw, nil
	}
	return json.Marshal(p.Transcript)
}

// UnmarshalJSON keeps both views in sync.
func (p *Payload) UnmarshalJSON(data []byte) error {
	np, err := NewPayload(data)
	if err != nil {
		return err
	}
	*p = *np
	return nil
}

// Summary is the headline shown once an interview is ready.
func (t Transcript) Summary() string {
	return fmt.Sprintf("%s - %s level\nDuration: %d minutes\nParticipants: %s & %s",
		t.Topic, t.Difficulty, t.TotalDurationMinutes,
		t.Participants.Interviewer.Name, t.Participants.Interviewee.Name)
}

// ExchangeCount is the number of dialogue turns across all chapters.
func (t Transcript) ExchangeCount() int {
	n := 0
	for _, ch := range t.Chapters {
		n += len(ch.Exchanges)
	}
	return n
}

