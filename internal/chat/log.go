package chat

import (
	"time"

	"interview-chatter/internal/interview"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Outcome is how a turn ended. It is set only on a turn's terminal message.
type Outcome string

const (
	OutcomeNone        Outcome = ""
	OutcomeResolved    Outcome = "resolved"
	OutcomeFailed      Outcome = "failed"
	OutcomeTimedOut    Outcome = "timed_out"
	OutcomeParseFailed Outcome = "parse_failed"
)

// Message is one transcript entry. Treat it as a value: nothing mutates a
// message once it is in a Log.
type Message struct {
	ID        string             `json:"id"`
	Role      Role               `json:"role"`
	Text      string             `json:"text"`
	CreatedAt time.Time          `json:"created_at"`
	Interview *interview.Payload `json:"interview,omitempty"`
	Request   *interview.Request `json:"request,omitempty"`
	Outcome   Outcome            `json:"outcome,omitempty"`
}

// Log is an append-only transcript. Append never touches the receiver's
// backing array, so a Log obtained earlier stays valid.
type Log struct {
	entries []Message
}

func NewLog(msgs ...Message) Log {
	return Log{}.Append(msgs...)
}

// Append returns a new Log with msgs added after the existing entries.
func (l Log) Append(msgs ...Message) Log {
	out := make([]Message, 0, len(l.entries)+len(msgs))
	out = append(out, l.entries...)
	out = append(out, msgs...)
	return Log{entries: out}
}

func (l Log) Len() int { return len(l.entries) }

// Messages returns a copy of the entries in display order.
func (l Log) Messages() []Message {
	out := make([]Message, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns the entries appended after the first n.
func (l Log) Since(n int) []Message {
	if n >= len(l.entries) {
		return nil
	}
	if n < 0 {
		n = 0
	}
	out := make([]Message, len(l.entries)-n)
	copy(out, l.entries[n:])
	return out
}

// Find looks a message up by id.
func (l Log) Find(id string) (Message, bool) {
	for _, m := range l.entries {
		if m.ID == id {
			return m, true
		}
	}
	return Message{}, false
}

// Last returns the newest entry.
func (l Log) Last() (Message, bool) {
	if len(l.entries) == 0 {
		return Message{}, false
	}
	return l.entries[len(l.entries)-1], true
}
