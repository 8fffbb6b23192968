package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"interview-chatter/internal/chat"
)

// DailyStats is the usage of all conversations for one day.
type DailyStats struct {
	Date        string              `json:"date"`
	TotalTurns  int                 `json:"total_turns"`
	UniqueChats int                 `json:"unique_chats"`
	Outcomes    map[string]int      `json:"outcomes"`
	Topics      map[string]int      `json:"topics"`
	ChatStats   map[int64]ChatStats `json:"chat_stats"`
}

// ChatStats is one conversation's share of the day.
type ChatStats struct {
	ChatID   int64 `json:"chat_id"`
	Turns    int   `json:"turns"`
	Resolved int   `json:"resolved"`
}

// AnalyzeDailyLogs counts activity in logs that happened on targetDate's day.
func AnalyzeDailyLogs(logs map[int64]chat.Log, targetDate time.Time) *DailyStats {
	startOfDay := time.Date(targetDate.Year(), targetDate.Month(), targetDate.Day(), 0, 0, 0, 0, targetDate.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	stats := &DailyStats{
		Date:      startOfDay.Format("2006-01-02"),
		Outcomes:  make(map[string]int),
		Topics:    make(map[string]int),
		ChatStats: make(map[int64]ChatStats),
	}

	for chatID, log := range logs {
		cs := ChatStats{ChatID: chatID}
		for _, m := range log.Messages() {
			if m.CreatedAt.Before(startOfDay) || !m.CreatedAt.Before(endOfDay) {
				continue
			}
			switch {
			case m.Role == chat.RoleUser:
				cs.Turns++
				stats.TotalTurns++
			case m.Request != nil:
				stats.Topics[m.Request.Topic]++
			case m.Outcome != chat.OutcomeNone:
				stats.Outcomes[string(m.Outcome)]++
				if m.Outcome == chat.OutcomeResolved {
					cs.Resolved++
				}
			}
		}
		if cs.Turns > 0 {
			stats.ChatStats[chatID] = cs
		}
	}

	stats.UniqueChats = len(stats.ChatStats)
	return stats
}

// GenerateReportSummary renders the stats as a short plain-text report.
func (ds *DailyStats) GenerateReportSummary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interview generator usage for %s:\n\n", ds.Date)
	fmt.Fprintf(&b, "- Requests: %d\n", ds.TotalTurns)
	fmt.Fprintf(&b, "- Active chats: %d\n", ds.UniqueChats)

	if len(ds.Outcomes) > 0 {
		b.WriteString("\nOutcomes:\n")
		for _, k := range sortedKeys(ds.Outcomes) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.Outcomes[k])
		}
	}
	if len(ds.Topics) > 0 {
		b.WriteString("\nTopics:\n")
		for _, k := range sortedKeys(ds.Topics) {
			fmt.Fprintf(&b, "- %s: %d\n", k, ds.Topics[k])
		}
	}
	return b.String()
}

// ToJSON serializes the stats for detailed inspection.
func (ds *DailyStats) ToJSON() (string, error) {
	data, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Log writes the headline numbers at info and the full stats at debug.
func (ds *DailyStats) Log(logger *zerolog.Logger) {
	logger.Info().Str("date", ds.Date).Int("turns", ds.TotalTurns).Int("chats", ds.UniqueChats).
		Interface("outcomes", ds.Outcomes).Msg("daily usage report")
	if logger.GetLevel() > zerolog.DebugLevel {
		return
	}
	data, err := ds.ToJSON()
	if err != nil {
		logger.Error().Err(err).Msg("failed to serialize daily stats")
		return
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, []byte(data)); err != nil {
		logger.Error().Err(err).Msg("failed to compact daily stats")
		return
	}
	logger.Debug().RawJSON("stats", compact.Bytes()).Msg("daily usage details")
}
