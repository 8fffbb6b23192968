package interview

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ExportFilename names the downloadable file for an interview on topic,
// e.g. "Frontend Engineering" -> "interview-frontend-engineering.json".
func ExportFilename(topic string) string {
	slug := whitespaceRun.ReplaceAllString(topic, "-")
	return "interview-" + strings.ToLower(slug) + ".json"
}

// FormatJSON renders the payload as indented JSON, the form used both for
// copying and for the exported file.
func (p Payload) FormatJSON() ([]byte, error) {
	raw, err := p.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal interview: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return nil, fmt.Errorf("indent interview: %w", err)
	}
	return out.Bytes(), nil
}

// Export returns the file name and contents for a payload.
func (p Payload) Export() (string, []byte, error) {
	data, err := p.FormatJSON()
	if err != nil {
		return "", nil, err
	}
	return ExportFilename(p.Transcript.Topic), data, nil
}
