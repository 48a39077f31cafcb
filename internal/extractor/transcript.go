package extractor

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/michimem/michimem/internal/model"
)

// ParseTranscript reads a line-delimited transcript file. Lines that fail
// to unmarshal are skipped rather than aborting the whole parse — a
// transcript with one malformed line should not lose every message before
// and after it.
func ParseTranscript(path string) ([]model.TranscriptMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var msgs []model.TranscriptMessage
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var m model.TranscriptMessage
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			continue
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func countRoles(msgs []model.TranscriptMessage) (user, assistant int) {
	for _, m := range msgs {
		switch m.Role {
		case "user":
			user++
		case "assistant":
			assistant++
		}
	}
	return
}

func firstUserText(msgs []model.TranscriptMessage) string {
	for _, m := range msgs {
		if m.Role == "user" {
			return m.Text()
		}
	}
	return ""
}

func lastN(msgs []model.TranscriptMessage, n int) []model.TranscriptMessage {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

var whitespaceCollapse = strings.NewReplacer("\n", " ", "\r", " ", "\t", " ")

func collapseWhitespace(s string) string {
	s = whitespaceCollapse.Replace(s)
	for strings.Contains(s, "  ") {
		s = strings.ReplaceAll(s, "  ", " ")
	}
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
