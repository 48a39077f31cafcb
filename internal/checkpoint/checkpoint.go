package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/michimem/michimem/internal/model"
)

// CreateCheckpoint parses the transcript at transcriptPath, builds a
// Checkpoint snapshot, and writes it as JSON under checkpointsDir. A parse
// failure (missing file, or a transcript with no usable messages) is not
// an error — it yields "no checkpoint": a nil Checkpoint, nil error.
func CreateCheckpoint(checkpointsDir, sessionID, transcriptPath string) (*model.Checkpoint, error) {
	data, err := os.ReadFile(transcriptPath)
	if err != nil {
		return nil, nil
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
	if len(msgs) == 0 {
		return nil, nil
	}

	cp := model.Checkpoint{
		SessionID:      sessionID,
		Timestamp:      time.Now().UTC(),
		CurrentTask:    currentTask(msgs),
		Decisions:      recentSignals(msgs, "assistant", decisionPatterns, maxDecisions),
		FilesModified:  filesModified(msgs),
		Corrections:    recentSignals(msgs, "user", correctionPatterns, maxCorrections),
		ContextSummary: contextSummary(msgs),
	}

	if err := os.MkdirAll(checkpointsDir, 0o755); err != nil {
		return nil, fmt.Errorf("checkpoint: create dir: %w", err)
	}

	filename := fmt.Sprintf("%s-%d.json", sessionID, cp.Timestamp.UnixMilli())
	payload, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("checkpoint: marshal: %w", err)
	}
	if err := os.WriteFile(filepath.Join(checkpointsDir, filename), payload, 0o644); err != nil {
		return nil, fmt.Errorf("checkpoint: write: %w", err)
	}

	return &cp, nil
}

// GetLatestCheckpoint scans checkpointsDir for files prefixed
// "<sessionID>-" and returns the first one (in lexicographic-descending,
// i.e. most-recent-first, order) that parses successfully.
func GetLatestCheckpoint(checkpointsDir, sessionID string) (*model.Checkpoint, error) {
	entries, err := os.ReadDir(checkpointsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("checkpoint: read dir: %w", err)
	}

	prefix := sessionID + "-"
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), prefix) {
			names = append(names, e.Name())
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(checkpointsDir, name))
		if err != nil {
			continue
		}
		var cp model.Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			continue
		}
		return &cp, nil
	}
	return nil, nil
}

func currentTask(msgs []model.TranscriptMessage) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != "user" {
			continue
		}
		text := strings.TrimSpace(msgs[i].Text())
		if len(text) < minTaskLength {
			continue
		}
		if len(text) > 200 {
			text = text[:200]
		}
		return text
	}
	return ""
}

// recentSignals scans messages of the given role for pattern matches and
// returns up to max of the most recent, in chronological order.
func recentSignals(msgs []model.TranscriptMessage, role string, patterns []*regexp.Regexp, max int) []string {
	var matches []string
	for _, m := range msgs {
		if m.Role != role {
			continue
		}
		text := m.Text()
		for _, re := range patterns {
			for _, match := range re.FindAllString(text, -1) {
				matches = append(matches, strings.TrimSpace(match))
			}
		}
	}
	if len(matches) > max {
		matches = matches[len(matches)-max:]
	}
	return matches
}

func filesModified(msgs []model.TranscriptMessage) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range msgs {
		raw, err := json.Marshal(m)
		if err != nil {
			continue
		}
		for _, match := range filePathPattern.FindAllString(string(raw), -1) {
			if !strings.Contains(match, "/") {
				continue
			}
			if strings.HasPrefix(match, "http") || strings.Contains(match, "//") {
				continue
			}
			if strings.Contains(match, "node_modules") {
				continue
			}
			if seen[match] {
				continue
			}
			seen[match] = true
			out = append(out, match)
			if len(out) >= maxFilesModified {
				return out
			}
		}
	}
	return out
}

func contextSummary(msgs []model.TranscriptMessage) string {
	start := len(msgs) - 10
	if start < 0 {
		start = 0
	}
	var lines []string
	for _, m := range msgs[start:] {
		text := m.Text()
		if text == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", m.Role, text))
	}
	summary := strings.Join(lines, "\n")
	if len(summary) > maxContextChars {
		summary = summary[:maxContextChars]
	}
	return summary
}
