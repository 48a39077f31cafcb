package extractor

import (
	"encoding/json"
	"strings"

	"github.com/michimem/michimem/internal/model"
)

const (
	maxTopics = 5
	maxFiles  = 10
)

// extractTopics scans the given messages for gerund-phrase and
// "the X module/service/..." mentions, returning up to maxTopics distinct
// lowercased topics in first-seen order.
func extractTopics(msgs []model.TranscriptMessage) []string {
	seen := map[string]bool{}
	var out []string

	add := func(topic string) bool {
		topic = strings.ToLower(strings.TrimSpace(topic))
		if topic == "" || seen[topic] {
			return false
		}
		seen[topic] = true
		out = append(out, topic)
		return len(out) >= maxTopics
	}

	for _, m := range msgs {
		text := m.Text()
		if text == "" {
			continue
		}
		for _, match := range topicGerundPattern.FindAllStringSubmatch(text, -1) {
			if add(match[2]) {
				return out
			}
		}
		for _, match := range topicModulePattern.FindAllStringSubmatch(text, -1) {
			if add(match[2] + " " + match[3]) {
				return out
			}
		}
	}
	return out
}

// extractFiles scans the JSON-serialized form of each message for
// path-shaped tokens, skipping URLs and vendor directories.
func extractFiles(msgs []model.TranscriptMessage) []string {
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
			if len(out) >= maxFiles {
				return out
			}
		}
	}
	return out
}
