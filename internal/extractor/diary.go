package extractor

import (
	"fmt"
	"strings"
	"time"

	"github.com/michimem/michimem/internal/model"
)

// minDiaryMessages is the shortest session worth remembering; anything
// below this is too thin to summarize.
const minDiaryMessages = 4

// BuildDiary renders a transcript into a single ephemeral diary record, or
// nil if the session was too short to be worth keeping.
func BuildDiary(msgs []model.TranscriptMessage, ttlDiaryDays int) *model.MemoryInput {
	if len(msgs) < minDiaryMessages {
		return nil
	}

	recent := lastN(msgs, 20)
	topics := extractTopics(msgs[:min(10, len(msgs))])
	files := extractFiles(recent)
	userCount, assistantCount := countRoles(msgs)

	expires := time.Now().Add(time.Duration(ttlDiaryDays) * 24 * time.Hour)

	return &model.MemoryInput{
		Type:      model.TypeDiary,
		Priority:  model.PriorityEphemeral,
		Title:     buildTitle(msgs),
		Summary:   buildSummary(userCount, assistantCount, topics),
		Content:   buildContent(recent, files),
		Tags:      topics,
		ExpiresAt: &expires,
	}
}

func buildTitle(msgs []model.TranscriptMessage) string {
	first := collapseWhitespace(firstUserText(msgs))
	if first == "" {
		return fmt.Sprintf("Session: %s", time.Now().UTC().Format("2006-01-02 15:04"))
	}
	return "Session: " + truncate(first, 100)
}

func buildSummary(userCount, assistantCount int, topics []string) string {
	s := fmt.Sprintf("%d user msgs, %d assistant msgs.", userCount, assistantCount)
	if len(topics) > 0 {
		s += " Topics: " + strings.Join(topics, ", ")
	}
	return s
}

func buildContent(msgs []model.TranscriptMessage, files []string) string {
	lines := make([]string, 0, len(msgs))
	for _, m := range msgs {
		label := "**Assistant**"
		if m.Role == "user" {
			label = "**User**"
		}
		lines = append(lines, label+": "+truncate(m.Text(), 200))
	}
	content := strings.Join(lines, "\n")
	if len(files) > 0 {
		content += "\n\nFiles referenced: " + strings.Join(files, ", ")
	}
	return content
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
