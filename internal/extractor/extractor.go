package extractor

import "github.com/michimem/michimem/internal/model"

// Result is everything extracted from one session transcript.
type Result struct {
	Diary       *model.MemoryInput
	Corrections []model.MemoryInput
	Preferences []model.MemoryInput
}

// Extract reads the transcript at path and derives a diary plus any
// correction/preference candidates. A read error or an empty/unparseable
// transcript yields a zero Result rather than an error — extraction is a
// best-effort side channel, never something a hook should fail on.
func Extract(path string, ttlDiaryDays int) Result {
	msgs, err := ParseTranscript(path)
	if err != nil || len(msgs) == 0 {
		return Result{}
	}

	var corrections, preferences []model.MemoryInput
	for _, m := range msgs {
		if m.Role != "user" {
			continue
		}
		text := m.Text()
		if text == "" {
			continue
		}
		corrections = append(corrections, ExtractCorrections(text)...)
		preferences = append(preferences, ExtractPreferences(text)...)
	}

	return Result{
		Diary:       BuildDiary(msgs, ttlDiaryDays),
		Corrections: dedupByTitle(corrections),
		Preferences: dedupByTitle(preferences),
	}
}
