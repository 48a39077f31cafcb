package extractor

import (
	"regexp"
	"strings"

	"github.com/michimem/michimem/internal/model"
)

// contextPad is how many characters of surrounding text to keep on each
// side of a matched signal, so the stored record reads as a sentence
// rather than a bare regex capture.
const contextPad = 80

type signalMatch struct {
	fullMatch string
	trigger   string
	start, end int
}

func findSignals(text string, patterns []*regexp.Regexp) []signalMatch {
	var out []signalMatch
	for _, re := range patterns {
		for _, loc := range re.FindAllSubmatchIndex([]byte(text), -1) {
			start, end := loc[0], loc[1]
			trigger := ""
			if len(loc) >= 4 && loc[2] >= 0 && loc[3] >= 0 {
				trigger = text[loc[2]:loc[3]]
			}
			out = append(out, signalMatch{
				fullMatch: text[start:end],
				trigger:   trigger,
				start:     start,
				end:       end,
			})
		}
	}
	return out
}

func contextWindow(text string, start, end int) string {
	s := start - contextPad
	if s < 0 {
		s = 0
	}
	e := end + contextPad
	if e > len(text) {
		e = len(text)
	}
	return strings.TrimSpace(text[s:e])
}

func subtypeOf(trigger string) string {
	trigger = strings.ToLower(strings.TrimSpace(trigger))
	trigger = strings.TrimRight(trigger, ",")
	return trigger
}

// ExtractCorrections scans a single user message for correction signals
// ("actually...", "don't...") and returns one knowledge-type candidate per
// match, tagged ["correction", <trigger>].
func ExtractCorrections(text string) []model.MemoryInput {
	var out []model.MemoryInput
	for _, sig := range findSignals(text, correctionPatterns) {
		out = append(out, model.MemoryInput{
			Type:     model.TypeKnowledge,
			Priority: model.PriorityPermanent,
			Title:    "Correction: " + truncate(sig.fullMatch, 60),
			Summary:  truncate(sig.fullMatch, 150),
			Content:  contextWindow(text, sig.start, sig.end),
			Tags:     []string{"correction", subtypeOf(sig.trigger)},
		})
	}
	return out
}

// ExtractPreferences scans a single user message for stated preferences
// ("always...", "I prefer...") and returns one knowledge-type candidate per
// match, tagged ["preference"].
func ExtractPreferences(text string) []model.MemoryInput {
	var out []model.MemoryInput
	for _, sig := range findSignals(text, preferencePatterns) {
		out = append(out, model.MemoryInput{
			Type:     model.TypeKnowledge,
			Priority: model.PriorityPermanent,
			Title:    "Preference: " + truncate(sig.fullMatch, 60),
			Summary:  truncate(sig.fullMatch, 150),
			Content:  contextWindow(text, sig.start, sig.end),
			Tags:     []string{"preference"},
		})
	}
	return out
}

// dedupByTitle keeps the first occurrence of each case-insensitive title.
func dedupByTitle(items []model.MemoryInput) []model.MemoryInput {
	seen := map[string]bool{}
	out := make([]model.MemoryInput, 0, len(items))
	for _, it := range items {
		key := strings.ToLower(it.Title)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, it)
	}
	return out
}
