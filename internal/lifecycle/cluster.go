package lifecycle

import (
	"regexp"
	"sort"
	"strings"

	"github.com/michimem/michimem/internal/model"
)

var nonWordRun = regexp.MustCompile(`[^\w]+`)

// wordsOf tokenizes a memory's title, summary, and tags into the lowercase
// word set the overlap clustering algorithm compares.
func wordsOf(m model.Memory) map[string]bool {
	text := m.Title + " " + m.Summary + " " + strings.Join(m.Tags, " ")
	set := map[string]bool{}
	for _, tok := range nonWordRun.Split(strings.ToLower(text), -1) {
		if len(tok) > 3 {
			set[tok] = true
		}
	}
	return set
}

func overlapRatio(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for w := range a {
		if b[w] {
			shared++
		}
	}
	min := len(a)
	if len(b) < min {
		min = len(b)
	}
	return float64(shared) / float64(min)
}

const overlapThreshold = 0.15

// clusterByOverlap groups memories by deterministic first-fit word overlap:
// each unassigned memory seeds a new group, and every later, still
// unassigned memory whose word-set overlap with the seed reaches the
// threshold joins that group. Input order is preserved both across and
// within groups.
func clusterByOverlap(input []model.Memory) [][]model.Memory {
	words := make([]map[string]bool, len(input))
	for i, m := range input {
		words[i] = wordsOf(m)
	}

	assigned := make([]bool, len(input))
	var groups [][]model.Memory

	for i, m := range input {
		if assigned[i] {
			continue
		}
		group := []model.Memory{m}
		assigned[i] = true

		for j := i + 1; j < len(input); j++ {
			if assigned[j] {
				continue
			}
			if overlapRatio(words[i], words[j]) >= overlapThreshold {
				group = append(group, input[j])
				assigned[j] = true
			}
		}
		groups = append(groups, group)
	}
	return groups
}

// topTags returns up to n distinct tags from the cluster, ranked by
// occurrence count (descending) then alphabetically for ties.
func topTags(members []model.Memory, n int) []string {
	counts := map[string]int{}
	for _, m := range members {
		for _, t := range m.Tags {
			counts[t]++
		}
	}
	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > n {
		tags = tags[:n]
	}
	return tags
}
