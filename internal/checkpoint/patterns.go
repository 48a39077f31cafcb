// Package checkpoint captures and restores session-resume snapshots ahead
// of context compaction.
package checkpoint

import "regexp"

// Distinct from the extractor's catalogs — checkpoint decisions/corrections
// are mined with their own patterns.
var (
	decisionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(decided|choosing|going with|using|picked|selected)\s+(.{10,80})`),
		regexp.MustCompile(`(?i)(approach|strategy|plan):\s*(.{10,80})`),
	}

	correctionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(actually|no,|wrong|instead|correction|fix|should be)\s+(.{10,100})`),
		regexp.MustCompile(`(?i)(don't|do not|never|always|prefer|avoid)\s+(.{10,80})`),
	}

	filePathPattern = regexp.MustCompile(`(?:[\w/.-]+/)?[\w.-]+\.\w{1,6}`)
)

const (
	maxDecisions     = 5
	maxCorrections   = 5
	maxFilesModified = 10
	maxContextChars  = 500
	minTaskLength    = 10
)
