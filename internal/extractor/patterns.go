// Package extractor turns a raw line-delimited session transcript into
// candidate diary, correction, and preference records.
package extractor

import "regexp"

// Regex catalogs for signal extraction, used in scan-all-matches mode per
// invocation; regexp.Regexp in Go never carries a mutable cursor between
// FindAll calls, so there is no shared-lastIndex hazard to guard against
// here.
var (
	correctionPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(actually|no,\s*|wrong|instead|correction)[,:]?\s+(.{15,150})`),
		regexp.MustCompile(`(?i)(don't|do not|never|stop)\s+([\w\s]{10,80})`),
	}

	preferencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(always|prefer|I like|I want|I use|please always)\s+(.{10,100})`),
		regexp.MustCompile(`(?i)(my preferred|my favorite|I typically|I usually)\s+(.{10,100})`),
	}

	topicGerundPattern = regexp.MustCompile(`(?i)(working on|implementing|building|fixing|debugging|creating)\s+([\w\s-]{5,30})`)
	topicModulePattern = regexp.MustCompile(`(?i)(the\s+)([\w-]+(?:\s+[\w-]+){0,2})\s+(module|service|component|function|class|file)`)

	filePathPattern = regexp.MustCompile(`(?:[\w/.-]+/)?[\w.-]+\.\w{1,6}`)
)
