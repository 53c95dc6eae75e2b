package parser

import (
	"regexp"

	"toggl-opsync/internal/domain"
)

// Work package tags look like "[OP#123] Fixed the flaky test". The tag must
// sit at the very start of the description; matching is case-insensitive.
var tagPattern = regexp.MustCompile(`(?i)^\[OP#(\d+)\](?: +(.*))?`)

// Parse extracts the work package id and the residual description from a raw
// entry description. The id digits are returned verbatim (leading zeros
// preserved) since they are only used for matching and URL construction.
// ok is false when the description carries no tag; that is not an error,
// untagged entries are simply not synced.
func Parse(description string) (workPackageID, residual string, ok bool) {
	m := tagPattern.FindStringSubmatch(description)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ParseEntry annotates a time entry with its extracted tag. ok is false when
// the entry's description carries no tag.
func ParseEntry(entry domain.TimeEntry) (domain.TaggedEntry, bool) {
	workPackageID, residual, ok := Parse(entry.Description)
	if !ok {
		return domain.TaggedEntry{}, false
	}
	return domain.TaggedEntry{
		Entry:         entry,
		WorkPackageID: workPackageID,
		Description:   residual,
	}, true
}
