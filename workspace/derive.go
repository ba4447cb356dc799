package workspace

import (
	"regexp"
	"strings"
)

var (
	tagPattern = regexp.MustCompile(`#\w+`)

	labeledDeadlinePattern = regexp.MustCompile(`(?i)\b(?:deadline|due)\s*:\s*([^.]*)`)
	byDeadlinePattern      = regexp.MustCompile(`(?i)\bby\s+([^.]+)\.`)
)

// DerivedTags returns every #tag in the card content, deduplicated and in
// order of first occurrence. Matching is case-sensitive.
func DerivedTags(c Card) []string {
	matches := tagPattern.FindAllString(c.Content, -1)
	tags := make([]string, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, tag := range matches {
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// DerivedDeadline returns the explicit deadline when set, otherwise the text
// following a "Deadline:" or "Due:" label up to the next period, otherwise
// the text of a "by <text>." phrase.
func DerivedDeadline(c Card) (string, bool) {
	if c.Deadline != nil {
		if d := strings.TrimSpace(*c.Deadline); d != "" {
			return d, true
		}
	}
	if m := labeledDeadlinePattern.FindStringSubmatch(c.Content); m != nil {
		if d := strings.TrimSpace(m[1]); d != "" {
			return d, true
		}
	}
	if m := byDeadlinePattern.FindStringSubmatch(c.Content); m != nil {
		if d := strings.TrimSpace(m[1]); d != "" {
			return d, true
		}
	}
	return "", false
}
