// Package mentions extracts @handle tokens from message-board post bodies.
package mentions

import "regexp"

// A mention is an @ followed by a handle, where the @ is not glued to a
// preceding word character. The trailing character of a handle must be
// alphanumeric or underscore, so sentence punctuation after a mention is
// not swallowed. Email addresses never match: the @ in user@example.com is
// preceded by a word character.
var mentionPattern = regexp.MustCompile(`(?:^|[^0-9A-Za-z_@])@([0-9A-Za-z](?:[0-9A-Za-z_.\-]*[0-9A-Za-z_])?)`)

// Extract returns the handles mentioned in body, deduplicated, in order of
// first appearance, without the leading @.
func Extract(body string) []string {
	matches := mentionPattern.FindAllStringSubmatch(body, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	var handles []string
	for _, m := range matches {
		h := m[1]
		if seen[h] {
			continue
		}
		seen[h] = true
		handles = append(handles, h)
	}
	return handles
}
