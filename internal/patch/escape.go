package patch

import "strings"

// unescapeMarkers removes the leading backslash from escaped marker lines,
// turning them back into the literal content the author intended.
func unescapeMarkers(text string) string {
	if !strings.Contains(text, `\`) {
		return text
	}
	lines := strings.Split(text, "\n")
	changed := false
	for i, line := range lines {
		if isEscapedLine(line) {
			lines[i] = line[1:]
			changed = true
		}
	}
	if !changed {
		return text
	}
	return strings.Join(lines, "\n")
}

// hasEscapedMarkers reports whether any line of the text is an escaped marker.
func hasEscapedMarkers(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		if isEscapedLine(line) {
			return true
		}
	}
	return false
}
