package patch

import (
	"fmt"
	"strings"
)

// Literal marker tokens of the search/replace diff grammar.
const (
	markerSearch    = "<<<<<<< SEARCH"
	markerSeparator = "======="
	markerReplace   = ">>>>>>> REPLACE"
	markerHeaderEnd = "-------"
	headerStartLine = ":start_line:"
	headerEndLine   = ":end_line:"
)

// formatHint is appended to syntax errors so an LLM retry loop can
// self-correct without being shown the full format description.
const formatHint = "a block looks like: " +
	"<<<<<<< SEARCH / :start_line:N (optional) / ------- / old text / ======= / new text / >>>>>>> REPLACE"

// validator state machine states. The machine walks the diff text line by
// line; terminal state is vStart, reached after a matched closing marker.
type vState int

const (
	vStart vState = iota
	vAfterSearchMarker
	vInSearchBody
	vInReplaceBody
)

// markerToken identifies which structural token a line is, if any.
type markerToken int

const (
	tokNone markerToken = iota
	tokSearch
	tokSeparator
	tokReplace
)

// isEscapedLine reports whether the line is a backslash-escaped marker.
// Escaped markers are literal content in every state.
func isEscapedLine(line string) bool {
	if !strings.HasPrefix(line, `\`) {
		return false
	}
	rest := line[1:]
	for _, m := range []string{markerSearch, markerSeparator, markerReplace, markerHeaderEnd, headerStartLine, headerEndLine} {
		if strings.HasPrefix(rest, m) {
			return true
		}
	}
	return false
}

// classifyLine returns the structural token for a line, ignoring trailing
// whitespace. Escaped lines always classify as tokNone.
func classifyLine(line string) markerToken {
	if isEscapedLine(line) {
		return tokNone
	}
	switch strings.TrimRight(line, " \t\r") {
	case markerSearch:
		return tokSearch
	case markerSeparator:
		return tokSeparator
	case markerReplace:
		return tokReplace
	}
	return tokNone
}

// isPositionHint reports whether an unescaped line is a :start_line: or
// :end_line: header.
func isPositionHint(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, headerStartLine) || strings.HasPrefix(trimmed, headerEndLine)
}

// markersBalanced counts unescaped SEARCH, separator and REPLACE lines over
// the whole document. Balanced counts suggest the author structured a block
// and got the ordering wrong; unbalanced counts suggest a literal merge
// conflict marker was pasted as content.
func markersBalanced(lines []string) bool {
	var search, sep, replace int
	for _, line := range lines {
		switch classifyLine(line) {
		case tokSearch:
			search++
		case tokSeparator:
			sep++
		case tokReplace:
			replace++
		}
	}
	return search == sep && sep == replace
}

// expectedMarker returns the marker the machine expects next in the given state.
func expectedMarker(state vState) string {
	switch state {
	case vAfterSearchMarker, vInSearchBody:
		return markerSeparator
	case vInReplaceBody:
		return markerReplace
	}
	return markerSearch
}

// wrongStateError builds the error for a marker token seen in the wrong
// state, choosing the message by whether marker counts are balanced.
func wrongStateError(lines []string, lineNum int, found string, state vState) *PatchError {
	if markersBalanced(lines) {
		return SyntaxErrorf(formatHint,
			"malformed diff block at line %d: found %q, expected %q",
			lineNum, found, expectedMarker(state))
	}
	return SyntaxErrorf(
		fmt.Sprintf("write the line as %q to include it as content", `\`+found),
		"line %d looks like a literal merge conflict marker pasted as content: %q",
		lineNum, found)
}

// Validate statically checks the diff text's marker structure before
// parsing. It returns nil when the structure is sound. It has no side
// effects and always terminates in a single linear scan.
func Validate(specText string) error {
	lines := strings.Split(specText, "\n")
	state := vStart

	for i, line := range lines {
		n := i + 1
		tok := classifyLine(line)

		switch state {
		case vStart:
			switch tok {
			case tokSearch:
				state = vAfterSearchMarker
			case tokSeparator, tokReplace:
				return wrongStateError(lines, n, strings.TrimRight(line, " \t\r"), state)
			}
			// Anything else between blocks is ignored.

		case vAfterSearchMarker:
			switch {
			case tok == tokSeparator:
				state = vInReplaceBody
			case tok == tokSearch || tok == tokReplace:
				return wrongStateError(lines, n, strings.TrimRight(line, " \t\r"), state)
			case isEscapedLine(line):
				state = vInSearchBody
			case isPositionHint(line):
				// Header hint, stay in header position.
			case strings.TrimRight(line, " \t\r") == markerHeaderEnd:
				state = vInSearchBody
			default:
				state = vInSearchBody
			}

		case vInSearchBody:
			switch tok {
			case tokSeparator:
				state = vInReplaceBody
			case tokSearch, tokReplace:
				return wrongStateError(lines, n, strings.TrimRight(line, " \t\r"), state)
			}

		case vInReplaceBody:
			switch tok {
			case tokReplace:
				state = vStart
			case tokSearch, tokSeparator:
				return wrongStateError(lines, n, strings.TrimRight(line, " \t\r"), state)
			case tokNone:
				if !isEscapedLine(line) && isPositionHint(line) {
					return SyntaxErrorf(
						"move the hint into the SEARCH section, or escape it with a leading backslash",
						"line %d: position hints like %q are only valid inside a SEARCH section",
						n, strings.TrimSpace(line))
				}
			}
		}
	}

	if state != vStart {
		return SyntaxErrorf(formatHint,
			"unexpected end of diff: expected %q", expectedMarker(state))
	}
	return nil
}
