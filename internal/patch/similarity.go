package patch

import "strings"

// asciiFold maps common "smart" typography and Unicode look-alikes to their
// plain ASCII equivalents. Both operands of a comparison are folded
// identically before scoring.
var asciiFold = map[rune]string{
	'‘': "'",   // left single quote
	'’': "'",   // right single quote
	'‚': "'",   // single low quote
	'‛': "'",   // single reversed quote
	'“': `"`,   // left double quote
	'”': `"`,   // right double quote
	'„': `"`,   // double low quote
	'‟': `"`,   // double reversed quote
	'′': "'",   // prime
	'″': `"`,   // double prime
	'–': "-",   // en dash
	'—': "-",   // em dash
	'‒': "-",   // figure dash
	'−': "-",   // minus sign
	' ': " ",   // non-breaking space
	'…': "...", // ellipsis
}

// Normalize folds smart quotes, dashes and other Unicode look-alikes to
// their ASCII equivalents.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if repl, ok := asciiFold[r]; ok {
			b.WriteString(repl)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Score returns the normalized similarity of two text chunks in [0,1].
// The search chunk is the second operand: an empty search never matches.
// Identical normalized strings short-circuit to 1.0; otherwise the score is
// 1 - levenshtein/maxLen, clamped to [0,1].
func Score(candidate, search string) float64 {
	if len(search) == 0 {
		return 0
	}
	a := Normalize(candidate)
	b := Normalize(search)
	if a == b {
		return 1.0
	}
	dist := levenshtein(a, b)
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}
	s := 1.0 - float64(dist)/float64(maxLen)
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}

// levenshtein computes the edit distance between two strings using two
// rolling rows.
func levenshtein(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 0
			if s1[i-1] != s2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(s2)]
}
