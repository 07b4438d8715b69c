package patch

import (
	"regexp"
	"strings"
)

// DefaultBufferLines is how far the windowed search extends above and below
// the anchor position.
const DefaultBufferLines = 40

// lineNumberPrefixRe matches a leading "<number> | " prefix, as produced by
// line-numbered file views echoed back by a model.
var lineNumberPrefixRe = regexp.MustCompile(`^\s*\d+\s*\|\s?`)

// candidate is one scored slice of content lines.
type candidate struct {
	score      float64
	startIndex int
	text       string
}

// middleOutSearch finds the slice of length len(chunkLines) most similar to
// the chunk within the window [searchStart, searchEnd) of contentLines.
// Probing starts at the window midpoint and expands outward in both
// directions; the first best-or-better score in that traversal order wins,
// which makes tie-breaks deterministic.
func middleOutSearch(contentLines, chunkLines []string, searchStart, searchEnd int) (candidate, bool) {
	if searchStart < 0 {
		searchStart = 0
	}
	if searchEnd > len(contentLines) {
		searchEnd = len(contentLines)
	}
	chunkLen := len(chunkLines)
	if chunkLen == 0 || searchStart >= searchEnd {
		return candidate{}, false
	}

	chunk := strings.Join(chunkLines, "\n")
	best := candidate{score: -1}

	probe := func(i int) {
		if i < searchStart || i+chunkLen > searchEnd || i+chunkLen > len(contentLines) {
			return
		}
		text := strings.Join(contentLines[i:i+chunkLen], "\n")
		if s := Score(text, chunk); s > best.score {
			best = candidate{score: s, startIndex: i, text: text}
		}
	}

	mid := (searchStart + searchEnd) / 2
	probe(mid)
	for d := 1; mid+d < searchEnd || mid-d >= searchStart; d++ {
		probe(mid + d)
		probe(mid - d)
	}

	if best.score < 0 {
		return candidate{}, false
	}
	return best, true
}

// location is the outcome of resolving a search chunk against content.
type location struct {
	found        bool
	index        int     // 0-based start line of the accepted match
	lineCount    int     // number of matched lines
	score        float64 // score of the accepted match
	usedStripped bool    // match came from the line-number-stripped fallback

	// Best candidate seen across all phases, kept for diagnostics even
	// when nothing reached the threshold.
	bestScore float64
	bestIndex int
	bestText  string
}

// resolveLocation finds the best-matching line range for the search chunk.
//
// With a positive anchor it tries three phases: an exact-position fast path
// at the anchor, a middle-out windowed search around it, and finally the
// aggressive fallback that strips "N | " line-number prefixes from both the
// chunk and the content before re-running the windowed search. Without an
// anchor the window is the whole content.
func resolveLocation(contentLines, searchLines []string, anchor int, bufferLines int, threshold float64) location {
	chunkLen := len(searchLines)
	loc := location{bestScore: -1, bestIndex: -1}

	record := func(c candidate) {
		if c.score > loc.bestScore {
			loc.bestScore = c.score
			loc.bestIndex = c.startIndex
			loc.bestText = c.text
		}
	}
	accept := func(c candidate, stripped bool) location {
		record(c)
		loc.found = true
		loc.index = c.startIndex
		loc.lineCount = chunkLen
		loc.score = c.score
		loc.usedStripped = stripped
		return loc
	}

	// Exact-position fast path.
	if anchor > 0 {
		idx := anchor - 1
		if idx >= 0 && idx+chunkLen <= len(contentLines) {
			text := strings.Join(contentLines[idx:idx+chunkLen], "\n")
			c := candidate{score: Score(text, strings.Join(searchLines, "\n")), startIndex: idx, text: text}
			if c.score >= threshold {
				return accept(c, false)
			}
			record(c)
		}
	}

	// Windowed fallback (whole content when no anchor).
	lo, hi := 0, len(contentLines)
	if anchor > 0 {
		lo = anchor - 1 - bufferLines
		hi = anchor - 1 + chunkLen + bufferLines
	}
	if c, ok := middleOutSearch(contentLines, searchLines, lo, hi); ok {
		if c.score >= threshold {
			return accept(c, false)
		}
		record(c)
	}

	// Aggressive fallback: the model may have echoed back the line-numbered
	// view it was shown instead of the raw source.
	if strippedSearch, ok := stripLineNumbers(searchLines); ok {
		strippedContent := make([]string, len(contentLines))
		for i, line := range contentLines {
			strippedContent[i] = lineNumberPrefixRe.ReplaceAllString(line, "")
		}
		if c, ok := middleOutSearch(strippedContent, strippedSearch, lo, hi); ok {
			if c.score >= threshold {
				return accept(c, true)
			}
			record(c)
		}
	}

	return loc
}

// stripLineNumbers removes "N | " prefixes from every line. It returns
// false when any non-empty line lacks the prefix, since partial stripping
// would desynchronize the chunk from the content.
func stripLineNumbers(lines []string) ([]string, bool) {
	stripped := make([]string, len(lines))
	any := false
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			stripped[i] = line
			continue
		}
		if !lineNumberPrefixRe.MatchString(line) {
			return nil, false
		}
		stripped[i] = lineNumberPrefixRe.ReplaceAllString(line, "")
		any = true
	}
	return stripped, any
}
