package patch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultThreshold accepts exact matches only. Values below 1.0 accept
// fuzzy matches.
const DefaultThreshold = 1.0

// reportContextLines is how many lines of surrounding original content a
// failed report carries for diagnostics.
const reportContextLines = 5

// LineRange is a 1-based, inclusive range of lines.
type LineRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// EditReport records the outcome of one attempted edit block. Failed
// reports carry the best candidate found, its score, the threshold that was
// required, and surrounding original content so the caller can retry just
// the failed subset.
type EditReport struct {
	Applied           bool       `json:"applied"`
	Error             string     `json:"error,omitempty"`
	MatchedRange      *LineRange `json:"matched_range,omitempty"`
	Similarity        float64    `json:"similarity,omitempty"`
	RequiredThreshold float64    `json:"required_threshold,omitempty"`
	BestCandidateText string     `json:"best_candidate_text,omitempty"`
	Context           string     `json:"context,omitempty"`
}

// Outcome is the result of applying a diff to one content string. Applied
// is true when at least one edit applied; Reports always covers every
// attempted block, successes and failures both. On rejection Content is
// empty - the engine never returns unmodified content, the caller keeps its
// original.
type Outcome struct {
	Applied bool         `json:"applied"`
	Content string       `json:"content,omitempty"`
	Error   string       `json:"error,omitempty"`
	Reports []EditReport `json:"reports,omitempty"`
}

// AppliedCount returns how many reports applied successfully.
func (o *Outcome) AppliedCount() int {
	n := 0
	for _, r := range o.Reports {
		if r.Applied {
			n++
		}
	}
	return n
}

// Options configures an Applier. Zero values select the defaults.
type Options struct {
	Threshold       float64       // similarity threshold, default 1.0 (exact only)
	BufferLines     int           // windowed search reach around the anchor, default 40
	ExtractDeadline time.Duration // extraction time budget, default 30s
	Logger          *zap.Logger   // default zap.NewNop()
}

// Applier applies search/replace diffs to content strings. Every call
// operates on its own local copies; an Applier is safe for concurrent use.
type Applier struct {
	threshold       float64
	bufferLines     int
	extractDeadline time.Duration
	logger          *zap.Logger
}

// NewApplier creates an Applier with the given options.
func NewApplier(opts Options) *Applier {
	a := &Applier{
		threshold:       opts.Threshold,
		bufferLines:     opts.BufferLines,
		extractDeadline: opts.ExtractDeadline,
		logger:          opts.Logger,
	}
	if a.threshold <= 0 {
		a.threshold = DefaultThreshold
	}
	if a.bufferLines <= 0 {
		a.bufferLines = DefaultBufferLines
	}
	if a.extractDeadline <= 0 {
		a.extractDeadline = DefaultExtractDeadline
	}
	if a.logger == nil {
		a.logger = zap.NewNop()
	}
	return a
}

// Apply validates and extracts the diff text, then applies its blocks to
// the content.
func (a *Applier) Apply(ctx context.Context, content, specText string) Outcome {
	return a.ApplyWithRange(ctx, content, specText, 0, 0)
}

// ApplyWithRange is Apply with legacy start/end line parameters. They are
// superseded by in-line :start_line: headers: only blocks without their own
// hint inherit startLine. endLine is accepted for compatibility and ignored;
// the windowed search already bounds the match region.
func (a *Applier) ApplyWithRange(ctx context.Context, content, specText string, startLine, endLine int) Outcome {
	_ = endLine

	if err := Validate(specText); err != nil {
		a.logger.Debug("diff rejected by validator", zap.Error(err))
		return Outcome{Error: err.Error()}
	}

	blocks, err := ExtractBlocks(ctx, specText, a.extractDeadline)
	if err != nil {
		a.logger.Debug("diff extraction failed", zap.Error(err))
		return Outcome{Error: err.Error()}
	}

	if startLine > 0 {
		inherited := false
		for i := range blocks {
			if blocks[i].AnchorLine == 0 {
				blocks[i].AnchorLine = startLine
				inherited = true
			}
		}
		if inherited {
			// Re-establish ascending anchor order after inheritance.
			for i := 1; i < len(blocks); i++ {
				for j := i; j > 0 && blocks[j].AnchorLine < blocks[j-1].AnchorLine; j-- {
					blocks[j], blocks[j-1] = blocks[j-1], blocks[j]
				}
			}
		}
	}

	newContent, reports := a.applyBlocks(content, blocks)

	applied := 0
	for _, r := range reports {
		if r.Applied {
			applied++
		}
	}
	a.logger.Info("diff applied",
		zap.Int("blocks", len(blocks)),
		zap.Int("applied", applied),
		zap.Int("failed", len(blocks)-applied),
	)

	if applied == 0 {
		return Outcome{
			Error:   rejectionMessage(reports),
			Reports: reports,
		}
	}
	return Outcome{Applied: true, Content: newContent, Reports: reports}
}

// rejectionMessage summarizes why zero edits applied.
func rejectionMessage(reports []EditReport) string {
	for _, r := range reports {
		if r.Error != "" {
			return fmt.Sprintf("no edits could be applied: %s", r.Error)
		}
	}
	return "no edits could be applied"
}

// applyBlocks applies the ordered blocks to the content, tracking the net
// line-count drift of already-applied edits so later anchors stay accurate.
func (a *Applier) applyBlocks(content string, blocks []EditBlock) (string, []EditReport) {
	lines := strings.Split(content, "\n")
	delta := 0
	reports := make([]EditReport, 0, len(blocks))

	for _, block := range blocks {
		// An absent anchor means "no position hint", never "start of
		// file", so it is never shifted by the drift.
		anchor := 0
		if block.AnchorLine > 0 {
			anchor = block.AnchorLine + delta
		}

		working := strings.Join(lines, "\n")
		searchText, replaceText := prepareBodies(block, working)

		if report, ok := checkPreconditions(searchText, replaceText, a.threshold); !ok {
			reports = append(reports, report)
			continue
		}

		searchLines := strings.Split(searchText, "\n")
		loc := resolveLocation(lines, searchLines, anchor, a.bufferLines, a.threshold)

		a.logger.Debug("block resolved",
			zap.Int("anchor", block.AnchorLine),
			zap.Int("effective_anchor", anchor),
			zap.Float64("score", loc.bestScore),
			zap.Bool("found", loc.found),
			zap.Bool("stripped", loc.usedStripped),
		)

		if !loc.found {
			reports = append(reports, noMatchReport(lines, loc, anchor, a.threshold))
			continue
		}

		replacement := strings.Split(replaceText, "\n")
		if loc.usedStripped {
			if stripped, ok := stripLineNumbers(replacement); ok {
				replacement = stripped
			}
		}
		adjusted := rebaseIndentation(lines[loc.index], searchLines[0], replacement, loc.usedStripped)

		spliced := make([]string, 0, len(lines)-loc.lineCount+len(adjusted))
		spliced = append(spliced, lines[:loc.index]...)
		spliced = append(spliced, adjusted...)
		spliced = append(spliced, lines[loc.index+loc.lineCount:]...)
		lines = spliced

		delta += len(adjusted) - loc.lineCount

		reports = append(reports, EditReport{
			Applied:           true,
			MatchedRange:      &LineRange{Start: loc.index + 1, End: loc.index + loc.lineCount},
			Similarity:        loc.score,
			RequiredThreshold: a.threshold,
		})
	}

	return strings.Join(lines, "\n"), reports
}

// prepareBodies unescapes the block bodies. The replace side is always
// unescaped. The search side is unescaped unless its raw escaped form
// already occurs verbatim in the content, which means the file itself
// contains backslash-prefixed marker lines that the search must match
// literally.
func prepareBodies(block EditBlock, content string) (search, replace string) {
	replace = unescapeMarkers(block.ReplaceText)
	search = block.SearchText
	if hasEscapedMarkers(search) && !strings.Contains(content, search) {
		search = unescapeMarkers(search)
	}
	return search, replace
}

// checkPreconditions validates the per-edit preconditions. Violations are
// recorded as failed reports; they never abort the batch.
func checkPreconditions(search, replace string, threshold float64) (EditReport, bool) {
	if search == "" {
		err := editError(ErrEmptySearch,
			"search text is empty",
			"every block needs non-empty search content; to insert text, search for the line the insertion should follow")
		return EditReport{Error: err.Error(), RequiredThreshold: threshold}, false
	}
	if search == replace {
		err := editError(ErrIdenticalContent,
			"search and replace text are identical",
			"the block would make no change; remove it or fix the replace content")
		return EditReport{Error: err.Error(), RequiredThreshold: threshold}, false
	}
	return EditReport{}, true
}

// noMatchReport builds the failed report for a block whose search text
// could not be located, carrying the best candidate and surrounding content.
func noMatchReport(lines []string, loc location, anchor int, threshold float64) EditReport {
	err := editError(ErrNoMatch,
		fmt.Sprintf("no sufficiently similar match found (best %.0f%%, required %.0f%%)",
			loc.bestScore*100, threshold*100),
		"the file may have changed since it was read; re-read it and retry with its current exact content")

	center := loc.bestIndex
	if center < 0 {
		center = anchor - 1
	}
	report := EditReport{
		Error:             err.Error(),
		RequiredThreshold: threshold,
		Context:           contextAround(lines, center),
	}
	if loc.bestIndex >= 0 {
		report.Similarity = loc.bestScore
		report.BestCandidateText = loc.bestText
	}
	return report
}

// contextAround returns a window of lines around the given 0-based index.
func contextAround(lines []string, center int) string {
	if len(lines) == 0 {
		return ""
	}
	start := center - reportContextLines
	if start < 0 {
		start = 0
	}
	end := center + reportContextLines + 1
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return ""
	}
	return strings.Join(lines[start:end], "\n")
}

// rebaseIndentation prepends destination indentation to each replacement
// line. The matched region's first-line indentation is the destination
// base; each replacement line's indent relative to the search chunk's
// first-line indent is preserved on top of it, so the destination's actual
// indentation style survives while the relative structure of the
// replacement is kept.
func rebaseIndentation(matchedFirst, searchFirst string, replacement []string, stripped bool) []string {
	matchedIndent := leadingWhitespace(matchedFirst)
	if stripped {
		matchedIndent = leadingWhitespace(lineNumberPrefixRe.ReplaceAllString(matchedFirst, ""))
	}
	searchBase := len(leadingWhitespace(searchFirst))

	out := make([]string, len(replacement))
	for i, line := range replacement {
		if strings.TrimSpace(line) == "" {
			out[i] = ""
			continue
		}
		own := leadingWhitespace(line)
		rel := len(own) - searchBase

		var indent string
		if rel < 0 {
			cut := len(matchedIndent) + rel
			if cut < 0 {
				cut = 0
			}
			indent = matchedIndent[:cut]
		} else {
			indent = matchedIndent + own[len(own)-rel:]
		}
		out[i] = indent + strings.TrimLeft(line, " \t")
	}
	return out
}

// leadingWhitespace returns the literal run of spaces and tabs that starts
// the line.
func leadingWhitespace(line string) string {
	for i := 0; i < len(line); i++ {
		if line[i] != ' ' && line[i] != '\t' {
			return line[:i]
		}
	}
	return line
}
