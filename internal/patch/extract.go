package patch

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultExtractDeadline bounds the wall-clock time spent extracting blocks
// from a diff. Extraction races against this deadline; it is best-effort
// cancellation, not a guaranteed CPU cutoff.
const DefaultExtractDeadline = 30 * time.Second

// extractCheckInterval is how many lines the scanner processes between
// cooperative cancellation checks.
const extractCheckInterval = 256

// EditBlock is one search/replace instruction with an optional position hint.
// AnchorLine is a 1-based line number in the original, pre-edit content;
// zero means no reliable position hint. Search and replace bodies are kept
// in their raw (still escaped) form; the applier unescapes them.
type EditBlock struct {
	AnchorLine  int
	SearchText  string
	ReplaceText string
}

// ExtractBlocks parses validated diff text into an ordered list of edit
// blocks, sorted ascending by anchor line. The scan runs in its own
// goroutine and races the deadline: if the deadline wins, the scan is
// abandoned and a deadline error is returned, distinct from the zero-blocks
// error. All scanner state is local to the call.
func ExtractBlocks(ctx context.Context, specText string, deadline time.Duration) ([]EditBlock, error) {
	if deadline <= 0 {
		deadline = DefaultExtractDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	type result struct {
		blocks []EditBlock
		err    error
	}
	ch := make(chan result, 1)
	go func() {
		blocks, err := scanBlocks(ctx, specText)
		ch <- result{blocks, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return nil, r.err
		}
		if len(r.blocks) == 0 {
			return nil, NoBlocksError()
		}
		sort.SliceStable(r.blocks, func(i, j int) bool {
			return r.blocks[i].AnchorLine < r.blocks[j].AnchorLine
		})
		return r.blocks, nil
	case <-ctx.Done():
		return nil, DeadlineError("diff block extraction exceeded its deadline")
	}
}

// scanBlocks walks the diff text line by line capturing block bodies.
// It mirrors the validator's state machine but accumulates content, and
// checks for cancellation every extractCheckInterval lines.
func scanBlocks(ctx context.Context, specText string) ([]EditBlock, error) {
	lines := strings.Split(specText, "\n")

	var blocks []EditBlock
	state := vStart
	var cur EditBlock
	var search, replace []string
	headerDone := false

	for i, line := range lines {
		if i%extractCheckInterval == extractCheckInterval-1 {
			if err := ctx.Err(); err != nil {
				return nil, DeadlineError("diff block extraction cancelled")
			}
		}

		tok := classifyLine(line)

		switch state {
		case vStart:
			if tok == tokSearch {
				cur = EditBlock{}
				search = search[:0]
				replace = replace[:0]
				headerDone = false
				state = vAfterSearchMarker
			}

		case vAfterSearchMarker:
			switch {
			case tok == tokSeparator:
				state = vInReplaceBody
			case !headerDone && !isEscapedLine(line) && isPositionHint(line):
				parseHint(line, &cur)
			case !headerDone && strings.TrimRight(line, " \t\r") == markerHeaderEnd && !isEscapedLine(line):
				headerDone = true
				state = vInSearchBody
			default:
				search = append(search, line)
				state = vInSearchBody
			}

		case vInSearchBody:
			if tok == tokSeparator {
				state = vInReplaceBody
			} else {
				search = append(search, line)
			}

		case vInReplaceBody:
			if tok == tokReplace {
				cur.SearchText = strings.Join(search, "\n")
				cur.ReplaceText = strings.Join(replace, "\n")
				blocks = append(blocks, cur)
				state = vStart
			} else {
				replace = append(replace, line)
			}
		}
	}

	return blocks, nil
}

// parseHint fills the block's anchor from a :start_line:N header line.
// :end_line: hints are accepted for compatibility and ignored; the windowed
// search already bounds the match region.
func parseHint(line string, b *EditBlock) {
	trimmed := strings.TrimSpace(line)
	if rest, ok := strings.CutPrefix(trimmed, headerStartLine); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(rest)); err == nil && n >= 0 {
			b.AnchorLine = n
		}
	}
}
