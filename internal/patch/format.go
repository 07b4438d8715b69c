package patch

import (
	"fmt"
	"strings"
)

// DescribeFormat returns the diff grammar with worked examples, suitable
// for inclusion in an upstream model's instructions.
func DescribeFormat() string {
	return `### Search/Replace Diff Format

Each edit is one block:

` + "```" + `
<<<<<<< SEARCH
:start_line:42        (optional: 1-based line where the search starts)
-------               (optional: ends the header; required after :start_line:)
exact lines to find
=======
lines to replace them with
>>>>>>> REPLACE
` + "```" + `

**Rules:**
1. Search content should match the file exactly, including indentation.
2. Multiple blocks are allowed in one diff; order them top to bottom and
   give each block its own :start_line: in the ORIGINAL file - line drift
   from earlier blocks is handled automatically.
3. To include a literal marker line (` + "`<<<<<<< SEARCH`" + `, ` + "`=======`" + `,
   ` + "`>>>>>>> REPLACE`" + `, ` + "`-------`" + `, ` + "`:start_line:`" + `) as content,
   prefix that line with a backslash: ` + "`\\=======`" + `.

**Example - two edits in one diff:**

` + "```" + `
<<<<<<< SEARCH
:start_line:3
-------
def total(items):
    return sum(items)
=======
def total(items):
    """Sum item prices."""
    return sum(i.price for i in items)
>>>>>>> REPLACE

<<<<<<< SEARCH
:start_line:18
-------
print(total(cart))
=======
print(f"total: {total(cart)}")
>>>>>>> REPLACE
` + "```"
}

// Summary is a short progress line for partial-progress display.
type Summary struct {
	Icon string
	Text string
}

// ProgressSummary reports how many of the diff's blocks applied. A nil
// outcome means the apply has not run yet.
func ProgressSummary(specText string, outcome *Outcome) Summary {
	total := CountBlocks(specText)
	if outcome == nil {
		return Summary{Icon: "…", Text: fmt.Sprintf("0/%d blocks applied", total)}
	}

	applied := outcome.AppliedCount()
	text := fmt.Sprintf("%d/%d blocks applied", applied, total)
	switch {
	case total > 0 && applied == total:
		return Summary{Icon: "✔", Text: text}
	case applied > 0:
		return Summary{Icon: "⚠", Text: text}
	default:
		return Summary{Icon: "✖", Text: text}
	}
}

// CountBlocks counts the unescaped SEARCH markers in the diff text. It is a
// cheap structural count and does not validate the blocks.
func CountBlocks(specText string) int {
	n := 0
	for _, line := range strings.Split(specText, "\n") {
		if classifyLine(line) == tokSearch {
			n++
		}
	}
	return n
}
