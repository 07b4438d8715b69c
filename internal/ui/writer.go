package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/patchline/patchline/internal/patch"
)

// Color definitions for consistent output
var (
	// Green for applied edits and added diff lines
	okColor = color.New(color.FgGreen)

	// Red for failures and removed diff lines
	errorColor = color.New(color.FgRed)

	// Yellow for partial results
	warnColor = color.New(color.FgYellow)

	// Faint gray for hunk headers and secondary detail
	grayColor = color.New(color.FgWhite, color.Faint)

	// Cyan for diff hunk markers
	hunkColor = color.New(color.FgCyan)
)

// Writer renders apply outcomes, reports and diffs to a terminal.
type Writer struct {
	out   io.Writer
	quiet bool
}

// NewWriter creates a Writer. When noColor is set, all color codes are
// suppressed.
func NewWriter(out io.Writer, quiet, noColor bool) *Writer {
	if noColor {
		color.NoColor = true
	}
	return &Writer{out: out, quiet: quiet}
}

// Summary prints the one-line progress summary for an outcome.
func (w *Writer) Summary(specText string, outcome *patch.Outcome) {
	s := patch.ProgressSummary(specText, outcome)
	line := fmt.Sprintf("%s %s", s.Icon, s.Text)
	switch {
	case outcome == nil:
		grayColor.Fprintln(w.out, line)
	case outcome.Applied && outcome.AppliedCount() == len(outcome.Reports):
		okColor.Fprintln(w.out, line)
	case outcome.Applied:
		warnColor.Fprintln(w.out, line)
	default:
		errorColor.Fprintln(w.out, line)
	}
}

// Reports prints one line per edit report, with failure detail indented
// under failed reports.
func (w *Writer) Reports(reports []patch.EditReport) {
	for i, r := range reports {
		if r.Applied {
			okColor.Fprintf(w.out, "  block %d: applied (lines %d-%d, similarity %.0f%%)\n",
				i+1, r.MatchedRange.Start, r.MatchedRange.End, r.Similarity*100)
			continue
		}
		errorColor.Fprintf(w.out, "  block %d: %s\n", i+1, r.Error)
		if w.quiet {
			continue
		}
		if r.BestCandidateText != "" {
			grayColor.Fprintf(w.out, "    best candidate (%.0f%%):\n", r.Similarity*100)
			w.indented(r.BestCandidateText, "      ")
		}
		if r.Context != "" {
			grayColor.Fprintln(w.out, "    surrounding content:")
			w.indented(r.Context, "      ")
		}
	}
}

// Diff prints a unified diff with the conventional coloring.
func (w *Writer) Diff(diff string) {
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			grayColor.Fprintln(w.out, line)
		case strings.HasPrefix(line, "@@"):
			hunkColor.Fprintln(w.out, line)
		case strings.HasPrefix(line, "+"):
			okColor.Fprintln(w.out, line)
		case strings.HasPrefix(line, "-"):
			errorColor.Fprintln(w.out, line)
		default:
			fmt.Fprintln(w.out, line)
		}
	}
}

// Errorf prints a formatted error line.
func (w *Writer) Errorf(format string, args ...any) {
	errorColor.Fprintf(w.out, format+"\n", args...)
}

// Infof prints a formatted info line unless quiet.
func (w *Writer) Infof(format string, args ...any) {
	if w.quiet {
		return
	}
	fmt.Fprintf(w.out, format+"\n", args...)
}

func (w *Writer) indented(text, prefix string) {
	for _, line := range strings.Split(text, "\n") {
		grayColor.Fprintf(w.out, "%s%s\n", prefix, line)
	}
}
