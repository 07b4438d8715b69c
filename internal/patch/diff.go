package patch

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff generates a unified diff between the old and new content,
// labeled with the given filename on both sides.
func UnifiedDiff(oldContent, newContent, filename string) (string, error) {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldContent),
		B:        difflib.SplitLines(newContent),
		FromFile: filename,
		ToFile:   filename,
		Context:  3,
	}

	return difflib.GetUnifiedDiffString(diff)
}
