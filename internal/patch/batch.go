package patch

import "context"

// SpecItem is one independently-authored diff in a multi-block batch, with
// an optional legacy anchor for blocks that carry no in-line hint.
type SpecItem struct {
	Text       string `json:"text"`
	AnchorLine int    `json:"anchor_line,omitempty"`
}

// ApplyAll threads the content through each spec item in order: the working
// copy produced by one sub-run is the input to the next. Reports from every
// sub-run are flattened into one list rather than nested, so error
// structures stay one level deep no matter how many items ran. The overall
// result is applied iff at least one sub-run applied; its content is the
// last successfully-produced working copy.
func (a *Applier) ApplyAll(ctx context.Context, content string, items []SpecItem) Outcome {
	working := content
	applied := false
	var reports []EditReport
	var lastErr string

	for _, item := range items {
		out := a.ApplyWithRange(ctx, working, item.Text, item.AnchorLine, 0)
		reports = append(reports, out.Reports...)
		if out.Applied {
			working = out.Content
			applied = true
		} else if out.Error != "" {
			lastErr = out.Error
		}
	}

	if !applied {
		if lastErr == "" {
			lastErr = "no edits could be applied"
		}
		return Outcome{Error: lastErr, Reports: reports}
	}
	return Outcome{Applied: true, Content: working, Reports: reports}
}
