// internal/inspect/label.go
package inspect

import (
	"context"
	"fmt"
	"strings"
)

// labelStrategy attempts one way of finding a human caption for a control.
// It reports ok only when it produced a non-empty trimmed text, so the
// caller can take the first success in a fallback chain.
type labelStrategy func(ctx context.Context, page Page, el Element, id string) (string, bool)

// labelByFor looks for an explicit <label for="..."> bound to the control's id.
func labelByFor(ctx context.Context, page Page, _ Element, id string) (string, bool) {
	if id == "" {
		return "", false
	}
	labelEl, ok := page.FindOne(ctx, fmt.Sprintf("label[for='%s']", id))
	if !ok {
		return "", false
	}
	text, err := labelEl.Text(ctx)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// labelByParent falls back to the visible text of the control's immediate
// structural parent. Noisy, but better than nothing on label-less markup.
func labelByParent(ctx context.Context, _ Page, el Element, _ string) (string, bool) {
	text, err := el.ParentText(ctx)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// labelStrategies is the resolution order: an explicit for-linked label wins
// over the parent-text heuristic.
var labelStrategies = []labelStrategy{labelByFor, labelByParent}

// ResolveLabel runs the strategy chain and returns the first non-empty
// result, or empty when every strategy fails. Individual strategy failures
// never propagate.
func ResolveLabel(ctx context.Context, page Page, el Element, id string) string {
	for _, strategy := range labelStrategies {
		if label, ok := strategy(ctx, page, el, id); ok {
			return label
		}
	}
	return ""
}
