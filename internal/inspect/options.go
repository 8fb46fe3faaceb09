// internal/inspect/options.go
package inspect

import (
	"context"
	"fmt"
	"strings"
)

// ExtractOptions enumerates the options of a choice control as
// "value: text" strings, in document order. Options missing either a value
// or a display text are dropped. Failure to enumerate at all yields an
// empty list; a dropdown without options is a reportable state, not an
// error.
func ExtractOptions(ctx context.Context, el Element) []string {
	options := []string{}

	children, err := el.FindAll(ctx, "option")
	if err != nil {
		return options
	}

	for _, opt := range children {
		value, ok := opt.Attribute(ctx, "value")
		if !ok || value == "" {
			continue
		}
		text, err := opt.Text(ctx)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		options = append(options, fmt.Sprintf("%s: %s", value, text))
	}

	return options
}
