// internal/inspect/renderer.go
package inspect

import (
	"context"
	"time"
)

// Element is a handle to one rendered DOM element. Implementations must make
// every lookup fault tolerant: a detached or vanished element reports its
// attributes as absent rather than failing the caller.
type Element interface {
	// Attribute returns the value of the named attribute. ok is false when
	// the attribute is absent or the lookup itself failed.
	Attribute(ctx context.Context, name string) (value string, ok bool)

	// Text returns the element's visible text.
	Text(ctx context.Context) (string, error)

	// ParentText returns the visible text of the element's immediate
	// structural parent. Used as a heuristic label source.
	ParentText(ctx context.Context) (string, error)

	// FindAll enumerates descendant elements matching the locator, scoped to
	// this element. Used to walk the options of a choice control.
	FindAll(ctx context.Context, locator string) ([]Element, error)
}

// Page is the rendered-page surface the inspector drives. Locators are CSS
// selectors; locators starting with "//" are XPath expressions. The inspector
// is the only component that triggers navigation; everything below it works
// on Elements it hands out.
type Page interface {
	// Navigate loads the URL and waits for the document body.
	Navigate(ctx context.Context, url string) error

	// Title returns the current document title.
	Title(ctx context.Context) (string, error)

	// WaitPresent polls until an element matching the locator exists, or the
	// bounded timeout elapses.
	WaitPresent(ctx context.Context, locator string, timeout time.Duration) bool

	// FindAll returns every element matching the locator; an empty slice when
	// none match.
	FindAll(ctx context.Context, locator string) ([]Element, error)

	// FindOne returns the first element matching the locator. ok is false
	// when nothing matches or the lookup failed.
	FindOne(ctx context.Context, locator string) (el Element, ok bool)

	// Click activates the element.
	Click(ctx context.Context, el Element) error

	// Settle waits the fixed interval, honoring context cancellation.
	Settle(ctx context.Context, d time.Duration) error
}
