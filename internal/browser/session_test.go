package browser

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JeeveshRajan/formscope/internal/inspect"
)

func sameQueryOption(t *testing.T, want, got chromedp.QueryOption) {
	t.Helper()
	assert.Equal(t,
		reflect.ValueOf(want).Pointer(),
		reflect.ValueOf(got).Pointer())
}

func TestQueryOptions(t *testing.T) {
	// XPath locators route through the DOM search API; everything else is a
	// CSS query.
	sameQueryOption(t, chromedp.BySearch, queryOptions("//input[@type='submit']", false))
	sameQueryOption(t, chromedp.BySearch, queryOptions("(//button)[1]", true))
	sameQueryOption(t, chromedp.ByQuery, queryOptions("form", false))
	sameQueryOption(t, chromedp.ByQueryAll, queryOptions("input", true))
	sameQueryOption(t, chromedp.ByQuery, queryOptions("label[for='aadhaar']", false))
}

func TestElementAttribute(t *testing.T) {
	el := &element{node: &cdp.Node{Attributes: []string{
		"id", "aadhaar",
		"type", "text",
		"required", "",
		"maxlength", "12",
	}}}

	v, ok := el.Attribute(context.Background(), "id")
	assert.True(t, ok)
	assert.Equal(t, "aadhaar", v)

	v, ok = el.Attribute(context.Background(), "maxlength")
	assert.True(t, ok)
	assert.Equal(t, "12", v)

	// Bare boolean attributes normalize to "true".
	v, ok = el.Attribute(context.Background(), "required")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	_, ok = el.Attribute(context.Background(), "pattern")
	assert.False(t, ok)
}

func TestElementAttributeBooleanNormalization(t *testing.T) {
	// `<input required disabled="disabled" data-x>`: bare boolean attributes
	// land in the snapshot with an empty value but the constraint is in
	// force; valued ones keep their value; non-boolean attributes stay empty.
	el := &element{node: &cdp.Node{Attributes: []string{
		"required", "",
		"disabled", "disabled",
		"data-x", "",
	}}}

	v, ok := el.Attribute(context.Background(), "required")
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	v, ok = el.Attribute(context.Background(), "disabled")
	assert.True(t, ok)
	assert.Equal(t, "disabled", v)

	v, ok = el.Attribute(context.Background(), "data-x")
	assert.True(t, ok)
	assert.Empty(t, v)
}

func TestBareRequiredYieldsRequiredRule(t *testing.T) {
	// A control declared `<input required type="text">` must come out of the
	// inferrer with the required rule.
	el := &element{node: &cdp.Node{Attributes: []string{
		"required", "",
		"type", "text",
	}}}

	rules := inspect.InferValidationRules(context.Background(), el, "text")
	assert.Equal(t, []string{"required"}, rules)
}

func TestElementAttributeNoAttributes(t *testing.T) {
	el := &element{node: &cdp.Node{}}
	_, ok := el.Attribute(context.Background(), "id")
	assert.False(t, ok)
}

func TestSettleHonorsCallerCancellation(t *testing.T) {
	sessCtx, sessCancel := context.WithCancel(context.Background())
	defer sessCancel()
	s := newSession(sessCtx, sessCancel, zaptest.NewLogger(t), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Settle(ctx, time.Minute)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSettleHonorsSessionCancellation(t *testing.T) {
	sessCtx, sessCancel := context.WithCancel(context.Background())
	s := newSession(sessCtx, sessCancel, zaptest.NewLogger(t), time.Minute)
	s.Close()

	err := s.Settle(context.Background(), time.Minute)
	require.Error(t, err)
}

func TestSettleReturnsAfterInterval(t *testing.T) {
	sessCtx, sessCancel := context.WithCancel(context.Background())
	defer sessCancel()
	s := newSession(sessCtx, sessCancel, zaptest.NewLogger(t), time.Minute)

	assert.NoError(t, s.Settle(context.Background(), time.Millisecond))
}

func TestClickRejectsForeignElement(t *testing.T) {
	sessCtx, sessCancel := context.WithCancel(context.Background())
	defer sessCancel()
	s := newSession(sessCtx, sessCancel, zaptest.NewLogger(t), time.Minute)

	err := s.Click(context.Background(), foreignElement{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not belong")
}

// foreignElement stands in for a handle produced by a different Page
// implementation.
type foreignElement struct{}

func (foreignElement) Attribute(context.Context, string) (string, bool) { return "", false }
func (foreignElement) Text(context.Context) (string, error)            { return "", nil }
func (foreignElement) ParentText(context.Context) (string, error)      { return "", nil }
func (foreignElement) FindAll(context.Context, string) ([]inspect.Element, error) {
	return nil, nil
}
