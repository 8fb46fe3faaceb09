// internal/browser/session.go
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JeeveshRajan/formscope/internal/inspect"
)

// opTimeout bounds individual DOM queries so one stuck lookup can't stall a
// whole step.
const opTimeout = 15 * time.Second

// parentTextFn extracts the visible text of an element's immediate parent.
const parentTextFn = `function() { return this.parentElement ? this.parentElement.innerText : ""; }`

// Session is one isolated browser tab implementing the inspector's page
// contract on top of chromedp.
type Session struct {
	ctx        context.Context
	cancel     context.CancelFunc
	logger     *zap.Logger
	navTimeout time.Duration
}

var _ inspect.Page = (*Session)(nil)

func newSession(ctx context.Context, cancel context.CancelFunc, logger *zap.Logger, navTimeout time.Duration) *Session {
	return &Session{
		ctx:        ctx,
		cancel:     cancel,
		logger:     logger.Named("session"),
		navTimeout: navTimeout,
	}
}

// queryOptions picks the chromedp selector mode for a locator. CSS is the
// default; "//..." and "(..." locators go through the DOM search API, which
// understands XPath.
func queryOptions(locator string, all bool) chromedp.QueryOption {
	if strings.HasPrefix(locator, "//") || strings.HasPrefix(locator, "(") {
		return chromedp.BySearch
	}
	if all {
		return chromedp.ByQueryAll
	}
	return chromedp.ByQuery
}

// run executes chromedp actions against the session, bounded by the given
// timeout and aborted early if the caller's context is already dead.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	runCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	return chromedp.Run(runCtx, actions...)
}

// Navigate loads the URL and waits for the document body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	s.logger.Debug("Navigating", zap.String("url", url))
	return s.run(ctx, s.navTimeout,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Title returns the current document title.
func (s *Session) Title(ctx context.Context) (string, error) {
	var title string
	err := s.run(ctx, opTimeout, chromedp.Title(&title))
	return title, err
}

// WaitPresent polls until the locator matches something or the bounded
// timeout elapses.
func (s *Session) WaitPresent(ctx context.Context, locator string, timeout time.Duration) bool {
	err := s.run(ctx, timeout, chromedp.WaitReady(locator, queryOptions(locator, false)))
	if err != nil {
		s.logger.Debug("Wait for locator timed out", zap.String("locator", locator), zap.Error(err))
	}
	return err == nil
}

// FindAll returns handles for every element matching the locator.
func (s *Session) FindAll(ctx context.Context, locator string) ([]inspect.Element, error) {
	var nodes []*cdp.Node
	err := s.run(ctx, opTimeout,
		chromedp.Nodes(locator, &nodes, queryOptions(locator, true), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("querying %q: %w", locator, err)
	}

	els := make([]inspect.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &element{sess: s, node: n})
	}
	return els, nil
}

// FindOne returns the first element matching the locator; ok is false when
// nothing matches.
func (s *Session) FindOne(ctx context.Context, locator string) (inspect.Element, bool) {
	var nodes []*cdp.Node
	err := s.run(ctx, opTimeout,
		chromedp.Nodes(locator, &nodes, queryOptions(locator, false), chromedp.AtLeast(0)),
	)
	if err != nil || len(nodes) == 0 {
		return nil, false
	}
	return &element{sess: s, node: nodes[0]}, true
}

// Click activates an element previously handed out by this session.
func (s *Session) Click(ctx context.Context, el inspect.Element) error {
	e, ok := el.(*element)
	if !ok {
		return fmt.Errorf("element does not belong to this session")
	}
	return s.run(ctx, opTimeout,
		chromedp.Click([]cdp.NodeID{e.node.NodeID}, chromedp.ByNodeID),
	)
}

// Settle waits the fixed interval, honoring cancellation of both the caller
// and the session.
func (s *Session) Settle(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.ctx.Done():
		return s.ctx.Err()
	}
}

// Close tears down the tab.
func (s *Session) Close() {
	s.cancel()
}

// element wraps one cdp node. Attribute reads come from the snapshot taken
// at query time; text and traversal go back to the live page, so a node that
// has since been detached reports lookups as failed rather than erroring the
// whole extraction.
type element struct {
	sess *Session
	node *cdp.Node
}

var _ inspect.Element = (*element)(nil)

// booleanAttributes are the HTML boolean attributes. Markup declares them
// bare (`<input required>`), so the node snapshot stores an empty value for
// them even though the constraint is in force.
var booleanAttributes = map[string]bool{
	"autofocus": true,
	"checked":   true,
	"disabled":  true,
	"hidden":    true,
	"multiple":  true,
	"readonly":  true,
	"required":  true,
	"selected":  true,
}

// Attribute reports the attribute value from the node snapshot. ok is false
// when the attribute is not declared on the element. Boolean attributes
// declared without a value report "true", the same normalization browser
// drivers apply, so downstream truthiness checks see the declaration.
func (e *element) Attribute(_ context.Context, name string) (string, bool) {
	attrs := e.node.Attributes
	for i := 0; i+1 < len(attrs); i += 2 {
		if attrs[i] == name {
			if attrs[i+1] == "" && booleanAttributes[name] {
				return "true", true
			}
			return attrs[i+1], true
		}
	}
	return "", false
}

// Text returns the element's visible text.
func (e *element) Text(ctx context.Context) (string, error) {
	var text string
	err := e.sess.run(ctx, opTimeout,
		chromedp.Text([]cdp.NodeID{e.node.NodeID}, &text, chromedp.ByNodeID),
	)
	if err != nil {
		return "", fmt.Errorf("reading element text: %w", err)
	}
	return text, nil
}

// ParentText evaluates the parent's innerText in the page. Elements without
// a parent report empty text.
func (e *element) ParentText(ctx context.Context) (string, error) {
	var text string
	if err := e.callOnNode(ctx, parentTextFn, &text); err != nil {
		return "", fmt.Errorf("reading parent text: %w", err)
	}
	return text, nil
}

// FindAll enumerates matching descendants scoped to this element.
func (e *element) FindAll(ctx context.Context, locator string) ([]inspect.Element, error) {
	var nodes []*cdp.Node
	err := e.sess.run(ctx, opTimeout,
		chromedp.Nodes(locator, &nodes,
			chromedp.ByQueryAll, chromedp.FromNode(e.node), chromedp.AtLeast(0)),
	)
	if err != nil {
		return nil, fmt.Errorf("querying %q under node: %w", locator, err)
	}

	els := make([]inspect.Element, 0, len(nodes))
	for _, n := range nodes {
		els = append(els, &element{sess: e.sess, node: n})
	}
	return els, nil
}

// callOnNode resolves the node to a remote object and invokes a JS function
// with the element as `this`, unmarshaling the by-value result.
func (e *element) callOnNode(ctx context.Context, fn string, res interface{}) error {
	return e.sess.run(ctx, opTimeout, chromedp.ActionFunc(func(cctx context.Context) error {
		obj, err := dom.ResolveNode().WithNodeID(e.node.NodeID).Do(cctx)
		if err != nil {
			return err
		}
		val, exp, err := runtime.CallFunctionOn(fn).
			WithObjectID(obj.ObjectID).
			WithReturnByValue(true).
			Do(cctx)
		if err != nil {
			return err
		}
		if exp != nil {
			return exp
		}
		return json.Unmarshal(val.Value, res)
	}))
}
