// internal/inspect/inspector.go
package inspect

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/JeeveshRajan/formscope/api/schemas"
	"github.com/JeeveshRajan/formscope/internal/config"
)

// scrapedAtLayout is the timestamp format recorded in run metadata.
const scrapedAtLayout = "2006-01-02 15:04:05"

// nextControlLocator matches the step navigation control: a submit input
// whose value mentions "Next", or a button with that text.
const nextControlLocator = "//input[@type='submit' and contains(@value, 'Next')] | //button[contains(text(), 'Next')]"

// Inspector owns the rendered page for the duration of a run and assembles
// the final FormSchema. It is the only component that navigates; everything
// else operates on element handles it passes down.
type Inspector struct {
	logger *zap.Logger

	totalSteps      int
	formWaitTimeout time.Duration
	postLoadWait    time.Duration
	advanceSettle   time.Duration

	// limiter paces navigation and click actions. The forms this tool
	// targets sit behind aggressive rate limiting.
	limiter *rate.Limiter

	// now is swappable for deterministic timestamps in tests.
	now func() time.Time
}

// New builds an Inspector from the resolved configuration.
func New(cfg *config.Config, logger *zap.Logger) *Inspector {
	return &Inspector{
		logger:          logger.Named("inspector"),
		totalSteps:      cfg.Scan.Steps,
		formWaitTimeout: cfg.Network.FormWaitTimeout,
		postLoadWait:    cfg.Network.PostLoadWait,
		advanceSettle:   cfg.Network.AdvanceSettle,
		limiter:         rate.NewLimiter(rate.Limit(cfg.Network.ActionsPerSecond), 1),
		now:             time.Now,
	}
}

// Run performs one full scrape: navigate, capture landing metadata, extract
// each expected step in order, and assemble the schema. Only a failure of
// the initial navigation is fatal; every later failure degrades to a partial
// schema.
func (in *Inspector) Run(ctx context.Context, page Page, url string) (*schemas.FormSchema, error) {
	if err := in.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	if err := page.Navigate(ctx, url); err != nil {
		return nil, fmt.Errorf("initial navigation to %s failed: %w", url, err)
	}
	if err := page.Settle(ctx, in.postLoadWait); err != nil {
		return nil, err
	}

	// Metadata reflects the form's landing state, captured before any step
	// extraction mutates the page.
	title, err := page.Title(ctx)
	if err != nil {
		in.logger.Warn("Could not read page title", zap.Error(err))
	}
	schema := &schemas.FormSchema{
		Metadata: schemas.Metadata{
			URL:        url,
			Title:      title,
			ScrapedAt:  in.now().Format(scrapedAtLayout),
			TotalSteps: in.totalSteps,
		},
		Steps: []schemas.Step{},
	}

	for number := 1; number <= in.totalSteps; number++ {
		if number > 1 {
			if err := in.advance(ctx, page, number); err != nil {
				in.logger.Warn("Could not advance to step; recording placeholder",
					zap.Int("step", number), zap.Error(err))
				schema.Steps = append(schema.Steps, placeholderStep(number))
				continue
			}
		}
		schema.Steps = append(schema.Steps, in.ExtractStep(ctx, page, number))
	}

	in.logger.Info("Scrape complete",
		zap.Int("steps", len(schema.Steps)),
		zap.Int("fields", schema.FieldCount()))
	return schema, nil
}

// advance moves the page to the next step by activating the navigation
// control and letting the page settle. When no such control exists the next
// step is extracted from the current page context; single-page multi-section
// forms present all their steps that way. Note that on a genuinely broken
// page this branch can re-report the previous step's controls.
func (in *Inspector) advance(ctx context.Context, page Page, number int) error {
	next, ok := page.FindOne(ctx, nextControlLocator)
	if !ok {
		in.logger.Debug("No navigation control found; reading next step from current page",
			zap.Int("step", number))
		return nil
	}

	if err := in.limiter.Wait(ctx); err != nil {
		return err
	}
	if err := page.Click(ctx, next); err != nil {
		return fmt.Errorf("activating step navigation control: %w", err)
	}
	return page.Settle(ctx, in.advanceSettle)
}
