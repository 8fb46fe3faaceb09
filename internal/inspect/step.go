// internal/inspect/step.go
package inspect

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JeeveshRajan/formscope/api/schemas"
)

// formLocator is the readiness probe: a step is extractable once a form
// container exists in the document.
const formLocator = "form"

// stepState drives the per-step extraction state machine.
type stepState int

const (
	stateAwaitingPage stepState = iota
	stateExtractingTitle
	stateExtractingFields
	stateCompleted
	stateFailed
)

// ExtractStep runs one step's extraction state machine against the current
// page context. It always returns a Step for the given index: on failure the
// record is a minimal placeholder (default title, no fields) so downstream
// assembly sees one Step per expected index.
func (in *Inspector) ExtractStep(ctx context.Context, page Page, number int) schemas.Step {
	step := placeholderStep(number)
	log := in.logger.With(zap.Int("step", number))

	state := stateAwaitingPage
	for {
		switch state {
		case stateAwaitingPage:
			if !page.WaitPresent(ctx, formLocator, in.formWaitTimeout) {
				log.Warn("Form container never appeared; recording placeholder step")
				state = stateFailed
				continue
			}
			state = stateExtractingTitle

		case stateExtractingTitle:
			// Title resolution never blocks progress; the placeholder
			// default stands if every probe misses.
			if title, ok := in.resolveTitle(ctx, page, number); ok {
				step.Title = title
			}
			state = stateExtractingFields

		case stateExtractingFields:
			step.Fields = in.collectFields(ctx, page, log)
			step.ValidationRules = unionRules(step.Fields)
			state = stateCompleted

		case stateCompleted:
			log.Info("Step extracted", zap.Int("fields", len(step.Fields)))
			return step

		case stateFailed:
			return step
		}
	}
}

// placeholderStep is the minimal record emitted when a step cannot be
// extracted.
func placeholderStep(number int) schemas.Step {
	return schemas.Step{
		StepNumber:      number,
		Title:           fmt.Sprintf("Step %d", number),
		Fields:          []schemas.Field{},
		ValidationRules: []string{},
	}
}

// titleProbes returns the ordered locator list used to find a step caption:
// textual matches on "Step {n}" across the usual heading carriers, then a
// step-numbered class. First probe with visible text wins.
func titleProbes(number int) []string {
	return []string{
		fmt.Sprintf("//div[contains(text(), 'Step %d')]", number),
		fmt.Sprintf("//h1[contains(text(), 'Step %d')]", number),
		fmt.Sprintf("//h2[contains(text(), 'Step %d')]", number),
		fmt.Sprintf("//span[contains(text(), 'Step %d')]", number),
		fmt.Sprintf("//div[contains(@class, 'step-%d')]", number),
	}
}

// resolveTitle walks the probe list and returns the first non-empty trimmed
// text it finds.
func (in *Inspector) resolveTitle(ctx context.Context, page Page, number int) (string, bool) {
	for _, locator := range titleProbes(number) {
		el, ok := page.FindOne(ctx, locator)
		if !ok {
			continue
		}
		text, err := el.Text(ctx)
		if err != nil {
			continue
		}
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return trimmed, true
		}
	}
	return "", false
}

// collectFields discovers controls tag category by tag category and
// materializes each one. A control that fails to extract is logged and
// skipped; its siblings are unaffected.
func (in *Inspector) collectFields(ctx context.Context, page Page, log *zap.Logger) []schemas.Field {
	fields := []schemas.Field{}

	for _, tag := range controlTags {
		els, err := page.FindAll(ctx, tag.locator)
		if err != nil {
			log.Warn("Could not enumerate controls", zap.String("tag", tag.locator), zap.Error(err))
			continue
		}
		for _, el := range els {
			field, err := MaterializeField(ctx, page, el, tag.category)
			if err != nil {
				log.Warn("Skipping control that failed to extract",
					zap.String("tag", tag.locator), zap.Error(err))
				continue
			}
			fields = append(fields, field)
		}
	}

	return fields
}

// unionRules builds the step-level rule set: the duplicate-free union of all
// field rule sets, keeping first-seen order so the output diffs cleanly
// across runs.
func unionRules(fields []schemas.Field) []string {
	seen := make(map[string]struct{})
	union := []string{}
	for _, f := range fields {
		for _, rule := range f.ValidationRules {
			if _, ok := seen[rule]; ok {
				continue
			}
			seen[rule] = struct{}{}
			union = append(union, rule)
		}
	}
	return union
}
