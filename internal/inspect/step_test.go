package inspect

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	"github.com/JeeveshRajan/formscope/api/schemas"
	"github.com/JeeveshRajan/formscope/internal/config"
)

func testInspector(t *testing.T) *Inspector {
	cfg := config.NewDefaultConfig()
	// Keep waits short; the fakes don't block anyway.
	cfg.Network.FormWaitTimeout = 50 * time.Millisecond
	cfg.Network.PostLoadWait = 0
	cfg.Network.AdvanceSettle = 0
	cfg.Network.ActionsPerSecond = 1000
	return New(cfg, zaptest.NewLogger(t))
}

func TestExtractStepFormNeverAppears(t *testing.T) {
	in := testInspector(t)
	page := &fakePage{formPresent: false}

	step := in.ExtractStep(context.Background(), page, 1)

	assert.Equal(t, 1, step.StepNumber)
	assert.Equal(t, "Step 1", step.Title)
	assert.Empty(t, step.Fields)
	assert.Empty(t, step.ValidationRules)
}

func TestExtractStepTitleFromProbe(t *testing.T) {
	in := testInspector(t)
	page := &fakePage{
		formPresent: true,
		one: map[string]Element{
			"//div[contains(text(), 'Step 1')]": &fakeElement{text: " Step 1: Aadhaar Verification "},
		},
	}

	step := in.ExtractStep(context.Background(), page, 1)
	assert.Equal(t, "Step 1: Aadhaar Verification", step.Title)
}

func TestExtractStepTitleFallsBackThroughProbes(t *testing.T) {
	in := testInspector(t)
	page := &fakePage{
		formPresent: true,
		one: map[string]Element{
			// First probe exists but renders nothing; a later one has text.
			"//div[contains(text(), 'Step 2')]":  &fakeElement{text: "   "},
			"//span[contains(text(), 'Step 2')]": &fakeElement{text: "Step 2: PAN Validation"},
		},
	}

	step := in.ExtractStep(context.Background(), page, 2)
	assert.Equal(t, "Step 2: PAN Validation", step.Title)
}

func TestExtractStepCollectsAllControlCategories(t *testing.T) {
	in := testInspector(t)
	page := &fakePage{
		formPresent: true,
		one:         map[string]Element{},
		all: map[string][]Element{
			"input": {
				&fakeElement{attrs: map[string]string{"id": "aadhaar", "type": "text", "required": "true"}},
				&fakeElement{attrs: map[string]string{"id": "mobile", "type": "tel", "required": "true"}},
			},
			"select": {
				&fakeElement{attrs: map[string]string{"id": "orgType"}},
			},
			"textarea": {
				&fakeElement{attrs: map[string]string{"id": "address"}},
			},
		},
	}

	step := in.ExtractStep(context.Background(), page, 1)

	assert.Len(t, step.Fields, 4)
	// Discovery order is inputs, then selects, then textareas.
	assert.Equal(t, "aadhaar", step.Fields[0].Name)
	assert.Equal(t, "mobile", step.Fields[1].Name)
	assert.Equal(t, schemas.FieldKindSelect, step.Fields[2].Type)
	assert.Equal(t, schemas.FieldKindTextarea, step.Fields[3].Type)

	// The step-level rules are the deduplicated union: "required" appears
	// once despite two required fields.
	assert.Equal(t, []string{"required", "phone_format"}, step.ValidationRules)
}

func TestUnionRulesDeduplicates(t *testing.T) {
	fields := []schemas.Field{
		{ValidationRules: []string{"required", "pattern: [0-9]{12}"}},
		{ValidationRules: []string{"required", "max_length: 10"}},
		{ValidationRules: []string{}},
	}

	assert.Equal(t,
		[]string{"required", "pattern: [0-9]{12}", "max_length: 10"},
		unionRules(fields))
}

func TestUnionRulesEmptyFields(t *testing.T) {
	assert.Equal(t, []string{}, unionRules(nil))
}
