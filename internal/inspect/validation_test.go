package inspect

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferValidationRules(t *testing.T) {
	testCases := []struct {
		name         string
		attrs        map[string]string
		declaredType string
		expected     []string
	}{
		{
			name:     "required only",
			attrs:    map[string]string{"required": "true"},
			expected: []string{"required"},
		},
		{
			name:     "empty required attribute is not a constraint",
			attrs:    map[string]string{"required": ""},
			expected: []string{},
		},
		{
			name:     "absent required never appears",
			attrs:    map[string]string{"pattern": "[A-Z]{5}[0-9]{4}[A-Z]{1}"},
			expected: []string{"pattern: [A-Z]{5}[0-9]{4}[A-Z]{1}"},
		},
		{
			name:     "length bounds",
			attrs:    map[string]string{"maxlength": "12", "minlength": "4"},
			expected: []string{"max_length: 12", "min_length: 4"},
		},
		{
			name:         "email type yields semantic tag",
			attrs:        map[string]string{},
			declaredType: "email",
			expected:     []string{"email_format"},
		},
		{
			name:         "tel type yields semantic tag",
			attrs:        map[string]string{},
			declaredType: "tel",
			expected:     []string{"phone_format"},
		},
		{
			name:         "pattern and email tag co-occur",
			attrs:        map[string]string{"pattern": ".+@.+"},
			declaredType: "email",
			expected:     []string{"pattern: .+@.+", "email_format"},
		},
		{
			name: "fixed extraction order",
			attrs: map[string]string{
				"required":  "true",
				"pattern":   "[0-9]+",
				"maxlength": "10",
				"minlength": "2",
			},
			declaredType: "tel",
			expected: []string{
				"required",
				"pattern: [0-9]+",
				"max_length: 10",
				"min_length: 2",
				"phone_format",
			},
		},
		{
			name:     "no attributes no rules",
			attrs:    map[string]string{},
			expected: []string{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			el := &fakeElement{attrs: tc.attrs}
			rules := InferValidationRules(context.Background(), el, tc.declaredType)
			assert.Equal(t, tc.expected, rules)
		})
	}
}

func TestInferValidationRulesPatternAppearsExactlyOnce(t *testing.T) {
	el := &fakeElement{attrs: map[string]string{"pattern": "[0-9]{12}"}}
	rules := InferValidationRules(context.Background(), el, "text")

	count := 0
	for _, r := range rules {
		if r == "pattern: [0-9]{12}" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
