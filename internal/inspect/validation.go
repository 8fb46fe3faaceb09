// internal/inspect/validation.go
package inspect

import (
	"context"
	"fmt"
)

// AttributeReader is the narrow slice of Element the validation inferrer
// needs: fault tolerant, single-attribute lookups.
type AttributeReader interface {
	Attribute(ctx context.Context, name string) (value string, ok bool)
}

// InferValidationRules derives rule descriptors from a control's attribute
// snapshot and its declared type tag. Attributes are checked in a fixed
// order so the output is stable across runs; a rule is appended once per
// attribute that is present with a non-empty value, and rules are never
// removed once added. A failed lookup counts as an absent attribute.
func InferValidationRules(ctx context.Context, el AttributeReader, declaredType string) []string {
	rules := []string{}

	if v, ok := el.Attribute(ctx, "required"); ok && v != "" {
		rules = append(rules, "required")
	}
	if v, ok := el.Attribute(ctx, "pattern"); ok && v != "" {
		rules = append(rules, fmt.Sprintf("pattern: %s", v))
	}
	if v, ok := el.Attribute(ctx, "maxlength"); ok && v != "" {
		rules = append(rules, fmt.Sprintf("max_length: %s", v))
	}
	if v, ok := el.Attribute(ctx, "minlength"); ok && v != "" {
		rules = append(rules, fmt.Sprintf("min_length: %s", v))
	}

	// Semantic tags for the declared type, independent of any pattern
	// attribute. Both a pattern rule and a format tag can co-occur.
	switch declaredType {
	case "email":
		rules = append(rules, "email_format")
	case "tel":
		rules = append(rules, "phone_format")
	}

	return rules
}
