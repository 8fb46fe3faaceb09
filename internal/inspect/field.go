// internal/inspect/field.go
package inspect

import (
	"context"
	"fmt"

	"github.com/JeeveshRajan/formscope/api/schemas"
)

// controlCategory is the closed set of control kinds we extract, determined
// by the tag the control was discovered under.
type controlCategory int

const (
	categoryInput controlCategory = iota
	categorySelect
	categoryTextarea
)

// controlTags maps each category to the tag locator used to discover it.
// Order matters: it fixes the field ordering within a step.
var controlTags = []struct {
	locator  string
	category controlCategory
}{
	{"input", categoryInput},
	{"select", categorySelect},
	{"textarea", categoryTextarea},
}

// MaterializeField turns one raw control into a normalized Field record,
// composing the validation inferrer, label resolver, and (for choice
// controls) the option extractor. All lookups are best effort; the only
// errors returned are run cancellation and an unknown category, both of
// which the caller treats as "skip this control".
func MaterializeField(ctx context.Context, page Page, el Element, category controlCategory) (schemas.Field, error) {
	if err := ctx.Err(); err != nil {
		return schemas.Field{}, err
	}

	id, _ := el.Attribute(ctx, "id")
	name, _ := el.Attribute(ctx, "name")
	if name == "" {
		name = id
	}

	field := schemas.Field{
		Name:  name,
		Label: ResolveLabel(ctx, page, el, id),
	}

	if v, ok := el.Attribute(ctx, "placeholder"); ok {
		field.Placeholder = v
	}
	if v, ok := el.Attribute(ctx, "required"); ok && v != "" {
		field.Required = true
	}
	if id != "" {
		field.CSSSelector = "#" + id
	}

	declaredType, _ := el.Attribute(ctx, "type")

	switch category {
	case categoryInput:
		if declaredType == "" {
			declaredType = schemas.FieldKindText
		}
		field.Type = declaredType
	case categorySelect:
		// Choice controls are always reported as selects, whatever their
		// declared type attribute says.
		field.Type = schemas.FieldKindSelect
		field.Options = ExtractOptions(ctx, el)
	case categoryTextarea:
		field.Type = schemas.FieldKindTextarea
	default:
		return schemas.Field{}, fmt.Errorf("unknown control category %d", category)
	}

	field.ValidationRules = InferValidationRules(ctx, el, declaredType)

	if err := ctx.Err(); err != nil {
		return schemas.Field{}, err
	}
	return field, nil
}
