// api/schemas/form.go
package schemas

// FieldKind values used in Field.Type. Single-line inputs keep their declared
// HTML type attribute (text, email, tel, number, ...), so this list only
// covers the kinds we force ourselves.
const (
	FieldKindText     = "text"
	FieldKindSelect   = "select"
	FieldKindTextarea = "textarea"
)

// Field describes one interactive control found on a form step.
type Field struct {
	// Name is the control's declared name, falling back to its element id,
	// falling back to empty.
	Name string `json:"name"`
	// Type is the control kind: the declared input type for single-line
	// inputs, "select" for choice controls, "textarea" for multi-line ones.
	Type string `json:"type"`
	// Label is the best-effort human caption. Empty when no resolution
	// strategy succeeded.
	Label       string `json:"label"`
	Placeholder string `json:"placeholder"`
	Required    bool   `json:"required"`
	// ValidationRules holds rule descriptors in extraction order, e.g.
	// "required", "pattern: [0-9]{12}", "max_length: 12", "email_format".
	ValidationRules []string `json:"validation_rules"`
	// Options is only populated for select controls, one "value: text" entry
	// per well-formed option. nil for non-choice controls (marshals as null),
	// empty slice when a select has no usable options.
	Options []string `json:"options"`
	// CSSSelector re-locates this exact control ("#<id>"), empty when the
	// element carries no id.
	CSSSelector string `json:"css_selector"`
}

// Step is one logical screen of a multi-step form.
type Step struct {
	StepNumber  int     `json:"step_number"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
	// ValidationRules is the duplicate-free union of all field rule sets on
	// this step. Derived, never authored directly.
	ValidationRules []string `json:"validation_rules"`
}

// Metadata records the landing state of the scanned form before any step
// extraction begins.
type Metadata struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	ScrapedAt  string `json:"scraped_at"`
	TotalSteps int    `json:"total_steps"`
}

// FormSchema is the top-level scan artifact.
type FormSchema struct {
	Metadata Metadata `json:"metadata"`
	Steps    []Step   `json:"steps"`
}

// ErrorDocument replaces the schema when the run fails before any structure
// could be captured.
type ErrorDocument struct {
	Error string `json:"error"`
}

// FieldCount sums the fields across all steps.
func (fs *FormSchema) FieldCount() int {
	n := 0
	for _, s := range fs.Steps {
		n += len(s.Fields)
	}
	return n
}
