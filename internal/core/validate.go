package core

import (
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"local-library/internal/core/model"
)

const dateLayout = "2006-01-02"

// FieldRule is one sanitization or validation step. It returns the
// (possibly rewritten) value and a violation message, empty when the
// rule passed. Sanitizers rewrite and never fail; checks do the
// opposite.
type FieldRule func(value string) (string, string)

func Trim(v string) (string, string) {
	return strings.TrimSpace(v), ""
}

// Escape neutralizes characters meaningful to the rendering layer.
func Escape(v string) (string, string) {
	return html.EscapeString(v), ""
}

func Required(msg string) FieldRule {
	return func(v string) (string, string) {
		if v == "" {
			return v, msg
		}
		return v, ""
	}
}

func MinLen(n int, msg string) FieldRule {
	return func(v string) (string, string) {
		if len([]rune(v)) < n {
			return v, msg
		}
		return v, ""
	}
}

func MaxLen(n int, msg string) FieldRule {
	return func(v string) (string, string) {
		if len([]rune(v)) > n {
			return v, msg
		}
		return v, ""
	}
}

// ValidID accepts an empty value (Required covers presence) and
// otherwise demands a well-formed identifier.
func ValidID(msg string) FieldRule {
	return func(v string) (string, string) {
		if v == "" {
			return v, ""
		}
		if _, err := uuid.Parse(v); err != nil {
			return v, msg
		}
		return v, ""
	}
}

// OptionalDate accepts an empty value or an ISO date (2006-01-02).
func OptionalDate(msg string) FieldRule {
	return func(v string) (string, string) {
		if v == "" {
			return v, ""
		}
		if _, err := time.Parse(dateLayout, v); err != nil {
			return v, msg
		}
		return v, ""
	}
}

func OneOf(allowed []string, msg string) FieldRule {
	return func(v string) (string, string) {
		for _, a := range allowed {
			if v == a {
				return v, ""
			}
		}
		return v, msg
	}
}

// Pipeline runs ordered field rules over a submitted form. Every rule
// of every field runs; violations accumulate in declaration order and
// the submission is valid iff none were recorded.
type Pipeline struct {
	values     map[string][]string
	violations []model.Violation
}

func NewPipeline(form url.Values) *Pipeline {
	p := &Pipeline{values: make(map[string][]string, len(form))}
	for k, vs := range form {
		p.values[k] = append([]string(nil), vs...)
	}
	return p
}

// Field applies rules to a scalar field. An absent field validates as
// the empty string, so Required still fires for it.
func (p *Pipeline) Field(name string, rules ...FieldRule) *Pipeline {
	v := p.Value(name)
	for _, rule := range rules {
		next, msg := rule(v)
		v = next
		if msg != "" {
			p.violations = append(p.violations, model.Violation{Field: name, Message: msg})
		}
	}
	p.values[name] = []string{v}
	return p
}

// EachField normalizes a multi-valued field into a list (absent becomes
// empty, scalar becomes one element) and applies the rules to every
// element. Downstream code only ever sees the list shape.
func (p *Pipeline) EachField(name string, rules ...FieldRule) *Pipeline {
	vs := p.Values(name)
	out := make([]string, len(vs))
	for i, v := range vs {
		for _, rule := range rules {
			next, msg := rule(v)
			v = next
			if msg != "" {
				p.violations = append(p.violations, model.Violation{
					Field:   fmt.Sprintf("%s.%d", name, i),
					Message: msg,
				})
			}
		}
		out[i] = v
	}
	p.values[name] = out
	return p
}

// Value returns the sanitized scalar value of a field.
func (p *Pipeline) Value(name string) string {
	vs := p.values[name]
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

// Values returns the normalized list value of a field, never nil.
func (p *Pipeline) Values(name string) []string {
	vs := p.values[name]
	if vs == nil {
		return []string{}
	}
	return vs
}

func (p *Pipeline) Violations() []model.Violation {
	return p.violations
}

// Fail records a violation discovered outside the field rules, such as
// a cross-record existence check.
func (p *Pipeline) Fail(field, msg string) {
	p.violations = append(p.violations, model.Violation{Field: field, Message: msg})
}

func (p *Pipeline) Valid() bool {
	return len(p.violations) == 0
}

// IDValues parses the normalized list value of a field into
// identifiers, skipping blanks and malformed entries (those already
// carry violations from ValidID).
func (p *Pipeline) IDValues(name string) []uuid.UUID {
	vs := p.Values(name)
	out := make([]uuid.UUID, 0, len(vs))
	for _, v := range vs {
		id, err := uuid.Parse(v)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

// DateValue parses an optional ISO date field into a nullable time.
func (p *Pipeline) DateValue(name string) *time.Time {
	v := p.Value(name)
	if v == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return nil
	}
	return &t
}
