// Package form describes the input widget a presentation layer should show for
// each template variable, along with the acceptance rule of that widget.
package form

import (
	"context"
	"fmt"

	"github.com/kaoru0429/Prompt-Master/internal/eval/cel"
	"github.com/kaoru0429/Prompt-Master/internal/variables"
)

// Input is the widget type used to edit a variable
type Input string

const (
	InputText   Input = "text"
	InputSelect Input = "select"
	InputNumber Input = "number"
)

// Default acceptance rules per input. NumberRule accepts what a browser
// number input does, exponents included.
const (
	SelectRule = "value in options"
	NumberRule = "value == '' || value.matches('^[-+]?([0-9]+([.][0-9]*)?|[.][0-9]+)([eE][-+]?[0-9]+)?$')"
)

// Field is one input widget bound to a variable
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Input   Input    `json:"input"`
	Options []string `json:"options,omitempty"`
	Value   string   `json:"value"`
	Rule    string   `json:"rule,omitempty"`
	Valid   bool     `json:"valid"`
}

// Builder turns variables into fields
type Builder struct {
	evaluator *cel.Evaluator
	rules     map[Input]string
}

// Option configures a Builder
type Option func(*Builder)

// WithRule overrides the acceptance rule of an input. An empty rule accepts
// every value.
func WithRule(input Input, rule string) Option {
	return func(b *Builder) {
		b.rules[input] = rule
	}
}

// NewBuilder creates a field builder evaluating rules with evaluator
func NewBuilder(evaluator *cel.Evaluator, opts ...Option) (*Builder, error) {
	b := &Builder{
		evaluator: evaluator,
		rules: map[Input]string{
			InputSelect: SelectRule,
			InputNumber: NumberRule,
		},
	}
	for _, opt := range opts {
		opt(b)
	}

	for input, rule := range b.rules {
		if rule == "" {
			continue
		}
		if err := evaluator.ValidateExpression(rule); err != nil {
			return nil, fmt.Errorf("invalid %s rule: %w", input, err)
		}
	}

	return b, nil
}

// InputFor maps a variable kind to its widget
func InputFor(kind variables.Kind) Input {
	switch kind {
	case variables.KindSelect:
		return InputSelect
	case variables.KindNumber:
		return InputNumber
	default:
		return InputText
	}
}

// Fields builds one field per variable, in order, and checks each current
// value against its rule.
func (b *Builder) Fields(ctx context.Context, vars []variables.Variable) ([]Field, error) {
	fields := make([]Field, 0, len(vars))
	for _, v := range vars {
		field := Field{
			Name:  v.Name,
			Label: v.Name,
			Input: InputFor(v.Kind),
			Value: v.Value,
		}
		if v.Kind == variables.KindSelect {
			field.Options = append([]string(nil), v.Options...)
		}
		field.Rule = b.rules[field.Input]

		valid, err := b.Accept(ctx, field, v.Value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", v.Name, err)
		}
		field.Valid = valid

		fields = append(fields, field)
	}
	return fields, nil
}

// Accept reports whether the widget of field would accept value. It never
// modifies the field.
func (b *Builder) Accept(ctx context.Context, field Field, value string) (bool, error) {
	if field.Rule == "" {
		return true, nil
	}

	options := field.Options
	if options == nil {
		options = []string{}
	}

	return b.evaluator.EvaluateBool(ctx, field.Rule, map[string]interface{}{
		"value":   value,
		"options": options,
	})
}
