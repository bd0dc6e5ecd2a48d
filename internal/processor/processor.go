package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kaoru0429/Prompt-Master/internal/eval/template"
	"github.com/kaoru0429/Prompt-Master/internal/form"
	"github.com/kaoru0429/Prompt-Master/internal/session"
	"github.com/kaoru0429/Prompt-Master/internal/variables"
)

// Operation selects how the variables of a request are derived
type Operation string

const (
	// OpParse parses the template from scratch
	OpParse Operation = "parse"

	// OpReparse parses the template and keeps the values of the request's variables
	OpReparse Operation = "reparse"

	// OpRender renders the template with the request's variables as given
	OpRender Operation = "render"
)

// ErrUnknownOperation is returned for an operation other than parse, reparse or render
var ErrUnknownOperation = errors.New("unknown operation")

// Request asks for a template to be (re)parsed and rendered
type Request struct {
	RequestID   string               `json:"request_id"`
	Operation   Operation            `json:"operation,omitempty"`
	Title       string               `json:"title,omitempty"`
	Description string               `json:"description,omitempty"`
	Template    string               `json:"template"`
	Variables   []variables.Variable `json:"variables,omitempty"`
	Values      map[string]string    `json:"values,omitempty"`
	Card        bool                 `json:"card,omitempty"`
	Layout      string               `json:"layout,omitempty"`
}

// Result is the outcome of a request
type Result struct {
	RequestID  string               `json:"request_id"`
	Operation  Operation            `json:"operation"`
	Variables  []variables.Variable `json:"variables"`
	Output     string               `json:"output"`
	Fields     []form.Field         `json:"fields,omitempty"`
	Card       string               `json:"card,omitempty"`
	Ignored    []string             `json:"ignored,omitempty"`
	Unresolved []string             `json:"unresolved,omitempty"`
	Timestamp  time.Time            `json:"timestamp"`
}

// Processor handles requests
type Processor struct {
	engine        *template.Engine
	fields        *form.Builder
	defaultLayout string
	logger        *zap.Logger
	now           func() time.Time
}

// Option configures a Processor
type Option func(*Processor)

// WithFields enables widget descriptions in results
func WithFields(builder *form.Builder) Option {
	return func(p *Processor) { p.fields = builder }
}

// WithLayout sets the card layout used when a request carries none
func WithLayout(layout string) Option {
	return func(p *Processor) { p.defaultLayout = layout }
}

// NewProcessor creates a new processor
func NewProcessor(engine *template.Engine, logger *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		engine: engine,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process derives the variables of a request, applies its value edits and
// renders the template.
func (p *Processor) Process(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	// Detect operation if not specified
	if req.Operation == "" {
		req.Operation = p.detectOperation(req)
	}

	p.logger.Info("processing request",
		zap.String("request_id", req.RequestID),
		zap.String("operation", string(req.Operation)),
	)

	var vars []variables.Variable
	switch req.Operation {
	case OpParse:
		vars = variables.Parse(req.Template)
	case OpReparse:
		vars = variables.Reparse(req.Template, req.Variables)
	case OpRender:
		vars = variables.Clone(req.Variables)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, req.Operation)
	}

	// vars are final here; the session must not derive them again
	s := session.New(p.logger,
		session.WithTitle(req.Title),
		session.WithDescription(req.Description),
		session.WithVariables(vars),
		session.WithRawTemplate(req.Template),
	)

	ignored := p.applyValues(s, req)

	result := &Result{
		RequestID: req.RequestID,
		Operation: req.Operation,
		Variables: s.Variables(),
		Output:    s.Output(),
		Ignored:   ignored,
		Timestamp: p.now().UTC(),
	}
	result.Unresolved = unresolved(req.Template, result.Variables)

	if p.fields != nil {
		fields, err := p.fields.Fields(ctx, result.Variables)
		if err != nil {
			return nil, fmt.Errorf("failed to build fields: %w", err)
		}
		result.Fields = fields
	}

	if req.Card {
		layout := req.Layout
		if layout == "" {
			layout = p.defaultLayout
		}
		card, err := s.Card(p.engine, layout)
		if err != nil {
			return nil, err
		}
		result.Card = card
	}

	p.logger.Info("request processed",
		zap.String("request_id", req.RequestID),
		zap.String("operation", string(req.Operation)),
		zap.Int("variables", len(result.Variables)),
		zap.Int("ignored", len(result.Ignored)),
		zap.Int("unresolved", len(result.Unresolved)),
	)

	return result, nil
}

// detectOperation detects the operation from the request contents
func (p *Processor) detectOperation(req *Request) Operation {
	// Variables from an earlier edit: keep their values
	if len(req.Variables) > 0 {
		return OpReparse
	}

	return OpParse
}

// applyValues applies the request's edits in name order and returns the
// names that match no variable
func (p *Processor) applyValues(s *session.Session, req *Request) []string {
	names := make([]string, 0, len(req.Values))
	for name := range req.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	var ignored []string
	for _, name := range names {
		if !s.SetValue(name, req.Values[name]) {
			ignored = append(ignored, name)
		}
	}

	if len(ignored) > 0 {
		p.logger.Debug("ignored values for unknown variables",
			zap.String("request_id", req.RequestID),
			zap.Strings("names", ignored),
		)
	}

	return ignored
}

// unresolved returns the distinct placeholder names in tmpl that no variable
// answers, in scan order
func unresolved(tmpl string, vars []variables.Variable) []string {
	known := variables.Values(vars)

	var names []string
	seen := make(map[string]struct{})
	for _, name := range variables.Names(tmpl) {
		if _, ok := known[name]; ok {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
