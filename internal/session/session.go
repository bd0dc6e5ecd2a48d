// Package session keeps the editing state of one prompt template and
// recomputes its variables and output after every change.
package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kaoru0429/Prompt-Master/internal/eval/template"
	"github.com/kaoru0429/Prompt-Master/internal/variables"
)

// Snapshot is the state of a session after a change
type Snapshot struct {
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Template    string               `json:"template"`
	Variables   []variables.Variable `json:"variables"`
	Output      string               `json:"output"`
}

// Listener is called after every change to a session
type Listener func(Snapshot)

// Session owns a template, its variables and the rendered output.
// It is not safe for concurrent use.
type Session struct {
	title       string
	description string
	template    string
	vars        []variables.Variable
	output      string

	listeners map[int]Listener
	nextID    int

	logger *zap.Logger
}

// Option configures a Session
type Option func(*Session)

// WithTitle sets the initial title
func WithTitle(title string) Option {
	return func(s *Session) { s.title = title }
}

// WithDescription sets the initial description
func WithDescription(description string) Option {
	return func(s *Session) { s.description = description }
}

// WithVariables seeds the session with variables from an earlier edit. Their
// values are carried into the first template that is set.
func WithVariables(vars []variables.Variable) Option {
	return func(s *Session) { s.vars = variables.Clone(vars) }
}

// WithTemplate sets the initial template. Options are applied in order, so
// WithVariables must come first for its values to be carried.
func WithTemplate(tmpl string) Option {
	return func(s *Session) {
		s.template = tmpl
		s.vars = variables.Reparse(tmpl, s.vars)
	}
}

// WithRawTemplate sets the initial template without deriving variables from
// it. Placeholders with no matching variable render unchanged.
func WithRawTemplate(tmpl string) Option {
	return func(s *Session) { s.template = tmpl }
}

// New creates a session
func New(logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		listeners: make(map[int]Listener),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.vars == nil {
		s.vars = []variables.Variable{}
	}
	s.output = variables.Render(s.template, s.vars)

	return s
}

// SetTemplate replaces the template, keeping the values of variables whose
// names are still declared.
func (s *Session) SetTemplate(tmpl string) {
	before := len(s.vars)
	s.template = tmpl
	s.vars = variables.Reparse(tmpl, s.vars)

	s.logger.Debug("template updated",
		zap.Int("variables_before", before),
		zap.Int("variables_after", len(s.vars)),
	)

	s.changed()
}

// SetValue sets the value of the named variable. It reports false and
// changes nothing when no variable has that name.
func (s *Session) SetValue(name, value string) bool {
	for i := range s.vars {
		if s.vars[i].Name != name {
			continue
		}
		s.vars[i].Value = value
		s.changed()
		return true
	}

	s.logger.Debug("ignoring value for unknown variable", zap.String("name", name))
	return false
}

// SetTitle sets the title
func (s *Session) SetTitle(title string) {
	s.title = title
	s.changed()
}

// SetDescription sets the description
func (s *Session) SetDescription(description string) {
	s.description = description
	s.changed()
}

// Template returns the current template
func (s *Session) Template() string { return s.template }

// Output returns the template rendered with the current values
func (s *Session) Output() string { return s.output }

// Variables returns a copy of the current variables
func (s *Session) Variables() []variables.Variable {
	return variables.Clone(s.vars)
}

// Snapshot returns a copy of the current state
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Title:       s.title,
		Description: s.description,
		Template:    s.template,
		Variables:   s.Variables(),
		Output:      s.output,
	}
}

// Subscribe registers l to be called after every change. The returned
// function removes it.
func (s *Session) Subscribe(l Listener) func() {
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() { delete(s.listeners, id) }
}

// Card renders the session through a Handlebars layout. An empty layout
// uses template.DefaultLayout.
func (s *Session) Card(engine *template.Engine, layout string) (string, error) {
	if layout == "" {
		layout = template.DefaultLayout
	}

	vars := make([]map[string]interface{}, 0, len(s.vars))
	for _, v := range s.vars {
		vars = append(vars, map[string]interface{}{
			"name":    v.Name,
			"kind":    string(v.Kind),
			"options": append([]string(nil), v.Options...),
			"value":   v.Value,
		})
	}

	card, err := engine.Render(layout, map[string]interface{}{
		"title":       s.title,
		"description": s.description,
		"template":    s.template,
		"prompt":      s.output,
		"variables":   vars,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render card: %w", err)
	}

	return card, nil
}

// changed re-renders the output and notifies listeners in subscription order
func (s *Session) changed() {
	s.output = variables.Render(s.template, s.vars)

	if len(s.listeners) == 0 {
		return
	}
	// Listeners subscribed during this round are first called on the next one
	snap := s.Snapshot()
	n := s.nextID
	for id := 0; id < n; id++ {
		if l, ok := s.listeners[id]; ok {
			l(snap)
		}
	}
}
