package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
)

// DefaultLayout renders a Markdown prompt card
const DefaultLayout = `# {{{default title "Untitled prompt"}}}
{{#if description}}

{{{description}}}
{{/if}}

{{{prompt}}}
`

// Engine renders Handlebars templates
type Engine struct {
	cache map[string]*raymond.Template
	mu    sync.RWMutex
}

// NewEngine creates a new template engine
func NewEngine() *Engine {
	return &Engine{
		cache: make(map[string]*raymond.Template),
	}
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	// Get or compile template
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	// Execute the template
	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Compile the template (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	// Helpers are scoped to the compiled template; raymond panics when a
	// global helper is registered twice.
	tmpl.RegisterHelpers(helpers())

	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(templateStr)
	return err
}

// ClearCache clears the compiled template cache
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

// helpers returns the custom Handlebars helpers available to layouts
func helpers() map[string]interface{} {
	return map[string]interface{}{
		"uppercase": func(str string) string {
			return strings.ToUpper(str)
		},
		"lowercase": func(str string) string {
			return strings.ToLower(str)
		},
		"trim": func(str string) string {
			return strings.TrimSpace(str)
		},
		// default returns the fallback when the first argument is empty
		"default": func(value interface{}, defaultValue interface{}) interface{} {
			if value == nil || value == "" {
				return defaultValue
			}
			return value
		},
		"eq": func(a, b interface{}) bool {
			return a == b
		},
		"ne": func(a, b interface{}) bool {
			return a != b
		},
		"contains": func(str, substr string) bool {
			return strings.Contains(str, substr)
		},
		"join": func(value interface{}, sep string) string {
			switch arr := value.(type) {
			case []string:
				return strings.Join(arr, sep)
			case []interface{}:
				strs := make([]string, len(arr))
				for i, v := range arr {
					strs[i] = fmt.Sprint(v)
				}
				return strings.Join(strs, sep)
			default:
				return ""
			}
		},
		"len": func(value interface{}) int {
			switch v := value.(type) {
			case string:
				return len(v)
			case []interface{}:
				return len(v)
			case []string:
				return len(v)
			case []map[string]interface{}:
				return len(v)
			case map[string]interface{}:
				return len(v)
			default:
				return 0
			}
		},
	}
}
