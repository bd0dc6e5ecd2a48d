package variables

// Kind classifies a placeholder by its delimiter-internal syntax
type Kind string

const (
	// KindText is a free-text placeholder: {{Name}}
	KindText Kind = "text"

	// KindSelect is an enumerated placeholder: {{Name:A|B}}
	KindSelect Kind = "select"

	// KindNumber is a numeric placeholder with a default: {{Name#10}}
	KindNumber Kind = "number"
)

// Variable describes one distinct placeholder found in a template
type Variable struct {
	Name    string   `json:"name"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"`
	Default *string  `json:"default,omitempty"`
	Value   string   `json:"value"`
}

// DefaultValue returns the declared default and whether one was declared
func (v Variable) DefaultValue() (string, bool) {
	if v.Default == nil {
		return "", false
	}
	return *v.Default, true
}

// Clone returns a copy that shares no memory with v
func (v Variable) Clone() Variable {
	out := v
	if v.Options != nil {
		out.Options = append([]string(nil), v.Options...)
	}
	if v.Default != nil {
		def := *v.Default
		out.Default = &def
	}
	return out
}

// Clone copies a descriptor slice element by element
func Clone(vars []Variable) []Variable {
	if vars == nil {
		return nil
	}
	out := make([]Variable, len(vars))
	for i, v := range vars {
		out[i] = v.Clone()
	}
	return out
}

// Values returns the current values keyed by variable name.
// When a name repeats, the first descriptor wins.
func Values(vars []Variable) map[string]string {
	values := make(map[string]string, len(vars))
	for _, v := range vars {
		if _, ok := values[v.Name]; ok {
			continue
		}
		values[v.Name] = v.Value
	}
	return values
}
