package variables

import (
	"regexp"
	"strings"
)

// placeholderPattern matches one {{...}} span. The content is non-greedy and
// does not cross a line terminator (\n, \r, U+2028 or U+2029).
var placeholderPattern = regexp.MustCompile(`\{\{([^\n\r\x{2028}\x{2029}]*?)\}\}`)

const (
	selectSeparator = ":"
	optionSeparator = "|"
	numberSeparator = "#"
)

// Parse extracts the distinct variables declared in template, in order of
// first occurrence. Later declarations of an already seen name are dropped
// entirely, even when they declare a different kind or options.
func Parse(template string) []Variable {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)

	vars := make([]Variable, 0, len(matches))
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		v := classify(match[1])
		if _, ok := seen[v.Name]; ok {
			continue
		}
		seen[v.Name] = struct{}{}
		vars = append(vars, v)
	}

	return vars
}

// Reparse parses template and carries forward the value of every variable
// whose name also appears in previous. New names start from their default.
func Reparse(template string, previous []Variable) []Variable {
	carried := make(map[string]string, len(previous))
	for _, v := range previous {
		carried[v.Name] = v.Value
	}

	vars := Parse(template)
	for i := range vars {
		if value, ok := carried[vars[i].Name]; ok {
			vars[i].Value = value
		}
	}

	return vars
}

// classify builds the descriptor for the raw content between the delimiters
func classify(content string) Variable {
	if name, list, ok := strings.Cut(content, selectSeparator); ok {
		options := strings.Split(list, optionSeparator)
		def := options[0]
		return Variable{
			Name:    name,
			Kind:    KindSelect,
			Options: options,
			Default: &def,
			Value:   def,
		}
	}

	if name, def, ok := strings.Cut(content, numberSeparator); ok {
		return Variable{
			Name:    name,
			Kind:    KindNumber,
			Default: &def,
			Value:   def,
		}
	}

	return Variable{Name: content, Kind: KindText}
}

// nameOf derives the variable name of a placeholder using the same rule as
// classify, without building the rest of the descriptor.
func nameOf(content string) string {
	if name, _, ok := strings.Cut(content, selectSeparator); ok {
		return name
	}
	if name, _, ok := strings.Cut(content, numberSeparator); ok {
		return name
	}
	return content
}
