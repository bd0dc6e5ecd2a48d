package variables

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// Render substitutes every placeholder in template with the current value of
// the variable of the same name. Placeholders with no matching variable are
// left as they are, delimiters included. vars is only read.
func Render(template string, vars []Variable) string {
	if len(vars) == 0 {
		return template
	}

	values := Values(vars)
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		content := match[len(openDelim) : len(match)-len(closeDelim)]
		if value, ok := values[nameOf(content)]; ok {
			return value
		}
		return match
	})
}

// Names returns the variable name of each placeholder occurrence in template,
// repeats included, in scan order.
func Names(template string) []string {
	matches := placeholderPattern.FindAllStringSubmatch(template, -1)
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, nameOf(match[1]))
	}
	return names
}
