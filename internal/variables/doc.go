// Package variables extracts typed variables from prompt templates and renders
// templates back with the values supplied for them.
//
// Placeholders are written between double braces:
//
//	{{Topic}}                      # text variable "Topic"
//	{{Tone:Professional|Casual}}   # select variable, default "Professional"
//	{{WordCount#1000}}             # number variable, default "1000"
//
// Example usage:
//
//	tmpl := "Write a {{Tone:Professional|Casual}} post about {{Topic}}."
//
//	vars := variables.Parse(tmpl)
//	vars[1].Value = "Go"
//
//	out := variables.Render(tmpl, vars)
//	// Output: Write a Professional post about Go.
//
// When the template is edited, Reparse keeps the values of variables whose
// names survive the edit:
//
//	vars = variables.Reparse("{{Topic}} in {{Year#2024}}", vars)
//	// Topic keeps "Go", Year starts at "2024"
//
// Parsing is permissive. Malformed placeholders such as {{}} or a trailing
// "|" in an option list produce descriptors with empty names or options; no
// function in this package returns an error.
package variables
