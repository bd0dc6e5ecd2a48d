// Package processor turns render requests into results.
//
// A request carries a template, optionally the variables of an earlier edit,
// and value edits. The processor supports three operations:
//   - parse: derive fresh variables from the template
//   - reparse: derive variables and keep the values of the request's variables
//   - render: use the request's variables as given, even if stale
//
// Example parse:
//
//	req := &Request{
//	    Template: "Write a {{Tone:Professional|Casual}} post about {{Topic}}.",
//	    Values:   map[string]string{"Topic": "Go"},
//	}
//	result, err := processor.Process(ctx, req)
//	// result.Output == "Write a Professional post about Go."
//
// Example reparse after an edit:
//
//	req := &Request{
//	    Operation: OpReparse,
//	    Template:  "{{Topic}} in {{Year#2024}}",
//	    Variables: result.Variables,
//	}
//	result, err = processor.Process(ctx, req)
//	// Topic keeps "Go", Year starts at "2024"
//
// When the operation is empty it is detected: requests carrying variables are
// reparsed, others parsed. Edits naming unknown variables are reported in
// Result.Ignored; placeholders no variable answers in Result.Unresolved.
package processor
