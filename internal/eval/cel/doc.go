// Package cel provides a CEL (Common Expression Language) evaluator for
// input acceptance rules.
//
// A rule is a boolean expression over the candidate value of a variable and,
// for select variables, its declared options.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "value":   "Casual",
//	    "options": []string{"Professional", "Casual"},
//	}
//
//	accepted, err := evaluator.EvaluateBool(ctx, "value in options", vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// accepted == true
//
// Declared variables:
//   - value - string, the candidate value
//   - options - list(string), the options of a select variable
//
// Compiled programs are cached by expression text.
package cel
