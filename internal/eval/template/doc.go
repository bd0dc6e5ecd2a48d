// Package template provides a Handlebars template engine for rendering prompt
// cards: a layout that wraps a rendered prompt with its title, description
// and variables.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{
//	    "title":  "Blog post generator",
//	    "prompt": "Write a Casual blog post about Go.",
//	}
//
//	card, err := engine.Render(template.DefaultLayout, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Output: # Blog post generator
//	//
//	//         Write a Casual blog post about Go.
//
// Layouts should use triple braces for prompt text so it is not HTML-escaped.
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - default - Return default value if first arg is empty
//   - eq - Equality comparison
//   - ne - Inequality comparison
//   - contains - Check if string contains substring
//   - join - Join list elements with separator
//   - len - Get length of list/string/map
//
// Example with helpers:
//
//	{{uppercase title}}                          # "BLOG POST GENERATOR"
//	{{default description "N/A"}}                # "N/A" if description is empty
//	{{#each variables}}- {{name}}: {{{value}}}
//	{{/each}}
//	{{#if (eq kind "select")}}{{join options " / "}}{{/if}}
package template
