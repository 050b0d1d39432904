// Package errors provides structured, actionable errors for startup problems.
//
// Misconfigured route tables, view registries and configuration files are
// programmer errors that must stop the application at boot. Each such problem
// has a stable code that maps to a short message, a longer explanation and a
// suggested fix, so the terminal output tells the developer what to change.
//
// # Error Categories
//
//   - route: route pattern compilation and table registration
//   - view: view registry completeness
//   - config: configuration loading and validation
//   - content: content API contract problems
//
// # Usage
//
//	err := errors.New("R002").
//	    WithDetailf("pattern %q is already registered for view %q", "/blog", "Blog")
//
//	errors.Print(os.Stderr, err)
//	// Output:
//	// ERROR R002: Duplicate route pattern
//	//
//	//   pattern "/blog" is already registered for view "Blog"
//	//
//	//   Hint: Remove one of the registrations; the first one would shadow the other
package errors
