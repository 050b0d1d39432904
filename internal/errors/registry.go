package errors

// Template defines a registered error code.
type Template struct {
	Category   Category
	Message    string
	Suggestion string
}

var registry = map[string]Template{
	// Route table (R001-R099)
	"R001": {
		Category:   CategoryRoute,
		Message:    "Invalid route pattern",
		Suggestion: "Patterns start with \"/\" and use \":name\" for parameters, e.g. \"/sermoes/:id\"",
	},
	"R002": {
		Category:   CategoryRoute,
		Message:    "Duplicate route pattern",
		Suggestion: "Remove one of the registrations; the first one would shadow the other",
	},
	"R003": {
		Category:   CategoryRoute,
		Message:    "Duplicate route parameter",
		Suggestion: "Give every parameter in a pattern a distinct name",
	},
	"R004": {
		Category:   CategoryRoute,
		Message:    "Missing view name",
		Suggestion: "Pass the name of a registered view as the second argument",
	},

	// View registry (V001-V099)
	"V001": {
		Category:   CategoryView,
		Message:    "Route references an unregistered view",
		Suggestion: "Register a renderer for the view before starting the application",
	},
	"V002": {
		Category:   CategoryView,
		Message:    "View registered twice",
		Suggestion: "View names are unique; rename or remove one registration",
	},
	"V003": {
		Category:   CategoryView,
		Message:    "NotFound view is not registered",
		Suggestion: "Register a renderer named \"NotFound\" for unmatched paths",
	},
	"V004": {
		Category:   CategoryView,
		Message:    "Nil renderer",
		Suggestion: "Pass a non-nil view.Renderer",
	},

	// Configuration (C001-C099)
	"C001": {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be read",
		Suggestion: "Check the file exists and is valid YAML",
	},
	"C002": {
		Category:   CategoryConfig,
		Message:    "Invalid configuration value",
		Suggestion: "Fix the value in openheavens.yaml or the OH_* environment variable",
	},

	// Content API (A001-A099)
	"A001": {
		Category:   CategoryContent,
		Message:    "Invalid content API base URL",
		Suggestion: "Use an absolute http(s) URL such as https://ohapi.weserve.one",
	},
}
