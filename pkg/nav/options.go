package nav

// NavigateOptions configures a NavigateTo call.
type NavigateOptions struct {
	// Replace overwrites the current history entry instead of pushing.
	Replace bool
}

// NavigateOption is a functional option for NavigateTo.
type NavigateOption func(*NavigateOptions)

// WithReplace replaces the current history entry instead of pushing.
func WithReplace() NavigateOption {
	return func(o *NavigateOptions) {
		o.Replace = true
	}
}
