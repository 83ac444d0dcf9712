package oglob

// config holds resolved traversal options for one Search call.
type config struct {
	recursive      bool
	includeDir     bool
	missingOK      bool
	followSymlinks bool
	onError        func(path string, err error) bool
}

// Option adjusts traversal behavior for a single Search call.
type Option func(*config)

func newConfig(opts []Option) config {
	cfg := config{
		missingOK:      true,
		followSymlinks: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Recursive controls whether Search descends below the direct children of
// the root. Off by default.
func Recursive(enabled bool) Option {
	return func(c *config) { c.recursive = enabled }
}

// IncludeDir controls whether directories themselves are candidates for
// matching and yielding. Off by default; descent into directories does not
// depend on it.
func IncludeDir(enabled bool) Option {
	return func(c *config) { c.includeDir = enabled }
}

// MissingOK controls whether a missing root produces an empty sequence
// instead of an error. On by default.
func MissingOK(enabled bool) Option {
	return func(c *config) { c.missingOK = enabled }
}

// FollowSymlinks controls whether symbolic links are followed. On by
// default. When disabled, symlinked objects are skipped entirely: they are
// neither matched nor descended into.
func FollowSymlinks(enabled bool) Option {
	return func(c *config) { c.followSymlinks = enabled }
}

// OnError installs a handler for directory listing failures. Returning true
// skips the failed directory and continues the walk; returning false stops
// the walk and surfaces the error to the consumer, which is also the
// behavior when no handler is installed.
func OnError(handler func(path string, err error) bool) Option {
	return func(c *config) { c.onError = handler }
}
