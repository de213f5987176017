package internal

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	paths  []string
	mcp    bool
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithPaths opens paths at startup instead of restoring the last session.
func WithPaths(paths []string) Option {
	return func(a *application) {
		a.paths = paths
	}
}

// WithMCP serves the MCP tools on stdio instead of the HTTP API.
func WithMCP(on bool) Option {
	return func(a *application) {
		a.mcp = on
	}
}
