package profile

// Config describes a profiling session.
type Config struct {
	// Mode is one of [Modes]. An empty mode disables profiling.
	Mode string
	// Path is the directory receiving profile files.
	Path string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Option modifies a [Config].
type Option func(*Config)

// WithMode sets the profiling mode.
func WithMode(mode string) Option {
	return func(c *Config) { c.Mode = mode }
}

// WithPath sets the profile output directory.
func WithPath(path string) Option {
	return func(c *Config) { c.Path = path }
}

// WithQuiet sets the quiet flag.
func WithQuiet(quiet bool) Option {
	return func(c *Config) { c.Quiet = quiet }
}

// Start applies opts to a zero Config and starts it.
func Start(opts ...Option) interface{ Stop() } {
	var c Config

	for _, opt := range opts {
		if opt != nil {
			opt(&c)
		}
	}

	return c.Start()
}

// Start starts the profiler described by c and returns its controller.
//
// The controller is a no-op if the binary was built without the pprof tag,
// or if the mode is empty or not one of [Modes]. Stop is always safe to
// call.
func (c Config) Start() interface{ Stop() } {
	if c.Mode == "" {
		return ignore{}
	}

	return start(c.Mode, c.Path, c.Quiet)
}

type ignore struct{}

func (ignore) Stop() {}
