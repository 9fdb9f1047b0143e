package options

const (
	// DefaultDataDir is the base directory where the store keeps its
	// generation log files when no directory is configured explicitly.
	DefaultDataDir = "/var/lib/ignitedb"

	// DefaultCompactionThreshold is the number of superseded bytes
	// ("uncompacted") that triggers compaction. 1 MiB matches the
	// original engine's default.
	DefaultCompactionThreshold uint64 = 1024 * 1024

	// MinCompactionThreshold is the smallest threshold accepted. Below
	// this, a single large record would force compaction on nearly
	// every write.
	MinCompactionThreshold uint64 = 4 * 1024

	// MaxCompactionThreshold is the largest threshold accepted, bounding
	// how much garbage the engine is willing to let accumulate between
	// compactions.
	MaxCompactionThreshold uint64 = 4 * 1024 * 1024 * 1024

	// DefaultEngineFlavor is the engine selected when none is specified,
	// matching the CLI surface's default.
	DefaultEngineFlavor = "kvs"

	// DefaultAddr is the default listen/connect address for the server
	// and client.
	DefaultAddr = "127.0.0.1:4000"
)

// NewDefaultOptions returns the configuration used when a caller supplies
// no OptionFuncs.
func NewDefaultOptions() Options {
	return Options{
		DataDir:             DefaultDataDir,
		CompactionThreshold: DefaultCompactionThreshold,
		EngineFlavor:        DefaultEngineFlavor,
		Addr:                DefaultAddr,
		Observability:       NewDefaultObservabilityOptions(),
	}
}

// NewDefaultObservabilityOptions returns the ambient-stack defaults: no
// metrics listener, no trace exporter, no event bus, no admin feed, no
// directory watchdog. Each is opt-in because none of them participate in
// the engine's correctness contract.
func NewDefaultObservabilityOptions() ObservabilityOptions {
	return ObservabilityOptions{
		MetricsAddr:     "",
		TracingEnabled:  false,
		EventBusURL:     "",
		AdminWSAddr:     "",
		WatchdogEnabled: false,
	}
}
