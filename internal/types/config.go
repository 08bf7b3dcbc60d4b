package types

// RunMode selects which halves of the process run: the HTTP API, the webhook
// consumer, or both together for local development.
type RunMode string

const (
	ModeLocal    RunMode = "local"    // API server and webhook consumer together
	ModeAPI      RunMode = "api"      // API server only
	ModeConsumer RunMode = "consumer" // webhook consumer only
)

// LogLevel controls logger verbosity.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
)
