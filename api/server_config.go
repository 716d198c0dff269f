package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig holds the runtime settings for the wallet API server.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the wallet API listens on.
	ListenAddr string

	// MetricsAddr is the address and port of the Prometheus listener.
	// Leave empty to run without one.
	MetricsAddr string

	// EnablePprof mounts the pprof debugging handlers when true.
	EnablePprof bool

	// Log is the structured logger the server and its handlers use.
	Log *slog.Logger

	// DrainDuration is how long the server stays up after flipping to
	// not-ready, so load balancers stop routing to it before shutdown.
	DrainDuration time.Duration

	// GracefulShutdownDuration bounds the wait for in-flight requests
	// during shutdown.
	GracefulShutdownDuration time.Duration

	// ReadTimeout caps reading an entire request, body included.
	ReadTimeout time.Duration

	// WriteTimeout caps writing a response.
	WriteTimeout time.Duration
}
