// Package metrics exposes Prometheus metrics for the wallet service on a
// dedicated listener, kept separate from the API server so scrapes are not
// affected by API drain state.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Wallet operation counters, labeled by outcome ("ok" or "error").
var (
	ColdkeysCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_coldkeys_created_total",
		Help: "Number of coldkey creation attempts.",
	}, []string{"result"})

	ColdkeysLoaded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_coldkeys_loaded_total",
		Help: "Number of coldkey load attempts.",
	}, []string{"result"})

	HotkeysGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_hotkeys_generated_total",
		Help: "Number of hotkey generation attempts.",
	}, []string{"result"})

	HotkeysImported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_hotkeys_imported_total",
		Help: "Number of hotkey import attempts.",
	}, []string{"result"})

	BackupsExported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_backups_exported_total",
		Help: "Number of backup export attempts.",
	}, []string{"result"})

	BackupsRestored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_backups_restored_total",
		Help: "Number of backup restore attempts.",
	}, []string{"result"})
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Observe increments c with the outcome of err.
func Observe(c *prometheus.CounterVec, err error) {
	if err != nil {
		c.WithLabelValues(ResultError).Inc()
		return
	}
	c.WithLabelValues(ResultOK).Inc()
}

// MetricsServer serves the Prometheus scrape endpoint.
type MetricsServer struct {
	srv *http.Server
}

// New creates a metrics server for the given service name listening on addr.
// Go runtime and process collectors are registered alongside the wallet
// counters. An empty addr yields a server that is never started.
func New(name, addr string) (*MetricsServer, error) {
	if addr == "" {
		return &MetricsServer{}, nil
	}

	// Runtime collectors are registered once on the default registry,
	// alongside the promauto wallet counters above.
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := prometheus.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, fmt.Errorf("failed to register collector: %w", err)
			}
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &MetricsServer{
		srv: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
	}, nil
}

// ListenAndServe blocks serving the scrape endpoint.
func (m *MetricsServer) ListenAndServe() error {
	if m.srv == nil {
		return nil
	}
	return m.srv.ListenAndServe()
}

// Shutdown gracefully stops the metrics server.
func (m *MetricsServer) Shutdown(ctx context.Context) error {
	if m.srv == nil {
		return nil
	}
	return m.srv.Shutdown(ctx)
}
