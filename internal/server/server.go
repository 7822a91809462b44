// Package server runs the UDP, TCP, and Unix-socket control listeners
// around a shared *authority.Authority, the Go restatement of the
// original's tokio-based triple-listener main loop: three concurrent
// listeners coordinated for graceful shutdown, here via
// golang.org/x/sync/errgroup instead of future::select_all.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/pepbut/nsd/internal/authority"
	"github.com/pepbut/nsd/internal/name"
)

// Server owns the shared authority and the configuration needed to run
// its listeners. It has no state of its own beyond that: reloading a
// zone is done entirely through the Authority, which the control
// listener and any startup zone loading share.
type Server struct {
	cfg     Config
	auth    *authority.Authority
	logger  *slog.Logger
	metrics *metrics
	reg     *prometheus.Registry
}

// New builds a Server around an already-populated Authority. Startup
// zone loading (from cfg.Zones) is the caller's responsibility, the way
// the original loads all positional ZONEFILE arguments before entering
// its async runtime.
func New(cfg Config, auth *authority.Authority, logger *slog.Logger) *Server {
	reg := prometheus.NewRegistry()
	return &Server{
		cfg:     cfg,
		auth:    auth,
		logger:  logger,
		metrics: newMetrics(reg),
		reg:     reg,
	}
}

// Run starts the UDP, TCP, control-socket, and (if configured) metrics
// listeners and blocks until ctx is cancelled or one of them fails.
// On return every listener has been asked to stop; callers that need a
// bounded drain period should cancel ctx themselves via a timeout.
func (s *Server) Run(ctx context.Context) error {
	mname, rname, err := s.cfg.mnameRname()
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return runUDP(gctx, s.cfg.ListenAddr, s.auth, s.logger, s.metrics)
	})
	g.Go(func() error {
		return runTCP(gctx, s.cfg.ListenAddr, s.auth, s.logger, s.metrics)
	})
	g.Go(func() error {
		return runControl(gctx, s.cfg.ControlSocket, s.auth, mname, rname, s.logger, s.metrics)
	})

	if s.cfg.MetricsAddr != "" {
		g.Go(func() error {
			return s.runMetricsHTTP(gctx)
		})
	}

	s.metrics.zonesLoaded.Set(float64(len(s.auth.ZoneOrigins())))

	return g.Wait()
}

func (s *Server) runMetricsHTTP(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	httpServer := &http.Server{Addr: s.cfg.MetricsAddr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return httpServer.Close()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// LoadZoneFile loads a binary zone file using the server's configured
// SOA MNAME/RNAME and registers it on the authority. Exported for
// cmd/nsd's startup zone loading.
func (s *Server) LoadZoneFile(path string) (name.Name, uint32, error) {
	mname, rname, err := s.cfg.mnameRname()
	if err != nil {
		return name.Name{}, 0, err
	}
	z, err := loadZoneFile(path, mname, rname)
	if err != nil {
		return name.Name{}, 0, err
	}
	s.auth.LoadZone(z)
	return z.Origin, z.Serial, nil
}
