package app

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// StatusServer serves metrics and a read-only view of the open project
// over HTTP while a long-running command such as watch is active.
type StatusServer struct {
	httpServer *http.Server
	listener   net.Listener
	log        *Logger
	done       chan struct{}
	err        error
}

// Handler returns the status routes:
//
//	GET /healthz   liveness
//	GET /metrics   Prometheus text exposition
//	GET /project   the open project summary as JSON
func (app *Application) Handler() http.Handler {
	log := app.logger.WithComponent("http")

	r := chi.NewRouter()
	r.Use(requestLogger(log))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(app.metrics.Registry(), promhttp.HandlerOpts{}))
	r.Get("/project", func(w http.ResponseWriter, req *http.Request) {
		s, err := app.Summary(req.Context())
		switch {
		case errors.Is(err, ErrNoProject):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		case err != nil:
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		default:
			writeJSON(w, http.StatusOK, s)
		}
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func requestLogger(log *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Debug("%s %s %d (%s)", r.Method, r.URL.Path, rec.status, time.Since(start))
		})
	}
}

// Serve starts a StatusServer on addr. Use ":0" for an ephemeral port and
// read it back with Addr.
func (app *Application) Serve(addr string) (*StatusServer, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, NewOperationError("serve", addr, err)
	}

	s := &StatusServer{
		httpServer: &http.Server{
			Handler:      app.Handler(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		listener: ln,
		log:      app.logger.WithComponent("http"),
		done:     make(chan struct{}),
	}

	go func() {
		defer close(s.done)
		s.log.Info("status server listening on %s", ln.Addr())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.err = err
			s.log.Error("status server: %v", err)
		}
	}()
	return s, nil
}

// Addr returns the address the server is listening on.
func (s *StatusServer) Addr() string { return s.listener.Addr().String() }

// Shutdown stops accepting connections and waits for active requests.
func (s *StatusServer) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	select {
	case <-s.done:
	case <-ctx.Done():
		return errors.Join(err, ctx.Err())
	}
	return errors.Join(err, s.err)
}
