package metrics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ajramos/evtui/internal/heartbeat"
	"github.com/ajramos/evtui/internal/nav"
	"github.com/ajramos/evtui/internal/tasks"
)

const namespace = "evtui"

// Recorder exports navigation, polling and heartbeat counters. It satisfies
// nav.Observer, tasks.Observer and heartbeat.Observer.
type Recorder struct {
	registry *prom.Registry

	navigations    *prom.CounterVec
	navDuration    *prom.HistogramVec
	polls          *prom.CounterVec
	pollErrors     *prom.CounterVec
	reconciles     *prom.CounterVec
	reconcileError *prom.CounterVec
}

// NewRecorder registers the collectors on reg, or on a fresh registry when
// reg is nil.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		registry: reg,
		navigations: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "navigations_total",
			Help:      "Navigation requests by page and outcome",
		}, []string{"page", "outcome"}),
		navDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "navigation_duration_seconds",
			Help:      "Duration of completed page transitions",
			Buckets:   prom.DefBuckets,
		}, []string{"page"}),
		polls: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_polls_total",
			Help:      "Task status polls by kind and reported status",
		}, []string{"kind", "status"}),
		pollErrors: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "task_poll_errors_total",
			Help:      "Task status polls that failed and were retried",
		}, []string{"kind"}),
		reconciles: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeat_actions_total",
			Help:      "Heartbeat reconciliation actions by region",
		}, []string{"region", "action"}),
		reconcileError: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "heartbeat_errors_total",
			Help:      "Heartbeat reconciliations skipped because of an error",
		}, []string{"region"}),
	}
	reg.MustRegister(r.navigations, r.navDuration, r.polls, r.pollErrors, r.reconciles, r.reconcileError)
	return r
}

// Registry returns the registry the collectors live in.
func (r *Recorder) Registry() *prom.Registry { return r.registry }

func (r *Recorder) NavigationObserved(page nav.Page, outcome nav.Outcome, took time.Duration) {
	r.navigations.WithLabelValues(string(page), outcome.String()).Inc()
	if outcome == nav.OutcomeCompleted {
		r.navDuration.WithLabelValues(string(page)).Observe(took.Seconds())
	}
}

func (r *Recorder) PollObserved(kind string, status tasks.Status, err error) {
	if err != nil {
		r.pollErrors.WithLabelValues(kind).Inc()
		return
	}
	r.polls.WithLabelValues(kind, string(status)).Inc()
}

func (r *Recorder) ReconcileObserved(region string, action heartbeat.Action, err error) {
	if err != nil {
		r.reconcileError.WithLabelValues(region).Inc()
		return
	}
	// idle ticks are the common case and not worth a series
	if action == heartbeat.ActionNone || action == heartbeat.ActionAbsent {
		return
	}
	r.reconciles.WithLabelValues(region, action.String()).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Serve exposes /metrics on addr until ctx ends. The Go and process
// collectors are added on first use.
func (r *Recorder) Serve(ctx context.Context, addr string, logger *log.Logger) error {
	if err := r.registry.Register(promcollect.NewGoCollector()); err != nil && !isAlreadyRegistered(err) {
		return fmt.Errorf("register go collector: %w", err)
	}
	if err := r.registry.Register(promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{})); err != nil && !isAlreadyRegistered(err) {
		return fmt.Errorf("register process collector: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if logger != nil {
		logger.Printf("metrics: listening on %s", addr)
	}
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics listener: %w", err)
	}
	return nil
}

func isAlreadyRegistered(err error) bool {
	var are prom.AlreadyRegisteredError
	return errors.As(err, &are)
}
