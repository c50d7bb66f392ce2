package app

import (
	"errors"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/dshills/splice/internal/engine/resource"
	"github.com/dshills/splice/internal/event"
	"github.com/dshills/splice/internal/media"
)

// Metrics holds the application's Prometheus collectors. They live on a
// private registry so several applications can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	resourceEvents *prometheus.CounterVec
	resources      prometheus.Gauge
	offline        prometheus.Gauge

	projectOps *prometheus.CounterVec

	probes        prometheus.Counter
	probeHits     prometheus.Counter
	probeDuration prometheus.Histogram
	mediaChanges  *prometheus.CounterVec

	scriptRuns  *prometheus.CounterVec
	scriptEdits prometheus.Counter

	loopTasks    *prometheus.CounterVec
	loopDuration prometheus.Histogram

	startTime time.Time
}

// NewMetrics registers every collector on a new registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		resourceEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splice_resource_events_total",
			Help: "Resource manager events by topic.",
		}, []string{"topic"}),
		resources: f.NewGauge(prometheus.GaugeOpts{
			Name: "splice_resources",
			Help: "Registered resources.",
		}),
		offline: f.NewGauge(prometheus.GaugeOpts{
			Name: "splice_resources_offline",
			Help: "Registered resources that are offline.",
		}),
		projectOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splice_project_operations_total",
			Help: "Project lifecycle operations by kind and result.",
		}, []string{"op", "result"}),
		probes: f.NewCounter(prometheus.CounterOpts{
			Name: "splice_media_probes_total",
			Help: "Files probed for presence and content.",
		}),
		probeHits: f.NewCounter(prometheus.CounterOpts{
			Name: "splice_media_probe_cache_hits_total",
			Help: "Probes answered from the fingerprint cache.",
		}),
		probeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splice_media_check_duration_seconds",
			Help:    "Duration of a full resource check.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}),
		mediaChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splice_media_changes_total",
			Help: "Resource state changes found by probing.",
		}, []string{"change"}),
		scriptRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splice_script_runs_total",
			Help: "Script runs by result.",
		}, []string{"result"}),
		scriptEdits: f.NewCounter(prometheus.CounterOpts{
			Name: "splice_script_edits_total",
			Help: "Edits made by successful scripts.",
		}),
		loopTasks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "splice_loop_tasks_total",
			Help: "Tasks run on the project loop by result.",
		}, []string{"result"}),
		loopDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "splice_loop_task_duration_seconds",
			Help:    "Time spent running one loop task.",
			Buckets: prometheus.DefBuckets,
		}),
		startTime: time.Now(),
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Uptime returns the time since NewMetrics.
func (m *Metrics) Uptime() time.Duration { return time.Since(m.startTime) }

// Observe counts resource events published on bus and keeps the resource
// gauges current. It must be called on the goroutine that owns bus.
func (m *Metrics) Observe(bus event.Bus) (event.Subscription, error) {
	return bus.SubscribeFunc(resource.TopicAll, m.handleResourceEvent, event.WithPriority(event.PriorityLow))
}

func (m *Metrics) handleResourceEvent(ev any) {
	if tp, ok := ev.(event.TopicProvider); ok {
		m.resourceEvents.WithLabelValues(string(tp.EventTopic())).Inc()
	}

	switch e := ev.(type) {
	case event.Event[resource.ItemAdded]:
		m.resources.Inc()
		if !e.Payload.Item.IsOnline() {
			m.offline.Inc()
		}
	case event.Event[resource.ItemRemoved]:
		m.resources.Dec()
		if !e.Payload.Item.IsOnline() {
			m.offline.Dec()
		}
	case event.Event[resource.ItemReplaced]:
		if !e.Payload.Old.IsOnline() {
			m.offline.Dec()
		}
		if !e.Payload.New.IsOnline() {
			m.offline.Inc()
		}
	case event.Event[resource.OnlineStateChanged]:
		if e.Payload.Online {
			m.offline.Dec()
		} else {
			m.offline.Inc()
		}
	}
}

// syncResources sets the resource gauges from mgr, or zeroes them when
// mgr is nil. It must run on the goroutine that owns mgr.
func (m *Metrics) syncResources(mgr *resource.Manager) {
	if mgr == nil {
		m.resources.Set(0)
		m.offline.Set(0)
		return
	}
	items := mgr.Items()
	offline := 0
	for _, it := range items {
		if !it.IsOnline() {
			offline++
		}
	}
	m.resources.Set(float64(len(items)))
	m.offline.Set(float64(offline))
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) recordProjectOp(op string, err error) {
	m.projectOps.WithLabelValues(op, resultLabel(err)).Inc()
}

// recordProbes adds the prober's activity since before.
func (m *Metrics) recordProbes(before, after media.Stats) {
	m.probes.Add(float64(after.Probes - before.Probes))
	m.probeHits.Add(float64(after.CacheHits - before.CacheHits))
}

func (m *Metrics) recordChanges(changes []media.Change) {
	for _, c := range changes {
		switch {
		case c.Err != nil:
			m.mediaChanges.WithLabelValues("error").Inc()
		case c.WentOffline:
			m.mediaChanges.WithLabelValues("offline").Inc()
		case c.WentOnline:
			m.mediaChanges.WithLabelValues("online").Inc()
		case c.ContentChanged:
			m.mediaChanges.WithLabelValues("content").Inc()
		}
	}
}

func (m *Metrics) recordScript(edits int, err error) {
	m.scriptRuns.WithLabelValues(resultLabel(err)).Inc()
	if err == nil {
		m.scriptEdits.Add(float64(edits))
	}
}

func (m *Metrics) recordTask(d time.Duration, err error) {
	result := resultLabel(err)
	var rec *RecoveredPanicError
	if errors.As(err, &rec) {
		result = "panic"
	}
	m.loopTasks.WithLabelValues(result).Inc()
	m.loopDuration.Observe(d.Seconds())
}

// Snapshot maps each metric family to its value summed over labels. For
// histograms the value is the sample count.
func (m *Metrics) Snapshot() (map[string]float64, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		var total float64
		for _, metric := range mf.GetMetric() {
			total += metricValue(mf.GetType(), metric)
		}
		out[mf.GetName()] = total
	}
	return out, nil
}

func metricValue(t dto.MetricType, metric *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return metric.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return metric.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(metric.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}

// WriteText writes every metric in the Prometheus text format.
func (m *Metrics) WriteText(w io.Writer) error {
	families, err := m.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
