package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DashboardMetrics records cache behaviour, snapshot builds, alert rule
// outcomes and degraded store reads.
type DashboardMetrics struct {
	cacheLookups   *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	snapshotBuild  *prometheus.HistogramVec
	ruleOutcomes   *prometheus.CounterVec
	degradedReads  *prometheus.CounterVec
}

// NewDashboardMetrics registers the dashboard metrics on the provided registerer.
func NewDashboardMetrics(reg prometheus.Registerer) *DashboardMetrics {
	if reg == nil {
		return &DashboardMetrics{}
	}
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_lookups_total",
		Help: "Snapshot cache lookups by cache and result.",
	}, []string{"cache", "result"})
	cacheEvictions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_evictions_total",
		Help: "Entries evicted from snapshot caches once the cap is exceeded.",
	}, []string{"cache"})
	snapshotBuild := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_snapshot_build_seconds",
		Help:    "Duration of per-event snapshot builds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	ruleOutcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_alert_rule_outcomes_total",
		Help: "Alert rule evaluations by rule and outcome.",
	}, []string{"rule", "outcome"})
	degradedReads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_degraded_reads_total",
		Help: "Store reads that returned unavailable or unsupported.",
	}, []string{"source", "reason"})
	reg.MustRegister(cacheLookups, cacheEvictions, snapshotBuild, ruleOutcomes, degradedReads)
	return &DashboardMetrics{
		cacheLookups:   cacheLookups,
		cacheEvictions: cacheEvictions,
		snapshotBuild:  snapshotBuild,
		ruleOutcomes:   ruleOutcomes,
		degradedReads:  degradedReads,
	}
}

func (d *DashboardMetrics) CacheHit(cache string) {
	d.cacheLookup(cache, "hit")
}

func (d *DashboardMetrics) CacheMiss(cache string) {
	d.cacheLookup(cache, "miss")
}

// CacheStale counts hits whose dynamic fields had to be revalidated.
func (d *DashboardMetrics) CacheStale(cache string) {
	d.cacheLookup(cache, "stale")
}

func (d *DashboardMetrics) CacheEvict(cache string) {
	if d == nil || d.cacheEvictions == nil {
		return
	}
	d.cacheEvictions.WithLabelValues(normalizeLabel(cache)).Inc()
}

func (d *DashboardMetrics) ObserveSnapshotBuild(outcome string, duration time.Duration) {
	if d == nil || d.snapshotBuild == nil {
		return
	}
	d.snapshotBuild.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func (d *DashboardMetrics) RuleOutcome(rule, outcome string) {
	if d == nil || d.ruleOutcomes == nil {
		return
	}
	d.ruleOutcomes.WithLabelValues(normalizeLabel(rule), normalizeLabel(outcome)).Inc()
}

func (d *DashboardMetrics) DegradedRead(source, reason string) {
	if d == nil || d.degradedReads == nil {
		return
	}
	d.degradedReads.WithLabelValues(normalizeLabel(source), normalizeLabel(reason)).Inc()
}

func (d *DashboardMetrics) cacheLookup(cache, result string) {
	if d == nil || d.cacheLookups == nil {
		return
	}
	d.cacheLookups.WithLabelValues(normalizeLabel(cache), result).Inc()
}
