package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	LocationChecksTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crimewatch_location_checks_total",
		Help: "Total recorded location pings",
	})
	LocationCheckDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "crimewatch_location_check_duration_ms",
		Help:    "Location check duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	})
	ZoneMatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_zone_matches_total",
		Help: "Location pings attributed to a zone, by zone risk level",
	}, []string{"risk_level"})
	AlertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_geofence_alerts_total",
		Help: "Geofence alert decisions by result (sent, suppressed, failed)",
	}, []string{"result"})
	PushDeliveriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_push_deliveries_total",
		Help: "Push side-channel deliveries by channel and status",
	}, []string{"channel", "status"})
	PushQueueDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "crimewatch_push_queue_dropped_total",
		Help: "Push jobs dropped because the dispatch queue was full",
	})
	ZoneCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_zone_cache_total",
		Help: "Active zone cache lookups by result (hit, miss, error)",
	}, []string{"result"})
	ZonesGeneratedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_zones_autogen_total",
		Help: "Auto-generated hotspot clusters by outcome (created, skipped, failed)",
	}, []string{"outcome"})
	ZoneStatsRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "crimewatch_zone_stats_refresh_total",
		Help: "Zone stats refreshes by status",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(LocationChecksTotal)
	prometheus.MustRegister(LocationCheckDurationMs)
	prometheus.MustRegister(ZoneMatchesTotal)
	prometheus.MustRegister(AlertsTotal)
	prometheus.MustRegister(PushDeliveriesTotal)
	prometheus.MustRegister(PushQueueDroppedTotal)
	prometheus.MustRegister(ZoneCacheTotal)
	prometheus.MustRegister(ZonesGeneratedTotal)
	prometheus.MustRegister(ZoneStatsRefreshTotal)
}

// Handler exposes the registered collectors for Prometheus scraping.
func Handler() http.Handler { return promhttp.Handler() }
