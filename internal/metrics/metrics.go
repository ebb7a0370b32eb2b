package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Degradation reasons reported by the catalog pipeline.
const (
	ReasonStoreMissing = "store_missing"
	ReasonStoreError   = "store_error"
	ReasonMalformedRow = "malformed_row"
	ReasonDirMissing   = "dir_missing"
	ReasonDirError     = "dir_error"
)

// Thumbnail request outcomes.
const (
	ThumbHit      = "hit"
	ThumbRendered = "rendered"
	ThumbFallback = "fallback"
)

var (
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artshop",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "artshop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "route"},
	)

	catalogLoads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "artshop",
			Subsystem: "catalog",
			Name:      "loads_total",
			Help:      "Total number of gallery collection loads.",
		},
	)

	catalogDegraded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artshop",
			Subsystem: "catalog",
			Name:      "degraded_total",
			Help:      "Times the catalog fell back to empty or default values.",
		},
		[]string{"reason"},
	)

	galleryItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "artshop",
			Subsystem: "catalog",
			Name:      "gallery_items",
			Help:      "Items in the most recently built list of each gallery.",
		},
		[]string{"gallery"},
	)

	liveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "artshop",
			Subsystem: "session",
			Name:      "live",
			Help:      "Sessions currently held in memory.",
		},
	)

	checkouts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "artshop",
			Subsystem: "cart",
			Name:      "checkouts_total",
			Help:      "Total number of checkouts.",
		},
	)

	checkoutItems = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "artshop",
			Subsystem: "cart",
			Name:      "checkout_items_total",
			Help:      "Total number of items across all checkouts.",
		},
	)

	thumbnails = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "artshop",
			Subsystem: "thumbs",
			Name:      "requests_total",
			Help:      "Thumbnail requests by outcome.",
		},
		[]string{"size", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		catalogLoads,
		catalogDegraded,
		galleryItems,
		liveSessions,
		checkouts,
		checkoutItems,
		thumbnails,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		httpRequests.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func CatalogLoaded() { catalogLoads.Inc() }

func CatalogDegraded(reason string) { catalogDegraded.WithLabelValues(reason).Inc() }

func CatalogDegradedBy(reason string, n int) { catalogDegraded.WithLabelValues(reason).Add(float64(n)) }

func GalleryItems(gallery string, n int) { galleryItems.WithLabelValues(gallery).Set(float64(n)) }

func SessionsLive(n int) { liveSessions.Set(float64(n)) }

func Checkout(items int) {
	checkouts.Inc()
	checkoutItems.Add(float64(items))
}

func Thumbnail(size, outcome string) { thumbnails.WithLabelValues(size, outcome).Inc() }
