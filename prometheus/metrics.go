package prometheus

import (
	"strconv"
	"time"

	"dealhub/pkg/config"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Tenant metrics
	TenantResolutionCounter *prometheus.CounterVec
	TenantOperationCounter  *prometheus.CounterVec

	// Short-link metrics
	ShortLinkCreatedCounter   prometheus.Counter
	ShortLinkClickCounter     prometheus.Counter
	ShortLinkNotFoundCounter  prometheus.Counter
	ShortCodeCollisionCounter prometheus.Counter

	// Voting metrics
	VoteCounter        *prometheus.CounterVec
	InvalidVoteCounter prometheus.Counter

	// Points metrics
	PointsAwardedCounter      *prometheus.CounterVec
	PointsDeductedCounter     prometheus.Counter
	InsufficientPointsCounter prometheus.Counter

	// Engagement metrics
	EngagementCounter *prometheus.CounterVec

	// Database operation metrics
	DBOperationHistogram *prometheus.HistogramVec

	// Request metrics
	RequestDurationHistogram *prometheus.HistogramVec
	APIRequestCounter        *prometheus.CounterVec
	APIErrorCounter          *prometheus.CounterVec

	// Namespace prefix for metrics
	namespace string
)

// InitMetrics initializes all Prometheus metrics
func InitMetrics(cfg *config.Config) {
	namespace = cfg.Metrics.Prefix

	TenantResolutionCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_resolution_total",
			Help:      "Total number of tenant resolutions by outcome",
		},
		[]string{"outcome"},
	)

	TenantOperationCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tenant_operations_total",
			Help:      "Total number of tenant admin operations",
		},
		[]string{"operation"},
	)

	ShortLinkCreatedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shortlink_created_total",
		Help:      "Total number of short links created",
	})

	ShortLinkClickCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shortlink_clicks_total",
		Help:      "Total number of short link clicks resolved",
	})

	ShortLinkNotFoundCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shortlink_not_found_total",
		Help:      "Total number of unknown short codes resolved to the fallback",
	})

	ShortCodeCollisionCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "shortcode_collisions_total",
		Help:      "Total number of short code collisions that triggered a redraw",
	})

	VoteCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Total number of vote operations by outcome",
		},
		[]string{"outcome"},
	)

	InvalidVoteCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "invalid_votes_total",
		Help:      "Total number of rejected vote values",
	})

	PointsAwardedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Total points awarded by reason",
		},
		[]string{"reason"},
	)

	PointsDeductedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "points_deducted_total",
		Help:      "Total points deducted",
	})

	InsufficientPointsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "insufficient_points_total",
		Help:      "Total number of deductions rejected for insufficient balance",
	})

	EngagementCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engagement_events_total",
			Help:      "Total number of engagement events recorded",
		},
		[]string{"kind"},
	)

	DBOperationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_operation_duration_seconds",
			Help:      "Duration of database operations in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	RequestDurationHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIRequestCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of API requests",
		},
		[]string{"method", "path"},
	)

	APIErrorCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_errors_total",
			Help:      "Total number of API errors",
		},
		[]string{"method", "path", "status"},
	)
}

// MetricsMiddleware tracks request metrics
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			// Track API request count
			APIRequestCounter.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
			}).Inc()

			// Process the request
			err := next(c)

			// Track request duration
			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDurationHistogram.With(prometheus.Labels{
				"method": c.Request().Method,
				"path":   c.Path(),
				"status": status,
			}).Observe(duration)

			// Track errors
			if c.Response().Status >= 400 {
				APIErrorCounter.With(prometheus.Labels{
					"method": c.Request().Method,
					"path":   c.Path(),
					"status": status,
				}).Inc()
			}

			return err
		}
	}
}

// HandlerFunc returns a HTTP handler for metrics endpoint
func HandlerFunc() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}

// TrackDBOperation returns a function that tracks database operation duration
func TrackDBOperation(operation string) func(time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationHistogram.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordTenantResolution increments the tenant resolution counter
func RecordTenantResolution(outcome string) {
	if TenantResolutionCounter != nil {
		TenantResolutionCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
	}
}

// RecordTenantOperation increments the tenant operation counter
func RecordTenantOperation(operation string) {
	if TenantOperationCounter != nil {
		TenantOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
	}
}

// RecordVote increments the vote counter for an outcome
func RecordVote(outcome string) {
	if VoteCounter != nil {
		VoteCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
	}
}

// RecordPointsAwarded adds awarded points under a reason
func RecordPointsAwarded(reason string, amount int) {
	if PointsAwardedCounter != nil {
		PointsAwardedCounter.With(prometheus.Labels{"reason": reason}).Add(float64(amount))
	}
}

// RecordShortCodeCollision counts a short code redraw
func RecordShortCodeCollision() {
	if ShortCodeCollisionCounter != nil {
		ShortCodeCollisionCounter.Inc()
	}
}

// RecordEngagement increments the engagement counter for a kind
func RecordEngagement(kind string) {
	if EngagementCounter != nil {
		EngagementCounter.With(prometheus.Labels{"kind": kind}).Inc()
	}
}
