package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every Prometheus collector the backend exports.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  *prometheus.GaugeVec

	UsersRegistered      prometheus.Counter
	LoginsTotal          *prometheus.CounterVec
	PostsCreated         prometheus.Counter
	CommentsCreated      prometheus.Counter
	XPGrantedTotal       *prometheus.CounterVec
	NotificationsCreated *prometheus.CounterVec
	StoriesCleaned       prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics registry, creating it on first use.
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "flixsy_http_requests_total",
				Help: "HTTP requests by method, route and status code",
			}, []string{"method", "route", "status"}),
			HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "flixsy_http_request_duration_seconds",
				Help:    "HTTP request latency",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route", "status"}),
			HTTPActiveRequests: promauto.NewGaugeVec(prometheus.GaugeOpts{
				Name: "flixsy_http_active_requests",
				Help: "In-flight HTTP requests",
			}, []string{"method", "route"}),

			UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
				Name: "flixsy_users_registered_total",
				Help: "Accounts created",
			}),
			LoginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "flixsy_logins_total",
				Help: "Login attempts by outcome",
			}, []string{"outcome"}),
			PostsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "flixsy_posts_created_total",
				Help: "Posts created",
			}),
			CommentsCreated: promauto.NewCounter(prometheus.CounterOpts{
				Name: "flixsy_comments_created_total",
				Help: "Comments created",
			}),
			XPGrantedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "flixsy_xp_granted_total",
				Help: "XP granted by action",
			}, []string{"action"}),
			NotificationsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
				Name: "flixsy_notifications_created_total",
				Help: "Notifications created by type",
			}, []string{"type"}),
			StoriesCleaned: promauto.NewCounter(prometheus.CounterOpts{
				Name: "flixsy_stories_cleaned_total",
				Help: "Expired stories removed by the cleanup worker",
			}),
		}
	})
	return instance
}
