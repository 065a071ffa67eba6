package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mediiq/mediiq-api/internal/handler"
	"github.com/mediiq/mediiq-api/internal/middleware"
	"github.com/mediiq/mediiq-api/pkg/security"
)

// Handler is anything that mounts its routes on an API group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// AdminHandler additionally mounts operator-only routes.
type AdminHandler interface {
	Handler
	RegisterAdminRoutes(*gin.RouterGroup)
}

type Router struct {
	engine    *gin.Engine
	auth      *middleware.AuthMiddleware
	authH     Handler
	reminderH Handler
	alarmH    Handler
	scanH     Handler
	familyH   Handler
	chatH     Handler
	profileH  AdminHandler
	h         *handler.Handler
	hasher    security.KeyHasher
	config    Config
	metrics   *routerMetrics
}

type Config struct {
	RateLimitRPS  float64
	RateBurst     int
	Timeout       time.Duration
	CORSConfig    middleware.CORSConfig
	MetricsPrefix string
	AdminKeyHash  string
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	errorTotal      *prometheus.CounterVec
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	authH Handler,
	reminderH Handler,
	alarmH Handler,
	scanH Handler,
	familyH Handler,
	chatH Handler,
	profileH AdminHandler,
	h *handler.Handler,
	hasher security.KeyHasher,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}

	r := &Router{
		engine:    engine,
		auth:      auth,
		authH:     authH,
		reminderH: reminderH,
		alarmH:    alarmH,
		scanH:     scanH,
		familyH:   familyH,
		chatH:     chatH,
		profileH:  profileH,
		h:         h,
		hasher:    hasher,
		config:    config,
		metrics:   initRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.Timeout(middleware.TimeoutConfig{Duration: config.Timeout}),
	)
	engine.Use(middleware.CORS(config.CORSConfig))

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RPS:   config.RateLimitRPS,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return r
}

func (r *Router) Setup() {
	middleware.RegisterValidators()

	api := r.engine.Group("/api/v1")

	r.setupHealthCheck(api)

	// Sign-in and sign-out stand outside scope resolution.
	r.authH.RegisterRoutes(api)

	// Everything else runs scoped: a session token maps to the account
	// namespace, everything else to guest.
	scoped := api.Group("")
	scoped.Use(r.auth.ResolveScope())
	r.reminderH.RegisterRoutes(scoped)
	r.alarmH.RegisterRoutes(scoped)
	r.scanH.RegisterRoutes(scoped)
	r.familyH.RegisterRoutes(scoped)
	r.chatH.RegisterRoutes(scoped)

	// The profile surface needs an account.
	account := scoped.Group("")
	account.Use(r.auth.RequireAccount())
	r.profileH.RegisterRoutes(account)

	// Operator surface.
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdminKey(r.hasher, r.config.AdminKeyHash))
	r.profileH.RegisterAdminRoutes(admin)
}

func (r *Router) setupHealthCheck(rg *gin.RouterGroup) {
	health := rg.Group("/health")
	{
		health.GET("/live", r.h.LivenessCheck)
		health.GET("/ready", r.h.ReadinessCheck)
		health.GET("/metrics", r.h.MetricsHandler)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func initRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		errorTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_errors_total",
				Help: "Total number of HTTP errors",
			},
			[]string{"method", "path", "type"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()

		if c.Writer.Status() >= 400 {
			r.metrics.errorTotal.WithLabelValues(c.Request.Method, path, "http").Inc()
		}
	}
}
