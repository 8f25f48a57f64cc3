package router

import (
	"net/http"
	"strconv"
	"strings"

	"pingup/backend/internal/api"
	"pingup/backend/internal/ws"
	"pingup/backend/pkg/di"
	"pingup/backend/pkg/errors"
	"pingup/backend/pkg/logger"
	"pingup/backend/pkg/middleware"
	"pingup/backend/shared/observability"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Router is the main router for the application
type Router struct {
	Engine    *gin.Engine
	Container *di.Container
	Logger    *logger.Logger
	Telemetry *observability.Telemetry

	limiters   []*middleware.RateLimiter
	validation gin.HandlerFunc
}

func New(container *di.Container, telemetry *observability.Telemetry) *Router {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(logger.Middleware(container.Logger))
	engine.Use(errors.ErrorHandler())
	engine.Use(errors.RecoveryWithLogger())
	engine.Use(corsMiddleware(cfg.Security.AllowedOrigins))
	engine.Use(bodyLimit(cfg.Security.MaxBodySize))

	r := &Router{
		Engine:    engine,
		Container: container,
		Logger:    container.Logger,
		Telemetry: telemetry,
	}

	global := r.newLimiter(cfg.Security.RateLimit, cfg.Security.RateLimitBurst, middleware.ByClientIP)
	engine.Use(global.Middleware())

	return r
}

func (r *Router) newLimiter(limit float64, burst int, key func(*gin.Context) string) *middleware.RateLimiter {
	opts := middleware.DefaultRateLimiterOptions()
	opts.Limit = rate.Limit(limit)
	opts.Burst = burst
	opts.KeyFunc = key
	rl := middleware.NewRateLimiter(r.Logger, opts)
	r.limiters = append(r.limiters, rl)
	return rl
}

// SetupRoutes registers all application routes. Middleware added to the
// engine afterwards does not apply to them.
func (r *Router) SetupRoutes() {
	c := r.Container
	cfg := c.Config

	r.Engine.GET("/health", gin.WrapF(c.Health.Handler()))
	r.Engine.GET("/metrics", gin.WrapH(r.Telemetry.MetricsHandler()))
	r.Engine.GET("/api/ws", ws.Handler(c.Hub, c.JWTService))

	suggestions := api.NewSuggestionHandler(c.SuggestionService)
	messages := api.NewMessageHandler(c.MessageService)
	users := api.NewUserHandler(c.UserService)

	protected := r.Engine.Group("/api")
	protected.Use(middleware.Authenticate(c.JWTService), middleware.EnsureUser(c.UserService))
	if r.validation != nil {
		protected.Use(r.validation)
	}
	{
		perUser := r.newLimiter(cfg.Security.SuggestionRate, cfg.Security.SuggestionBurst, middleware.ByUser)
		protected.POST("/ai/reply-suggestions", perUser.Middleware(), suggestions.ReplySuggestions)

		protected.POST("/message/send", messages.Send)
		protected.POST("/message/get", messages.Conversation)

		protected.GET("/user/me", users.Me)
	}
}

// Close stops the rate limiter sweepers
func (r *Router) Close() {
	for _, rl := range r.limiters {
		rl.Close()
	}
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = true
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		switch {
		case origin == "":
		case allowAll, set[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", strings.Join([]string{
			"Content-Type", "Authorization", "X-Request-ID", "Upgrade", "Connection",
		}, ", "))
		c.Header("Access-Control-Max-Age", strconv.Itoa(86400))

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func bodyLimit(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
