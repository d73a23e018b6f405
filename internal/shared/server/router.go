package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"tailored-cv-web/internal/services/health"
	"tailored-cv-web/internal/session"
	"tailored-cv-web/internal/shared/config"
	"tailored-cv-web/internal/shared/metrics"
	"tailored-cv-web/internal/shared/server/middleware"
	"tailored-cv-web/internal/shared/server/respond"
	"tailored-cv-web/internal/web"
	"tailored-cv-web/internal/wizard"
)

// Rate limit groups.
const (
	groupTailor  = "TAILOR"
	groupLogin   = "LOGIN"
	groupDefault = "DEFAULT"
)

// RouterDeps holds handlers and services the router wires together.
type RouterDeps struct {
	Config         config.Config
	Sessions       *session.Service
	SessionHandler *session.Handler
	WizardHandler  *wizard.Handler
	WebHandler     *web.Handler
	Health         *health.Service
	RateLimiter    *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	cfg := deps.Config
	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}
	rules := rateLimitRules(cfg)
	// Login is limited before the gate, by client IP. Tailor is limited after
	// it, by the verified session.
	limit := func(group string) gin.HandlerFunc {
		return middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        onlyGroup(rules, group),
			DefaultGroup: groupDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      limiter,
			OnLimited:    limitedResponder(deps.WebHandler),
		})
	}

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		limit(groupLogin),
	)

	lookup := sessionLookup(deps.Sessions)

	r.GET("/metrics", metrics.Handler())

	deps.WebHandler.RegisterPublicRoutes(&r.RouterGroup)
	dashboard := r.Group("/dashboard", middleware.RequireSession(lookup, middleware.GateRedirect), limit(groupTailor))
	deps.WebHandler.RegisterDashboardRoutes(dashboard)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		status, ok := deps.Health.Status(c.Request.Context())
		if !ok {
			respond.JSON(c, http.StatusServiceUnavailable, status)
			return
		}
		respond.OK(c, status)
	})
	deps.SessionHandler.RegisterRoutes(api)

	protected := api.Group("", middleware.RequireSession(lookup, middleware.GateUnauthorized), limit(groupTailor))
	deps.WizardHandler.RegisterRoutes(protected)

	return r
}

func sessionLookup(svc *session.Service) middleware.SessionLookup {
	return func(ctx context.Context, id string) (string, bool, error) {
		marker, ok, err := svc.Check(ctx, id)
		return marker.Email, ok, err
	}
}

// rateLimitRules only limits the calls that reach the backend or block on the
// login delay; page loads are left alone.
func rateLimitRules(cfg config.Config) map[string]middleware.RateLimitRule {
	rules := map[string]middleware.RateLimitRule{
		groupLogin: middleware.PerMinute(20, 5),
	}
	if cfg.TailorRatePerMin > 0 {
		burst := cfg.TailorBurst
		if burst <= 0 {
			burst = 1
		}
		rules[groupTailor] = middleware.PerMinute(cfg.TailorRatePerMin, burst)
	}
	return rules
}

func onlyGroup(rules map[string]middleware.RateLimitRule, group string) map[string]middleware.RateLimitRule {
	out := make(map[string]middleware.RateLimitRule, 1)
	if rule, ok := rules[group]; ok {
		out[group] = rule
	}
	return out
}

// limitedResponder keeps the API on the JSON refusal and answers page posts
// with the page and a notice.
func limitedResponder(pages *web.Handler) func(*gin.Context, string, time.Duration) {
	return func(c *gin.Context, group string, retryAfter time.Duration) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			middleware.RateLimitedJSON(c, group, retryAfter)
			return
		}
		pages.RateLimited(c)
	}
}

func rateLimitGroup(c *gin.Context) string {
	path := c.Request.URL.Path
	switch {
	case c.Request.Method == http.MethodPost && (path == "/dashboard/tailor" || path == "/api/v1/wizard/tailor"):
		return groupTailor
	case c.Request.Method == http.MethodPost && (path == "/login" || path == "/api/v1/session"):
		return groupLogin
	default:
		return groupDefault
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":3000"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
