package gateway

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonasLeetTheWay/eventbook/internal/auth"
	"github.com/JonasLeetTheWay/eventbook/internal/httpx"

	"github.com/gin-gonic/gin"
)

// Routes is implemented by every service that mounts HTTP handlers.
type Routes interface {
	SetupRoutes(r gin.IRouter)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type Options struct {
	AllowOrigin string
	Tokens      *auth.TokenIssuer
	Checks      map[string]Pinger // name -> dependency probed by /health
}

// NewRouter builds the single HTTP entrypoint: recovery, request logging,
// CORS and optional bearer-token validation in front of every service.
func NewRouter(log *slog.Logger, opts Options, services ...Routes) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.CORS(opts.AllowOrigin))
	if opts.Tokens != nil {
		r.Use(opts.Tokens.Middleware())
	}

	h := &health{checks: opts.Checks, log: log.With("component", "gateway")}
	r.GET("/health", h.handle)

	for _, s := range services {
		s.SetupRoutes(r)
	}
	return r
}

type health struct {
	checks map[string]Pinger
	log    *slog.Logger
}

func (h *health) handle(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	deps := make(gin.H, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			h.log.Warn("health check failed", "dependency", name, "error", err)
			deps[name] = "unavailable"
			status = http.StatusServiceUnavailable
			continue
		}
		deps[name] = "ok"
	}

	label := "healthy"
	if status != http.StatusOK {
		label = "degraded"
	}
	c.JSON(status, gin.H{
		"status":       label,
		"service":      "eventbook",
		"dependencies": deps,
		"timestamp":    time.Now(),
	})
}
