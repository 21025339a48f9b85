// Package httpapi is the HTTP transport adapter: the one concrete
// façade spec.md §1/§6 treats as opaque. It never holds matching logic —
// every handler is a thin translation between the wire contract and
// internal/engine.Engine's API.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	ginprom "github.com/zsais/go-gin-prometheus"

	"matchengine/internal/engine"
	"matchengine/pkg/metrics"
	"matchengine/pkg/middleware"
	"matchengine/pkg/ratelimit"
)

// Server wires an *engine.Engine into a *http.Server, grounded on the
// teacher's internal/api-geteway/http/http.go NewRouter.
type Server struct {
	eng      *engine.Engine
	breakers *breakers
}

// NewRouter builds the HTTP server listening on addr. defaultDepth is the
// default book-query depth when the caller omits ?depth=.
func NewRouter(addr string, eng *engine.Engine, defaultDepth int) *http.Server {
	s := &Server{eng: eng, breakers: newBreakers()}
	metrics.MustRegister()

	store := ratelimit.NewStore(50, 100, 10*time.Minute)
	store.StartJanitor(context.Background(), time.Minute)

	r := gin.New()
	p := ginprom.NewPrometheus("matchengine")
	p.Use(r)
	r.Use(
		middleware.ReqId(),
		cors.Default(),
		middleware.Recover(),
		middleware.RateLimit(store),
	)

	r.POST("/orders", s.submitOrder)
	r.GET("/books/:symbol", s.bookSnapshot(defaultDepth))
	r.GET("/trades/:symbol", s.recentTrades)
	r.GET("/stats", s.stats)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &http.Server{
		Addr:           addr,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}
