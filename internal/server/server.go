package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	auditdomain "github.com/smallbiznis/courierfare/internal/audit/domain"
	catalogdomain "github.com/smallbiznis/courierfare/internal/catalog/domain"
	"github.com/smallbiznis/courierfare/internal/clock"
	"github.com/smallbiznis/courierfare/internal/config"
	distancedomain "github.com/smallbiznis/courierfare/internal/distance/domain"
	"github.com/smallbiznis/courierfare/internal/observability"
	obslogger "github.com/smallbiznis/courierfare/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/courierfare/internal/observability/metrics"
	obstracing "github.com/smallbiznis/courierfare/internal/observability/tracing"
	ruledomain "github.com/smallbiznis/courierfare/internal/pricingrule/domain"
	quotedomain "github.com/smallbiznis/courierfare/internal/quote/domain"
)

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{Debug: obsCfg.Debug()}))
	r.Use(obstracing.GinMiddleware())
	r.Use(obsmetrics.GinMiddleware(httpMetrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type ServerParams struct {
	fx.In

	Log      *zap.Logger
	Gin      *gin.Engine
	Cfg      config.Config
	Clock    clock.Clock
	RuleSvc  ruledomain.Service
	QuoteSvc quotedomain.Service
	CacheSvc distancedomain.Service
	AuditSvc auditdomain.Service
	Catalog  catalogdomain.Repository
}

type Server struct {
	log      *zap.Logger
	engine   *gin.Engine
	cfg      config.Config
	clock    clock.Clock
	ruleSvc  ruledomain.Service
	quoteSvc quotedomain.Service
	cacheSvc distancedomain.Service
	auditSvc auditdomain.Service
	catalog  catalogdomain.Repository
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		log:      p.Log.Named("server"),
		engine:   p.Gin,
		cfg:      p.Cfg,
		clock:    p.Clock,
		ruleSvc:  p.RuleSvc,
		quoteSvc: p.QuoteSvc,
		cacheSvc: p.CacheSvc,
		auditSvc: p.AuditSvc,
		catalog:  p.Catalog,
	}

	svc.registerAdminRoutes()
	svc.registerAPIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin/delivery-pricing")

	admin.GET("/rules", s.ListPricingRules)
	admin.POST("/rules", s.UpsertPricingRule)
	admin.DELETE("/rules/:id", s.DeletePricingRule)
	admin.GET("/metrics", s.PricingMetrics)
	admin.POST("/cache/purge", s.PurgeDistanceCache)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.POST("/orders/quote", s.QuoteOrder)
	api.POST("/orders/:id/pricing-reference", s.AttachOrderReference)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
