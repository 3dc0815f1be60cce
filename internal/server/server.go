package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/skyfare/internal/config"
	"github.com/smallbiznis/skyfare/internal/farecalc"
	farecalcdomain "github.com/smallbiznis/skyfare/internal/farecalc/domain"
	"github.com/smallbiznis/skyfare/internal/fareclass"
	fareclassdomain "github.com/smallbiznis/skyfare/internal/fareclass/domain"
	"github.com/smallbiznis/skyfare/internal/farerule"
	fareruledomain "github.com/smallbiznis/skyfare/internal/farerule/domain"
	"github.com/smallbiznis/skyfare/internal/flight"
	flightdomain "github.com/smallbiznis/skyfare/internal/flight/domain"
	"github.com/smallbiznis/skyfare/internal/observability"
	obslogger "github.com/smallbiznis/skyfare/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/skyfare/internal/observability/metrics"
	obstracing "github.com/smallbiznis/skyfare/internal/observability/tracing"
	"github.com/smallbiznis/skyfare/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	flight.Module,
	fareclass.Module,
	farerule.Module,
	farecalc.Module,
	ratelimit.Module,
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(CORS(cfg.CORSAllowedOrigins))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, cfg config.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, cfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	flightSvc    flightdomain.Service
	fareClassSvc fareclassdomain.Service
	fareRuleSvc  fareruledomain.Service
	fareCalcSvc  farecalcdomain.Service
	quoteLimiter *ratelimit.QuoteLimiter
	obsMetrics   *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	FlightSvc    flightdomain.Service
	FareClassSvc fareclassdomain.Service
	FareRuleSvc  fareruledomain.Service
	FareCalcSvc  farecalcdomain.Service
	QuoteLimiter *ratelimit.QuoteLimiter `optional:"true"`
	ObsMetrics   *obsmetrics.Metrics     `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		flightSvc:    p.FlightSvc,
		fareClassSvc: p.FareClassSvc,
		fareRuleSvc:  p.FareRuleSvc,
		fareCalcSvc:  p.FareCalcSvc,
		quoteLimiter: p.QuoteLimiter,
		obsMetrics:   p.ObsMetrics,
	}

	svc.registerAPIRoutes()
	svc.registerFallback()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Fare Classes --------
	api.POST("/fare-classes", s.CreateFareClass)
	api.GET("/fare-classes", s.ListFareClasses)
	api.GET("/fare-classes/:id", s.GetFareClassByID)
	api.PATCH("/fare-classes/:id", s.UpdateFareClass)

	// -------- Fare Rules --------
	api.POST("/fare-rules", s.CreateFareRule)
	api.GET("/fare-rules", s.ListFareRules)
	api.GET("/fare-rules/applicable", s.ListApplicableFareRules)
	api.GET("/fare-rules/schemas", s.ListConditionSchemas)
	api.GET("/fare-rules/schemas/:category", s.GetConditionSchema)
	api.GET("/fare-rules/:id", s.GetFareRuleByID)
	api.PATCH("/fare-rules/:id", s.UpdateFareRule)
	api.DELETE("/fare-rules/:id", s.DeleteFareRule)

	// -------- Flights --------
	api.GET("/flights/:id", s.GetFlightByID)
	api.GET("/flights/:id/availability", s.GetFlightAvailability)
	api.GET("/flights/:id/fares", s.QuoteRateLimit(), s.CompareFlightFares)

	// -------- Fares --------
	api.POST("/fares/calculate", s.QuoteRateLimit(), s.CalculateFare)
	api.POST("/fares/validate", s.ValidateBooking)
	api.POST("/fares/change-fee", s.CalculateChangeFee)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}
