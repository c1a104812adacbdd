package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/config"
	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	mintdomain "github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
	"github.com/zedanazad43/stampcoin-platform/internal/observability"
	obsmiddleware "github.com/zedanazad43/stampcoin-platform/internal/observability/logger"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, registry *prometheus.Registry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

func registerGin(obsCfg observability.Config, registry *prometheus.Registry) *gin.Engine {
	return NewEngine(obsCfg, registry)
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

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	catalogSvc catalogdomain.Service
	mintSvc    mintdomain.Service
	ledgerSvc  ledgerdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	CatalogSvc catalogdomain.Service
	MintSvc    mintdomain.Service
	LedgerSvc  ledgerdomain.Service
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		catalogSvc: p.CatalogSvc,
		mintSvc:    p.MintSvc,
		ledgerSvc:  p.LedgerSvc,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api/v1")

	api.POST("/catalog/items", s.importCatalogItem)
	api.GET("/catalog/items", s.listCatalogItems)
	api.GET("/catalog/items/:id", s.getCatalogItem)

	api.POST("/mints", s.createMint)
	api.GET("/mints/:id", s.getMint)
	api.POST("/mints/:id/token", s.reconcileMintToken)
	api.GET("/owners/:owner_id/mints", s.listOwnerMints)

	api.GET("/ledger/supply", s.getSupply)
	api.POST("/ledger/burns", s.burnCurrency)
	api.GET("/owners/:owner_id/distributions", s.listOwnerDistributions)
}
