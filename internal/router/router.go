package router

import (
	"time"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/nathards133/apiless/internal/config"
	"github.com/nathards133/apiless/internal/handler"
	"github.com/nathards133/apiless/internal/infra"
	"github.com/nathards133/apiless/internal/middleware"
	"github.com/nathards133/apiless/internal/repository"
	"github.com/nathards133/apiless/internal/service"
	"github.com/nathards133/apiless/internal/worker"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher, breaker *infra.CircuitBreaker) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	registerRepo := repository.NewRegisterRepository(db)
	alertRepo := repository.NewAlertRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	monitor := service.NewLimitMonitor(alertRepo, dispatcher)
	registerSvc := service.NewRegisterService(registerRepo, monitor)

	// ── Handlers ─────────────────────────────────────────────────────────────
	registerH := handler.NewRegisterHandler(registerSvc)
	alertsH := handler.NewAlertsHandler(alertRepo)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, breaker))

	// Protected routes — owner identity comes from the JWT
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	v1 := r.Group("/v1", jwtMW)
	register := v1.Group("/register")
	{
		register.POST("/open", registerH.Open)
		register.POST("/withdrawal", registerH.Withdraw)
		register.POST("/sale", registerH.RecordSale)
		register.POST("/close", registerH.Close)
		register.GET("/status", registerH.Status)
		register.GET("/daily", registerH.Daily)
	}

	v1.GET("/alerts", alertsH.List)

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
