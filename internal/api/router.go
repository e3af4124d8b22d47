package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/timeclerk/timesheet-engine/internal/api/handler"
	"github.com/timeclerk/timesheet-engine/internal/api/middleware"
	"github.com/timeclerk/timesheet-engine/internal/core/domain"
	"github.com/timeclerk/timesheet-engine/internal/core/ports"
	"github.com/timeclerk/timesheet-engine/internal/core/service"
	mongodb "github.com/timeclerk/timesheet-engine/internal/infrastructure/db/mongo"
	"github.com/timeclerk/timesheet-engine/internal/infrastructure/http/handlers"
)

// NewRouter builds and returns the Echo instance with all routes registered.
// The timesheet service and recalculation dispatcher are constructed by the
// caller; auth and health wiring happens here.
func NewRouter(
	db *mongo.Database,
	rdb *redis.Client,
	jwtSecret string,
	timesheets ports.TimesheetService,
	dispatcher handler.RecalcDispatcher,
	log zerolog.Logger,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("timesheet"))

	// --- Dependencies ---
	userRepo := mongodb.NewUserRepository(db)
	authService := service.NewAuthService(userRepo, jwtSecret, 24*time.Hour)
	authHandler := handler.NewAuthHandler(authService)
	authMiddleware := middleware.Auth(jwtSecret)

	timesheetHandler := handler.NewTimesheetHandler(timesheets)
	recalcHandler := handler.NewRecalcHandler(dispatcher)

	// --- Auth routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	// --- Timesheet routes ---
	entries := e.Group("/v1/timesheets", authMiddleware, middleware.RBAC(domain.RoleAdmin, domain.RoleUser))
	entries.POST("", timesheetHandler.Start)
	entries.GET("", timesheetHandler.List)
	entries.GET("/:id", timesheetHandler.Get)
	entries.PATCH("/:id/stop", timesheetHandler.Stop)
	entries.GET("/:id/lockdown", timesheetHandler.Lockdown)
	entries.PUT("/:id", timesheetHandler.Update)
	entries.DELETE("/:id", timesheetHandler.Delete)

	// --- Rate recalculation (admin only) ---
	rates := e.Group("/v1/rates", authMiddleware, middleware.RBAC(domain.RoleAdmin))
	rates.POST("/recalculate", recalcHandler.Recalculate)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handlers.NewHealthHandler()
	healthDepsHandler := handlers.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
