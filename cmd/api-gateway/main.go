package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/hrm-go/roster-api/api/swagger"
	"github.com/hrm-go/roster-api/internal/handler"
	internalmiddleware "github.com/hrm-go/roster-api/internal/middleware"
	"github.com/hrm-go/roster-api/internal/models"
	"github.com/hrm-go/roster-api/internal/repository"
	"github.com/hrm-go/roster-api/internal/roster"
	"github.com/hrm-go/roster-api/internal/service"
	"github.com/hrm-go/roster-api/pkg/cache"
	"github.com/hrm-go/roster-api/pkg/config"
	"github.com/hrm-go/roster-api/pkg/database"
	"github.com/hrm-go/roster-api/pkg/export"
	"github.com/hrm-go/roster-api/pkg/logger"
	corsmiddleware "github.com/hrm-go/roster-api/pkg/middleware/cors"
	reqidmiddleware "github.com/hrm-go/roster-api/pkg/middleware/requestid"
)

// @title HRM Roster API
// @version 1.0.0
// @description Staff rostering and labor-rule compliance service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, metrics caching disabled", "error", err)
		redisClient = nil
	}

	policy := rosterPolicy(cfg.Roster)
	validate := validator.New()

	staffRepo := repository.NewStaffRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()
	staffSvc := service.NewStaffService(staffRepo, validate, logr)
	shiftSvc := service.NewShiftService(shiftRepo, staffRepo, policy, validate, logr)
	rosterSvc := service.NewRosterService(shiftRepo, staffRepo, cacheRepo, db, metricsSvc, policy, validate, logr, service.RosterServiceConfig{
		ProposalTTL:     cfg.Roster.ProposalTTL,
		MetricsCacheTTL: cfg.Metrics.CacheTTL,
	})
	reportSvc := service.NewReportService(rosterSvc, staffRepo, validate, logr, export.NewCSVExporter(), export.NewPDFExporter())

	handlers := handler.Handlers{
		Staff:   handler.NewStaffHandler(staffSvc),
		Shifts:  handler.NewShiftHandler(shiftSvc),
		Roster:  handler.NewRosterHandler(rosterSvc, metricsSvc),
		Reports: handler.NewReportHandler(reportSvc),
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	handler.RegisterRoutes(api, handlers, handler.RouteOptions{
		JWTSecret:      cfg.JWT.Secret,
		ExportsEnabled: cfg.Exports.Enabled,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// rosterPolicy maps the environment-driven roster configuration onto the
// engine's policy type.
func rosterPolicy(cfg config.RosterConfig) roster.Policy {
	policy := roster.DefaultPolicy()

	if cfg.MaxHoursPerWeek > 0 {
		policy.MaxHoursPerWeek = cfg.MaxHoursPerWeek
	}
	if cfg.MaxShiftsPerWeek > 0 {
		policy.MaxShiftsPerWeek = cfg.MaxShiftsPerWeek
	}
	if cfg.MaxConsecutiveDays > 0 {
		policy.MaxConsecutiveDays = cfg.MaxConsecutiveDays
	}
	if cfg.MinRestHours > 0 {
		policy.MinRestHours = cfg.MinRestHours
	}
	if len(cfg.Departments) > 0 {
		policy.Departments = cfg.Departments
	}

	windows := map[models.ShiftType]config.ShiftWindowConfig{
		models.ShiftMorning:   cfg.MorningWindow,
		models.ShiftAfternoon: cfg.AfternoonWindow,
		models.ShiftNight:     cfg.NightWindow,
		models.ShiftEmergency: cfg.EmergencyWindow,
	}
	for shiftType, w := range windows {
		if w.Start == "" || w.End == "" || w.Hours <= 0 {
			continue
		}
		policy.Windows[shiftType] = roster.Window{Start: w.Start, End: w.End, Hours: w.Hours}
	}

	return policy
}
