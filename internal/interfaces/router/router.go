package router

import (
	analyticssvc "github.com/Breaking-code-Project-work/Horizon-Analytics/internal/application/analytics"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/application/store"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/config"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/infrastructure/database"
	analyticshandler "github.com/Breaking-code-Project-work/Horizon-Analytics/internal/interfaces/handlers/analytics"
	healthhandler "github.com/Breaking-code-Project-work/Horizon-Analytics/internal/interfaces/handlers/health"
	"github.com/Breaking-code-Project-work/Horizon-Analytics/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp wires the Fiber app: storage, optional Redis cache, middleware
// and the dashboard routes.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	hh := &healthhandler.Handlers{Rdb: rdb}
	if db != nil {
		hh.DB = &gormDBPinger{db: db}
	}
	app.Get("/health/json", hh.JSON)

	ah := &analyticshandler.Handlers{
		Service:    &analyticssvc.Service{DB: db},
		Repository: &store.Repository{DB: db},
		Cache:      &analyticssvc.Cache{Rdb: rdb},
	}
	api := app.Group("/api/v1")
	api.Get("/analytics/overview", ah.Overview)
	api.Get("/analytics/financial-analysis", ah.FinancialAnalysis)
	api.Post("/imports", ah.TriggerImport)
	api.Get("/imports/latest", ah.LatestImport)

	return app, db, rdb, nil
}
