//go:generate swag init -g main.go -o docs

package main

import (
	"log"

	"lms/backend/ai"
	"lms/backend/cache"
	"lms/backend/certificates"
	"lms/backend/config"
	"lms/backend/middleware"
	"lms/backend/routes"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// @title Learning Platform API
// @version 1.0
// @description Courses, lessons, quizzes, progress tracking and certificates.
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}

	var practiceCache services.PracticeCache
	rdb, err := utils.InitRedis(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, practice cache disabled", "error", err)
	} else if rdb != nil {
		defer rdb.Close()
		practiceCache = cache.NewRedisPracticeCache(rdb, cfg.PracticeCacheTTL)
	}

	renderer, err := certificates.NewRenderer()
	if err != nil {
		logger.Fatal("Error loading certificate fonts", "error", err)
	}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, practice generation will fail")
	}

	app := fiber.New(fiber.Config{AppName: "learning-platform"})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	routes.SetupRoutes(app, routes.Deps{
		DB:        db,
		Cfg:       cfg,
		Log:       logger,
		Generator: ai.NewGeminiClient(cfg),
		Cache:     practiceCache,
		Renderer:  renderer,
	})

	logger.Info("Server starting", "port", cfg.ServerPort, "db_driver", cfg.DBDriver)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("Server stopped", "error", err)
	}
}
