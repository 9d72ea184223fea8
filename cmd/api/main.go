// @title Lesson Byte API
// @version 1.0
// @description Turns an uploaded textbook chapter into explanations, practice scenarios, quizzes, simulations and narrated media.
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "lesson-byte/cmd/api/docs"
	"lesson-byte/internal/adapter"
	"lesson-byte/internal/adapter/did"
	"lesson-byte/internal/adapter/llm"
	"lesson-byte/internal/adapter/shotstack"
	"lesson-byte/internal/cache"
	"lesson-byte/internal/config"
	"lesson-byte/internal/database"
	"lesson-byte/internal/domain"
	"lesson-byte/internal/dto"
	"lesson-byte/internal/extractor"
	"lesson-byte/internal/handler"
	"lesson-byte/internal/logger"
	"lesson-byte/internal/middleware"
	"lesson-byte/internal/prompt"
	"lesson-byte/internal/render"
	"lesson-byte/internal/repository"
	"lesson-byte/internal/service"
	"lesson-byte/internal/session"
	"lesson-byte/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// newTextGenerator returns the configured model, or a stand-in that fails
// every call when the model cannot be built.
func newTextGenerator(cfg *config.Config) (domain.TextGenerator, bool) {
	model, err := llm.NewModel(cfg.LLM)
	if err != nil {
		logger.Get().Warn("Text features disabled", zap.Error(err))
		if !domain.IsCode(err, domain.CodeConfiguration) {
			err = domain.NewError(domain.CodeConfiguration, "text generation is unavailable", err)
		}
		return llm.Unavailable{Err: err}, false
	}
	logger.Get().Info("LLM initialized",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", cfg.LLM.Model))
	return llm.NewGenerator(model, cfg.LLM.Temperature, cfg.LLM.Timeout), true
}

// newMediaBackends enables each render integration whose API key is set.
func newMediaBackends(cfg *config.Config) service.MediaBackends {
	appLogger := logger.Get()
	backends := service.MediaBackends{
		AnimationPolicy: render.PolicyFromConfig(cfg.DID.Poll),
		VideoPolicy:     render.PolicyFromConfig(cfg.Shotstack.Poll),
		Timeline: shotstack.TimelineOptions{
			MinSceneSeconds: cfg.Shotstack.MinSceneSeconds,
			WordsPerSecond:  cfg.Shotstack.WordsPerSecond,
			Voice:           cfg.Shotstack.Voice,
			Resolution:      cfg.Shotstack.OutputResolution,
		},
	}
	if cfg.DID.APIKey != "" {
		backends.Animation = did.NewBackend(cfg.DID, nil)
		appLogger.Info("Animation enabled", zap.String("base_url", cfg.DID.BaseURL))
	} else {
		appLogger.Warn("Animation disabled: D_ID_API_KEY is not set")
	}
	if cfg.Shotstack.APIKey != "" {
		backends.Video = shotstack.NewBackend(cfg.Shotstack, nil)
		appLogger.Info("Video enabled", zap.String("stage", cfg.Shotstack.Stage))
	} else {
		appLogger.Warn("Video disabled: SHOTSTACK_API_KEY is not set")
	}
	return backends
}

// openDatabase connects and migrates when a database is configured. A nil
// result means documents and artifacts are not recorded.
func openDatabase(ctx context.Context, cfg *config.Config) *sqlx.DB {
	appLogger := logger.Get()
	if !cfg.DatabaseEnabled() {
		appLogger.Info("Database not configured; documents and media artifacts will not be recorded")
		return nil
	}
	db, err := database.NewSQLXOracleDB(ctx, cfg.GetDSN())
	if err != nil {
		appLogger.Error("Failed to connect to database; continuing without it", zap.Error(err))
		return nil
	}
	if err := database.RunMigrations(ctx, db.DB); err != nil {
		appLogger.Error("Failed to run migrations; continuing without database", zap.Error(err))
		_ = db.Close()
		return nil
	}
	appLogger.Info("Database ready")
	return db
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()
	if cfg.ConfigFile != "" {
		appLogger.Info("Using config file", zap.String("path", cfg.ConfigFile))
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	redisClient, err := cache.NewRedisClient(startupCtx, cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)
	appLogger.Info("Successfully connected to Redis")

	var (
		documentRepository domain.DocumentRepository
		artifactRepository domain.ArtifactRepository
	)
	db := openDatabase(startupCtx, cfg)
	if db != nil {
		defer db.Close()
		documentRepository = repository.NewDocumentDatabaseAdapter(db)
		artifactRepository = repository.NewArtifactDatabaseAdapter(db)
	}

	budgets := make(prompt.Budgets, len(config.DefaultContextBudgets))
	for site := range config.DefaultContextBudgets {
		budgets[site] = cfg.ContextBudget(site)
	}
	prompts, err := prompt.NewRegistry(budgets)
	if err != nil {
		appLogger.Fatal("Failed to parse prompt templates", zap.Error(err))
	}

	generator, textEnabled := newTextGenerator(cfg)
	lessonService := service.NewLessonService(
		generator,
		prompts,
		cacheAdapter,
		cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Explanation, 6*time.Hour),
		domain.QuizShape{QuestionCount: cfg.Lesson.QuizQuestionCount, OptionCount: cfg.Lesson.QuizOptionCount},
	)
	mediaService := service.NewMediaService(newMediaBackends(cfg), artifactRepository)
	documentService := service.NewDocumentService(cfg.Storage.OutputDir, extractor.NewPDFExtractor(), documentRepository)
	sessionService := service.NewSessionService(
		session.NewStore(cacheAdapter, cfg.Session.TTL),
		lessonService,
		mediaService,
		documentService,
		cfg.ContextBudget("narration"),
	)

	bodyLimit := cfg.Server.BodyLimitMB * 1024 * 1024
	validator := validation.NewValidator(int64(bodyLimit))
	lessonHandler := handler.NewLessonHandler(sessionService, validator, dto.FeaturesResponse{
		Text:      textEnabled,
		Animation: mediaService.Enabled(domain.MediaAnimation),
		Video:     mediaService.Enabled(domain.MediaVideo),
		Database:  db != nil,
	})

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    bodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	lessonHandler.Register(app.Group("/api"), middleware.NewValidationMiddleware(validator))

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
