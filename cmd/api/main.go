package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"quiz-score/internal/adapter"
	"quiz-score/internal/cache"
	"quiz-score/internal/config"
	"quiz-score/internal/database"
	"quiz-score/internal/handler"
	"quiz-score/internal/logger"
	"quiz-score/internal/middleware"
	"quiz-score/internal/repository"
	"quiz-score/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// requestLogger is a middleware that logs HTTP requests
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		path := c.Path()
		method := c.Method()

		err := c.Next()

		duration := time.Since(start)
		status := c.Response().StatusCode()

		logger.Get().Info("HTTP Request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", duration),
			zap.String("ip", c.IP()),
		)

		return err
	}
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	quizRepository := repository.NewSQLXQuizRepository(db)
	questionRepository := repository.NewSQLXQuestionRepository(db)
	assignmentRepository := repository.NewSQLXAssignmentRepository(db)
	performanceRepository := repository.NewSQLXPerformanceRepository(db)
	resultRepository := repository.NewSQLXResultRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize Redis client and cache adapter
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize services
	performanceService := service.NewPerformanceService(
		quizRepository,
		questionRepository,
		assignmentRepository,
		performanceRepository,
		txManager,
		cacheAdapter,
		cfg.Cache.RankingsTTL,
	)
	gradingService := service.NewGradingService(assignmentRepository, questionRepository, performanceService)
	resultService := service.NewResultService(
		quizRepository,
		assignmentRepository,
		performanceRepository,
		resultRepository,
		txManager,
	)

	// Initialize handlers
	gradingHandler := handler.NewGradingHandler(gradingService)
	performanceHandler := handler.NewPerformanceHandler(performanceService, resultService)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestLogger())
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET,POST,PUT,DELETE,OPTIONS", AllowHeaders: "Origin,Content-Type,Accept,Authorization", MaxAge: 300}))
	app.Use(recover.New())

	protected := middleware.Protected(cfg.Auth.JWTSecret)
	facultyOnly := middleware.RequireRole("faculty")

	apiGroup := app.Group("/api")

	// Assignment routes
	assignmentGroup := apiGroup.Group("/assignments", protected)
	assignmentGroup.Post("/:id/submit", gradingHandler.SubmitAnswer)
	assignmentGroup.Post("/:id/grade", facultyOnly, gradingHandler.GradeAssignment)
	assignmentGroup.Post("/:id/score", facultyOnly, gradingHandler.OverrideScore)

	// Quiz routes
	quizGroup := apiGroup.Group("/quizzes", protected)
	quizGroup.Get("/:id/rankings", performanceHandler.GetRankings)
	quizGroup.Get("/:id/performance/me", performanceHandler.GetMyPerformance)
	quizGroup.Post("/:id/total/recompute", facultyOnly, performanceHandler.RecomputeTotal)
	quizGroup.Post("/:id/results", facultyOnly, performanceHandler.GenerateResults)
	quizGroup.Get("/:id/results", performanceHandler.GetResults)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", os.Getenv("ENV")))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
