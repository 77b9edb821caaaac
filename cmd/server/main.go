package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu-game-server/internal/config"
	"edu-game-server/internal/handler"
	"edu-game-server/internal/messaging"
	"edu-game-server/internal/service"
	pkgDatabase "edu-game-server/pkg/database"
	"edu-game-server/pkg/migration"
	"edu-game-server/shared/authutils"
	sharedDatabase "edu-game-server/shared/database"
	"edu-game-server/shared/interfaces"
	sharedLogger "edu-game-server/shared/logger"
	sharedMiddleware "edu-game-server/shared/middleware"
	sharedModels "edu-game-server/shared/models"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск edu-game-server...")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := sharedLogger.New(sharedLogger.Config{
		Level:       cfg.LogLevel,
		Encoding:    cfg.LogEncoding,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	ctx := context.Background()
	db, err := pkgDatabase.New(ctx, pkgDatabase.Config{
		Host:        cfg.DBHost,
		Port:        cfg.DBPort,
		User:        cfg.DBUser,
		Password:    cfg.DBPassword,
		DBName:      cfg.DBName,
		SSLMode:     cfg.DBSSLMode,
		MaxConns:    cfg.DBMaxConns,
		IdleTimeout: cfg.DBIdleTimeout,
	})
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer db.Close()
	logger.Info("Успешное подключение к PostgreSQL")

	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: sharedDatabase.MigrationsPath,
		MigrationsFS:   sharedDatabase.MigrationsFS,
	}, db.Pool)
	var schema migration.State
	if cfg.RunMigrations {
		schema, err = migrator.Up()
		if err != nil {
			logger.Fatal("Не удалось применить миграции", zap.Error(err))
		}
	} else {
		schema, err = migrator.Version()
		if err != nil {
			logger.Fatal("Не удалось прочитать версию схемы", zap.Error(err))
		}
		if schema.Dirty {
			logger.Fatal("Схема БД в состоянии dirty, нужна ручная починка", zap.Uint("version", schema.Version))
		}
	}
	logger.Info("Версия схемы БД", zap.Uint("version", schema.Version), zap.Bool("migrated", cfg.RunMigrations))

	// --- Репозитории ---
	playerRepo := sharedDatabase.NewPgPlayerRepository(db.Pool, logger)
	progressRepo := sharedDatabase.NewPgPlayerProgressRepository(db.Pool, logger)
	questRepo := sharedDatabase.NewPgQuestCompletionRepository(db.Pool, logger)
	pgLeaderboard := sharedDatabase.NewPgLeaderboardRepository(db.Pool, logger)

	// Проекторы и читатели рейтинга: Redis (если настроен) впереди Postgres.
	projectors := []interfaces.ProgressProjector{pgLeaderboard}
	readers := []interfaces.LeaderboardReader{pgLeaderboard}

	if cfg.RedisAddr != "" {
		redisClient, err := connectRedis(ctx, cfg, logger)
		if err != nil {
			logger.Warn("Redis недоступен, рейтинг читается из PostgreSQL", zap.Error(err))
		} else {
			defer redisClient.Close()
			redisLeaderboard := sharedDatabase.NewRedisLeaderboardRepository(redisClient, logger)
			projectors = append(projectors, redisLeaderboard)
			readers = []interfaces.LeaderboardReader{redisLeaderboard, pgLeaderboard}
		}
	}

	var sectionEvents interfaces.SectionEventPublisher
	if cfg.RabbitMQURL != "" {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
		if err != nil {
			logger.Warn("RabbitMQ недоступен, события не публикуются", zap.Error(err))
		} else {
			defer rabbitConn.Close()
			publisher, err := messaging.NewRabbitMQEventPublisher(rabbitConn, logger)
			if err != nil {
				logger.Fatal("Не удалось создать EventPublisher", zap.Error(err))
			}
			projectors = append(projectors, publisher)
			sectionEvents = publisher
		}
	}

	progressService := service.NewProgressService(playerRepo, progressRepo, questRepo, projectors, readers,
		service.ProgressConfig{
			TotalQuests:  cfg.TotalQuests,
			MaxStage:     cfg.MaxStage,
			StoreTimeout: cfg.StoreTimeout,
		}, logger)

	sectionService := service.NewSectionService(service.SectionStores{
		Guard:       sharedDatabase.NewPgSchemaGuard(db.Pool, logger),
		Roster:      sharedDatabase.NewPgRosterRepository(db.Pool, logger),
		Assignments: sharedDatabase.NewPgTeacherSectionRepository(db.Pool, logger),
		ArchiveLog:  sharedDatabase.NewPgArchiveLogRepository(db.Pool, logger),
		Enrollment:  sharedDatabase.NewPgEnrollmentRepository(db.Pool, logger),
		Players:     playerRepo,
	}, sectionEvents, cfg.StoreTimeout, logger)

	gameHandler := handler.NewGameHandler(progressService, sectionService, logger)

	// --- HTTP ---
	e := echo.New()
	e.HideBanner = true
	e.Use(sharedMiddleware.RequestID())
	e.Use(sharedMiddleware.EchoZapLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, sharedMiddleware.InterServiceTokenHeader},
	}))

	e.GET("/health", func(c echo.Context) error {
		pingCtx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Pool.Ping(pingCtx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, sharedModels.NewErrorResponse("database unavailable"))
		}
		return c.JSON(http.StatusOK, sharedModels.SuccessResponse{Success: true})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	var apiMiddleware []echo.MiddlewareFunc
	if cfg.InterServiceSecret != "" {
		verifier, err := authutils.NewJWTVerifier(cfg.InterServiceSecret, logger)
		if err != nil {
			logger.Fatal("Failed to create Inter-Service JWT Verifier", zap.Error(err))
		}
		apiMiddleware = append(apiMiddleware, sharedMiddleware.InterServiceAuthMiddleware(verifier, logger))
	} else {
		logger.Warn("Inter-service secret not configured, /api is not protected")
	}
	gameHandler.RegisterRoutes(e, apiMiddleware...)

	go func() {
		logger.Info("HTTP сервер слушает", zap.String("port", cfg.Port))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка при graceful shutdown Echo", zap.Error(err))
	}
	logger.Info("edu-game-server успешно остановлен")
}

func connectRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	logger.Info("Успешное подключение к Redis", zap.String("addr", cfg.RedisAddr))
	return client, nil
}

func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 3 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			logger.Info("Успешное подключение к RabbitMQ")
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
