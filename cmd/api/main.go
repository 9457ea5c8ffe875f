package main

import (
	"fmt"
	"net/http"
	"time"

	"clipstream/internal/api/handler"
	"clipstream/internal/api/middleware"
	"clipstream/internal/api/router"
	"clipstream/internal/config"
	"clipstream/internal/infra/database"
	infraES "clipstream/internal/infra/elasticsearch"
	infraKafka "clipstream/internal/infra/kafka"
	infraMinio "clipstream/internal/infra/minio"
	infraRedis "clipstream/internal/infra/redis"
	"clipstream/internal/model"
	"clipstream/internal/repository"
	"clipstream/internal/service"
	"clipstream/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Favorite{},
		&model.Relation{},
	); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	if err := infraRedis.Init(&cfg.Redis); err != nil {
		logger.Fatal("Failed to init redis", zap.Error(err))
	}
	defer infraRedis.Close()

	if err := infraMinio.Init(&cfg.MinIO); err != nil {
		logger.Fatal("Failed to init minio", zap.Error(err))
	}

	if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
		logger.Fatal("Failed to init kafka producer", zap.Error(err))
	}
	defer infraKafka.CloseProducer()

	// Elasticsearch is optional; search degrades to the database without it.
	if err := infraES.Init(&cfg.Elasticsearch); err != nil {
		logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
	} else {
		defer infraES.Close()
		if err := infraES.InitIndexes(); err != nil {
			logger.Warn("Elasticsearch index init failed", zap.Error(err))
		}
	}

	gin.SetMode(cfg.App.Mode)

	r := gin.New()
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())

	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	relationRepo := repository.NewRelationRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)

	userService := service.NewUserService(userRepo)
	authService := service.NewAuthService(userRepo, userService)
	relationService := service.NewRelationService(db, relationRepo, userRepo)
	relationService.EventsTopic = cfg.Kafka.RelationEventsTopic()
	videoService := service.NewVideoService(db, videoRepo, userRepo, favoriteRepo)
	favoriteService := service.NewFavoriteService(db, favoriteRepo, videoRepo)
	searchService := service.NewSearchService(videoRepo, userRepo)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService, authService)
	relationHandler := handler.NewRelationHandler(relationService)
	videoHandler := handler.NewVideoHandler(videoService)
	favoriteHandler := handler.NewFavoriteHandler(favoriteService)
	searchHandler := handler.NewSearchHandler(searchService)

	adminMiddleware := middleware.AdminRequired(func(userID int64) (string, error) {
		user, err := userRepo.GetByID(userID)
		if err != nil {
			return "", err
		}
		return user.UserRole, nil
	})

	r.GET("/healthz", healthCheckHandler)
	r.GET("/", rootHandler)

	router.Setup(r, authHandler, userHandler, relationHandler, videoHandler, favoriteHandler, searchHandler, adminMiddleware)

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("redis", cfg.Redis.Addr()),
		zap.String("minio", cfg.MinIO.Endpoint),
	)

	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func healthCheckHandler(c *gin.Context) {
	cfg := config.Get()

	logger.Debug("Health check requested", zap.String("ip", c.ClientIP()))

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"message":   "Service is healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   cfg.App.Name,
		"version":   cfg.App.Version,
		"mode":      cfg.App.Mode,
	})
}

func rootHandler(c *gin.Context) {
	cfg := config.Get()

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("Welcome to %s API", cfg.App.Name),
		"project": cfg.App.Name,
		"version": cfg.App.Version,
		"mode":    cfg.App.Mode,
	})
}
