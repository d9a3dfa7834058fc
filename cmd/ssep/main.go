package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/greenfordkang-boop/ssep/internal/config"
	"github.com/greenfordkang-boop/ssep/internal/middleware"
	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/handler"
	"github.com/greenfordkang-boop/ssep/internal/sample/repository"
	"github.com/greenfordkang-boop/ssep/internal/sample/service"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// 빌드 시 ldflags로 주입
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// .env 로드. 없으면 환경변수만 사용한다.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting ssep service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 계정 DB
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		zapLogger.Fatal("Failed to migrate user table", zap.Error(err))
	}

	rdb := initRedis(cfg.Redis)

	// 요청 대장
	st := store.New(cfg.Ledger.Path, cfg.Ledger.Sheet, zapLogger)
	if err := st.Load(); err != nil {
		zapLogger.Fatal("Failed to load request ledger", zap.Error(err))
	}

	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, st, rdb, cfg, zapLogger)
	handlers := handler.NewHandlers(services, cfg)

	// 기본 계정 시드
	if err := services.Auth.SeedDefaultUsers(context.Background()); err != nil {
		zapLogger.Warn("Failed to seed default users", zap.Error(err))
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	registerRoutes(router, handlers, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 우아한 종료
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}

	return zapCfg.Build()
}

func initDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 헬스체크
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	api := r.Group("/api/v1")

	// 인증 불필요
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/register", h.Auth.Register)
	}

	// 인증 필요
	authed := api.Group("", middleware.JWTAuth(cfg.JWT.Secret))
	{
		authed.POST("/auth/logout", h.Auth.Logout)
		authed.PUT("/auth/password", h.Auth.ChangePassword)
		authed.GET("/auth/me", h.Auth.Me)

		requests := authed.Group("/requests")
		{
			requests.GET("", h.Request.List)
			requests.POST("", h.Request.Create)
			requests.GET("/:id", h.Request.Get)
			requests.POST("/:id/attachments", h.Attachment.Upload)
			requests.GET("/:id/attachments/:name", h.Attachment.Download)
		}

		// 관리자 전용
		admin := authed.Group("", middleware.RequireAdmin())
		{
			admin.PUT("/requests/:id", h.Request.Update)
			admin.DELETE("/requests", h.Request.Delete)
			admin.POST("/requests/import", h.Request.Import)
			admin.GET("/requests/export", h.Request.Export)
			admin.GET("/dashboard/summary", h.Dashboard.Summary)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": 40400, "message": "Not found"})
	})
}
