package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/vms/internal/config"
	"github.com/bitfantasy/vms/internal/middleware"
	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/handler"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting vms service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化数据库
	db, err := initDatabase(cfg.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Vendor{},
		&entity.Buyer{},
		&entity.Item{},
		&entity.PurchaseOrder{},
		&entity.PerformanceRecord{},
		&entity.ActivityLog{},
	); err != nil {
		zapLogger.Fatal("AutoMigrate failed", zap.Error(err))
	}

	// 初始化Redis
	rdb := initRedis(cfg.Redis)

	// 仓库、服务、处理器
	repos := repository.NewRepositories(db)
	services := service.NewServices(repos, db, rdb, cfg)
	handlers := handler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())
	router.Use(middleware.Metrics())
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	if cfg.RateLimit.Enabled {
		rl, err := middleware.RateLimit(cfg.RateLimit.Rate)
		if err != nil {
			zapLogger.Fatal("Invalid rate limit config", zap.Error(err))
		}
		router.Use(rl)
	}

	// 注册路由
	registerRoutes(router, handlers, cfg)

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
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
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
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
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return db, nil
}

func initRedis(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func registerRoutes(r *gin.Engine, h *handler.Handlers, cfg *config.Config) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// 版本信息
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// Prometheus指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证 (无需登录)
		auth := v1.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.Refresh)
			auth.POST("/logout", h.Auth.Logout)
		}

		// 需要认证的路由
		authed := v1.Group("")
		authed.Use(middleware.JWTAuth(cfg.JWT.Secret))
		{
			authed.GET("/auth/me", h.Auth.Me)

			// 供应商
			vendors := authed.Group("/vendors")
			{
				vendors.GET("", h.Vendor.List)
				vendors.GET("/:id", h.Vendor.Get)
				vendors.POST("", middleware.RequireType(), h.Vendor.Create)
				vendors.PUT("/:id", middleware.RequireType(entity.UserTypeVendor), h.Vendor.Update)
				vendors.DELETE("/:id", middleware.RequireType(), h.Vendor.Delete)

				vendors.GET("/:id/items", h.Item.ListByVendor)
				vendors.POST("/:id/items", middleware.RequireType(entity.UserTypeVendor), h.Item.CreateForVendor)

				// 绩效
				vendors.GET("/:id/performance", h.Performance.Latest)
				vendors.GET("/:id/performance/history", h.Performance.History)
				vendors.GET("/:id/performance/export", h.Performance.Export)
				vendors.POST("/:id/performance/recompute", middleware.RequireType(), h.Performance.Recompute)
			}

			// 采购方
			buyers := authed.Group("/buyers")
			{
				buyers.GET("", h.Buyer.List)
				buyers.GET("/:id", h.Buyer.Get)
				buyers.PUT("/:id", middleware.RequireType(entity.UserTypeBuyer), h.Buyer.Update)
			}

			// 商品
			items := authed.Group("/items")
			{
				items.GET("/:id", h.Item.Get)
				items.POST("", middleware.RequireType(entity.UserTypeVendor), h.Item.Create)
				items.PUT("/:id", middleware.RequireType(entity.UserTypeVendor), h.Item.Update)
				items.DELETE("/:id", middleware.RequireType(entity.UserTypeVendor), h.Item.Delete)
			}

			// 采购订单
			pos := authed.Group("/purchase-orders")
			{
				pos.GET("", h.PO.List)
				pos.GET("/:id", h.PO.Get)
				pos.POST("", middleware.RequireType(entity.UserTypeBuyer), h.PO.Create)
				pos.PUT("/:id", middleware.RequireType(entity.UserTypeBuyer), h.PO.Update)

				pos.POST("/:id/acknowledge", middleware.RequireType(entity.UserTypeVendor), h.PO.Acknowledge)
				pos.POST("/:id/issue", middleware.RequireType(entity.UserTypeBuyer), h.PO.Issue)
				pos.POST("/:id/complete", middleware.RequireType(entity.UserTypeVendor, entity.UserTypeBuyer), h.PO.Complete)
				pos.POST("/:id/cancel", middleware.RequireType(entity.UserTypeVendor, entity.UserTypeBuyer), h.PO.Cancel)

				pos.GET("/:id/activity", h.PO.Activity)
			}
		}
	}
}
