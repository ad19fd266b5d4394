package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"vidshare/internal/api/handler"
	"vidshare/internal/api/middleware"
	"vidshare/internal/api/router"
	"vidshare/internal/config"
	"vidshare/internal/infra/database"
	infraES "vidshare/internal/infra/elasticsearch"
	infraKafka "vidshare/internal/infra/kafka"
	infraMinio "vidshare/internal/infra/minio"
	infraRedis "vidshare/internal/infra/redis"
	infraS3 "vidshare/internal/infra/s3"
	"vidshare/internal/repository"
	"vidshare/internal/service"
	"vidshare/internal/storage"
	"vidshare/pkg/logger"
	"vidshare/pkg/utils"

	_ "vidshare/api/openapi"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// @title Vidshare API
// @version 1.0
// @description 视频分享平台 API 服务：注册登录、管理员上传视频、视频流与评论
// @termsOfService http://swagger.io/terms/

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host 127.0.0.1:5000
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description 输入格式: Bearer {token}

func main() {
	// 加载配置文件
	cfg, err := config.Load(configPath())
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 初始化日志系统
	if err := logger.Init(
		cfg.Log.Level,
		cfg.Log.Format,
		cfg.Log.Output,
		cfg.Log.FilePath,
	); err != nil {
		panic(fmt.Sprintf("Failed to init logger: %v", err))
	}
	defer logger.Sync()

	// 初始化数据库
	dbCtx, dbCancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = database.Init(dbCtx, &cfg.Database)
	dbCancel()
	if err != nil {
		logger.Fatal("Failed to init database", zap.Error(err))
	}
	defer database.Close()

	// 自动迁移数据库表
	if err := database.Migrate(database.Get()); err != nil {
		logger.Fatal("Failed to auto migrate", zap.Error(err))
	}

	// 对象存储
	backend, err := newStorageBackend(cfg)
	if err != nil {
		logger.Fatal("Failed to init object storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	store := storage.NewAdapter(
		backend,
		storage.NewPolicy(cfg.Storage.MaxVideoBytes(), cfg.Storage.MaxFileBytes()),
		cfg.Storage.UploadTimeout(),
	)

	// 登录注册限流（可选，Redis 不可用时不限流）
	var authLimiter gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := infraRedis.Init(ctx, &cfg.Redis)
		cancel()
		if err != nil {
			logger.Warn("Redis init failed, auth rate limiting disabled", zap.Error(err))
		} else {
			defer infraRedis.Close()
			authLimiter = middleware.RateLimit(
				infraRedis.NewCounter(infraRedis.Get()),
				"auth",
				cfg.RateLimit.Requests,
				cfg.RateLimit.Window(),
				cfg.Redis.OpTimeout(),
			)
		}
	}

	// 上传事件（可选）
	var events service.VideoEventPublisher
	if cfg.Kafka.Enabled {
		if err := infraKafka.InitProducer(&cfg.Kafka); err != nil {
			logger.Fatal("Failed to init kafka producer", zap.Error(err))
		}
		defer infraKafka.CloseProducer()
		events = infraKafka.NewPublisher(cfg.Kafka.Topic(infraKafka.TopicVideoUploaded))
	}

	// 初始化 Elasticsearch（可选，失败则搜索降级到 DB）
	var searcher service.VideoSearcher
	if len(cfg.Elasticsearch.Hosts) > 0 {
		if err := infraES.Init(&cfg.Elasticsearch); err != nil {
			logger.Warn("Elasticsearch init failed, search will fallback to DB", zap.Error(err))
		} else {
			defer infraES.Close()
			searcher = infraES.VideoSearcher{}
		}
	}

	tokens, err := utils.NewTokenManager(cfg.JWT.Secret, cfg.JWT.ExpireDuration(), cfg.App.Name)
	if err != nil {
		logger.Fatal("Failed to init token manager", zap.Error(err))
	}

	// 设置Gin模式
	gin.SetMode(cfg.App.Mode)

	// 创建Gin路由器（不使用默认中间件）
	r := gin.New()

	// 使用自定义中间件
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS())

	// 初始化依赖（Repository -> Service -> Handler）
	db := database.Get()
	userRepo := repository.NewUserRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	authService := service.NewAuthService(userRepo, tokens)
	userService := service.NewUserService(userRepo, store)
	videoService := service.NewVideoService(videoRepo, commentRepo, userRepo)
	uploadService := service.NewUploadService(store, videoRepo, events)
	commentService := service.NewCommentService(commentRepo, videoRepo)
	searchService := service.NewSearchService(searcher, videoRepo)

	authHandler := handler.NewAuthHandler(authService, userService, store.Policy())
	videoHandler := handler.NewVideoHandler(videoService, uploadService, searchService, store)
	commentHandler := handler.NewCommentHandler(commentService)

	// 管理员中间件：默认信任 token 中的角色，refresh_role 打开后每次查库
	adminMiddleware := router.AdminMiddleware(userRepo.GetRole, cfg.JWT.RefreshRole)

	// 注册基础路由
	r.GET("/healthz", healthCheckHandler)

	// Swagger 文档路由
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 注册业务路由
	router.Setup(r, authHandler, videoHandler, commentHandler, middleware.AuthRequired(tokens), adminMiddleware, authLimiter)
	router.SetupFallback(r, cfg.App.StaticDir)

	// 启动服务器
	addr := fmt.Sprintf(":%d", cfg.App.Port)
	logger.Info("Starting application",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("mode", cfg.App.Mode),
		zap.String("addr", addr),
	)
	logger.Info("Configuration loaded",
		zap.String("database", fmt.Sprintf("%s@%s:%d/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)),
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("kafka", events != nil),
		zap.Bool("elasticsearch", searcher != nil),
		zap.Bool("refresh_role", cfg.JWT.RefreshRole),
	)

	// 启动HTTP服务器
	logger.Info("Server listening", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// configPath VIDSHARE_CONFIG 优先，默认 configs/config.yaml
func configPath() string {
	if p := os.Getenv("VIDSHARE_CONFIG"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

// newStorageBackend 按 storage.driver 选择后端
func newStorageBackend(cfg *config.Config) (storage.Backend, error) {
	switch cfg.Storage.Driver {
	case "s3":
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		backend, err := infraS3.New(ctx, &cfg.S3)
		if err != nil {
			return nil, err
		}
		return backend, nil
	default:
		if err := infraMinio.Init(&cfg.MinIO); err != nil {
			return nil, err
		}
		return infraMinio.NewBackend(&cfg.MinIO), nil
	}
}

// healthCheckHandler 健康检查接口
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
