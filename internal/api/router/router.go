package router

import (
	"net/http"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"project-tracker/internal/adapter/notification"
	"project-tracker/internal/adapter/storage"
	"project-tracker/internal/api/handler"
	"project-tracker/internal/api/middleware"
	"project-tracker/internal/cache"
	"project-tracker/internal/core/pipeline"
	"project-tracker/internal/pkg/config"
	"project-tracker/internal/pkg/jwt"
	"project-tracker/internal/repository"
	"project-tracker/internal/service"
	"project-tracker/pkg/utils"
)

// Deps 路由依赖的基础设施
type Deps struct {
	DB          *gorm.DB
	Stager      *storage.MediaStager
	Dispatcher  *notification.Dispatcher // 可为 nil
	TrackCache  *cache.TrackCache        // 可为 nil
	RateLimiter *middleware.RateLimiter  // 可为 nil
	Logger      *zap.Logger
}

// Setup 设置路由
func Setup(cfg *config.Config, deps Deps) *gin.Engine {
	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := utils.RegisterValidators(v); err != nil {
			deps.Logger.Warn("注册自定义校验器失败", zap.Error(err))
		}
	}

	r := gin.New()
	if cfg.Server.MaxBodyMB > 0 {
		r.MaxMultipartMemory = cfg.Server.MaxBodyMB << 20
	}

	// 全局中间件
	r.Use(gin.Recovery())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		body := gin.H{"status": "ok", "database": "ok", "cache": "disabled"}
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = http.StatusServiceUnavailable
			body["status"], body["database"] = "degraded", "unreachable"
		}
		if deps.TrackCache.Enabled() {
			body["cache"] = "ok"
			if err := deps.TrackCache.Ping(c.Request.Context()); err != nil {
				body["cache"] = "unreachable"
			}
		}
		c.JSON(status, body)
	})

	// Prometheus 指标
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger API 文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	db := deps.DB
	limits := handler.UploadLimits{
		MaxImages:   cfg.Storage.MaxImages,
		MaxFileSize: cfg.Storage.MaxFileSize,
	}
	composer := notification.Composer{
		Brand:     cfg.Notification.Brand,
		Signature: cfg.Notification.Signature,
		PublicURL: cfg.Server.PublicURL,
	}
	issuer := jwt.NewIssuer(cfg.Auth.JWT)

	// 初始化Repository
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	logRepo := repository.NewLogRepository(db)
	updateRepo := repository.NewProgressUpdateRepository(db)
	artifactRepo := repository.NewArtifactRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)

	// 初始化Service
	logPipeline := pipeline.NewPipeline(db, deps.Stager, deps.Dispatcher, composer, deps.TrackCache, cfg.Pipeline.MaxRetries, deps.Logger)
	ldapService := service.NewLDAPService(&cfg.Auth.LDAP)
	authService := service.NewAuthService(&cfg.Auth, userRepo, ldapService, issuer)
	projectService := service.NewProjectService(db, deps.Stager, deps.Dispatcher, composer, deps.TrackCache, deps.Logger)
	logService := service.NewLogService(logPipeline, projectRepo, logRepo)
	updateService := service.NewProgressUpdateService(db, deps.Stager, deps.TrackCache, deps.Logger)
	artifactService := service.NewArtifactService(projectRepo, artifactRepo, deps.Stager, deps.TrackCache, deps.Logger)
	feedbackService := service.NewFeedbackService(projectRepo, feedbackRepo)
	trackService := service.NewTrackService(projectRepo, logRepo, updateRepo, artifactRepo, deps.TrackCache, deps.Logger)

	// 初始化Handler
	authHandler := handler.NewAuthHandler(authService)
	projectHandler := handler.NewProjectHandler(projectService)
	logHandler := handler.NewLogHandler(logService, limits)
	updateHandler := handler.NewProgressUpdateHandler(updateService, limits)
	artifactHandler := handler.NewArtifactHandler(artifactService, limits)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService)
	trackHandler := handler.NewTrackHandler(trackService, feedbackService)

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.Track.RatePerSecond, cfg.Track.Burst)
	}

	// API v1
	v1 := r.Group("/api/v1")
	{
		// 认证相关(无需token)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)
			authGroup.POST("/refresh", authHandler.Refresh)
		}

		// 客户跟踪页(令牌访问, 限流)
		trackGroup := v1.Group("/track")
		trackGroup.Use(limiter.Middleware())
		{
			trackGroup.POST("/validate", trackHandler.Validate)
			trackGroup.GET("/:token", trackHandler.Get)
			trackGroup.POST("/:token/feedback", trackHandler.Feedback)
			trackGroup.GET("/:token/updates/images/:imageId", trackHandler.Image)
		}

		// 需要认证的路由
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(issuer))
		{
			authed.GET("/auth/me", authHandler.GetMe)

			// 项目管理
			projects := authed.Group("/projects")
			{
				projects.GET("", projectHandler.List)
				projects.POST("", projectHandler.Create)
				projects.GET("/:id", projectHandler.Get)
				projects.PUT("/:id", projectHandler.Update)
				projects.DELETE("/:id", projectHandler.Delete)
				projects.POST("/:id/phase", projectHandler.ChangePhase) // 手动阶段切换

				// 进度日志
				projects.GET("/:id/logs", logHandler.List)
				projects.POST("/:id/logs", logHandler.Create)

				// 图文进度说明
				projects.GET("/:id/updates", updateHandler.List)
				projects.POST("/:id/updates", updateHandler.Create)
				projects.DELETE("/:id/updates/:updateId", updateHandler.Delete)
				projects.GET("/:id/updates/images/:imageId", updateHandler.Image)

				// 讨论资料
				projects.GET("/:id/artifacts", artifactHandler.List)
				projects.POST("/:id/artifacts", artifactHandler.Create)
				projects.PATCH("/:id/artifacts/:artifactId", artifactHandler.Update)
				projects.DELETE("/:id/artifacts/:artifactId", artifactHandler.Delete)

				// 客户反馈
				projects.GET("/:id/feedbacks", feedbackHandler.List)
			}
		}
	}

	deps.Logger.Info("路由初始化完成", zap.Int("routes", len(r.Routes())), zap.Bool("track_cache", deps.TrackCache.Enabled()))
	return r
}
