package app

import (
	"context"
	"edumind_backend/internal/config"
	"edumind_backend/internal/controller"
	"edumind_backend/internal/repository"
	"edumind_backend/internal/service"
	"edumind_backend/internal/util"
	"edumind_backend/pkg/database"
	"edumind_backend/pkg/logger"
	"edumind_backend/pkg/monitoring"
	"edumind_backend/pkg/security"
	"edumind_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
}

type repositories struct {
	user       *repository.UserRepository
	testResult *repository.TestResultRepository
}

type services struct {
	auth         *service.AuthService
	storage      *service.StorageService
	content      *service.ContentService
	search       *service.SearchService
	ai           *service.AIService
	breaker      *service.Breaker
	assistant    *service.AssistantService
	scheduler    *service.SchedulerService
	adaptiveTest *service.AdaptiveTestService
}

type controllers struct {
	auth         *controller.AuthController
	assistant    *controller.AssistantController
	content      *controller.ContentController
	adaptiveTest *controller.AdaptiveTestController
	schedule     *controller.ScheduleController
	health       *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		testResult: repository.NewTestResultRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.content = service.NewContentService()
	s.search = service.NewSearchService(s.content)
	s.ai = service.NewAIService(cfg.AI)
	s.breaker = service.NewBreaker()
	s.assistant = service.NewAssistantService(s.ai, s.ai, s.search, s.breaker)
	s.scheduler = service.NewSchedulerService()

	var sessions service.SessionStore
	if rdb != nil {
		sessions = service.NewRedisSessionStore(rdb)
	} else {
		sessions = service.NewMemorySessionStore()
	}
	s.adaptiveTest = service.NewAdaptiveTestService(s.ai, s.breaker, sessions, s.search, s.scheduler, repos.testResult)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:         controller.NewAuthController(s.auth),
		assistant:    controller.NewAssistantController(s.assistant),
		content:      controller.NewContentController(s.content, s.search, s.storage, a.Config),
		adaptiveTest: controller.NewAdaptiveTestController(s.adaptiveTest),
		schedule:     controller.NewScheduleController(s.scheduler),
		health:       controller.NewHealthController(db, s.content, s.breaker),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 只承载会话缓存，连不上时退化为内存会话
		logger.Log.Warn("Redis unavailable, falling back to in-memory sessions", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("edumind-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	if cfg.Content.IndexOnStartup {
		if _, err := services.content.Reindex(cfg.Content.LibraryRoot); err != nil {
			logger.Log.Error("Startup content indexing failed", zap.Error(err))
		}
	}

	return app
}

// OnConfigReload 配置热更新回调。
// 端口、数据库等启动期配置不支持热切换，只接管可在线调整的部分。
func (a *App) OnConfigReload(newCfg interface{}) {
	cfg, ok := newCfg.(*config.Config)
	if !ok {
		return
	}
	a.Config.CORS = cfg.CORS
	a.Config.RateLimit = cfg.RateLimit
	a.Config.AI = cfg.AI
	a.Config.Content = cfg.Content
	logger.Log.Info("Config reloaded")
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
