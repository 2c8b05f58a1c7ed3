package app

import (
	"context"
	"errors"
	"lingocode_backend/internal/config"
	"lingocode_backend/internal/controller"
	"lingocode_backend/internal/curriculum"
	"lingocode_backend/internal/exercise"
	"lingocode_backend/internal/grader"
	"lingocode_backend/internal/middleware"
	"lingocode_backend/internal/repository"
	"lingocode_backend/internal/runner"
	"lingocode_backend/internal/service"
	"lingocode_backend/internal/util"
	"lingocode_backend/pkg/configwatcher"
	"lingocode_backend/pkg/database"
	"lingocode_backend/pkg/logger"
	"lingocode_backend/pkg/monitoring"
	"lingocode_backend/pkg/security"
	"lingocode_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/robfig/cron/v3"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConfigDir 配置文件目录
const ConfigDir = "configs"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	configCallbacks []func(*config.Config)
	scheduler       *cron.Cron
	tracerProvider  *sdktrace.TracerProvider
	limiters        []*security.Limiter

	// 以下中间件在 build 中创建，供路由注册使用
	authRequired gin.HandlerFunc
	runLimit     gin.HandlerFunc
}

type repositories struct {
	user     *repository.UserRepository
	progress *repository.ProgressRepository
	profile  *repository.ProfileRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	storage    *service.StorageService
	lesson     *service.LessonService
	exercise   *service.ExerciseService
	playground *service.PlaygroundService
	tutor      *service.TutorService
	progress   *service.ProgressService
	profile    *service.ProfileService
	states     exercise.Store
}

type controllers struct {
	auth       *controller.AuthController
	user       *controller.UserController
	lesson     *controller.LessonController
	exercise   *controller.ExerciseController
	playground *controller.PlaygroundController
	progress   *controller.ProgressController
	admin      *controller.AdminController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		progress: repository.NewProgressRepository(db),
		profile:  repository.NewProfileRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	catalog, err := curriculum.Default()
	if err != nil {
		return nil, err
	}

	s := &services{}
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, cfg)
	s.user = service.NewUserService(repos.user)
	s.profile = service.NewProfileService(repos.profile)
	s.progress = service.NewProgressService(repos.progress, catalog)
	s.lesson = service.NewLessonService(catalog, s.storage)
	s.tutor = service.NewTutorService(cfg.AI, catalog, s.profile)

	python := runner.NewPistonRunner(cfg.Piston)
	exerciseRunners := runner.NewExerciseRegistry(
		runner.NewJavaScriptRunner(runner.MsgJSNoOutput, cfg.Runner.JSMaxDuration),
		python,
	)
	playgroundRunners := runner.NewPlaygroundRegistry(
		runner.NewJavaScriptRunner(runner.MsgPlaygroundJSNoOutput, cfg.Runner.JSMaxDuration),
		python,
	)

	if cfg.Exercise.StateStore == util.StateStoreRedis && rdb != nil {
		s.states = exercise.NewRedisStore(rdb, cfg.Exercise.StateTTL, cfg.RunLockTTL())
	} else {
		s.states = exercise.NewMemoryStore()
	}

	s.exercise = service.NewExerciseService(catalog, exerciseRunners, grader.NewDefaultRegistry(), s.states, repos.progress)
	s.playground = service.NewPlaygroundService(playgroundRunners)

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		user:       controller.NewUserController(s.user),
		lesson:     controller.NewLessonController(s.lesson, s.tutor),
		exercise:   controller.NewExerciseController(s.exercise),
		playground: controller.NewPlaygroundController(s.playground, s.tutor),
		progress:   controller.NewProgressController(s.progress, s.profile),
		admin:      controller.NewAdminController(s.lesson),
		health: controller.NewHealthController(db, rdb, controller.HealthInfo{
			StateStore: a.Config.Exercise.StateStore,
			Storage:    s.storage.Provider.Name(),
			Lessons:    s.lesson.LessonCount(),
		}),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config, users middleware.UserLookup) {
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	global := security.NewLimiter(cfg.RateLimit.MaxRequests, window)
	run := security.NewLimiter(cfg.RateLimit.RunMaxRequests, window)
	a.limiters = append(a.limiters, global, run)

	a.authRequired = middleware.AuthMiddleware(cfg, users)
	// 代码执行和 AI 导师按用户单独限流
	a.runLimit = run.Middleware(security.ByUser)

	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(global.Middleware(security.ByClientIP))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startBackgroundTasks 内存状态存储需要定期清理长时间未访问的练习实例
func (a *App) startBackgroundTasks(s *services, cfg *config.Config) error {
	memory, ok := s.states.(*exercise.MemoryStore)
	if !ok || cfg.Exercise.StateTTL <= 0 {
		return nil
	}

	a.scheduler = cron.New()
	_, err := a.scheduler.AddFunc(cfg.Exercise.PruneSchedule, func() {
		if n := memory.Prune(cfg.Exercise.StateTTL); n > 0 {
			logger.Log.Info("Pruned idle exercise instances", zap.Int("count", n))
		}
	})
	if err != nil {
		return err
	}
	a.scheduler.Start()
	return nil
}

// build 组装仓库、服务、控制器和路由，不负责基础设施的初始化
func (a *App) build() error {
	cfg := a.Config

	repos := a.initRepositories(a.DB)
	services, err := a.initServices(repos, cfg, a.Redis)
	if err != nil {
		return err
	}
	a.services = services
	controllers := a.initControllers(services, a.DB, a.Redis)

	// 配置热更新：AI 导师的接口地址、密钥和模型参数
	a.RegisterConfigCallback(func(newCfg *config.Config) {
		services.tutor.UpdateConfig(newCfg.AI)
	})

	// 监控初始化
	monitoring.Init()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	a.Router = router

	a.setupMiddlewares(router, cfg, repos.user)
	a.registerRoutes(router, controllers)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return a.startBackgroundTasks(services, cfg)
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	// release 模式下只有显式要求时才迁移
	migrate := cfg.Server.Mode != "release" || cfg.ForceMigrate
	db, err := database.InitDB(&cfg.Database, migrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	if cfg.Exercise.StateStore == util.StateStoreRedis {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
		app.Redis = rdb
	}

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(cfg.Tracing)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	if err := app.build(); err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}

	return app
}

func (a *App) watchConfig(ctx context.Context) {
	path := filepath.Join(ConfigDir, "config.yaml")
	err := configwatcher.WatchConfig(ctx, path, func(newCfg *config.Config) {
		for _, callback := range a.configCallbacks {
			callback(newCfg)
		}
	})
	if err != nil {
		logger.Log.Warn("Config watcher stopped", zap.Error(err))
	}
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	go a.watchConfig(watchCtx)

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal("Server listen failed", zap.Error(err))
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server")

	a.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Log.Info("Server exiting")
}

// Shutdown 停止后台任务并刷新追踪数据
func (a *App) Shutdown() {
	if a.scheduler != nil {
		<-a.scheduler.Stop().Done()
	}
	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(context.Background()); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	for _, l := range a.limiters {
		l.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
}
