package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shopify_feed_v1_202608/internal/controller"
	"shopify_feed_v1_202608/internal/model"
	"shopify_feed_v1_202608/internal/repository"
	"shopify_feed_v1_202608/internal/router"
	"shopify_feed_v1_202608/internal/service"
	"shopify_feed_v1_202608/internal/task"
	"shopify_feed_v1_202608/pkg/database"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务
	initTasks(deps)

	// 4. 初始化路由
	r := gin.Default()
	router.InitRoutes(r,
		deps.Controllers.Feed,
		deps.Controllers.Listing,
		deps.Controllers.Candidate,
		deps.Controllers.Upload,
		deps.Controllers.Snapshot,
	)

	// 5. 启动服务
	startServer(r, deps)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *Controllers
	Tasks       *Tasks
}

// Repositories 仓库集合
type Repositories struct {
	Feed      repository.FeedRepository
	Snapshot  repository.SnapshotRepository
	Draft     repository.DraftRepository
	AiCallLog repository.AICallLogRepository
}

// Services 服务集合
type Services struct {
	Feed      *service.FeedService
	Listing   *service.ListingService
	Candidate *service.CandidateService
	Snapshot  *service.SnapshotService
	Upload    *service.UploadService
	AI        *service.AIService
}

// Controllers 控制器集合
type Controllers struct {
	Feed      *controller.FeedController
	Listing   *controller.ListingController
	Candidate *controller.CandidateController
	Upload    *controller.UploadController
	Snapshot  *controller.SnapshotController
}

// Tasks 定时任务集合
type Tasks struct {
	Snapshot *task.SnapshotSyncTask
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN", fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "feed_admin"),
		getEnv("DB_PASSWORD", "1234"),
		getEnv("DB_NAME", "shop_feed"),
		getEnv("DB_PORT", "5432"),
	))

	return database.InitDB(dsn,
		// Feed
		&model.FeedImport{}, &model.FeedVariant{},
		// Snapshot
		&model.PlatformProduct{}, &model.PlatformVariant{},
		// Draft
		&model.DraftBatch{}, &model.DraftProduct{}, &model.DraftVariant{},
		// AI
		&model.AICallLog{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Feed:      repository.NewFeedRepository(db),
		Snapshot:  repository.NewSnapshotRepository(db),
		Draft:     repository.NewDraftRepository(db),
		AiCallLog: repository.NewAICallLogRepository(db),
	}

	brand := getEnv("BRAND_NAME", "Nike")
	rulesDir := getEnv("RULES_DIR", "config")

	// -------- 平台客户端 --------
	shopifyClient, err := service.NewShopifyClient(service.ShopifyConfig{
		StoreDomain: getEnv("SHOPIFY_STORE_DOMAIN", ""),
		AccessToken: getEnv("SHOPIFY_ACCESS_TOKEN", ""),
		APIVersion:  getEnv("SHOPIFY_API_VERSION", "2025-01"),
		ThrottleMs:  getEnvInt("SHOPIFY_THROTTLE_MS", 300),
	})
	if err != nil {
		log.Fatalf("平台客户端初始化失败: %v", err)
	}

	// -------- AI 服务 --------
	var suggester service.ColorSuggester
	aiSvc := service.NewAIService(&service.AIConfig{
		ApiKey:    getEnv("GEMINI_API_KEY", ""),
		TextModel: getEnv("GEMINI_TEXT_MODEL", "gemini-2.5-flash"),
	}, repos.AiCallLog)
	if getEnv("GEMINI_API_KEY", "") != "" {
		suggester = aiSvc
	} else {
		log.Println("警告: 未配置 GEMINI_API_KEY，颜色命名建议不可用")
		suggester = service.NoopSuggester{}
	}

	// -------- 业务服务 --------
	expander := service.NewExpanderService()
	normalizer := service.NewNormalizerService()
	classifier := service.NewClassifierService(brand)
	aggregator := service.NewAggregatorService(brand, expander)
	dedup := service.NewDedupService()

	services := &Services{
		Feed: service.NewFeedService(repos.Feed),
		AI:   aiSvc,
	}
	services.Listing = service.NewListingService(
		brand, rulesDir,
		repos.Feed, repos.Snapshot, repos.Draft,
		aggregator, normalizer, classifier, dedup,
		suggester,
	)
	services.Candidate = service.NewCandidateService(repos.Feed, repos.Snapshot)
	services.Snapshot = service.NewSnapshotService(shopifyClient, repos.Snapshot)
	services.Upload = service.NewUploadService(shopifyClient, repos.Draft)

	// -------- Controller 层 --------
	controllers := &Controllers{
		Feed:      controller.NewFeedController(services.Feed, repos.Feed),
		Listing:   controller.NewListingController(services.Listing, repos.Draft),
		Candidate: controller.NewCandidateController(services.Candidate),
		Upload:    controller.NewUploadController(services.Upload),
		Snapshot:  controller.NewSnapshotController(services.Snapshot, repos.Snapshot),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
		Tasks:       &Tasks{},
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
func initTasks(deps *Dependencies) {
	snapshotTask := task.NewSnapshotSyncTask(deps.Services.Snapshot)
	if spec := getEnv("SNAPSHOT_CRON", ""); spec != "" {
		snapshotTask.SetSchedule(spec)
	}
	snapshotTask.Start()
	deps.Tasks.Snapshot = snapshotTask

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(r *gin.Engine, deps *Dependencies) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动在 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("正在关闭服务...")

	if deps.Tasks.Snapshot != nil {
		deps.Tasks.Snapshot.Stop()
	}

	// 优雅关闭，最多等待 30 秒
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务强制关闭: %v", err)
	}

	log.Println("服务已退出")
}

// ==================== 工具函数 ====================

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var n int
		if _, err := fmt.Sscanf(value, "%d", &n); err == nil {
			return n
		}
	}
	return defaultValue
}
