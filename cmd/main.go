package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"seller_ops_v1_202608/internal/controller"
	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
	"seller_ops_v1_202608/internal/router"
	"seller_ops_v1_202608/internal/service"
	"seller_ops_v1_202608/internal/task"
	"seller_ops_v1_202608/pkg/database"

	"gorm.io/gorm"
)

func main() {
	// 1. 初始化数据库
	db := initDatabase()

	// 2. 初始化依赖
	deps := initDependencies(db)

	// 3. 启动定时任务（可选）
	initTasks(deps)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers)

	// 5. 启动服务
	startServer(r)
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Repos       *Repositories
	Services    *Services
	Controllers *router.Controllers
}

// Repositories 仓库集合
type Repositories struct {
	Order     repository.OrderRepository
	Catalog   repository.CatalogRepository
	Exception repository.ExceptionRepository
	FxRate    repository.FxRateRepository
}

// Services 服务集合
type Services struct {
	Order      *service.OrderService
	Catalog    *service.CatalogService
	Resolver   *service.ResolverService
	Resolution *service.ResolutionService
	Exception  *service.ExceptionService
	Finance    *service.FinanceService
}

// ==================== 初始化函数 ====================

// initDatabase 初始化数据库
func initDatabase() *gorm.DB {
	dsn := getEnv("DATABASE_DSN",
		"host=localhost user=seller_ops password=seller_ops dbname=seller_ops port=5432 sslmode=disable")

	return database.InitDB(dsn,
		// 订单
		&model.Order{},
		// 目录（目录维护系统写入，这里建表方便本地联调）
		&model.Store{}, &model.Product{}, &model.Variant{}, &model.StoreSku{},
		// 异常与汇率
		&model.Exception{}, &model.FxRate{},
	)
}

// initDependencies 初始化所有依赖
func initDependencies(db *gorm.DB) *Dependencies {
	// -------- Repo 层 --------
	repos := &Repositories{
		Order:     repository.NewOrderRepository(db),
		Catalog:   repository.NewCatalogRepository(db),
		Exception: repository.NewExceptionRepository(db),
		FxRate:    repository.NewFxRateRepository(db),
	}

	// -------- Service 层 --------
	services := &Services{}
	services.Resolver = service.NewResolverService()
	services.Exception = service.NewExceptionService(repos.Exception)
	services.Resolution = service.NewResolutionService(
		repos.Order, repos.Catalog, services.Resolver, services.Exception,
	)
	services.Resolution.SetConcurrency(getEnvInt("RESOLUTION_CONCURRENCY", 4))
	services.Order = service.NewOrderService(repos.Order, repos.Catalog)
	services.Catalog = service.NewCatalogService(repos.Catalog)
	services.Finance = service.NewFinanceService(repos.Order, repos.FxRate)

	// -------- Controller 层 --------
	controllers := &router.Controllers{
		Order:      controller.NewOrderController(services.Order),
		Resolution: controller.NewResolutionController(services.Resolution),
		Exception:  controller.NewExceptionController(services.Exception),
		Finance:    controller.NewFinanceController(services.Finance),
		Catalog:    controller.NewCatalogController(services.Catalog),
	}

	return &Dependencies{
		DB:          db,
		Repos:       repos,
		Services:    services,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 初始化定时任务
// 解析批次默认靠导入方/运营手动触发；定时兜底需显式开启
func initTasks(deps *Dependencies) {
	if getEnv("RESOLUTION_CRON_ENABLED", "false") != "true" {
		log.Println("定时解析任务未开启 (RESOLUTION_CRON_ENABLED=false)")
		return
	}

	resolutionTask := task.NewResolutionTask(deps.Services.Resolution)
	resolutionTask.SetSchedule(getEnv("RESOLUTION_CRON_SPEC", ""), 0)
	resolutionTask.Start()

	log.Println("定时任务已启动")
}

// ==================== 服务启动 ====================

// startServer 启动服务
func startServer(handler http.Handler) {
	port := getEnv("SERVER_PORT", "8080")

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	// 异步启动服务
	go func() {
		log.Printf("服务启动，监听 :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("服务启动失败: %v", err)
		}
	}()

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("收到退出信号，开始优雅关闭...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("优雅关闭失败: %v", err)
	}
	log.Println("服务已退出")
}

// ==================== 环境变量辅助 ====================

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
