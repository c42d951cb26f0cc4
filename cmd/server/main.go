package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/config"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/api/handler"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/api/middleware"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/api/router"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/repository"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/internal/service"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/database"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/jwt"
	applogger "github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/logger"
	"github.com/mharfemicaroz/schedules.knp.edu.ph-sub003/pkg/redis"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，缺省查找 ./config/config.yaml")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("calendar_timezone", cfg.Calendar.Timezone),
		zap.Bool("fence_refresh", cfg.Snapshot.FenceRefresh),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不缓存、不限流）
	// 接口变量保持真正的 nil，避免 typed-nil 被当作可用实现
	var (
		cache   service.ResultCache
		limiter middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，结果缓存与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		cache = rdb
		limiter = rdb
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, cache, logger)
	h := handler.NewHandler(svc)

	// 6.1 预热快照；失败不阻断启动，首个请求时重试
	warmCtx, warmCancel := context.WithTimeout(context.Background(), cfg.Snapshot.LoadTimeout)
	if snap, err := svc.Snapshot.Refresh(warmCtx); err != nil {
		logger.Warn("快照预热失败", zap.Error(err))
	} else {
		stats := snap.Stats()
		logger.Info("快照预热完成",
			zap.Int("curriculum", stats.CurriculumCount),
			zap.Int("meetings", stats.MeetingCount),
			zap.Int("calendar", stats.CalendarCount),
		)
	}
	warmCancel()

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if sqlDB != nil {
		sqlDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
