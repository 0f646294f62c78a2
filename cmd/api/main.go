package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"gradebook/internal/core/auth"
	"gradebook/internal/core/cache"
	"gradebook/internal/core/config"
	"gradebook/internal/core/database"
	"gradebook/internal/core/logger"
	"gradebook/internal/core/server"
	"gradebook/internal/repo"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/handler"
	mdw "gradebook/internal/transport/http/middleware"
	"gradebook/internal/transport/http/router"
	"gradebook/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.New(cfg.Log, zap.String("app", cfg.App.Name), zap.String("env", cfg.App.Env))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db, log); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	jwter := &auth.JWTer{
		Secret: []byte(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		TTL:    cfg.JWT.TTL(),
	}

	// 登录/注册节流：配置了 redis 则多实例共享计数
	var throttle cache.Limiter = cache.NewMemoryWindow(cfg.Limit.LoginAttempts, cfg.Limit.LoginWindow())
	if cfg.Redis.Addr != "" {
		rc := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer rc.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := rc.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, login throttle fails open until it recovers", zap.Error(err))
		}
		cancel()
		throttle = rc.Window("login", cfg.Limit.LoginAttempts, cfg.Limit.LoginWindow())
	}

	// 依赖
	maxFile := cfg.Upload.MaxBytes()
	hasher := utils.BcryptHasher{}
	users := repo.NewUserRepo(db)
	assignments := repo.NewAssignmentRepo(db)

	reg := &router.Registry{}
	reg.Register(
		handler.NewAuthHandler(service.NewAuthService(users, hasher, jwter, log), mdw.LoginThrottle(throttle, log)),
		handler.NewUserHandler(service.NewUserService(users, hasher, log)),
		handler.NewGroupHandler(service.NewGroupService(users, repo.NewGroupRepo(db), log)),
		handler.NewSubjectHandler(service.NewSubjectService(users, repo.NewSubjectRepo(db), log)),
		handler.NewAssignmentHandler(service.NewAssignmentService(users, assignments, maxFile, log), maxFile),
		handler.NewSubmissionHandler(service.NewSubmissionService(users, assignments, maxFile, log), maxFile),
		handler.NewGradeHandler(service.NewGradeService(users, assignments, repo.NewGradeRepo(db), log)),
	)

	// 路由（用户端）
	r := router.NewAPIEngine(log, cfg, jwter, reg)

	errLog, err := logger.ToStdLogger(log, zapcore.ErrorLevel)
	if err != nil {
		log.Fatal("std logger", zap.Error(err))
	}
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(cfg.App.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.App.HTTP.IdleTimeoutSec)*time.Second,
		errLog,
	)

	host4human := cfg.App.HTTP.Host
	if host4human == "" || host4human == "0.0.0.0" {
		host4human = "127.0.0.1"
	}
	baseURL := "http://" + host4human + ":" + fmt.Sprint(cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
		zap.String("api_v1", baseURL+"/api/v1"),
	)

	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
	log.Info("user api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowThresholdMs:    cfg.DB.SlowThresholdMs,
		Log:                l,
	})
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}
