package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gradebook/internal/core/auth"
	"gradebook/internal/core/config"
	"gradebook/internal/core/server"
	mdw "gradebook/internal/transport/http/middleware"
)

// multipart 编码、表单字段的额外开销
const bodySlack = 1 << 20

// common 两个引擎共用的中间件链，顺序有意义：RequestID 最先，AccessLog 最后
func common(l *zap.Logger, cfg *config.Config, limiter gin.HandlerFunc) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		mdw.RequestID(),
		mdw.Recovery(l),
		limiter,
		mdw.ConcurrencyLimit(cfg.Limit.Concurrency),
		mdw.MaxBodyBytes(cfg.Upload.MaxBytes() + bodySlack),
		mdw.Timeout(time.Duration(cfg.Limit.TimeoutSec) * time.Second),
		mdw.Metrics(),
		mdw.AccessLog(l),
	}
}

func health(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) }

// NewAPIEngine 用户端：/api/v1 下按需识别身份，具体角色由各 Action 判断
func NewAPIEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	limiter := mdw.RateLimitPerIP(rate.Limit(cfg.Limit.RPS), cfg.Limit.Burst)
	r := server.NewRouter(server.Options{Name: cfg.App.Name, Mode: server.ModeFor(cfg.App.Env)}, common(l, cfg, limiter)...)

	r.GET("/health", health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1", mdw.Identify(jwter))
	reg.MountAllAPI(api)
	return r
}
