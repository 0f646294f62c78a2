package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"gradebook/internal/core/auth"
	"gradebook/internal/core/config"
	"gradebook/internal/core/server"
	"gradebook/internal/domain"
	mdw "gradebook/internal/transport/http/middleware"
)

// NewAdminEngine 管理端：整组要求 ADMIN
func NewAdminEngine(l *zap.Logger, cfg *config.Config, jwter *auth.JWTer, reg *Registry) *gin.Engine {
	limiter := mdw.RateLimit(rate.Limit(cfg.Limit.RPS), cfg.Limit.Burst)
	r := server.NewRouter(server.Options{Name: cfg.App.Name + "-admin", Mode: server.ModeFor(cfg.App.Env)}, common(l, cfg, limiter)...)

	r.GET("/health", health)

	admin := r.Group("/admin/v1", mdw.AuthJWT(jwter, domain.RoleAdmin))
	reg.MountAllAdmin(admin)
	return r
}
