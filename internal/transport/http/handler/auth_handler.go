package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

// AuthHandler /auth/register 与 /auth/login，公开接口，按 IP 节流
type AuthHandler struct {
	svc      *service.AuthService
	throttle []gin.HandlerFunc
}

func NewAuthHandler(svc *service.AuthService, throttle ...gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{svc: svc, throttle: throttle}
}

func (h *AuthHandler) Priority() int { return 10 }

func (h *AuthHandler) MountAPI(api *gin.RouterGroup) {
	g := api.Group("/auth", h.throttle...)
	e := ez.New(g)

	ez.RegisterAction(e, ez.Action[domain.RegistrationRequest, SessionView]{
		Method: http.MethodPost,
		Path:   "/register",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.RegistrationRequest) (SessionView, error) {
			s, err := h.svc.Register(c.Request.Context(), *in)
			if err != nil {
				return SessionView{}, err
			}
			return toSessionView(s), nil
		},
	})

	ez.RegisterAction(e, ez.Action[domain.AuthenticationRequest, SessionView]{
		Method: http.MethodPost,
		Path:   "/login",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.AuthenticationRequest) (SessionView, error) {
			s, err := h.svc.Authenticate(c.Request.Context(), *in)
			// 不向调用方区分“邮箱不存在”与“密码错误”
			if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidCredentials) {
				return SessionView{}, ez.Unauthorized("invalid email or password")
			}
			if err != nil {
				return SessionView{}, err
			}
			return toSessionView(s), nil
		},
	})
}
