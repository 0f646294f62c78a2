package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

// GroupHandler 写操作仅 ADMIN，读操作任何登录用户
type GroupHandler struct{ svc *service.GroupService }

func NewGroupHandler(svc *service.GroupService) *GroupHandler { return &GroupHandler{svc: svc} }

func (h *GroupHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)
	admins := []domain.Role{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[domain.GroupRequest, *domain.Group]{
		Method: http.MethodPost,
		Path:   "/groups",
		Binder: ez.BindJSON,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.GroupRequest) (*domain.Group, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Group]{
		Method: http.MethodGet,
		Path:   "/groups",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) ([]domain.Group, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Group]{
		Method: http.MethodGet,
		Path:   "/groups/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (*domain.Group, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[domain.GroupRequest, *domain.Group]{
		Method: http.MethodPut,
		Path:   "/groups/:id",
		Binder: ez.BindJSON,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.GroupRequest) (*domain.Group, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.AddStudentsRequest, *domain.Group]{
		Method: http.MethodPut,
		Path:   "/groups/:id/students",
		Binder: ez.BindJSON,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, in *service.AddStudentsRequest) (*domain.Group, error) {
			return h.svc.AddStudents(c.Request.Context(), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/groups/:id",
		Binder: ez.BindNone,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.svc.Delete(c.Request.Context(), id)
		},
	})
}
