package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

type UserHandler struct{ svc *service.UserService }

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

type listUsersQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"`    // 按 email/name/username 模糊搜
	Role   string `form:"role"` // 可选：按角色过滤
}

func (h *UserHandler) list(c *gin.Context, _ domain.Identity, in *listUsersQ) (service.Page[UserView], error) {
	p, err := h.svc.List(c.Request.Context(), in.Offset, in.Limit, in.Q, domain.Role(in.Role))
	if err != nil {
		return service.Page[UserView]{}, err
	}
	out := service.Page[UserView]{List: make([]UserView, 0, len(p.List)), Total: p.Total, Offset: p.Offset, Limit: p.Limit}
	for i := range p.List {
		out.List = append(out.List, ToUserView(&p.List[i]))
	}
	return out, nil
}

func (h *UserHandler) get(c *gin.Context, _ domain.Identity, _ *struct{}) (UserView, error) {
	u, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return UserView{}, err
	}
	return ToUserView(u), nil
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)
	staff := []domain.Role{domain.RoleAdmin, domain.RoleTeacher}

	ez.RegisterAction(e, ez.Action[struct{}, UserView]{
		Method: http.MethodGet,
		Path:   "/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (UserView, error) {
			u, err := h.svc.Me(c.Request.Context(), who)
			if err != nil {
				return UserView{}, err
			}
			return ToUserView(u), nil
		},
	})
	ez.RegisterAction(e, ez.Action[listUsersQ, service.Page[UserView]]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, Roles: staff, Handler: h.list,
	})
	ez.RegisterAction(e, ez.Action[struct{}, UserView]{
		Method: http.MethodGet, Path: "/users/:id", Binder: ez.BindNone, Roles: staff, Handler: h.get,
	})
}

// MountAdmin 管理端分组已走 AuthJWT(ADMIN)，这里再声明一次角色
func (h *UserHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)
	admins := []domain.Role{domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[listUsersQ, service.Page[UserView]]{
		Method: http.MethodGet, Path: "/users", Binder: ez.BindQuery, Roles: admins, Handler: h.list,
	})
	ez.RegisterAction(e, ez.Action[struct{}, UserView]{
		Method: http.MethodGet, Path: "/users/:id", Binder: ez.BindNone, Roles: admins, Handler: h.get,
	})
	ez.RegisterAction(e, ez.Action[domain.UserUpdate, UserView]{
		Method: http.MethodPut,
		Path:   "/users/:id",
		Binder: ez.BindJSON,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.UserUpdate) (UserView, error) {
			u, err := h.svc.Update(c.Request.Context(), c.Param("id"), *in)
			if err != nil {
				return UserView{}, err
			}
			return ToUserView(u), nil
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/users/:id",
		Binder: ez.BindNone,
		Roles:  admins,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			if err := h.svc.Delete(c.Request.Context(), who, id); err != nil {
				return idOut{}, err
			}
			return idOut{ID: id}, nil
		},
	})
}
