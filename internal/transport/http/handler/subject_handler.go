package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

type SubjectHandler struct{ svc *service.SubjectService }

func NewSubjectHandler(svc *service.SubjectService) *SubjectHandler { return &SubjectHandler{svc: svc} }

func (h *SubjectHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)
	admins := []domain.Role{domain.RoleAdmin}
	staff := []domain.Role{domain.RoleAdmin, domain.RoleTeacher}

	ez.RegisterAction(e, ez.Action[domain.SubjectRequest, *domain.Subject]{
		Method: http.MethodPost,
		Path:   "/subjects",
		Binder: ez.BindJSON,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.SubjectRequest) (*domain.Subject, error) {
			return h.svc.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Subject]{
		Method: http.MethodGet,
		Path:   "/subjects",
		Binder: ez.BindNone,
		Roles:  staff,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) ([]domain.Subject, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Subject]{
		Method: http.MethodGet,
		Path:   "/subjects/mine",
		Binder: ez.BindNone,
		Roles:  []domain.Role{domain.RoleTeacher},
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) ([]domain.Subject, error) {
			return h.svc.Mine(c.Request.Context(), who)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Subject]{
		Method: http.MethodGet,
		Path:   "/subjects/:id",
		Binder: ez.BindNone,
		Roles:  staff,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (*domain.Subject, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[domain.SubjectRequest, *domain.Subject]{
		Method: http.MethodPut,
		Path:   "/subjects/:id",
		Binder: ez.BindJSON,
		Roles:  staff,
		Handler: func(c *gin.Context, _ domain.Identity, in *domain.SubjectRequest) (*domain.Subject, error) {
			return h.svc.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/subjects/:id",
		Binder: ez.BindNone,
		Roles:  admins,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.svc.Delete(c.Request.Context(), id)
		},
	})
}
