package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

type GradeHandler struct{ svc *service.GradeService }

func NewGradeHandler(svc *service.GradeService) *GradeHandler { return &GradeHandler{svc: svc} }

func (h *GradeHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)

	ez.RegisterAction(e, ez.Action[domain.GradeRequest, *domain.Grade]{
		Method: http.MethodPut,
		Path:   "/assignments/:id/grades/:email",
		Binder: ez.BindJSON,
		Roles:  []domain.Role{domain.RoleTeacher, domain.RoleAdmin},
		Handler: func(c *gin.Context, who domain.Identity, in *domain.GradeRequest) (*domain.Grade, error) {
			return h.svc.Assign(c.Request.Context(), who, c.Param("id"), c.Param("email"), *in)
		},
	})
	// 学生只能查看自己的成绩，由 service 判断
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Grade]{
		Method: http.MethodGet,
		Path:   "/assignments/:id/grades/:email",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (*domain.Grade, error) {
			return h.svc.View(c.Request.Context(), who, c.Param("id"), c.Param("email"))
		},
	})
}
