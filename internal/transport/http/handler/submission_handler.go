package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

// SubmissionHandler 学生对作业的提交，挂在 /assignments/:id 之下
type SubmissionHandler struct {
	svc     *service.SubmissionService
	maxFile int64
}

func NewSubmissionHandler(svc *service.SubmissionService, maxFile int64) *SubmissionHandler {
	return &SubmissionHandler{svc: svc, maxFile: maxFile}
}

func (h *SubmissionHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)
	students := []domain.Role{domain.RoleStudent}

	upload := func(fn func(c *gin.Context, who domain.Identity, f *domain.File) (*domain.Submission, error)) func(*gin.Context, domain.Identity, *struct{}) (*domain.Submission, error) {
		return func(c *gin.Context, who domain.Identity, _ *struct{}) (*domain.Submission, error) {
			f, err := ez.FormFile(c, "file", h.maxFile)
			if err != nil {
				return nil, err
			}
			return fn(c, who, f)
		}
	}

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Submission]{
		Method: http.MethodPost,
		Path:   "/assignments/:id/submission",
		Binder: ez.BindNone,
		Roles:  students,
		Handler: upload(func(c *gin.Context, who domain.Identity, f *domain.File) (*domain.Submission, error) {
			return h.svc.Submit(c.Request.Context(), who, c.Param("id"), f)
		}),
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Submission]{
		Method: http.MethodPut,
		Path:   "/assignments/:id/submission",
		Binder: ez.BindNone,
		Roles:  students,
		Handler: upload(func(c *gin.Context, who domain.Identity, f *domain.File) (*domain.Submission, error) {
			return h.svc.Resubmit(c.Request.Context(), who, c.Param("id"), f)
		}),
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.SubmissionStatus]{
		Method: http.MethodGet,
		Path:   "/assignments/:id/submission",
		Binder: ez.BindNone,
		Roles:  students,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (*domain.SubmissionStatus, error) {
			return h.svc.Status(c.Request.Context(), who, c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/assignments/:id/submission",
		Binder: ez.BindNone,
		Roles:  students,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.svc.Delete(c.Request.Context(), who, id)
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Submission]{
		Method: http.MethodGet,
		Path:   "/assignments/:id/submissions",
		Binder: ez.BindNone,
		Roles:  []domain.Role{domain.RoleTeacher, domain.RoleAdmin},
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) ([]domain.Submission, error) {
			return h.svc.List(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *ez.Attachment]{
		Method: http.MethodGet,
		Path:   "/assignments/:id/submissions/:studentId/file",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (*ez.Attachment, error) {
			f, err := h.svc.Download(c.Request.Context(), who, c.Param("id"), c.Param("studentId"))
			if err != nil {
				return nil, err
			}
			return &ez.Attachment{Name: f.Name, ContentType: f.ContentType, Data: f.Data}, nil
		},
	})
}
