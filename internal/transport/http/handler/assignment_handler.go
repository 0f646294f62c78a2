package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/ez"
)

// AssignmentHandler 上传与修改走 multipart/form-data，文件字段名为 file
type AssignmentHandler struct {
	svc     *service.AssignmentService
	maxFile int64
}

func NewAssignmentHandler(svc *service.AssignmentService, maxFile int64) *AssignmentHandler {
	return &AssignmentHandler{svc: svc, maxFile: maxFile}
}

type assignmentForm struct {
	Title           string `form:"title"`
	Description     string `form:"description"`
	TeacherUsername string `form:"teacherUsername"`
	DueDate         string `form:"dueDate"` // RFC3339 或 YYYY-MM-DD
}

// parseDueDate 仅给日期时取当天 23:59:59 UTC
func parseDueDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil, ez.BadRequest("dueDate must be RFC3339 or YYYY-MM-DD")
	}
	end := d.Add(24*time.Hour - time.Second)
	return &end, nil
}

func (h *AssignmentHandler) MountAPI(api *gin.RouterGroup) {
	e := ez.New(api)
	staff := []domain.Role{domain.RoleTeacher, domain.RoleAdmin}

	ez.RegisterAction(e, ez.Action[assignmentForm, *domain.Assignment]{
		Method: http.MethodPost,
		Path:   "/assignments",
		Binder: ez.BindForm,
		Roles:  staff,
		Handler: func(c *gin.Context, who domain.Identity, in *assignmentForm) (*domain.Assignment, error) {
			due, err := parseDueDate(in.DueDate)
			if err != nil {
				return nil, err
			}
			f, err := ez.FormFile(c, "file", h.maxFile)
			if err != nil {
				return nil, err
			}
			return h.svc.Upload(c.Request.Context(), who, domain.AssignmentUpload{
				Title:           in.Title,
				Description:     in.Description,
				TeacherUsername: in.TeacherUsername,
				DueDate:         due,
				File:            f,
			})
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, []domain.Assignment]{
		Method: http.MethodGet,
		Path:   "/assignments",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) ([]domain.Assignment, error) {
			return h.svc.List(c.Request.Context())
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *domain.Assignment]{
		Method: http.MethodGet,
		Path:   "/assignments/:id",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (*domain.Assignment, error) {
			return h.svc.Get(c.Request.Context(), c.Param("id"))
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, *ez.Attachment]{
		Method: http.MethodGet,
		Path:   "/assignments/:id/file",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ domain.Identity, _ *struct{}) (*ez.Attachment, error) {
			f, err := h.svc.Download(c.Request.Context(), c.Param("id"))
			if err != nil {
				return nil, err
			}
			return &ez.Attachment{Name: f.Name, ContentType: f.ContentType, Data: f.Data}, nil
		},
	})
	ez.RegisterAction(e, ez.Action[assignmentForm, *domain.Assignment]{
		Method: http.MethodPut,
		Path:   "/assignments/:id",
		Binder: ez.BindForm,
		Roles:  staff,
		Handler: func(c *gin.Context, who domain.Identity, in *assignmentForm) (*domain.Assignment, error) {
			due, err := parseDueDate(in.DueDate)
			if err != nil {
				return nil, err
			}
			f, err := ez.FormFile(c, "file", h.maxFile)
			if err != nil {
				return nil, err
			}
			return h.svc.Update(c.Request.Context(), who, c.Param("id"), domain.AssignmentPatch{
				Title:           in.Title,
				Description:     in.Description,
				TeacherUsername: in.TeacherUsername,
				DueDate:         due,
				File:            f,
			})
		},
	})
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodDelete,
		Path:   "/assignments/:id",
		Binder: ez.BindNone,
		Roles:  staff,
		Handler: func(c *gin.Context, who domain.Identity, _ *struct{}) (idOut, error) {
			id := c.Param("id")
			return idOut{ID: id}, h.svc.Delete(c.Request.Context(), who, id)
		},
	})
}
