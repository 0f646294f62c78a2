package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"gradebook/internal/core/validate"
	"gradebook/internal/domain"
	"gradebook/pkg/utils"
)

type AssignmentService struct {
	users       domain.UserRepository
	assignments domain.AssignmentRepository
	maxFile     int64
	log         *zap.Logger
}

// NewAssignmentService maxFile 为单个文件的字节上限，0 表示不限制
func NewAssignmentService(users domain.UserRepository, assignments domain.AssignmentRepository, maxFile int64, l *zap.Logger) *AssignmentService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AssignmentService{users: users, assignments: assignments, maxFile: maxFile, log: l}
}

func checkFile(f *domain.File, max int64) error {
	if f.Empty() {
		return domain.Validation("File is required")
	}
	if max > 0 && int64(len(f.Data)) > max {
		return domain.Validation(fmt.Sprintf("File exceeds the %d MB limit", max>>20))
	}
	return nil
}

// owner TEACHER 只能以自己名义上传；ADMIN 须指定教师
func (s *AssignmentService) owner(ctx context.Context, who domain.Identity, teacherUsername string) (*domain.User, error) {
	switch who.Role {
	case domain.RoleTeacher:
		u, err := s.users.FindByID(ctx, who.UserID)
		if err != nil {
			return nil, err
		}
		if u == nil {
			return nil, domain.NotFound("Teacher not found: " + who.UserID)
		}
		if name := strings.TrimSpace(teacherUsername); name != "" && name != u.Username {
			return nil, domain.Forbidden("Teachers can only upload assignments for themselves")
		}
		return u, nil
	case domain.RoleAdmin:
		if strings.TrimSpace(teacherUsername) == "" {
			return nil, domain.Validation("teacherUsername is required")
		}
		return userWithRole(ctx, s.users, teacherUsername, domain.RoleTeacher)
	default:
		return nil, domain.Forbidden("Only teachers and admins can manage assignments")
	}
}

func (s *AssignmentService) Upload(ctx context.Context, who domain.Identity, up domain.AssignmentUpload) (*domain.Assignment, error) {
	if err := validate.Struct(up); err != nil {
		return nil, err
	}
	if err := checkFile(up.File, s.maxFile); err != nil {
		return nil, err
	}
	t, err := s.owner(ctx, who, up.TeacherUsername)
	if err != nil {
		return nil, err
	}
	a := &domain.Assignment{
		ID:              utils.NewID(),
		Title:           strings.TrimSpace(up.Title),
		Description:     up.Description,
		TeacherID:       t.ID,
		TeacherUsername: t.Username,
		DueDate:         up.DueDate,
		File:            *up.File,
	}
	if err := s.assignments.Create(ctx, a); err != nil {
		return nil, err
	}
	s.log.Info("assignment uploaded", zap.String("aid", a.ID), zap.String("teacher", t.Username), zap.Int("bytes", len(a.File.Data)))
	return a, nil
}

func (s *AssignmentService) List(ctx context.Context) ([]domain.Assignment, error) {
	return s.assignments.List(ctx)
}

func (s *AssignmentService) Get(ctx context.Context, id string) (*domain.Assignment, error) {
	return s.find(ctx, id, false)
}

func (s *AssignmentService) find(ctx context.Context, id string, withFile bool) (*domain.Assignment, error) {
	a, err := s.assignments.FindByID(ctx, id, withFile)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFound("Assignment not found: " + id)
	}
	return a, nil
}

func (s *AssignmentService) Download(ctx context.Context, id string) (*domain.File, error) {
	a, err := s.find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if a.File.Empty() {
		return nil, domain.NotFound("Assignment has no file: " + id)
	}
	return &a.File, nil
}

// editable 教师只能改删自己的作业
func editable(who domain.Identity, a *domain.Assignment) error {
	switch {
	case who.Role == domain.RoleAdmin:
		return nil
	case who.Role == domain.RoleTeacher && a.TeacherID == who.UserID:
		return nil
	default:
		return domain.Forbidden("You can only modify your own assignments")
	}
}

func (s *AssignmentService) Update(ctx context.Context, who domain.Identity, id string, p domain.AssignmentPatch) (*domain.Assignment, error) {
	if err := validate.Struct(p); err != nil {
		return nil, err
	}
	a, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if err := editable(who, a); err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(p.Title); v != "" {
		a.Title = v
	}
	if p.Description != "" {
		a.Description = p.Description
	}
	if p.DueDate != nil {
		a.DueDate = p.DueDate
	}
	if name := strings.TrimSpace(p.TeacherUsername); name != "" && name != a.TeacherUsername {
		if who.Role != domain.RoleAdmin {
			return nil, domain.Forbidden("Only admins can reassign assignments")
		}
		t, err := userWithRole(ctx, s.users, name, domain.RoleTeacher)
		if err != nil {
			return nil, err
		}
		a.TeacherID, a.TeacherUsername = t.ID, t.Username
	}
	a.File = domain.File{}
	if p.File != nil {
		if err := checkFile(p.File, s.maxFile); err != nil {
			return nil, err
		}
		a.File = *p.File
	}
	if err := s.assignments.Update(ctx, a); err != nil {
		return nil, err
	}
	return s.find(ctx, id, false)
}

func (s *AssignmentService) Delete(ctx context.Context, who domain.Identity, id string) error {
	a, err := s.find(ctx, id, false)
	if err != nil {
		return err
	}
	if err := editable(who, a); err != nil {
		return err
	}
	ok, err := s.assignments.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Assignment not found: " + id)
	}
	s.log.Info("assignment deleted", zap.String("aid", id), zap.String("by", who.UserID))
	return nil
}
