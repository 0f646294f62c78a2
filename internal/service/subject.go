package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gradebook/internal/core/validate"
	"gradebook/internal/domain"
	"gradebook/pkg/utils"
)

type SubjectService struct {
	users    domain.UserRepository
	subjects domain.SubjectRepository
	log      *zap.Logger
}

func NewSubjectService(users domain.UserRepository, subjects domain.SubjectRepository, l *zap.Logger) *SubjectService {
	if l == nil {
		l = zap.NewNop()
	}
	return &SubjectService{users: users, subjects: subjects, log: l}
}

func (s *SubjectService) Create(ctx context.Context, req domain.SubjectRequest) (*domain.Subject, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	t, err := userWithRole(ctx, s.users, req.TeacherUsername, domain.RoleTeacher)
	if err != nil {
		return nil, err
	}
	sub := &domain.Subject{
		ID:              utils.NewID(),
		Name:            strings.TrimSpace(req.Name),
		TeacherID:       t.ID,
		TeacherUsername: t.Username,
	}
	if err := s.subjects.Create(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("subject created", zap.String("sid", sub.ID), zap.String("teacher", t.Username))
	return sub, nil
}

func (s *SubjectService) List(ctx context.Context) ([]domain.Subject, error) {
	return s.subjects.List(ctx)
}

// Mine 调用方（教师）负责的科目
func (s *SubjectService) Mine(ctx context.Context, who domain.Identity) ([]domain.Subject, error) {
	return s.subjects.ListByTeacher(ctx, who.UserID)
}

func (s *SubjectService) Get(ctx context.Context, id string) (*domain.Subject, error) {
	sub, err := s.subjects.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.NotFound("Subject not found: " + id)
	}
	return sub, nil
}

func (s *SubjectService) Update(ctx context.Context, id string, req domain.SubjectRequest) (*domain.Subject, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t, err := userWithRole(ctx, s.users, req.TeacherUsername, domain.RoleTeacher)
	if err != nil {
		return nil, err
	}
	sub.Name = strings.TrimSpace(req.Name)
	sub.TeacherID, sub.TeacherUsername = t.ID, t.Username
	if err := s.subjects.Update(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubjectService) Delete(ctx context.Context, id string) error {
	ok, err := s.subjects.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Subject not found: " + id)
	}
	s.log.Info("subject deleted", zap.String("sid", id))
	return nil
}
