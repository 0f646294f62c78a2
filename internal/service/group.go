package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gradebook/internal/core/validate"
	"gradebook/internal/domain"
)

type GroupService struct {
	users  domain.UserRepository
	groups domain.GroupRepository
	log    *zap.Logger
}

func NewGroupService(users domain.UserRepository, groups domain.GroupRepository, l *zap.Logger) *GroupService {
	if l == nil {
		l = zap.NewNop()
	}
	return &GroupService{users: users, groups: groups, log: l}
}

type AddStudentsRequest struct {
	StudentUsernames []string `json:"studentUsernames" validate:"min=1,dive,notblank"`
}

func (s *GroupService) Create(ctx context.Context, req domain.GroupRequest) (*domain.Group, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	teacherIDs, studentIDs, err := s.members(ctx, req)
	if err != nil {
		return nil, err
	}
	g, err := s.groups.Create(ctx, strings.TrimSpace(req.Name), teacherIDs, studentIDs)
	if err != nil {
		return nil, err
	}
	s.log.Info("group created", zap.String("gid", g.ID), zap.Int("teachers", len(teacherIDs)), zap.Int("students", len(studentIDs)))
	return g, nil
}

func (s *GroupService) members(ctx context.Context, req domain.GroupRequest) ([]string, []string, error) {
	teacherIDs, err := usersWithRole(ctx, s.users, req.TeacherUsernames, domain.RoleTeacher)
	if err != nil {
		return nil, nil, err
	}
	studentIDs, err := usersWithRole(ctx, s.users, req.StudentUsernames, domain.RoleStudent)
	if err != nil {
		return nil, nil, err
	}
	return teacherIDs, studentIDs, nil
}

func (s *GroupService) List(ctx context.Context) ([]domain.Group, error) {
	return s.groups.List(ctx)
}

func (s *GroupService) Get(ctx context.Context, id string) (*domain.Group, error) {
	g, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.NotFound("Group not found: " + id)
	}
	return g, nil
}

// Update 整体替换名称、教师与学生；不在新名单里的学生被移出
func (s *GroupService) Update(ctx context.Context, id string, req domain.GroupRequest) (*domain.Group, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	teacherIDs, studentIDs, err := s.members(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.groups.Replace(ctx, id, strings.TrimSpace(req.Name), teacherIDs, studentIDs); err != nil {
		return nil, err
	}
	s.log.Info("group updated", zap.String("gid", id))
	return s.Get(ctx, id)
}

func (s *GroupService) AddStudents(ctx context.Context, id string, req AddStudentsRequest) (*domain.Group, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	studentIDs, err := usersWithRole(ctx, s.users, req.StudentUsernames, domain.RoleStudent)
	if err != nil {
		return nil, err
	}
	if err := s.groups.AddStudents(ctx, id, studentIDs); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *GroupService) Delete(ctx context.Context, id string) error {
	ok, err := s.groups.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NotFound("Group not found: " + id)
	}
	s.log.Info("group deleted", zap.String("gid", id))
	return nil
}
