package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"gradebook/internal/core/validate"
	"gradebook/internal/domain"
	"gradebook/pkg/utils"
)

type GradeService struct {
	users       domain.UserRepository
	assignments domain.AssignmentRepository
	grades      domain.GradeRepository
	log         *zap.Logger
}

func NewGradeService(users domain.UserRepository, assignments domain.AssignmentRepository, grades domain.GradeRepository, l *zap.Logger) *GradeService {
	if l == nil {
		l = zap.NewNop()
	}
	return &GradeService{users: users, assignments: assignments, grades: grades, log: l}
}

func (s *GradeService) target(ctx context.Context, assignmentID, studentEmail string) (*domain.Assignment, *domain.User, error) {
	a, err := s.assignments.FindByID(ctx, assignmentID, false)
	if err != nil {
		return nil, nil, err
	}
	if a == nil {
		return nil, nil, domain.NotFound("Assignment not found: " + assignmentID)
	}
	email := strings.TrimSpace(studentEmail)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if u == nil {
		return nil, nil, domain.NotFound("Student not found: " + email)
	}
	if !u.Is(domain.RoleStudent) {
		return nil, nil, domain.Validation(email + " is not a student")
	}
	return a, u, nil
}

// Assign 同一作业同一学生重复打分即覆盖
func (s *GradeService) Assign(ctx context.Context, who domain.Identity, assignmentID, studentEmail string, req domain.GradeRequest) (*domain.Grade, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	a, u, err := s.target(ctx, assignmentID, studentEmail)
	if err != nil {
		return nil, err
	}
	g := &domain.Grade{
		ID:           utils.NewID(),
		AssignmentID: a.ID,
		StudentID:    u.ID,
		StudentEmail: u.Email,
		Mark:         *req.Mark,
		Feedback:     strings.TrimSpace(req.Feedback),
		GradedBy:     who.UserID,
	}
	if err := s.grades.Upsert(ctx, g); err != nil {
		return nil, err
	}
	s.log.Info("grade assigned", zap.String("aid", a.ID), zap.String("student", u.ID), zap.Float64("mark", g.Mark))
	return g, nil
}

func (s *GradeService) View(ctx context.Context, who domain.Identity, assignmentID, studentEmail string) (*domain.Grade, error) {
	// 学生先比对本人邮箱，别人的邮箱一律 Forbidden，不暴露账号是否存在或其角色
	if !who.HasRole(domain.RoleTeacher, domain.RoleAdmin) {
		self, err := s.users.FindByID(ctx, who.UserID)
		if err != nil {
			return nil, err
		}
		if self == nil || !strings.EqualFold(self.Email, strings.TrimSpace(studentEmail)) {
			return nil, domain.Forbidden("You can only view your own grades")
		}
	}
	a, u, err := s.target(ctx, assignmentID, studentEmail)
	if err != nil {
		return nil, err
	}
	g, err := s.grades.Find(ctx, a.ID, u.ID)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, domain.NotFound("Grade not found for the given student and assignment")
	}
	return g, nil
}
