package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gradebook/internal/domain"
	"gradebook/pkg/utils"
)

type SubmissionService struct {
	users       domain.UserRepository
	assignments domain.AssignmentRepository
	maxFile     int64
	log         *zap.Logger
	now         func() time.Time
}

func NewSubmissionService(users domain.UserRepository, assignments domain.AssignmentRepository, maxFile int64, l *zap.Logger) *SubmissionService {
	if l == nil {
		l = zap.NewNop()
	}
	return &SubmissionService{users: users, assignments: assignments, maxFile: maxFile, log: l, now: time.Now}
}

func (s *SubmissionService) student(ctx context.Context, who domain.Identity) (*domain.User, error) {
	if who.Role != domain.RoleStudent {
		return nil, domain.Forbidden("Only students can submit assignments")
	}
	u, err := s.users.FindByID(ctx, who.UserID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("Student not found: " + who.UserID)
	}
	return u, nil
}

func (s *SubmissionService) assignment(ctx context.Context, id string) (*domain.Assignment, error) {
	a, err := s.assignments.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFound("Assignment not found: " + id)
	}
	return a, nil
}

// Submit 每个学生每份作业只能提交一次，之后走 Resubmit
func (s *SubmissionService) Submit(ctx context.Context, who domain.Identity, assignmentID string, f *domain.File) (*domain.Submission, error) {
	u, err := s.student(ctx, who)
	if err != nil {
		return nil, err
	}
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := checkFile(f, s.maxFile); err != nil {
		return nil, err
	}
	if prev, err := s.assignments.FindSubmission(ctx, a.ID, u.ID, false); err != nil {
		return nil, err
	} else if prev != nil {
		return nil, domain.Conflict("Assignment already submitted")
	}
	at := s.now()
	sub := &domain.Submission{
		ID:              utils.NewID(),
		AssignmentID:    a.ID,
		StudentID:       u.ID,
		StudentUsername: u.Username,
		File:            *f,
		SubmittedAt:     at,
		Status:          a.StatusAt(at),
	}
	if err := s.assignments.CreateSubmission(ctx, sub); err != nil {
		return nil, err
	}
	s.log.Info("assignment submitted", zap.String("aid", a.ID), zap.String("student", u.Username), zap.String("status", string(sub.Status)))
	return sub, nil
}

// Resubmit 替换文件并按新的提交时间重算状态
func (s *SubmissionService) Resubmit(ctx context.Context, who domain.Identity, assignmentID string, f *domain.File) (*domain.Submission, error) {
	u, err := s.student(ctx, who)
	if err != nil {
		return nil, err
	}
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if err := checkFile(f, s.maxFile); err != nil {
		return nil, err
	}
	sub, err := s.own(ctx, a.ID, u.ID, false)
	if err != nil {
		return nil, err
	}
	at := s.now()
	sub.File, sub.SubmittedAt, sub.Status = *f, at, a.StatusAt(at)
	if err := s.assignments.UpdateSubmission(ctx, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *SubmissionService) own(ctx context.Context, assignmentID, studentID string, withFile bool) (*domain.Submission, error) {
	sub, err := s.assignments.FindSubmission(ctx, assignmentID, studentID, withFile)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, domain.NotFound("Submission not found for assignment: " + assignmentID)
	}
	return sub, nil
}

func (s *SubmissionService) Delete(ctx context.Context, who domain.Identity, assignmentID string) error {
	u, err := s.student(ctx, who)
	if err != nil {
		return err
	}
	sub, err := s.own(ctx, assignmentID, u.ID, false)
	if err != nil {
		return err
	}
	return s.assignments.DeleteSubmission(ctx, sub.ID)
}

// Status 学生查看自己在某作业上的状态，未提交为 TO_DO
func (s *SubmissionService) Status(ctx context.Context, who domain.Identity, assignmentID string) (*domain.SubmissionStatus, error) {
	u, err := s.student(ctx, who)
	if err != nil {
		return nil, err
	}
	a, err := s.assignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	sub, err := s.assignments.FindSubmission(ctx, a.ID, u.ID, false)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return &domain.SubmissionStatus{AssignmentID: a.ID, Status: domain.StatusToDo}, nil
	}
	return &domain.SubmissionStatus{AssignmentID: a.ID, Status: sub.Status, Submission: sub}, nil
}

func (s *SubmissionService) List(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	if _, err := s.assignment(ctx, assignmentID); err != nil {
		return nil, err
	}
	return s.assignments.ListSubmissions(ctx, assignmentID)
}

// Download 学生只能下载自己的提交
func (s *SubmissionService) Download(ctx context.Context, who domain.Identity, assignmentID, studentID string) (*domain.File, error) {
	if !who.HasRole(domain.RoleTeacher, domain.RoleAdmin) && who.UserID != studentID {
		return nil, domain.Forbidden("You can only download your own submission")
	}
	sub, err := s.own(ctx, assignmentID, studentID, true)
	if err != nil {
		return nil, err
	}
	return &sub.File, nil
}
