package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gradebook/internal/domain"
	"gradebook/internal/feature/grade"
)

type GradeRepo struct{ db *gorm.DB }

func NewGradeRepo(db *gorm.DB) *GradeRepo { return &GradeRepo{db: db} }

var _ domain.GradeRepository = (*GradeRepo)(nil)

// Upsert 同一 (assignment, student) 覆盖分数与评语，写回已存在记录的 ID
func (r *GradeRepo) Upsert(ctx context.Context, g *domain.Grade) error {
	m := grade.GradeModel{
		ID:           g.ID,
		AssignmentID: g.AssignmentID,
		StudentID:    g.StudentID,
		StudentEmail: g.StudentEmail,
		Mark:         g.Mark,
		Feedback:     g.Feedback,
		GradedBy:     g.GradedBy,
	}
	tx := r.db.WithContext(ctx)
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "student_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"student_email", "mark", "feedback", "graded_by", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return errors.Wrap(err, "upsert grade")
	}
	saved, err := r.Find(ctx, g.AssignmentID, g.StudentID)
	if err != nil {
		return err
	}
	if saved != nil {
		*g = *saved
	}
	return nil
}

func (r *GradeRepo) Find(ctx context.Context, assignmentID, studentID string) (*domain.Grade, error) {
	var m grade.GradeModel
	err := r.db.WithContext(ctx).Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find grade")
	}
	return &domain.Grade{
		ID:           m.ID,
		AssignmentID: m.AssignmentID,
		StudentID:    m.StudentID,
		StudentEmail: m.StudentEmail,
		Mark:         m.Mark,
		Feedback:     m.Feedback,
		GradedBy:     m.GradedBy,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}, nil
}
