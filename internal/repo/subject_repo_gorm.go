package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"gradebook/internal/domain"
	"gradebook/internal/feature/subject"
)

type SubjectRepo struct{ db *gorm.DB }

func NewSubjectRepo(db *gorm.DB) *SubjectRepo { return &SubjectRepo{db: db} }

var _ domain.SubjectRepository = (*SubjectRepo)(nil)

func (r *SubjectRepo) Create(ctx context.Context, s *domain.Subject) error {
	m := subject.SubjectModel{ID: s.ID, Name: s.Name, TeacherID: s.TeacherID, TeacherUsername: s.TeacherUsername}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errors.Wrap(err, "create subject")
	}
	s.CreatedAt = m.CreatedAt
	return nil
}

func (r *SubjectRepo) FindByID(ctx context.Context, id string) (*domain.Subject, error) {
	var m subject.SubjectModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find subject")
	}
	return toSubject(&m), nil
}

func (r *SubjectRepo) List(ctx context.Context) ([]domain.Subject, error) {
	return r.find(r.db.WithContext(ctx))
}

func (r *SubjectRepo) ListByTeacher(ctx context.Context, teacherID string) ([]domain.Subject, error) {
	return r.find(r.db.WithContext(ctx).Where("teacher_id = ?", teacherID))
}

func (r *SubjectRepo) find(tx *gorm.DB) ([]domain.Subject, error) {
	var rows []subject.SubjectModel
	if err := tx.Order("name, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list subjects")
	}
	out := make([]domain.Subject, 0, len(rows))
	for i := range rows {
		out = append(out, *toSubject(&rows[i]))
	}
	return out, nil
}

func (r *SubjectRepo) Update(ctx context.Context, s *domain.Subject) error {
	res := r.db.WithContext(ctx).Model(&subject.SubjectModel{}).Where("id = ?", s.ID).Updates(map[string]any{
		"name":             s.Name,
		"teacher_id":       s.TeacherID,
		"teacher_username": s.TeacherUsername,
	})
	if res.Error != nil {
		return errors.Wrap(res.Error, "update subject")
	}
	return nil
}

func (r *SubjectRepo) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&subject.SubjectModel{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "delete subject")
	}
	return res.RowsAffected > 0, nil
}

func toSubject(m *subject.SubjectModel) *domain.Subject {
	return &domain.Subject{
		ID:              m.ID,
		Name:            m.Name,
		TeacherID:       m.TeacherID,
		TeacherUsername: m.TeacherUsername,
		CreatedAt:       m.CreatedAt,
	}
}
