package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"gradebook/internal/domain"
	"gradebook/internal/feature/assignment"
	"gradebook/internal/feature/grade"
)

// AssignmentRepo 作业与学生提交；列表查询不读取文件内容
type AssignmentRepo struct{ db *gorm.DB }

func NewAssignmentRepo(db *gorm.DB) *AssignmentRepo { return &AssignmentRepo{db: db} }

var _ domain.AssignmentRepository = (*AssignmentRepo)(nil)

func (r *AssignmentRepo) Create(ctx context.Context, a *domain.Assignment) error {
	m := assignment.AssignmentModel{
		ID:              a.ID,
		Title:           a.Title,
		Description:     a.Description,
		TeacherID:       a.TeacherID,
		TeacherUsername: a.TeacherUsername,
		DueDate:         a.DueDate,
		FileName:        a.File.Name,
		FileType:        a.File.ContentType,
		FileData:        a.File.Data,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return errors.Wrap(err, "create assignment")
	}
	a.UploadedAt, a.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

func (r *AssignmentRepo) FindByID(ctx context.Context, id string, withFile bool) (*domain.Assignment, error) {
	tx := r.db.WithContext(ctx)
	if !withFile {
		tx = tx.Omit("file_data")
	}
	var m assignment.AssignmentModel
	err := tx.Where("id = ?", id).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find assignment")
	}
	return toAssignment(&m), nil
}

func (r *AssignmentRepo) List(ctx context.Context) ([]domain.Assignment, error) {
	var rows []assignment.AssignmentModel
	if err := r.db.WithContext(ctx).Omit("file_data").Order("created_at desc, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list assignments")
	}
	out := make([]domain.Assignment, 0, len(rows))
	for i := range rows {
		out = append(out, *toAssignment(&rows[i]))
	}
	return out, nil
}

// Update File 为空时保留原文件
func (r *AssignmentRepo) Update(ctx context.Context, a *domain.Assignment) error {
	cols := map[string]any{
		"title":            a.Title,
		"description":      a.Description,
		"teacher_id":       a.TeacherID,
		"teacher_username": a.TeacherUsername,
		"due_date":         a.DueDate,
	}
	if !a.File.Empty() {
		cols["file_name"] = a.File.Name
		cols["file_type"] = a.File.ContentType
		cols["file_data"] = a.File.Data
	}
	var m assignment.AssignmentModel
	tx := r.db.WithContext(ctx)
	if err := tx.Model(&assignment.AssignmentModel{}).Where("id = ?", a.ID).Updates(cols).Error; err != nil {
		return errors.Wrap(err, "update assignment")
	}
	if err := tx.Select("updated_at").Where("id = ?", a.ID).First(&m).Error; err == nil {
		a.UpdatedAt = m.UpdatedAt
	}
	return nil
}

// Delete 连同提交与成绩一起删除
func (r *AssignmentRepo) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("assignment_id = ?", id).Delete(&grade.GradeModel{}).Error; err != nil {
			return errors.Wrap(err, "delete grades")
		}
		if err := tx.Where("assignment_id = ?", id).Delete(&assignment.SubmissionModel{}).Error; err != nil {
			return errors.Wrap(err, "delete submissions")
		}
		res := tx.Where("id = ?", id).Delete(&assignment.AssignmentModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete assignment")
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func (r *AssignmentRepo) CreateSubmission(ctx context.Context, s *domain.Submission) error {
	m := toSubmissionModel(s)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("Assignment already submitted")
		}
		return errors.Wrap(err, "create submission")
	}
	return nil
}

func (r *AssignmentRepo) FindSubmission(ctx context.Context, assignmentID, studentID string, withFile bool) (*domain.Submission, error) {
	tx := r.db.WithContext(ctx)
	if !withFile {
		tx = tx.Omit("file_data")
	}
	var m assignment.SubmissionModel
	err := tx.Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find submission")
	}
	return toSubmission(&m), nil
}

func (r *AssignmentRepo) ListSubmissions(ctx context.Context, assignmentID string) ([]domain.Submission, error) {
	var rows []assignment.SubmissionModel
	err := r.db.WithContext(ctx).Omit("file_data").
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "list submissions")
	}
	out := make([]domain.Submission, 0, len(rows))
	for i := range rows {
		out = append(out, *toSubmission(&rows[i]))
	}
	return out, nil
}

func (r *AssignmentRepo) UpdateSubmission(ctx context.Context, s *domain.Submission) error {
	err := r.db.WithContext(ctx).Model(&assignment.SubmissionModel{}).Where("id = ?", s.ID).Updates(map[string]any{
		"file_name":    s.File.Name,
		"file_type":    s.File.ContentType,
		"file_data":    s.File.Data,
		"submitted_at": s.SubmittedAt,
		"status":       string(s.Status),
	}).Error
	return errors.Wrap(err, "update submission")
}

func (r *AssignmentRepo) DeleteSubmission(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&assignment.SubmissionModel{}).Error
	return errors.Wrap(err, "delete submission")
}

func toAssignment(m *assignment.AssignmentModel) *domain.Assignment {
	return &domain.Assignment{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		TeacherID:       m.TeacherID,
		TeacherUsername: m.TeacherUsername,
		DueDate:         m.DueDate,
		File:            domain.File{Name: m.FileName, ContentType: m.FileType, Data: m.FileData},
		UploadedAt:      m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toSubmissionModel(s *domain.Submission) assignment.SubmissionModel {
	return assignment.SubmissionModel{
		ID:              s.ID,
		AssignmentID:    s.AssignmentID,
		StudentID:       s.StudentID,
		StudentUsername: s.StudentUsername,
		FileName:        s.File.Name,
		FileType:        s.File.ContentType,
		FileData:        s.File.Data,
		SubmittedAt:     s.SubmittedAt,
		Status:          string(s.Status),
	}
}

func toSubmission(m *assignment.SubmissionModel) *domain.Submission {
	return &domain.Submission{
		ID:              m.ID,
		AssignmentID:    m.AssignmentID,
		StudentID:       m.StudentID,
		StudentUsername: m.StudentUsername,
		File:            domain.File{Name: m.FileName, ContentType: m.FileType, Data: m.FileData},
		SubmittedAt:     m.SubmittedAt,
		Status:          domain.Status(m.Status),
	}
}
