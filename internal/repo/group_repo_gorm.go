package repo

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"gradebook/internal/domain"
	"gradebook/internal/feature/group"
	"gradebook/internal/feature/user"
	"gradebook/pkg/utils"
)

// GroupRepo 组的教师来自 group_teachers，学生来自 users.group_id，读时拼装
type GroupRepo struct{ db *gorm.DB }

func NewGroupRepo(db *gorm.DB) *GroupRepo { return &GroupRepo{db: db} }

var _ domain.GroupRepository = (*GroupRepo)(nil)

func (r *GroupRepo) Create(ctx context.Context, name string, teacherIDs, studentIDs []string) (*domain.Group, error) {
	var out *domain.Group
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		g := group.GroupModel{ID: utils.NewID(), Name: name}
		if err := tx.Create(&g).Error; err != nil {
			return errors.Wrap(err, "create group")
		}
		if err := linkTeachers(tx, g.ID, teacherIDs); err != nil {
			return err
		}
		if err := assignStudents(tx, g.ID, studentIDs); err != nil {
			return err
		}
		var err error
		out, err = loadGroup(tx, g.ID)
		return err
	})
	return out, err
}

func (r *GroupRepo) FindByID(ctx context.Context, id string) (*domain.Group, error) {
	return loadGroup(r.db.WithContext(ctx), id)
}

func (r *GroupRepo) List(ctx context.Context) ([]domain.Group, error) {
	db := r.db.WithContext(ctx)
	var rows []group.GroupModel
	if err := db.Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list groups")
	}
	out := make([]domain.Group, 0, len(rows))
	for i := range rows {
		g, err := fillGroup(db, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

func (r *GroupRepo) Replace(ctx context.Context, id, name string, teacherIDs, studentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustGroup(tx, id); err != nil {
			return err
		}
		if err := tx.Model(&group.GroupModel{}).Where("id = ?", id).Update("name", name).Error; err != nil {
			return errors.Wrap(err, "rename group")
		}
		if err := tx.Where("group_id = ?", id).Delete(&group.GroupTeacherModel{}).Error; err != nil {
			return errors.Wrap(err, "clear group teachers")
		}
		if err := linkTeachers(tx, id, teacherIDs); err != nil {
			return err
		}
		if err := tx.Model(&user.UserModel{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return errors.Wrap(err, "clear group students")
		}
		return assignStudents(tx, id, studentIDs)
	})
}

func (r *GroupRepo) AddStudents(ctx context.Context, id string, studentIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := mustGroup(tx, id); err != nil {
			return err
		}
		return assignStudents(tx, id, studentIDs)
	})
}

func (r *GroupRepo) Delete(ctx context.Context, id string) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user.UserModel{}).Where("group_id = ?", id).Update("group_id", nil).Error; err != nil {
			return errors.Wrap(err, "unassign students")
		}
		if err := tx.Where("group_id = ?", id).Delete(&group.GroupTeacherModel{}).Error; err != nil {
			return errors.Wrap(err, "unlink teachers")
		}
		res := tx.Where("id = ?", id).Delete(&group.GroupModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete group")
		}
		deleted = res.RowsAffected > 0
		return nil
	})
	return deleted, err
}

func mustGroup(tx *gorm.DB, id string) error {
	var n int64
	if err := tx.Model(&group.GroupModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return errors.Wrap(err, "find group")
	}
	if n == 0 {
		return domain.NotFound("Group not found: " + id)
	}
	return nil
}

func linkTeachers(tx *gorm.DB, groupID string, teacherIDs []string) error {
	if len(teacherIDs) == 0 {
		return nil
	}
	links := make([]group.GroupTeacherModel, 0, len(teacherIDs))
	seen := make(map[string]struct{}, len(teacherIDs))
	for _, tid := range teacherIDs {
		if _, ok := seen[tid]; ok {
			continue
		}
		seen[tid] = struct{}{}
		links = append(links, group.GroupTeacherModel{GroupID: groupID, TeacherID: tid})
	}
	return errors.Wrap(tx.Create(&links).Error, "link teachers")
}

func assignStudents(tx *gorm.DB, groupID string, studentIDs []string) error {
	if len(studentIDs) == 0 {
		return nil
	}
	err := tx.Model(&user.UserModel{}).
		Where("id IN ? AND role = ?", studentIDs, string(domain.RoleStudent)).
		Update("group_id", groupID).Error
	return errors.Wrap(err, "assign students")
}

func loadGroup(db *gorm.DB, id string) (*domain.Group, error) {
	var m group.GroupModel
	err := db.Where("id = ?", id).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find group")
	}
	return fillGroup(db, &m)
}

func fillGroup(db *gorm.DB, m *group.GroupModel) (*domain.Group, error) {
	g := &domain.Group{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt, Teachers: []domain.UserRef{}, Students: []domain.UserRef{}}

	var teachers []user.UserModel
	err := db.Model(&user.UserModel{}).
		Select("users.*").
		Joins("JOIN group_teachers gt ON gt.teacher_id = users.id").
		Where("gt.group_id = ?", m.ID).
		Order("users.username").
		Find(&teachers).Error
	if err != nil {
		return nil, errors.Wrap(err, "load group teachers")
	}
	for _, t := range teachers {
		g.Teachers = append(g.Teachers, domain.UserRef{ID: t.ID, Username: t.Username, Name: t.Name})
	}

	var students []user.UserModel
	if err := db.Where("group_id = ?", m.ID).Order("username").Find(&students).Error; err != nil {
		return nil, errors.Wrap(err, "load group students")
	}
	for _, s := range students {
		g.Students = append(g.Students, domain.UserRef{ID: s.ID, Username: s.Username, Name: s.Name})
	}
	return g, nil
}
