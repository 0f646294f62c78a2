package repo

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"gradebook/internal/domain"
	"gradebook/internal/feature/group"
	"gradebook/internal/feature/user"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

var _ domain.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	m := toUserModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		if isDupKey(err) {
			return r.conflict(ctx, u)
		}
		return errors.Wrap(err, "create user")
	}
	u.CreatedAt, u.UpdatedAt = m.CreatedAt, m.UpdatedAt
	return nil
}

// conflict 唯一索引冲突后回查是哪一列撞了
func (r *UserRepo) conflict(ctx context.Context, u *domain.User) error {
	if other, err := r.FindByEmail(ctx, u.Email); err == nil && other != nil && other.ID != u.ID {
		return domain.Conflict("Email already exists")
	}
	if other, err := r.FindByUsername(ctx, u.Username); err == nil && other != nil && other.ID != u.ID {
		return domain.Conflict("Username already exists")
	}
	return domain.Conflict("User already exists")
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.first(ctx, "email = ?", strings.TrimSpace(email))
}

func (r *UserRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.first(ctx, "username = ?", strings.TrimSpace(username))
}

func (r *UserRepo) first(ctx context.Context, query string, arg any) (*domain.User, error) {
	var m user.UserModel
	err := r.db.WithContext(ctx).Where(query, arg).First(&m).Error
	if notFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	return toUser(&m), nil
}

func (r *UserRepo) List(ctx context.Context, f domain.UserFilter) ([]domain.User, int64, error) {
	tx := r.db.WithContext(ctx).Model(&user.UserModel{})
	if q := strings.TrimSpace(f.Q); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		tx = tx.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ? OR LOWER(username) LIKE ?", like, like, like)
	}
	if f.Role != "" {
		tx = tx.Where("role = ?", string(f.Role))
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	var rows []user.UserModel
	if err := tx.Offset(f.Offset).Limit(f.Limit).Order("created_at desc, id").Find(&rows).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, *toUser(&rows[i]))
	}
	return out, total, nil
}

// Update 只写资料列，角色与角色专属列保持不变
func (r *UserRepo) Update(ctx context.Context, u *domain.User) error {
	res := r.db.WithContext(ctx).Model(&user.UserModel{}).Where("id = ?", u.ID).Updates(map[string]any{
		"name":          u.Name,
		"username":      u.Username,
		"email":         u.Email,
		"password_hash": u.PasswordHash,
	})
	if res.Error != nil {
		if isDupKey(res.Error) {
			return r.conflict(ctx, u)
		}
		return errors.Wrap(res.Error, "update user")
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("User not found: " + u.ID)
	}
	return nil
}

// Delete 物理删除，并解除其负责的组关联
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("teacher_id = ?", id).Delete(&group.GroupTeacherModel{}).Error; err != nil {
			return errors.Wrap(err, "unlink teacher groups")
		}
		res := tx.Where("id = ?", id).Delete(&user.UserModel{})
		if res.Error != nil {
			return errors.Wrap(res.Error, "delete user")
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("User not found: " + id)
		}
		return nil
	})
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func strVal(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func toUserModel(u *domain.User) user.UserModel {
	m := user.UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         string(u.Role()),
	}
	switch p := u.Profile.(type) {
	case domain.StudentProfile:
		m.CNE = strPtr(p.CNE)
		m.GroupID = strPtr(p.GroupID)
	case domain.TeacherProfile:
		m.TeacherIdentificator = strPtr(p.TeacherIdentificator)
	case domain.AdminProfile:
		m.Identificator = strPtr(p.Identificator)
	case domain.ParentProfile:
		m.Identificator = strPtr(p.Identificator)
	}
	return m
}

func toUser(m *user.UserModel) *domain.User {
	u := &domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Username:     m.Username,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
	switch domain.Role(m.Role) {
	case domain.RoleStudent:
		u.Profile = domain.StudentProfile{CNE: strVal(m.CNE), GroupID: strVal(m.GroupID)}
	case domain.RoleTeacher:
		u.Profile = domain.TeacherProfile{TeacherIdentificator: strVal(m.TeacherIdentificator)}
	case domain.RoleAdmin:
		u.Profile = domain.AdminProfile{Identificator: strVal(m.Identificator)}
	case domain.RoleParent:
		u.Profile = domain.ParentProfile{Identificator: strVal(m.Identificator)}
	}
	return u
}
