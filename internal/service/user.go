package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gradebook/internal/core/validate"
	"gradebook/internal/domain"
)

type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	log    *zap.Logger
}

func NewUserService(users domain.UserRepository, hasher PasswordHasher, l *zap.Logger) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	return &UserService{users: users, hasher: hasher, log: l}
}

type Page[T any] struct {
	List   []T   `json:"list"`
	Total  int64 `json:"total"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

// List limit 超出 (0,100] 时取 20
func (s *UserService) List(ctx context.Context, offset, limit int, q string, role domain.Role) (*Page[domain.User], error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, total, err := s.users.List(ctx, domain.UserFilter{
		Offset: offset,
		Limit:  limit,
		Q:      q,
		Role:   domain.NormalizeRole(role),
	})
	if err != nil {
		return nil, err
	}
	return &Page[domain.User]{List: list, Total: total, Offset: offset, Limit: limit}, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.NotFound("User not found: " + id)
	}
	return u, nil
}

// Me 令牌有效但用户已被删除时返回 NotFound
func (s *UserService) Me(ctx context.Context, who domain.Identity) (*domain.User, error) {
	return s.Get(ctx, who.UserID)
}

func (s *UserService) Update(ctx context.Context, id string, in domain.UserUpdate) (*domain.User, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if v := strings.TrimSpace(in.Name); v != "" {
		u.Name = v
	}
	if v := strings.TrimSpace(in.Username); v != "" && v != u.Username {
		if other, err := s.users.FindByUsername(ctx, v); err != nil {
			return nil, err
		} else if other != nil {
			return nil, domain.Conflict("Username already exists")
		}
		u.Username = v
	}
	if v := strings.TrimSpace(in.Email); v != "" && v != u.Email {
		if other, err := s.users.FindByEmail(ctx, v); err != nil {
			return nil, err
		} else if other != nil {
			return nil, domain.Conflict("Email already exists")
		}
		u.Email = v
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		u.PasswordHash = hash
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user updated", zap.String("uid", u.ID))
	return s.Get(ctx, id)
}

func (s *UserService) Delete(ctx context.Context, who domain.Identity, id string) error {
	if who.UserID == id {
		return domain.Validation("You cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("user deleted", zap.String("uid", id), zap.String("by", who.UserID))
	return nil
}
