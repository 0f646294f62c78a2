// Package service 业务编排：校验、角色分派、权限判断；持久化交给 domain 仓储接口
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"gradebook/internal/domain"
)

// TokenIssuer 由 auth.JWTer 实现
type TokenIssuer interface {
	Issue(uid string, role domain.Role) (string, time.Time, error)
}

// PasswordHasher 由 utils.BcryptHasher 实现
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(pw, hashed string) bool
}

func kindOf(err error) (domain.Kind, bool) {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return 0, false
}

var roleLabel = map[domain.Role]string{
	domain.RoleStudent: "Student",
	domain.RoleTeacher: "Teacher",
}

// userWithRole 按用户名查找并要求指定角色
func userWithRole(ctx context.Context, users domain.UserRepository, username string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	u, err := users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	label := roleLabel[role]
	if u == nil {
		return nil, domain.NotFound(label + " not found: " + username)
	}
	if !u.Is(role) {
		return nil, domain.Validation(username + " is not a " + strings.ToLower(label))
	}
	return u, nil
}

func usersWithRole(ctx context.Context, users domain.UserRepository, usernames []string, role domain.Role) ([]string, error) {
	ids := make([]string, 0, len(usernames))
	for _, name := range usernames {
		u, err := userWithRole(ctx, users, name, role)
		if err != nil {
			return nil, err
		}
		ids = append(ids, u.ID)
	}
	return ids, nil
}
