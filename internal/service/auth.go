package service

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"gradebook/internal/core/validate"
	"gradebook/internal/domain"
	"gradebook/pkg/utils"
)

// AuthService 注册与登录；本身无状态，令牌不落库
type AuthService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	tokens TokenIssuer
	log    *zap.Logger
}

func NewAuthService(users domain.UserRepository, hasher PasswordHasher, tokens TokenIssuer, l *zap.Logger) *AuthService {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuthService{users: users, hasher: hasher, tokens: tokens, log: l}
}

func (s *AuthService) Register(ctx context.Context, req domain.RegistrationRequest) (sess *domain.Session, err error) {
	defer func() { authOutcomes.WithLabelValues("register", outcome(err)).Inc() }()

	role := domain.NormalizeRole(req.Role)
	if role == "" {
		return nil, domain.Validation("Role is required")
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}

	if u, err := s.users.FindByEmail(ctx, req.Email); err != nil {
		return nil, err
	} else if u != nil {
		return nil, domain.Conflict("Email already exists")
	}
	if u, err := s.users.FindByUsername(ctx, req.Username); err != nil {
		return nil, err
	} else if u != nil {
		return nil, domain.Conflict("Username already exists")
	}

	profile, err := profileFor(role, req)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	u := &domain.User{
		ID:           utils.NewID(),
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Profile:      profile,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("uid", u.ID), zap.String("role", string(role)))
	return s.issue(u)
}

// profileFor 按角色穷举；新增角色必须在此补一个分支
func profileFor(role domain.Role, req domain.RegistrationRequest) (domain.Profile, error) {
	switch role {
	case domain.RoleStudent:
		cne := strings.TrimSpace(req.CNE)
		if cne == "" {
			return nil, domain.Validation("CNE is required for Student")
		}
		return domain.StudentProfile{CNE: cne}, nil
	case domain.RoleTeacher:
		tid := strings.TrimSpace(req.TeacherIdentificator)
		if tid == "" {
			return nil, domain.Validation("Teacher Identificator is required for Teacher")
		}
		return domain.TeacherProfile{TeacherIdentificator: tid}, nil
	case domain.RoleAdmin:
		id := strings.TrimSpace(req.Identificator)
		if id == "" {
			return nil, domain.Validation("Identificator is required for Admin")
		}
		return domain.AdminProfile{Identificator: id}, nil
	case domain.RoleParent:
		return domain.ParentProfile{Identificator: strings.TrimSpace(req.Identificator)}, nil
	default:
		return nil, domain.Validation("Unsupported role: " + string(role))
	}
}

func (s *AuthService) Authenticate(ctx context.Context, req domain.AuthenticationRequest) (sess *domain.Session, err error) {
	defer func() { authOutcomes.WithLabelValues("login", outcome(err)).Inc() }()

	email := strings.TrimSpace(req.Email)
	req.Email = email
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.Warn("login unknown email", zap.String("email", email))
		return nil, domain.NotFound("User not found with email: " + email)
	}
	if !s.hasher.Verify(req.Password, u.PasswordHash) {
		s.log.Warn("login bad password", zap.String("uid", u.ID))
		return nil, domain.InvalidCredentials("Invalid password")
	}
	return s.issue(u)
}

func (s *AuthService) issue(u *domain.User) (*domain.Session, error) {
	tok, exp, err := s.tokens.Issue(u.ID, u.Role())
	if err != nil {
		return nil, errors.Wrap(err, "issue token")
	}
	return &domain.Session{Token: tok, ExpiresAt: exp, User: u}, nil
}
