package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleStudent Role = "STUDENT"
	RoleTeacher Role = "TEACHER"
	RoleAdmin   Role = "ADMIN"
	RoleParent  Role = "PARENT"
)

// NormalizeRole 去空格并转大写，不校验取值
func NormalizeRole(r Role) Role {
	return Role(strings.ToUpper(strings.TrimSpace(string(r))))
}

// Profile 角色专属数据，封闭集合：StudentProfile / TeacherProfile / AdminProfile / ParentProfile
type Profile interface {
	Role() Role
	sealed()
}

type StudentProfile struct {
	CNE     string
	GroupID string // 空串表示未分组
}

type TeacherProfile struct {
	TeacherIdentificator string
}

type AdminProfile struct {
	Identificator string
}

type ParentProfile struct {
	Identificator string
}

func (StudentProfile) Role() Role { return RoleStudent }
func (TeacherProfile) Role() Role { return RoleTeacher }
func (AdminProfile) Role() Role   { return RoleAdmin }
func (ParentProfile) Role() Role  { return RoleParent }

func (StudentProfile) sealed() {}
func (TeacherProfile) sealed() {}
func (AdminProfile) sealed()   {}
func (ParentProfile) sealed()  {}

type User struct {
	ID           string
	Name         string
	Username     string
	Email        string
	PasswordHash string
	Profile      Profile
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role 由 Profile 决定，二者不会不一致
func (u *User) Role() Role {
	if u.Profile == nil {
		return ""
	}
	return u.Profile.Role()
}

func (u *User) Is(r Role) bool { return u.Role() == r }

// Identity 经过校验的调用方身份，显式传入各 service
type Identity struct {
	UserID string
	Role   Role
}

func (id Identity) HasRole(roles ...Role) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

type RegistrationRequest struct {
	Name                 string `json:"name"                 validate:"notblank,max=64"`
	Username             string `json:"username"             validate:"notblank,max=64"`
	Email                string `json:"email"                validate:"notblank,email,max=255"`
	Password             string `json:"password"             validate:"notblank,max=72"`
	Role                 Role   `json:"role"`
	CNE                  string `json:"cne"                  validate:"max=32"`
	TeacherIdentificator string `json:"teacherIdentificator" validate:"max=64"`
	Identificator        string `json:"identificator"        validate:"max=64"`
}

type AuthenticationRequest struct {
	Email    string `json:"email"    validate:"notblank,email"`
	Password string `json:"password" validate:"notblank"`
}

type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *User
}

type UserFilter struct {
	Offset int
	Limit  int
	Q      string // 按 email/name/username 模糊搜
	Role   Role
}

// UserUpdate 管理端资料修改；角色创建后不可变
type UserUpdate struct {
	Name     string `json:"name"     validate:"omitempty,notblank,max=64"`
	Username string `json:"username" validate:"omitempty,notblank,max=64"`
	Email    string `json:"email"    validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,max=72"`
}
