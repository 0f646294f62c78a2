package handler

import (
	"time"

	"gradebook/internal/domain"
)

// UserView 对外展示的用户，不含密码哈希；角色专属字段按 Profile 填充
type UserView struct {
	ID                   string      `json:"id"`
	Name                 string      `json:"name"`
	Username             string      `json:"username"`
	Email                string      `json:"email"`
	Role                 domain.Role `json:"role"`
	CNE                  string      `json:"cne,omitempty"`
	GroupID              string      `json:"groupId,omitempty"`
	TeacherIdentificator string      `json:"teacherIdentificator,omitempty"`
	Identificator        string      `json:"identificator,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
}

func ToUserView(u *domain.User) UserView {
	v := UserView{
		ID:        u.ID,
		Name:      u.Name,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role(),
		CreatedAt: u.CreatedAt,
	}
	switch p := u.Profile.(type) {
	case domain.StudentProfile:
		v.CNE, v.GroupID = p.CNE, p.GroupID
	case domain.TeacherProfile:
		v.TeacherIdentificator = p.TeacherIdentificator
	case domain.AdminProfile:
		v.Identificator = p.Identificator
	case domain.ParentProfile:
		v.Identificator = p.Identificator
	}
	return v
}

type SessionView struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      UserView  `json:"user"`
}

func toSessionView(s *domain.Session) SessionView {
	return SessionView{Token: s.Token, ExpiresAt: s.ExpiresAt, User: ToUserView(s.User)}
}

type idOut struct {
	ID string `json:"id"`
}
