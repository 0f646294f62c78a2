package user

import (
	"time"
)

// UserModel 单表存放全部角色；角色专属列按 role 取用
type UserModel struct {
	ID           string `gorm:"primaryKey;type:varchar(32)"`
	Name         string `gorm:"size:64;not null"`
	Username     string `gorm:"uniqueIndex;size:64;not null"`
	Email        string `gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string `gorm:"size:100;not null"`
	Role         string `gorm:"size:16;not null;index"`

	CNE                  *string `gorm:"size:32"`
	TeacherIdentificator *string `gorm:"size:64"`
	Identificator        *string `gorm:"size:64"`
	GroupID              *string `gorm:"type:varchar(32);index"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UserModel) TableName() string { return "users" }
