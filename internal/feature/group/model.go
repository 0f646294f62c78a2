package group

import "time"

type GroupModel struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)"`
	Name      string    `gorm:"size:100;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (GroupModel) TableName() string { return "groups" }

// GroupTeacherModel 组与负责教师的多对多关联
type GroupTeacherModel struct {
	GroupID   string `gorm:"primaryKey;type:varchar(32)"`
	TeacherID string `gorm:"primaryKey;type:varchar(32);index"`
}

func (GroupTeacherModel) TableName() string { return "group_teachers" }
