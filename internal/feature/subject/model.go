package subject

import "time"

type SubjectModel struct {
	ID              string    `gorm:"primaryKey;type:varchar(32)"`
	Name            string    `gorm:"size:100;not null"`
	TeacherID       string    `gorm:"type:varchar(32);index;not null"`
	TeacherUsername string    `gorm:"size:64;not null"`
	CreatedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime"`
}

func (SubjectModel) TableName() string { return "subjects" }
