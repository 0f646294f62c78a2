package grade

import "time"

type GradeModel struct {
	ID           string  `gorm:"primaryKey;type:varchar(32)"`
	AssignmentID string  `gorm:"type:varchar(32);not null;uniqueIndex:uq_grade_assignment_student"`
	StudentID    string  `gorm:"type:varchar(32);not null;uniqueIndex:uq_grade_assignment_student"`
	StudentEmail string  `gorm:"size:255;not null"`
	Mark         float64 `gorm:"not null"`
	Feedback     string  `gorm:"type:text"`
	GradedBy     string  `gorm:"type:varchar(32)"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (GradeModel) TableName() string { return "grades" }
