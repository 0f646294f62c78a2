package assignment

import "time"

type AssignmentModel struct {
	ID              string `gorm:"primaryKey;type:varchar(32)"`
	Title           string `gorm:"size:200;not null"`
	Description     string `gorm:"type:text"`
	TeacherID       string `gorm:"type:varchar(32);index;not null"`
	TeacherUsername string `gorm:"size:64;not null"`
	DueDate         *time.Time

	FileName string `gorm:"size:255"`
	FileType string `gorm:"size:127"`
	FileData []byte

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (AssignmentModel) TableName() string { return "assignments" }

// SubmissionModel 每个 (assignment, student) 仅一条
type SubmissionModel struct {
	ID              string `gorm:"primaryKey;type:varchar(32)"`
	AssignmentID    string `gorm:"type:varchar(32);not null;uniqueIndex:uq_submission_assignment_student"`
	StudentID       string `gorm:"type:varchar(32);not null;uniqueIndex:uq_submission_assignment_student"`
	StudentUsername string `gorm:"size:64;not null"`

	FileName string `gorm:"size:255"`
	FileType string `gorm:"size:127"`
	FileData []byte

	SubmittedAt time.Time
	Status      string `gorm:"size:16;not null"`
}

func (SubmissionModel) TableName() string { return "student_submissions" }
