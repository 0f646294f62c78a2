package domain

import "time"

// UserRef 组/科目等视图里引用的用户摘要
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
}

// Group 教师与学生均为查询时派生的视图
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Teachers  []UserRef `json:"teachers"`
	Students  []UserRef `json:"students"`
	CreatedAt time.Time `json:"createdAt"`
}

type GroupRequest struct {
	Name             string   `json:"groupName"        validate:"notblank,max=100"`
	TeacherUsernames []string `json:"teacherUsernames" validate:"dive,notblank"`
	StudentUsernames []string `json:"studentUsernames" validate:"dive,notblank"`
}

type Subject struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	TeacherID       string    `json:"teacherId"`
	TeacherUsername string    `json:"teacherUsername"`
	CreatedAt       time.Time `json:"createdAt"`
}

type SubjectRequest struct {
	Name            string `json:"name"    validate:"notblank,max=100"`
	TeacherUsername string `json:"teacher" validate:"notblank"`
}

type Status string

const (
	StatusToDo      Status = "TO_DO"
	StatusCompleted Status = "COMPLETED"
	StatusLate      Status = "LATE"
)

// File 文件内容不出现在 JSON 中，只能走下载接口
type File struct {
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"-"`
}

func (f *File) Empty() bool { return f == nil || len(f.Data) == 0 }

type Assignment struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	TeacherID       string     `json:"teacherId"`
	TeacherUsername string     `json:"teacherUsername"`
	DueDate         *time.Time `json:"dueDate"`
	File            File       `json:"file"`
	UploadedAt      time.Time  `json:"uploadedAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type AssignmentUpload struct {
	Title           string     `json:"title"           validate:"notblank,max=200"`
	Description     string     `json:"description"     validate:"max=4000"`
	TeacherUsername string     `json:"teacherUsername"` // ADMIN 代传时必填
	DueDate         *time.Time `json:"dueDate"`
	File            *File      `json:"-"`
}

// AssignmentPatch 空字段表示不修改
type AssignmentPatch struct {
	Title           string     `json:"title"           validate:"omitempty,notblank,max=200"`
	Description     string     `json:"description"     validate:"max=4000"`
	TeacherUsername string     `json:"teacherUsername"`
	DueDate         *time.Time `json:"dueDate"`
	File            *File      `json:"-"`
}

type Submission struct {
	ID              string    `json:"id"`
	AssignmentID    string    `json:"assignmentId"`
	StudentID       string    `json:"studentId"`
	StudentUsername string    `json:"studentUsername"`
	File            File      `json:"file"`
	SubmittedAt     time.Time `json:"submittedAt"`
	Status          Status    `json:"status"`
}

// SubmissionStatus 学生视角：未提交时 Status 为 TO_DO
type SubmissionStatus struct {
	AssignmentID string      `json:"assignmentId"`
	Status       Status      `json:"status"`
	Submission   *Submission `json:"submission,omitempty"`
}

// StatusAt 截止时间之前（含）提交为 COMPLETED，否则 LATE；无截止时间视为按时
func (a *Assignment) StatusAt(submittedAt time.Time) Status {
	if a.DueDate == nil || !submittedAt.After(*a.DueDate) {
		return StatusCompleted
	}
	return StatusLate
}

type Grade struct {
	ID           string    `json:"id"`
	AssignmentID string    `json:"assignmentId"`
	StudentID    string    `json:"studentId"`
	StudentEmail string    `json:"studentEmail"`
	Mark         float64   `json:"mark"`
	Feedback     string    `json:"feedback"`
	GradedBy     string    `json:"gradedBy"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type GradeRequest struct {
	Mark     *float64 `form:"mark"     json:"mark"     validate:"required,gte=0,lte=20"`
	Feedback string   `form:"feedback" json:"feedback" validate:"max=2000"`
}
