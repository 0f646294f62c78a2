package domain

import "context"

// 查询类方法在记录不存在时返回 (nil, nil)

type UserRepository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]User, int64, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id string) error
}

type GroupRepository interface {
	Create(ctx context.Context, name string, teacherIDs, studentIDs []string) (*Group, error)
	FindByID(ctx context.Context, id string) (*Group, error)
	List(ctx context.Context) ([]Group, error)
	Replace(ctx context.Context, id, name string, teacherIDs, studentIDs []string) error
	AddStudents(ctx context.Context, id string, studentIDs []string) error
	Delete(ctx context.Context, id string) (bool, error)
}

type SubjectRepository interface {
	Create(ctx context.Context, s *Subject) error
	FindByID(ctx context.Context, id string) (*Subject, error)
	List(ctx context.Context) ([]Subject, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]Subject, error)
	Update(ctx context.Context, s *Subject) error
	Delete(ctx context.Context, id string) (bool, error)
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *Assignment) error
	FindByID(ctx context.Context, id string, withFile bool) (*Assignment, error)
	List(ctx context.Context) ([]Assignment, error)
	Update(ctx context.Context, a *Assignment) error
	Delete(ctx context.Context, id string) (bool, error)

	CreateSubmission(ctx context.Context, s *Submission) error
	FindSubmission(ctx context.Context, assignmentID, studentID string, withFile bool) (*Submission, error)
	ListSubmissions(ctx context.Context, assignmentID string) ([]Submission, error)
	UpdateSubmission(ctx context.Context, s *Submission) error
	DeleteSubmission(ctx context.Context, id string) error
}

type GradeRepository interface {
	Upsert(ctx context.Context, g *Grade) error
	Find(ctx context.Context, assignmentID, studentID string) (*Grade, error)
}
