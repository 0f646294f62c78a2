package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"gradebook/internal/core/database/dbtest"
	"gradebook/internal/domain"
	"gradebook/pkg/utils"
)

func newUser(username string, p domain.Profile) *domain.User {
	return &domain.User{
		ID:           utils.NewID(),
		Name:         username,
		Username:     username,
		Email:        username + "@school.test",
		PasswordHash: "x",
		Profile:      p,
	}
}

func seedUser(t *testing.T, r *UserRepo, username string, p domain.Profile) *domain.User {
	t.Helper()
	u := newUser(username, p)
	require.NoError(t, r.Create(context.Background(), u))
	return u
}

func TestUserRepoProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(dbtest.Open(t))

	profiles := []domain.Profile{
		domain.StudentProfile{CNE: "CNE-1"},
		domain.TeacherProfile{TeacherIdentificator: "T-1"},
		domain.AdminProfile{Identificator: "A-1"},
		domain.ParentProfile{},
	}
	for i, p := range profiles {
		u := seedUser(t, r, "u"+string(rune('a'+i)), p)

		got, err := r.FindByID(ctx, u.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, p, got.Profile)
		assert.Equal(t, p.Role(), got.Role())
	}

	got, err := r.FindByEmail(ctx, "nobody@school.test")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUserRepoDuplicates(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(dbtest.Open(t))
	seedUser(t, r, "alice", domain.StudentProfile{CNE: "C1"})

	dupEmail := newUser("alice2", domain.StudentProfile{CNE: "C2"})
	dupEmail.Email = "alice@school.test"
	err := r.Create(ctx, dupEmail)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Email already exists")

	dupName := newUser("alice", domain.StudentProfile{CNE: "C3"})
	dupName.Email = "other@school.test"
	err = r.Create(ctx, dupName)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Username already exists")
}

func TestUserRepoListUpdateDelete(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepo(dbtest.Open(t))
	s := seedUser(t, r, "sam", domain.StudentProfile{CNE: "C1"})
	seedUser(t, r, "tina", domain.TeacherProfile{TeacherIdentificator: "T1"})

	all, total, err := r.List(ctx, domain.UserFilter{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	teachers, total, err := r.List(ctx, domain.UserFilter{Limit: 10, Role: domain.RoleTeacher})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "tina", teachers[0].Username)

	found, _, err := r.List(ctx, domain.UserFilter{Limit: 10, Q: "SAM"})
	require.NoError(t, err)
	require.Len(t, found, 1)

	s.Name = "Samuel"
	require.NoError(t, r.Update(ctx, s))
	got, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Samuel", got.Name)
	assert.Equal(t, domain.RoleStudent, got.Role())

	require.NoError(t, r.Delete(ctx, s.ID))
	assert.ErrorIs(t, r.Delete(ctx, s.ID), domain.ErrNotFound)
}

func TestGroupRepoLifecycle(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	users := NewUserRepo(db)
	groups := NewGroupRepo(db)

	teacher := seedUser(t, users, "teach", domain.TeacherProfile{TeacherIdentificator: "T1"})
	s1 := seedUser(t, users, "s1", domain.StudentProfile{CNE: "C1"})
	s2 := seedUser(t, users, "s2", domain.StudentProfile{CNE: "C2"})

	g, err := groups.Create(ctx, "G1", []string{teacher.ID}, []string{s1.ID})
	require.NoError(t, err)
	require.Len(t, g.Teachers, 1)
	require.Len(t, g.Students, 1)
	assert.Equal(t, "s1", g.Students[0].Username)

	got, err := users.FindByID(ctx, s1.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.Profile.(domain.StudentProfile).GroupID)

	require.NoError(t, groups.AddStudents(ctx, g.ID, []string{s2.ID}))
	g, err = groups.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, g.Students, 2)

	// 替换后 s1 被移出
	require.NoError(t, groups.Replace(ctx, g.ID, "G1b", nil, []string{s2.ID}))
	g, err = groups.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, "G1b", g.Name)
	assert.Empty(t, g.Teachers)
	require.Len(t, g.Students, 1)
	got, _ = users.FindByID(ctx, s1.ID)
	assert.Empty(t, got.Profile.(domain.StudentProfile).GroupID)

	assert.ErrorIs(t, groups.AddStudents(ctx, "missing", []string{s1.ID}), domain.ErrNotFound)

	list, err := groups.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	ok, err := groups.Delete(ctx, g.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, _ = users.FindByID(ctx, s2.ID)
	assert.Empty(t, got.Profile.(domain.StudentProfile).GroupID)

	ok, err = groups.Delete(ctx, g.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestUserDeleteUnlinksTeacher(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	users := NewUserRepo(db)
	groups := NewGroupRepo(db)
	teacher := seedUser(t, users, "teach", domain.TeacherProfile{TeacherIdentificator: "T1"})

	g, err := groups.Create(ctx, "G", []string{teacher.ID}, nil)
	require.NoError(t, err)
	require.NoError(t, users.Delete(ctx, teacher.ID))

	g, err = groups.FindByID(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, g.Teachers)
}

func TestSubjectRepo(t *testing.T) {
	ctx := context.Background()
	r := NewSubjectRepo(dbtest.Open(t))

	s := &domain.Subject{ID: utils.NewID(), Name: "Maths", TeacherID: "t1", TeacherUsername: "teach"}
	require.NoError(t, r.Create(ctx, s))
	require.NoError(t, r.Create(ctx, &domain.Subject{ID: utils.NewID(), Name: "Art", TeacherID: "t2", TeacherUsername: "other"}))

	mine, err := r.ListByTeacher(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Maths", mine[0].Name)

	s.Name = "Algebra"
	require.NoError(t, r.Update(ctx, s))
	got, err := r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Algebra", got.Name)

	all, err := r.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	ok, err := r.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	got, err = r.FindByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func seedAssignment(t *testing.T, db *gorm.DB) (*AssignmentRepo, *domain.Assignment) {
	t.Helper()
	r := NewAssignmentRepo(db)
	due := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	a := &domain.Assignment{
		ID:              utils.NewID(),
		Title:           "Essay",
		TeacherID:       "t1",
		TeacherUsername: "teach",
		DueDate:         &due,
		File:            domain.File{Name: "essay.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
	}
	require.NoError(t, r.Create(context.Background(), a))
	return r, a
}

func TestAssignmentRepoFileLoading(t *testing.T) {
	ctx := context.Background()
	r, a := seedAssignment(t, dbtest.Open(t))

	meta, err := r.FindByID(ctx, a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "essay.pdf", meta.File.Name)
	assert.Empty(t, meta.File.Data)

	full, err := r.FindByID(ctx, a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), full.File.Data)

	// 不带文件的更新保留原文件
	meta.Title = "Long essay"
	require.NoError(t, r.Update(ctx, meta))
	full, err = r.FindByID(ctx, a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, "Long essay", full.Title)
	assert.Equal(t, []byte("%PDF"), full.File.Data)
}

func TestSubmissionUniqueAndCascade(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t)
	r, a := seedAssignment(t, db)
	grades := NewGradeRepo(db)

	sub := &domain.Submission{
		ID: utils.NewID(), AssignmentID: a.ID, StudentID: "s1", StudentUsername: "s1",
		File: domain.File{Name: "a.txt", Data: []byte("hi")}, SubmittedAt: time.Now(), Status: domain.StatusCompleted,
	}
	require.NoError(t, r.CreateSubmission(ctx, sub))

	again := *sub
	again.ID = utils.NewID()
	err := r.CreateSubmission(ctx, &again)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.EqualError(t, err, "Assignment already submitted")

	sub.Status = domain.StatusLate
	sub.File = domain.File{Name: "b.txt", Data: []byte("v2")}
	require.NoError(t, r.UpdateSubmission(ctx, sub))
	got, err := r.FindSubmission(ctx, a.ID, "s1", true)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLate, got.Status)
	assert.Equal(t, []byte("v2"), got.File.Data)

	require.NoError(t, grades.Upsert(ctx, &domain.Grade{ID: utils.NewID(), AssignmentID: a.ID, StudentID: "s1", StudentEmail: "s1@x", Mark: 12}))

	ok, err := r.Delete(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	subs, err := r.ListSubmissions(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)
	g, err := grades.Find(ctx, a.ID, "s1")
	require.NoError(t, err)
	assert.Nil(t, g)
}

func TestGradeUpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	r := NewGradeRepo(dbtest.Open(t))

	first := &domain.Grade{ID: utils.NewID(), AssignmentID: "a1", StudentID: "s1", StudentEmail: "s1@x", Mark: 10, Feedback: "ok"}
	require.NoError(t, r.Upsert(ctx, first))

	second := &domain.Grade{ID: utils.NewID(), AssignmentID: "a1", StudentID: "s1", StudentEmail: "s1@x", Mark: 18, Feedback: "great"}
	require.NoError(t, r.Upsert(ctx, second))
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 18.0, second.Mark)
	assert.Equal(t, "great", second.Feedback)
}

func TestIsDupKey(t *testing.T) {
	assert.False(t, isDupKey(nil))
	assert.True(t, isDupKey(gorm.ErrDuplicatedKey))
	assert.False(t, isDupKey(assert.AnError))
	assert.True(t, isDupKey(errors.New("ERROR: duplicate key value violates unique constraint \"uni_users_email\"")))
}
