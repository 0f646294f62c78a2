package router

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"gradebook/internal/core/auth"
	"gradebook/internal/core/cache"
	"gradebook/internal/core/config"
	"gradebook/internal/core/database/dbtest"
	"gradebook/internal/repo"
	"gradebook/internal/service"
	"gradebook/internal/transport/http/handler"
	mdw "gradebook/internal/transport/http/middleware"
	resp "gradebook/internal/transport/http/response"
	"gradebook/pkg/utils"
)

type env struct {
	api, admin http.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{
		App:    config.App{Name: "gradebook", Env: "test"},
		Upload: config.Upload{MaxFileMB: 1},
		Limit: config.Limit{
			RPS: 1000, Burst: 1000, Concurrency: 64, TimeoutSec: 10,
			LoginAttempts: 100, LoginWindowSec: 60,
		},
	}
	db := dbtest.Open(t)
	l := zap.NewNop()
	jwter := &auth.JWTer{Secret: []byte("router-test"), Issuer: "gradebook", TTL: time.Hour}
	hasher := utils.BcryptHasher{Cost: bcrypt.MinCost}
	users := repo.NewUserRepo(db)
	assignments := repo.NewAssignmentRepo(db)
	maxFile := cfg.Upload.MaxBytes()
	userH := handler.NewUserHandler(service.NewUserService(users, hasher, l))

	apiReg := &Registry{}
	apiReg.Register(
		handler.NewAuthHandler(service.NewAuthService(users, hasher, jwter, l),
			mdw.LoginThrottle(cache.NewMemoryWindow(cfg.Limit.LoginAttempts, cfg.Limit.LoginWindow()), l)),
		userH,
		handler.NewGroupHandler(service.NewGroupService(users, repo.NewGroupRepo(db), l)),
		handler.NewSubjectHandler(service.NewSubjectService(users, repo.NewSubjectRepo(db), l)),
		handler.NewAssignmentHandler(service.NewAssignmentService(users, assignments, maxFile, l), maxFile),
		handler.NewSubmissionHandler(service.NewSubmissionService(users, assignments, maxFile, l), maxFile),
		handler.NewGradeHandler(service.NewGradeService(users, assignments, repo.NewGradeRepo(db), l)),
	)
	adminReg := &Registry{}
	adminReg.Register(userH)

	return &env{
		api:   NewAPIEngine(l, cfg, jwter, apiReg),
		admin: NewAdminEngine(l, cfg, jwter, adminReg),
	}
}

func send(t *testing.T, h http.Handler, req *http.Request, token string) *httptest.ResponseRecorder {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) (resp.Resp, map[string]any) {
	t.Helper()
	var out resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	data, _ := out.Data.(map[string]any)
	return out, data
}

func call(t *testing.T, h http.Handler, method, path, token string, body any) (resp.Resp, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return decode(t, send(t, h, req, token))
}

func upload(t *testing.T, h http.Handler, method, path, token string, fields map[string]string, name string, content []byte) (resp.Resp, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if name != "" {
		fw, err := mw.CreateFormFile("file", name)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return decode(t, send(t, h, req, token))
}

func register(t *testing.T, e *env, body map[string]any) string {
	t.Helper()
	r, data := call(t, e.api, http.MethodPost, "/api/v1/auth/register", "", body)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	tok, _ := data["token"].(string)
	require.NotEmpty(t, tok)
	return tok
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	w := send(t, e.api, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.JSONEq(t, `{"ok":1}`, w.Body.String())
	w = send(t, e.api, httptest.NewRequest(http.MethodGet, "/metrics", nil), "")
	assert.Contains(t, w.Body.String(), "http_requests_total")
	w = send(t, e.admin, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.JSONEq(t, `{"ok":1}`, w.Body.String())
}

func TestAuthFlow(t *testing.T) {
	e := newEnv(t)
	tok := register(t, e, map[string]any{
		"name": "Alice", "username": "alice", "email": "alice@school.io",
		"password": "s3cret!", "role": "STUDENT", "cne": "C-1",
	})

	r, _ := call(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "A2", "username": "alice2", "email": "alice@school.io", "password": "x", "role": "STUDENT", "cne": "C-2",
	})
	assert.Equal(t, resp.CodeConflict, r.Code)
	assert.Equal(t, "Email already exists", r.Msg)

	r, _ = call(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "B", "username": "bob", "email": "bob@school.io", "password": "x",
	})
	assert.Equal(t, resp.CodeBadRequest, r.Code)
	assert.Equal(t, "Role is required", r.Msg)

	r, _ = call(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name": "B", "username": "bob", "email": "bob@school.io", "password": "x", "role": "TEACHER",
	})
	assert.Equal(t, resp.CodeBadRequest, r.Code)
	assert.Equal(t, "Teacher Identificator is required for Teacher", r.Msg)

	for _, body := range []map[string]any{
		{"email": "alice@school.io", "password": "wrong"},
		{"email": "nobody@school.io", "password": "s3cret!"},
	} {
		r, _ = call(t, e.api, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, resp.CodeUnauthorized, r.Code)
		assert.Equal(t, "invalid email or password", r.Msg)
	}

	r, data := call(t, e.api, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"email": " alice@school.io ", "password": "s3cret!",
	})
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.NotEmpty(t, data["token"])
	assert.Equal(t, "STUDENT", data["user"].(map[string]any)["role"])

	r, _ = call(t, e.api, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, resp.CodeUnauthorized, r.Code)
	r, _ = call(t, e.api, http.MethodGet, "/api/v1/me", "garbage", nil)
	assert.Equal(t, resp.CodeUnauthorized, r.Code)

	r, data = call(t, e.api, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.Equal(t, "alice", data["username"])
	assert.Equal(t, "C-1", data["cne"])
	assert.NotContains(t, data, "passwordHash")
}

func TestLoginWithExpiredToken(t *testing.T) {
	e := newEnv(t)
	register(t, e, map[string]any{
		"name": "Alice", "username": "alice", "email": "alice@school.io",
		"password": "s3cret!", "role": "STUDENT", "cne": "C-1",
	})
	// 同一密钥签发、一小时前已过期
	stale, _, err := (&auth.JWTer{Secret: []byte("router-test"), Issuer: "gradebook", TTL: -time.Hour}).Issue("u1", "STUDENT")
	require.NoError(t, err)

	r, data := call(t, e.api, http.MethodPost, "/api/v1/auth/login", stale, map[string]any{
		"email": "alice@school.io", "password": "s3cret!",
	})
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.NotEmpty(t, data["token"])

	r, _ = call(t, e.api, http.MethodPost, "/api/v1/auth/register", stale, map[string]any{
		"name": "Bob", "username": "bob", "email": "bob@school.io", "password": "pw", "role": "STUDENT", "cne": "C-2",
	})
	assert.Equal(t, resp.CodeOK, r.Code, r.Msg)

	r, _ = call(t, e.api, http.MethodGet, "/api/v1/me", stale, nil)
	assert.Equal(t, resp.CodeUnauthorized, r.Code)
	assert.Equal(t, "invalid token", r.Msg)
}

func TestSchoolFlow(t *testing.T) {
	e := newEnv(t)
	admin := register(t, e, map[string]any{
		"name": "Root", "username": "root", "email": "root@school.io", "password": "pw", "role": "ADMIN", "identificator": "A-1",
	})
	teacher := register(t, e, map[string]any{
		"name": "Tom", "username": "tom", "email": "tom@school.io", "password": "pw", "role": "TEACHER", "teacherIdentificator": "T-1",
	})
	student := register(t, e, map[string]any{
		"name": "Sam", "username": "sam", "email": "sam@school.io", "password": "pw", "role": "STUDENT", "cne": "C-9",
	})

	// 用户目录
	r, _ := call(t, e.api, http.MethodGet, "/api/v1/users", student, nil)
	assert.Equal(t, resp.CodeForbidden, r.Code)
	r, data := call(t, e.api, http.MethodGet, "/api/v1/users?q=SAM&limit=10", teacher, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.EqualValues(t, 1, data["total"])

	// 分组
	group := map[string]any{"groupName": "G1", "teacherUsernames": []string{"tom"}, "studentUsernames": []string{"sam"}}
	r, _ = call(t, e.api, http.MethodPost, "/api/v1/groups", teacher, group)
	assert.Equal(t, resp.CodeForbidden, r.Code)
	r, data = call(t, e.api, http.MethodPost, "/api/v1/groups", admin, group)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.Equal(t, "G1", data["name"])
	assert.Len(t, data["students"], 1)
	r, _ = call(t, e.api, http.MethodPost, "/api/v1/groups", admin,
		map[string]any{"groupName": "G2", "studentUsernames": []string{"tom"}})
	assert.Equal(t, resp.CodeBadRequest, r.Code)
	assert.Equal(t, "tom is not a student", r.Msg)

	// 科目
	r, _ = call(t, e.api, http.MethodPost, "/api/v1/subjects", admin, map[string]any{"name": "Math", "teacher": "tom"})
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	r, _ = call(t, e.api, http.MethodGet, "/api/v1/subjects/mine", teacher, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.Len(t, r.Data, 1)

	// 作业
	r, _ = upload(t, e.api, http.MethodPost, "/api/v1/assignments", student,
		map[string]string{"title": "HW1"}, "hw1.pdf", []byte("PDF"))
	assert.Equal(t, resp.CodeForbidden, r.Code)
	r, _ = upload(t, e.api, http.MethodPost, "/api/v1/assignments", teacher,
		map[string]string{"title": "HW1", "dueDate": "yesterday"}, "hw1.pdf", []byte("PDF"))
	assert.Equal(t, resp.CodeBadRequest, r.Code)
	r, data = upload(t, e.api, http.MethodPost, "/api/v1/assignments", teacher,
		map[string]string{"title": "HW1", "description": "chapter 1", "dueDate": "2999-01-01"}, "hw1.pdf", []byte("PDF"))
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	aid := data["id"].(string)
	assert.Equal(t, "tom", data["teacherUsername"])

	w := send(t, e.api, httptest.NewRequest(http.MethodGet, "/api/v1/assignments/"+aid+"/file", nil), student)
	assert.Equal(t, "PDF", w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "hw1.pdf")

	// 提交
	r, data = call(t, e.api, http.MethodGet, "/api/v1/assignments/"+aid+"/submission", student, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.Equal(t, "TO_DO", data["status"])

	r, data = upload(t, e.api, http.MethodPost, "/api/v1/assignments/"+aid+"/submission", student, nil, "answer.txt", []byte("42"))
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.Equal(t, "COMPLETED", data["status"])
	sid := data["studentId"].(string)

	r, _ = upload(t, e.api, http.MethodPost, "/api/v1/assignments/"+aid+"/submission", student, nil, "answer.txt", []byte("43"))
	assert.Equal(t, resp.CodeConflict, r.Code)
	assert.Equal(t, "Assignment already submitted", r.Msg)

	r, _ = call(t, e.api, http.MethodGet, "/api/v1/assignments/"+aid+"/submissions", student, nil)
	assert.Equal(t, resp.CodeForbidden, r.Code)
	r, _ = call(t, e.api, http.MethodGet, "/api/v1/assignments/"+aid+"/submissions", teacher, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.Len(t, r.Data, 1)

	w = send(t, e.api, httptest.NewRequest(http.MethodGet, "/api/v1/assignments/"+aid+"/submissions/"+sid+"/file", nil), teacher)
	assert.Equal(t, "42", w.Body.String())

	// 评分
	gradePath := "/api/v1/assignments/" + aid + "/grades/sam@school.io"
	r, _ = call(t, e.api, http.MethodPut, gradePath, teacher, map[string]any{"mark": 25})
	assert.Equal(t, resp.CodeBadRequest, r.Code)
	r, _ = call(t, e.api, http.MethodPut, gradePath, student, map[string]any{"mark": 20})
	assert.Equal(t, resp.CodeForbidden, r.Code)
	r, _ = call(t, e.api, http.MethodPut, gradePath, teacher, map[string]any{"mark": 15.5, "feedback": "good"})
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)

	r, data = call(t, e.api, http.MethodGet, gradePath, student, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.EqualValues(t, 15.5, data["mark"])
	assert.Equal(t, "good", data["feedback"])

	// 管理端
	r, _ = call(t, e.admin, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, resp.CodeUnauthorized, r.Code)
	r, _ = call(t, e.admin, http.MethodGet, "/admin/v1/users", teacher, nil)
	assert.Equal(t, resp.CodeForbidden, r.Code)
	r, data = call(t, e.admin, http.MethodGet, "/admin/v1/users", admin, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	assert.EqualValues(t, 3, data["total"])

	// 删除作业级联提交与成绩
	r, _ = call(t, e.api, http.MethodDelete, "/api/v1/assignments/"+aid, teacher, nil)
	require.Equal(t, resp.CodeOK, r.Code, r.Msg)
	r, _ = call(t, e.api, http.MethodGet, gradePath, student, nil)
	assert.Equal(t, resp.CodeNotFound, r.Code)
}
