package ez

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"gradebook/internal/domain"
	resp "gradebook/internal/transport/http/response"
)

// 上下文中的身份键，由 middleware.Identify / AuthJWT 写入
const (
	KeyUserID   = "userId"
	KeyRole     = "role"
	KeyIdentity = "identity"
	// 带了令牌但校验失败（过期/篡改），身份按匿名处理
	KeyTokenRejected = "tokenRejected"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindForm  Binder = "form"  // multipart/form-data 或 x-www-form-urlencoded
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param / c.PostForm 取
)

// 统一错误对象（配合 resp.Error(int, msg)）
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error   { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func Unauthorized(msg string) error { return &AErr{Code: resp.CodeUnauthorized, Msg: msg} }
func Forbidden(msg string) error    { return &AErr{Code: resp.CodeForbidden, Msg: msg} }
func NotFound(msg string) error     { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// Attachment 作为 Action 出参时直接输出文件内容，不走 JSON 信封
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string        // "GET" | "POST" | "PUT" | "DELETE"
	Path    string        // 例："/auth/login"、"/assignments/:id/submission"
	Binder  Binder        // 绑定方式
	Auth    bool          // 是否要求登录（检查 userId）
	Roles   []domain.Role // 限定角色（可选，隐含 Auth）
	Handler func(c *gin.Context, who domain.Identity, in *I) (O, error)
}

// Identity 读取中间件写入的调用方身份；匿名时 ok 为 false
func Identity(c *gin.Context) (domain.Identity, bool) {
	v, ok := c.Get(KeyIdentity)
	if !ok {
		return domain.Identity{}, false
	}
	id, ok := v.(domain.Identity)
	return id, ok && id.UserID != ""
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		who, authed := Identity(c)
		if (a.Auth || len(a.Roles) > 0) && !authed {
			msg := "unauthorized"
			if c.GetBool(KeyTokenRejected) {
				msg = "invalid token"
			}
			resp.Write(c, resp.Error(resp.CodeUnauthorized, msg))
			return
		}
		if len(a.Roles) > 0 && !who.HasRole(a.Roles...) {
			resp.Write(c, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindForm:
			bindErr = c.ShouldBind(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			resp.Write(c, resp.Error(resp.CodeBadRequest, bindMessage(bindErr)))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, who, &in)

		// 4) 统一错误映射
		if err != nil {
			Fail(c, err)
			return
		}
		if att, ok := any(out).(*Attachment); ok && att != nil {
			writeAttachment(c, att)
			return
		}
		resp.Write(c, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail 把错误写成信封；非业务错误只返回通用信息，原始错误挂到 c.Errors 供访问日志输出
func Fail(c *gin.Context, err error) {
	var ae *AErr
	if errors.As(err, &ae) {
		if ae.Err != nil {
			_ = c.Error(ae.Err)
		}
		resp.Write(c, resp.Error(ae.Code, ae.Error()))
		return
	}
	var de *domain.Error
	if errors.As(err, &de) {
		resp.Write(c, resp.Error(CodeOf(de.Kind), de.Error()))
		return
	}
	_ = c.Error(err)
	resp.Write(c, resp.Error(resp.CodeServerError, "internal error"))
}

// CodeOf domain 错误类别到信封 code
func CodeOf(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return resp.CodeBadRequest
	case domain.KindInvalidCredentials:
		return resp.CodeUnauthorized
	case domain.KindForbidden:
		return resp.CodeForbidden
	case domain.KindNotFound:
		return resp.CodeNotFound
	case domain.KindConflict:
		return resp.CodeConflict
	}
	return resp.CodeServerError
}

func bindMessage(err error) string {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return "request body too large"
	}
	if errors.Is(err, io.EOF) {
		return "request body is empty"
	}
	return err.Error()
}

func writeAttachment(c *gin.Context, a *Attachment) {
	ct := a.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(a.Name)))
	c.Data(http.StatusOK, ct, a.Data)
}

// FormFile 读取 multipart 文件字段；字段缺失时返回 nil。最多读取 max+1 字节，超限交由 service 判断
func FormFile(c *gin.Context, field string, max int64) (*domain.File, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, BadRequest("invalid multipart form: " + bindMessage(err))
	}
	f, err := fh.Open()
	if err != nil {
		return nil, Internal("open upload", err)
	}
	defer f.Close()

	r := io.Reader(f)
	if max > 0 {
		r = io.LimitReader(f, max+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, Internal("read upload", err)
	}
	ct := fh.Header.Get("Content-Type")
	if ct == "" {
		ct = http.DetectContentType(data)
	}
	return &domain.File{Name: fh.Filename, ContentType: ct, Data: data}, nil
}
