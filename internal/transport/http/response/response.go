package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// KeyCode 本次请求写出的信封 code，供访问日志读取
const KeyCode = "respCode"

type Resp struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// New 构造函数（保证 data 不为 null）
func New(code int, msg string, data interface{}) Resp {
	if data == nil {
		data = struct{}{}
	}
	return Resp{Code: code, Msg: msg, Data: data}
}

// OK 成功响应
func OK(data interface{}) Resp {
	return New(CodeOK, CodeMsgMap[CodeOK], data)
}

// Error 失败响应（可以传自定义 msg 覆盖默认）
func Error(code int, customMsg string) Resp {
	msg := CodeMsgMap[code]
	if customMsg != "" {
		msg = customMsg
	}
	return New(code, msg, struct{}{})
}

// Write HTTP 状态恒为 200，业务结果看 code
func Write(c *gin.Context, r Resp) {
	c.Set(KeyCode, r.Code)
	c.JSON(http.StatusOK, r)
}

// Abort 中间件拦截请求时使用
func Abort(c *gin.Context, code int, msg string) {
	c.Set(KeyCode, code)
	c.AbortWithStatusJSON(http.StatusOK, Error(code, msg))
}
