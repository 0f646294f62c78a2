package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"gradebook/internal/transport/http/ez"
	resp "gradebook/internal/transport/http/response"
)

// query 中需要打码的 key
var sensitiveKeys = map[string]struct{}{
	"password": {}, "pwd": {}, "token": {}, "authorization": {},
	"secret": {}, "access_token": {},
}

func maskQuery(kv map[string][]string) map[string][]string {
	out := make(map[string][]string, len(kv))
	for k, v := range kv {
		if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
			out[k] = []string{"****"}
			continue
		}
		out[k] = v
	}
	return out
}

// levelFor HTTP 状态恒为 200，按信封 code 定级：4xx 为 warn，5xx 或 gin 错误为 error
func levelFor(code int, hasErr bool) zapcore.Level {
	switch {
	case hasErr || code >= 500:
		return zapcore.ErrorLevel
	case code >= 400:
		return zapcore.WarnLevel
	default:
		return zapcore.InfoLevel
	}
}

func AccessLog(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		code := c.GetInt(resp.KeyCode)
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("rid", c.GetString(KeyRequestID)),
			zap.String("uid", c.GetString(ez.KeyUserID)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Int("code", code),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
			zap.String("ua", c.Request.UserAgent()),
			zap.Any("query", maskQuery(c.Request.URL.Query())),
			zap.Int("size", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if ce := l.Check(levelFor(code, len(c.Errors) > 0), "HTTP"); ce != nil {
			ce.Write(fields...)
		}
	}
}
