package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"gradebook/internal/core/auth"
	"gradebook/internal/domain"
	"gradebook/internal/transport/http/ez"
	resp "gradebook/internal/transport/http/response"
)

func bearer(c *gin.Context) (string, bool) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(ah, "Bearer ")), true
}

func setIdentity(c *gin.Context, id domain.Identity) {
	c.Set(ez.KeyIdentity, id)
	c.Set(ez.KeyUserID, id.UserID)
	c.Set(ez.KeyRole, string(id.Role))
}

// Identify 有 Bearer 令牌则校验并写入身份，没有或校验失败都按匿名放行；各 Action 自行声明 Auth/Roles。
// 过期令牌不能挡住 /auth/login 这类公开接口，失败只记一个标记，由需要登录的 Action 回 "invalid token"。
func Identify(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			c.Next()
			return
		}
		id, err := j.Verify(tok)
		if err != nil {
			c.Set(ez.KeyTokenRejected, true)
			c.Next()
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}

// AuthJWT 强制登录；roles 非空时还要求角色匹配
func AuthJWT(j *auth.JWTer, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		id, err := j.Verify(tok)
		if err != nil {
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		if len(roles) > 0 && !id.HasRole(roles...) {
			resp.Abort(c, resp.CodeForbidden, "forbidden")
			return
		}
		setIdentity(c, id)
		c.Next()
	}
}
