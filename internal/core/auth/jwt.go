package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gradebook/internal/domain"
)

// ErrInvalidToken 解码、签名、声明、过期等任何失败统一返回它
var ErrInvalidToken = errors.New("invalid token")

const DefaultTTL = 24 * time.Hour

type Claims struct {
	UID  string `json:"uid"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTer HS256 签发与校验，无状态、无刷新
type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	now func() time.Time
}

func (j *JWTer) clock() time.Time {
	if j.now != nil {
		return j.now()
	}
	return time.Now()
}

func (j *JWTer) ttl() time.Duration {
	if j.TTL == 0 {
		return DefaultTTL
	}
	return j.TTL
}

func (j *JWTer) Issue(uid string, role domain.Role) (string, time.Time, error) {
	now := j.clock()
	exp := now.Add(j.ttl())
	claims := Claims{
		UID:  uid,
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   uid,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

func (j *JWTer) Parse(tokenStr string) (*Claims, error) {
	t, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected alg")
		}
		return j.Secret, nil
	},
		jwt.WithIssuer(j.Issuer),
		jwt.WithStrictDecoding(), // 末位填充比特不同的 base64 也视为篡改
		jwt.WithLeeway(60*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.clock),
	)
	if err != nil {
		return nil, err
	}
	if c, ok := t.Claims.(*Claims); ok && t.Valid {
		return c, nil
	}
	return nil, errors.New("invalid token")
}

// Verify 返回令牌中的身份；失败原因不对外区分
func (j *JWTer) Verify(tokenStr string) (domain.Identity, error) {
	c, err := j.Parse(tokenStr)
	if err != nil || c.UID == "" {
		return domain.Identity{}, ErrInvalidToken
	}
	return domain.Identity{UserID: c.UID, Role: domain.Role(c.Role)}, nil
}
