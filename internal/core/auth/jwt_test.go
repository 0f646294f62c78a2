package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradebook/internal/domain"
)

func newJWTer() *JWTer {
	return &JWTer{Secret: []byte("test-secret"), Issuer: "gradebook", TTL: time.Hour}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	j := newJWTer()
	before := time.Now()
	tok, exp, err := j.Issue("u1", domain.RoleTeacher)
	require.NoError(t, err)
	assert.WithinDuration(t, before.Add(time.Hour), exp, 2*time.Second)

	id, err := j.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, domain.Identity{UserID: "u1", Role: domain.RoleTeacher}, id)

	c, err := j.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", c.Subject)
	assert.NotEmpty(t, c.ID)
}

func TestIssueUniqueTokenIDs(t *testing.T) {
	j := newJWTer()
	a, _, err := j.Issue("u1", domain.RoleStudent)
	require.NoError(t, err)
	b, _, err := j.Issue("u1", domain.RoleStudent)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDefaultTTL(t *testing.T) {
	j := &JWTer{Secret: []byte("s"), Issuer: "i"}
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }
	_, exp, err := j.Issue("u", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(24*time.Hour), exp)
}

func flip(s string, i int) string {
	c := byte('A')
	if s[i] == 'A' {
		c = 'B'
	}
	return s[:i] + string(c) + s[i+1:]
}

func TestVerifyRejects(t *testing.T) {
	j := newJWTer()
	tok, _, err := j.Issue("u1", domain.RoleStudent)
	require.NoError(t, err)
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)

	expired := newJWTer()
	expired.TTL = -2 * time.Minute
	old, _, err := expired.Issue("u1", domain.RoleStudent)
	require.NoError(t, err)

	otherSecret := &JWTer{Secret: []byte("other"), Issuer: "gradebook", TTL: time.Hour}
	forged, _, err := otherSecret.Issue("u1", domain.RoleAdmin)
	require.NoError(t, err)

	otherIssuer := &JWTer{Secret: []byte("test-secret"), Issuer: "elsewhere", TTL: time.Hour}
	foreign, _, err := otherIssuer.Issue("u1", domain.RoleAdmin)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UID: "u1", Role: "ADMIN"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UID: "u1", Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{Issuer: "gradebook", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":            "",
		"garbage":          "not-a-token",
		"tampered payload": parts[0] + "." + flip(parts[1], len(parts[1])/2) + "." + parts[2],
		"tampered sig":     parts[0] + "." + parts[1] + "." + flip(parts[2], len(parts[2])/2),
		"expired":          old,
		"wrong secret":     forged,
		"wrong issuer":     foreign,
		"alg none":         none,
		"alg hs512":        hs512,
	}
	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := j.Verify(tok)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestVerifyRejectsEverySingleCharEdit(t *testing.T) {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	j := newJWTer()
	tok, _, err := j.Issue("u1", domain.RoleStudent)
	require.NoError(t, err)

	accepted := 0
	for i := 0; i < len(tok); i++ {
		if tok[i] == '.' {
			continue
		}
		for _, c := range alphabet {
			if byte(c) == tok[i] {
				continue
			}
			if _, err := j.Verify(tok[:i] + string(c) + tok[i+1:]); !errors.Is(err, ErrInvalidToken) {
				accepted++
				t.Errorf("edit accepted at %d: %q -> %q", i, tok[i], c)
			}
		}
	}
	assert.Zero(t, accepted)
}
