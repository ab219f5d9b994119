package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"wayfarer/internal/app/services/auth"
)

var ErrInvalidToken = errors.New("security: invalid token")

// JWTManager issues and verifies HS256 access tokens.
type JWTManager struct {
	Secret []byte
	TTL    time.Duration
}

func (m JWTManager) Issue(userID string, admin bool) (string, error) {
	now := time.Now().UTC()
	ttl := m.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	claims := jwt.MapClaims{
		"sub":   userID,
		"admin": admin,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.Secret)
}

func (m JWTManager) Verify(raw string) (auth.Claims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return auth.Claims{}, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return auth.Claims{}, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return auth.Claims{}, ErrInvalidToken
	}
	admin, _ := claims["admin"].(bool)
	return auth.Claims{UserID: sub, Admin: admin}, nil
}

var _ auth.TokenIssuer = JWTManager{}
