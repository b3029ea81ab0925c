package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin は管理者トークンの role クレーム値
const RoleAdmin = "admin"

// MinSecretLen は HS256 署名鍵の最小バイト数
const MinSecretLen = 32

var (
	ErrWeakSecret = fmt.Errorf("secret must be at least %d bytes", MinSecretLen)
	ErrNotAdmin   = errors.New("token is not an admin token")
)

// Claims は管理者トークンのクレーム
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// MintAdminToken は subject 用の HS256 署名付き管理者トークンを生成する
func MintAdminToken(subject string, secret []byte, ttl time.Duration) (string, error) {
	if len(secret) < MinSecretLen {
		return "", ErrWeakSecret
	}
	now := time.Now()
	claims := Claims{
		Role: RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAdminToken はトークンを検証し subject を返す
func ParseAdminToken(tokenStr string, secret []byte) (string, error) {
	if len(secret) < MinSecretLen {
		return "", ErrWeakSecret
	}
	var claims Claims
	_, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", err
	}
	if claims.Role != RoleAdmin {
		return "", ErrNotAdmin
	}
	return claims.Subject, nil
}
