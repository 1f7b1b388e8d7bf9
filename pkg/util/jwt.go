package util

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthTokenHeader is checked before the Authorization header.
const AuthTokenHeader = "x-auth-token"

// DefaultTokenTTL 默认 token 有效期
const DefaultTokenTTL = 7 * 24 * time.Hour

// Identity is the signed claim carried by every access token.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Claims wraps the identity as {"user": {...}} plus the registered claims.
type Claims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

// GenerateJWT creates an HS256 token for the identity.
func GenerateJWT(identity Identity, secret string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now()
	claims := Claims{
		User: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseJWT validates the token (signature, method, expiry) and returns its identity.
func ParseJWT(tokenStr, secret string) (*Identity, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	if claims.User.ID == 0 {
		return nil, errors.Join(jwt.ErrTokenMalformed, errors.New("missing user claim"))
	}

	return &claims.User, nil
}

// ExtractToken reads the x-auth-token header, then a Bearer Authorization header.
func ExtractToken(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(AuthTokenHeader)); token != "" {
		return token
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}

	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
