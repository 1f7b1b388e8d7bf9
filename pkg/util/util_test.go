package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func TestJWTRoundTrip(t *testing.T) {
	id := Identity{ID: 42, Email: "a@b.co", Role: "admin"}

	token, err := GenerateJWT(id, testSecret, time.Hour)
	require.NoError(t, err)

	got, err := ParseJWT(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, id, *got)
}

func TestParseJWTRejects(t *testing.T) {
	id := Identity{ID: 1, Email: "a@b.co", Role: "software_engineer"}

	t.Run("wrong secret", func(t *testing.T) {
		token, err := GenerateJWT(id, testSecret, time.Hour)
		require.NoError(t, err)
		_, err = ParseJWT(token, "other")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		claims := Claims{User: id, RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ParseJWT(token, testSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("no expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{User: id}).SignedString([]byte(testSecret))
		require.NoError(t, err)
		_, err = ParseJWT(token, testSecret)
		assert.Error(t, err)
	})

	t.Run("missing user", func(t *testing.T) {
		token, err := GenerateJWT(Identity{}, testSecret, time.Hour)
		require.NoError(t, err)
		_, err = ParseJWT(token, testSecret)
		assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseJWT("not-a-token", testSecret)
		assert.Error(t, err)
	})
}

func TestDefaultTTLIsSevenDays(t *testing.T) {
	token, err := GenerateJWT(Identity{ID: 1}, testSecret, 0)
	require.NoError(t, err)

	var claims Claims
	_, err = jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) { return []byte(testSecret), nil })
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestExtractToken(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"none", nil, ""},
		{"custom header", map[string]string{"x-auth-token": "abc"}, "abc"},
		{"bearer", map[string]string{"Authorization": "Bearer xyz"}, "xyz"},
		{"custom header wins", map[string]string{"x-auth-token": "abc", "Authorization": "Bearer xyz"}, "abc"},
		{"wrong scheme", map[string]string{"Authorization": "Basic xyz"}, ""},
		{"bare token", map[string]string{"Authorization": "xyz"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ExtractToken(r))
		})
	}
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("secret2", hash))
}

func TestIsRetryableError(t *testing.T) {
	var syntaxErr error = &json.SyntaxError{}
	cases := []struct {
		err       error
		retryable bool
		kind      string
	}{
		{nil, false, ""},
		{fmt.Errorf("decode: %w", syntaxErr), false, "json_decode_error"},
		{pgx.ErrNoRows, false, "not_found"},
		{&pgconn.PgError{Code: "23505"}, false, "duplicate_key"},
		{&pgconn.PgError{Code: "23503"}, false, "constraint_violation"},
		{&pgconn.PgError{Code: "08006"}, true, "db_connection_error"},
		{context.DeadlineExceeded, true, "timeout"},
		{context.Canceled, false, "context_canceled"},
		{errors.New("boom"), false, "unknown_error"},
	}
	for _, tc := range cases {
		retryable, kind := IsRetryableError(tc.err)
		assert.Equal(t, tc.retryable, retryable, "%v", tc.err)
		assert.Equal(t, tc.kind, kind, "%v", tc.err)
	}
}
