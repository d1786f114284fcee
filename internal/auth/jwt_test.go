package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, key string, method jwt.SigningMethod, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(method, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func valid(sub string) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Subject:   sub,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
}

func TestAuthorize(t *testing.T) {
	t.Parallel()

	v := NewVerifier(secret)

	tests := []struct {
		name    string
		prepare func(r *http.Request)
		wantErr error
	}{
		{
			name: "bearer header",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.SigningMethodHS256, valid("conn-1")))
			},
		},
		{
			name: "query parameter",
			prepare: func(r *http.Request) {
				q := r.URL.Query()
				q.Set("token", sign(t, secret, jwt.SigningMethodHS256, valid("conn-1")))
				r.URL.RawQuery = q.Encode()
			},
		},
		{name: "missing", prepare: func(*http.Request) {}, wantErr: ErrMissingToken},
		{
			name: "wrong subject",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.SigningMethodHS256, valid("conn-2")))
			},
			wantErr: ErrSubjectMismatch,
		},
		{
			name: "wrong key",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, "other", jwt.SigningMethodHS256, valid("conn-1")))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong algorithm",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.SigningMethodHS512, valid("conn-1")))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "expired",
			prepare: func(r *http.Request) {
				c := valid("conn-1")
				c.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.SigningMethodHS256, c))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "no expiry",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, secret, jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "conn-1"}))
			},
			wantErr: ErrInvalidToken,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequest(http.MethodGet, "/sse/location/conn-1", nil)
			tt.prepare(r)
			err := v.Authorize(r, "conn-1")
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthorize_DisabledAcceptsAll(t *testing.T) {
	t.Parallel()

	v := NewVerifier("  ")
	require.False(t, v.Enabled())
	require.NoError(t, v.Authorize(httptest.NewRequest(http.MethodGet, "/", nil), "any"))

	var nilVerifier *Verifier
	require.NoError(t, nilVerifier.Authorize(httptest.NewRequest(http.MethodGet, "/", nil), "any"))
}

func TestHTTPStatus(t *testing.T) {
	t.Parallel()

	require.Equal(t, http.StatusForbidden, HTTPStatus(ErrSubjectMismatch))
	require.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrMissingToken))
	require.Equal(t, http.StatusUnauthorized, HTTPStatus(ErrInvalidToken))
}
