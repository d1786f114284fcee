// Package auth verifies bearer tokens presented by live push clients.
package auth

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken    = errors.New("bearer token missing")
	ErrInvalidToken    = errors.New("invalid token")
	ErrSubjectMismatch = errors.New("token subject does not match connection")
)

// Verifier checks HS256 tokens whose subject is the push connection id.
// A Verifier with an empty secret accepts every request.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

// NewVerifier creates a Verifier for secret.
func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(strings.TrimSpace(secret)),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
	}
}

// Enabled reports whether tokens are checked at all.
func (v *Verifier) Enabled() bool { return v != nil && len(v.secret) > 0 }

// Authorize checks that r carries a valid token issued for connectionID.
func (v *Verifier) Authorize(r *http.Request, connectionID string) error {
	if !v.Enabled() {
		return nil
	}
	tok := TokenFromRequest(r)
	if tok == "" {
		return ErrMissingToken
	}
	claims, err := v.Parse(tok)
	if err != nil {
		return err
	}
	if claims.Subject != connectionID {
		return ErrSubjectMismatch
	}
	return nil
}

// Parse verifies signature and standard claims.
func (v *Verifier) Parse(tok string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := v.parser.ParseWithClaims(tok, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// TokenFromRequest reads "Authorization: Bearer <token>" or, for browser
// EventSource and WebSocket clients, the token query parameter.
func TokenFromRequest(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > len("bearer ") && strings.EqualFold(h[:len("bearer ")], "bearer ") {
		return strings.TrimSpace(h[len("bearer "):])
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// HTTPStatus maps verification errors to a response code.
func HTTPStatus(err error) int {
	if errors.Is(err, ErrSubjectMismatch) {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}
