// Package auth verifies bearer credentials against the shared signing
// secret and extracts the caller identity from the token claims.
package auth

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredential indicates the authorization header was absent. The
// transport layer maps it to 401; every other verification failure goes
// through the generic error path.
var ErrNoCredential = errors.New("no credential supplied")

// Verifier checks HS256-signed tokens against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier for the given shared secret.
func NewVerifier(secret []byte) *Verifier {
	return &Verifier{secret: secret}
}

// VerifyBearer validates an Authorization header value of the form
// "Bearer <token>" and returns the token's email claim. An empty header
// returns ErrNoCredential. The email claim is not required to be
// present or well-formed; a token without one yields an empty string.
func (v *Verifier) VerifyBearer(header string) (string, error) {
	if header == "" {
		return "", ErrNoCredential
	}

	// Split on whitespace and take the second token as the credential,
	// whatever the scheme word says.
	fields := strings.Fields(header)
	if len(fields) < 2 {
		return "", errors.New("malformed authorization header")
	}

	return v.Verify(fields[1])
}

// Verify validates a raw token string and returns its email claim.
func (v *Verifier) Verify(token string) (string, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, v.keyFunc,
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return "", errors.Wrap(err, "verify token")
	}

	email, _ := claims["email"].(string)
	return email, nil
}

func (v *Verifier) keyFunc(_ *jwt.Token) (any, error) {
	return v.secret, nil
}
