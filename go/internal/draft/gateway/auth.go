package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UserIDHeader carries the caller's external identity when no token secret is configured
const UserIDHeader = "X-User-ID"

// ErrUnauthenticated is returned when a request carries no usable identity
var ErrUnauthenticated = errors.New("missing or invalid identity")

// Authenticator resolves the caller's external user id. With a secret it
// requires an HS256 bearer token and uses its subject; without one it
// trusts the X-User-ID header set by the fronting bot or proxy.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Identify returns the external user id of the request
func (a *Authenticator) Identify(r *http.Request) (string, error) {
	// Browsers cannot set headers on a WebSocket handshake.
	return a.identify(r.Header, r.URL.Query().Get("token"))
}

// IdentifyHeader resolves the caller from request headers only, for RPC handlers
func (a *Authenticator) IdentifyHeader(h http.Header) (string, error) {
	return a.identify(h, "")
}

func (a *Authenticator) identify(h http.Header, queryToken string) (string, error) {
	if len(a.secret) == 0 {
		id := strings.TrimSpace(h.Get(UserIDHeader))
		if id == "" {
			return "", ErrUnauthenticated
		}
		return id, nil
	}

	raw := bearerToken(h)
	if raw == "" {
		raw = queryToken
	}
	if raw == "" {
		return "", ErrUnauthenticated
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return claims.Subject, nil
}

// IssueToken signs a token for userID. Used by operators and tests.
func (a *Authenticator) IssueToken(userID string, claims jwt.RegisteredClaims) (string, error) {
	if len(a.secret) == 0 {
		return "", errors.New("no token secret configured")
	}
	claims.Subject = userID
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func bearerToken(h http.Header) string {
	authz := h.Get("Authorization")
	if len(authz) > 7 && strings.EqualFold(authz[:7], "bearer ") {
		return strings.TrimSpace(authz[7:])
	}
	return ""
}
