// Package auth holds the credential primitives: the password hasher and the
// session token issuer/verifier. Tokens are stateless HS256 JWTs; nothing is
// persisted server-side and validity is decided by signature and expiry alone.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTTL is the fixed lifetime of every session token.
const SessionTTL = time.Hour

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carried by a session token. Role reflects the user's role at
// issuance time and is not refreshed if the role changes later.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Identity is the verified subject attached to a request.
type Identity struct {
	UserID    string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Token is a signed session token with its expiry.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// Issuer signs and verifies session tokens with a shared secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewIssuer builds an Issuer with the standard one hour lifetime.
func NewIssuer(secret string) *Issuer {
	return &Issuer{secret: []byte(secret), ttl: SessionTTL, now: time.Now}
}

// WithClock returns a copy of the issuer that reads time from now.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	cp := *i
	cp.now = now
	return &cp
}

// Issue builds and signs a token for userID and role. The JWT includes sub,
// role, iat and exp.
func (i *Issuer) Issue(userID, role string) (Token, error) {
	iat := i.now().UTC()
	exp := iat.Add(i.ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		Role: role,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verify parses raw, checks the signature, algorithm and expiry, and returns
// the identity it carries. Expired tokens yield ErrTokenExpired; every other
// failure yields ErrInvalidToken.
func (i *Issuer) Verify(raw string) (Identity, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ErrTokenExpired
		}
		return Identity{}, ErrInvalidToken
	}
	if !tok.Valid || claims.Subject == "" || claims.Role == "" {
		return Identity{}, ErrInvalidToken
	}

	id := Identity{UserID: claims.Subject, Role: claims.Role}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}
