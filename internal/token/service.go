// Package token encodes, decodes, and validates the signed JWTs that back
// the cookie session scheme. It is transport-agnostic: it deals only in
// token strings and user identifiers.
//
// Two token kinds exist: short-lived access tokens authorizing API calls
// and longer-lived refresh tokens used solely to mint new access tokens.
// There is no revocation list — a validated, unexpired token is always
// accepted. Logout removes the client-side copy only.
package token

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Kind distinguishes access tokens from refresh tokens.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

// Validation failures. Callers treat all of these identically (the request
// simply carries no valid credential); they are distinguished so operators
// can tell expiry from forgery in logs.
var (
	ErrTokenExpired     = errors.New("token: expired")
	ErrTokenMalformed   = errors.New("token: malformed")
	ErrSignatureInvalid = errors.New("token: signature invalid")
	ErrKindMismatch     = errors.New("token: kind mismatch")
)

// Claims is the JWT payload carried by both token kinds.
type Claims struct {
	gojwt.RegisteredClaims
	Kind Kind `json:"kind"`
}

// Service issues and validates signed tokens. It is safe for concurrent
// use; issuance and validation are pure computations aside from clock reads.
type Service struct {
	cfg Config
	now func() time.Time
}

// NewService creates a token service. It fails if the signing key is
// missing, so misconfiguration surfaces at startup rather than on the
// first login.
func NewService(cfg Config) (*Service, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, now: time.Now}, nil
}

// ttl returns the configured lifetime for a token kind.
func (s *Service) ttl(kind Kind) time.Duration {
	if kind == KindRefresh {
		return s.cfg.RefreshTokenTTL
	}
	return s.cfg.AccessTokenTTL
}

// Issue produces a signed token binding the given user ID to the given
// kind, with issued-at and expiry set from the per-kind TTL.
func (s *Service) Issue(userID uint, kind Kind) (string, error) {
	now := s.now()
	claims := &Claims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(s.ttl(kind))),
		},
		Kind: kind,
	}
	tok := gojwt.NewWithClaims(s.cfg.signingMethod(), claims)
	signed, err := tok.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Validate verifies signature and expiry, checks that the token kind
// matches the expected use, and returns the bound user ID.
func (s *Service) Validate(tokenString string, expected Kind) (uint, error) {
	claims := &Claims{}
	tok, err := gojwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		gojwt.WithValidMethods([]string{s.cfg.signingMethod().Alg()}),
		gojwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, classify(err)
	}
	if !tok.Valid {
		return 0, ErrTokenMalformed
	}
	if claims.Kind != expected {
		return 0, ErrKindMismatch
	}
	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return uint(id), nil
}

// keyFunc pins the signing algorithm before releasing the verify key.
func (s *Service) keyFunc(tok *gojwt.Token) (interface{}, error) {
	if tok.Method.Alg() != s.cfg.signingMethod().Alg() {
		return nil, fmt.Errorf("token: unexpected signing method: %s", tok.Method.Alg())
	}
	return []byte(s.cfg.Secret), nil
}

// classify maps golang-jwt parse failures onto the package taxonomy.
func classify(err error) error {
	switch {
	case errors.Is(err, gojwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid):
		return ErrSignatureInvalid
	default:
		return ErrTokenMalformed
	}
}
