package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/helpdesk/ticket-system/internal/core/domain"
)

const defaultTokenTTL = 2 * time.Hour

// Claims is the claim set carried by access tokens.
type Claims struct {
	NameIdentifier string           `json:"nameidentifier"`
	UniqueName     string           `json:"unique_name"`
	Email          string           `json:"email"`
	Roles          jwt.ClaimStrings `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256 access tokens. It holds no mutable
// state and is safe for concurrent use.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

func NewTokenService(secret, issuer, audience string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Issue signs a token for the given principal. Role names keep their casing;
// exact duplicates are collapsed.
func (s *TokenService) Issue(userID, username, email string, roles []string) (string, time.Time, error) {
	now := s.now()
	claims := Claims{
		NameIdentifier: userID,
		UniqueName:     username,
		Email:          email,
		Roles:          distinct(roles),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Validate checks signature, issuer, audience and expiry. Every failure
// wraps domain.ErrUnauthenticated together with the jwt cause.
func (s *TokenService) Validate(token string) (domain.Principal, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		// No leeway: a token is already rejected at exactly exp, not only
		// after it.
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	claims := &Claims{}
	tkn, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, err)
	}
	if !tkn.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, jwt.ErrTokenInvalidClaims)
	}

	id := claims.NameIdentifier
	if id == "" {
		id = claims.Subject
	}
	if id == "" {
		return domain.Principal{}, fmt.Errorf("%w: %w", domain.ErrUnauthenticated, errors.New("token has no subject"))
	}

	return domain.Principal{
		ID:       id,
		Username: claims.UniqueName,
		Roles:    []string(claims.Roles),
	}, nil
}

func distinct(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
