// Package jwt issues and checks the gallery's admin session tokens.
package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Issuer is stamped into every token and required on validation, so tokens
// signed for another service with the same secret are refused.
const Issuer = "guestgallery"

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	Role string `json:"role"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// TTL is how long a freshly issued token stays valid.
func (s *Service) TTL() time.Duration { return s.ttl }

func (s *Service) GenerateToken(subject, role string) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    Issuer,
			Subject:   subject,
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken accepts only HS256 tokens from this issuer. A correctly
// signed token past its expiry is reported as ErrExpiredToken so the admin
// view can ask for a fresh login.
func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := s.parse(tokenStr, jwtlib.WithIssuer(Issuer), jwtlib.WithExpirationRequired())
	if errors.Is(err, jwtlib.ErrTokenExpired) {
		if _, sigErr := s.parse(tokenStr, jwtlib.WithoutClaimsValidation()); sigErr == nil {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parse(tokenStr string, opts ...jwtlib.ParserOption) (*jwtlib.Token, error) {
	opts = append(opts, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))
	return jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, opts...)
}
