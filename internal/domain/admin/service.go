package admin

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	adminSubject = "admin"
	adminRole    = "admin"
	topLimit     = 10
)

type Service struct {
	repo         StatsRepository
	tokens       TokenIssuer
	passwordHash []byte
}

// NewService accepts either a bcrypt hash or a plaintext password. Plaintext
// is hashed once here so it is never compared directly.
func NewService(repo StatsRepository, tokens TokenIssuer, password string) (*Service, error) {
	hash := []byte(password)
	if _, err := bcrypt.Cost(hash); err != nil {
		hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
	}
	return &Service{repo: repo, tokens: tokens, passwordHash: hash}, nil
}

func (s *Service) Login(ctx context.Context, password string) (*LoginResult, error) {
	if strings.TrimSpace(password) == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		log.Printf("admin_login_failed")
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateToken(adminSubject, adminRole)
	if err != nil {
		return nil, fmt.Errorf("issue admin token: %w", err)
	}
	return &LoginResult{AccessToken: token, ExpiresAt: time.Now().UTC().Add(s.tokens.TTL())}, nil
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("totals: %w", err)
	}
	challenges, err := s.repo.Challenges(ctx)
	if err != nil {
		return nil, fmt.Errorf("challenge stats: %w", err)
	}
	uploaders, err := s.repo.TopUploaders(ctx, topLimit)
	if err != nil {
		return nil, fmt.Errorf("top uploaders: %w", err)
	}
	liked, err := s.repo.MostLiked(ctx, topLimit)
	if err != nil {
		return nil, fmt.Errorf("most liked: %w", err)
	}

	return &Stats{
		Totals:       *totals,
		Challenges:   orEmpty(challenges),
		TopUploaders: orEmpty(uploaders),
		MostLiked:    orEmpty(liked),
		GeneratedAt:  time.Now().UTC(),
	}, nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
