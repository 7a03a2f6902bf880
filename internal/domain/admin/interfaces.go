package admin

import (
	"context"
	"time"
)

type StatsRepository interface {
	Totals(ctx context.Context) (*Totals, error)
	Challenges(ctx context.Context) ([]ChallengeStat, error)
	TopUploaders(ctx context.Context, limit int) ([]UploaderStat, error)
	MostLiked(ctx context.Context, limit int) ([]LikedPhoto, error)
}

type TokenIssuer interface {
	GenerateToken(subject, role string) (string, error)
	TTL() time.Duration
}
