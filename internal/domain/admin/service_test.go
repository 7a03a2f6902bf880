package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

/* ==================== MOCKS ==================== */

type MockStatsRepository struct {
	mock.Mock
}

func (m *MockStatsRepository) Totals(ctx context.Context) (*Totals, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Totals), args.Error(1)
}

func (m *MockStatsRepository) Challenges(ctx context.Context) ([]ChallengeStat, error) {
	args := m.Called(ctx)
	return args.Get(0).([]ChallengeStat), args.Error(1)
}

func (m *MockStatsRepository) TopUploaders(ctx context.Context, limit int) ([]UploaderStat, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]UploaderStat), args.Error(1)
}

func (m *MockStatsRepository) MostLiked(ctx context.Context, limit int) ([]LikedPhoto, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]LikedPhoto), args.Error(1)
}

type MockTokenIssuer struct {
	mock.Mock
	ttl time.Duration
}

func (m *MockTokenIssuer) TTL() time.Duration { return m.ttl }

func (m *MockTokenIssuer) GenerateToken(subject, role string) (string, error) {
	args := m.Called(subject, role)
	return args.String(0), args.Error(1)
}

/* ==================== TESTS ==================== */

func TestLogin_PlaintextPassword(t *testing.T) {
	tokens := &MockTokenIssuer{ttl: 2 * time.Hour}
	tokens.On("GenerateToken", "admin", "admin").Return("signed", nil)

	svc, err := NewService(new(MockStatsRepository), tokens, "party-time")
	require.NoError(t, err)

	res, err := svc.Login(context.Background(), "party-time")
	require.NoError(t, err)
	assert.Equal(t, "signed", res.AccessToken)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), res.ExpiresAt, time.Minute)
	tokens.AssertExpectations(t)
}

func TestLogin_BcryptHashPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	tokens := new(MockTokenIssuer)
	tokens.On("GenerateToken", "admin", "admin").Return("signed", nil)

	svc, err := NewService(new(MockStatsRepository), tokens, string(hash))
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "s3cret")
	assert.NoError(t, err)
}

func TestLogin_WrongPassword(t *testing.T) {
	tokens := new(MockTokenIssuer)
	svc, err := NewService(new(MockStatsRepository), tokens, "party-time")
	require.NoError(t, err)

	for _, pw := range []string{"", "   ", "party", "party-time "} {
		_, err := svc.Login(context.Background(), pw)
		assert.True(t, errors.Is(err, ErrInvalidCredentials), "password %q", pw)
	}
	tokens.AssertNotCalled(t, "GenerateToken", mock.Anything, mock.Anything)
}

func TestStats_AssemblesSections(t *testing.T) {
	repo := new(MockStatsRepository)
	repo.On("Totals", mock.Anything).Return(&Totals{Photos: 3, Images: 2, Videos: 1}, nil)
	repo.On("Challenges", mock.Anything).Return([]ChallengeStat(nil), nil)
	repo.On("TopUploaders", mock.Anything, topLimit).Return([]UploaderStat{{UploadedBy: "anna", Photos: 3}}, nil)
	repo.On("MostLiked", mock.Anything, topLimit).Return([]LikedPhoto(nil), nil)

	svc, err := NewService(repo, new(MockTokenIssuer), "pw")
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Totals.Photos)
	assert.NotNil(t, stats.Challenges)
	assert.Empty(t, stats.Challenges)
	assert.Len(t, stats.TopUploaders, 1)
	assert.NotNil(t, stats.MostLiked)
	repo.AssertExpectations(t)
}

func TestStats_PropagatesRepositoryError(t *testing.T) {
	repo := new(MockStatsRepository)
	repo.On("Totals", mock.Anything).Return(nil, errors.New("db down"))

	svc, err := NewService(repo, new(MockTokenIssuer), "pw")
	require.NoError(t, err)

	_, err = svc.Stats(context.Background())
	assert.ErrorContains(t, err, "db down")
}
