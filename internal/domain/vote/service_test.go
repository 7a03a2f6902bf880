package vote

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"guestgallery/internal/database"
	"guestgallery/internal/pkg/apperror"
)

type prefixURL string

func (p prefixURL) URL(key string) string { return string(p) + "/" + key }

type recordingPublisher struct {
	mu     sync.Mutex
	events []*VoteResult
}

func (r *recordingPublisher) Publish(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res, ok := payload.(*VoteResult); ok && eventType == EventVoteChanged {
		r.events = append(r.events, res)
	}
}

func setupService(t *testing.T) (*Service, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	events := &recordingPublisher{}
	svc := NewService(NewRepository(db), prefixURL("/uploads"), prefixURL("/thumbnails"), events)
	return svc, db, events
}

var baseTime = time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)

func seedPhoto(t *testing.T, db *gorm.DB, id, challengeID, uploader string, at time.Time) {
	t.Helper()
	var challenge any
	if challengeID != "" {
		challenge = challengeID
	}
	err := db.Exec(
		`INSERT INTO photos (id, filename, media_type, uploaded_by, uploaded_at, challenge_id, device_info, upload_kind) VALUES (?, ?, 'image', ?, ?, ?, '', 'challenge')`,
		id, id+".jpg", uploader, at, challenge,
	).Error
	require.NoError(t, err)
}

func countRows(t *testing.T, db *gorm.DB, challengeID, userName string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&Vote{}).Where("challenge_id = ? AND user_name = ?", challengeID, userName).Count(&n).Error)
	return n
}

func TestVoteAlternatingKeepsSingleRow(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	seedPhoto(t, db, "b", "c1", "host", baseTime.Add(time.Minute))
	ctx := context.Background()

	for i, target := range []string{"a", "b", "a", "b", "b", "a"} {
		_, err := svc.Vote(ctx, "c1", target, "anna")
		require.NoError(t, err, "step %d", i)
		assert.LessOrEqual(t, countRows(t, db, "c1", "anna"), int64(1), "step %d", i)
	}
}

func TestVoteSamePhotoTwiceWithdraws(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	ctx := context.Background()

	res, err := svc.Vote(ctx, "c1", "a", "anna")
	require.NoError(t, err)
	assert.Equal(t, ActionVoted, res.Action)
	assert.Equal(t, int64(1), res.VoteCounts["a"])

	res, err = svc.Vote(ctx, "c1", "a", "anna")
	require.NoError(t, err)
	assert.Equal(t, ActionWithdrawn, res.Action)
	assert.Equal(t, int64(0), res.TotalVotes)
	assert.Zero(t, countRows(t, db, "c1", "anna"))
}

func TestVoteMoveKeepsTotal(t *testing.T) {
	svc, db, events := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	seedPhoto(t, db, "b", "c1", "host", baseTime.Add(time.Minute))
	ctx := context.Background()

	_, err := svc.Vote(ctx, "c1", "a", "ben")
	require.NoError(t, err)
	before, err := svc.Vote(ctx, "c1", "a", "anna")
	require.NoError(t, err)
	assert.Equal(t, int64(2), before.VoteCounts["a"])

	after, err := svc.Vote(ctx, "c1", "b", "anna")
	require.NoError(t, err)
	assert.Equal(t, ActionMoved, after.Action)
	require.NotNil(t, after.PreviousPhotoID)
	assert.Equal(t, "a", *after.PreviousPhotoID)
	assert.Equal(t, int64(1), after.VoteCounts["a"])
	assert.Equal(t, int64(1), after.VoteCounts["b"])
	assert.Equal(t, before.TotalVotes, after.TotalVotes)

	v, err := svc.repo.Find(ctx, "c1", "anna")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "b", v.PhotoID)
	assert.Len(t, events.events, 3)
}

func TestVoteSeparateChallengesAreIndependent(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	seedPhoto(t, db, "x", "c2", "host", baseTime)
	ctx := context.Background()

	_, err := svc.Vote(ctx, "c1", "a", "anna")
	require.NoError(t, err)
	res, err := svc.Vote(ctx, "c2", "x", "anna")
	require.NoError(t, err)
	assert.Equal(t, ActionVoted, res.Action)
	assert.Equal(t, int64(1), countRows(t, db, "c1", "anna"))
	assert.Equal(t, int64(1), countRows(t, db, "c2", "anna"))
}

func TestVoteAllowsOwnPhoto(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "anna", baseTime)

	res, err := svc.Vote(context.Background(), "c1", "a", "anna")
	require.NoError(t, err)
	assert.Equal(t, ActionVoted, res.Action)
}

func TestVoteRejectsUnknownOrForeignPhoto(t *testing.T) {
	svc, db, events := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	seedPhoto(t, db, "g", "", "host", baseTime)
	ctx := context.Background()

	_, err := svc.Vote(ctx, "c1", "missing", "anna")
	assert.True(t, errors.Is(err, ErrPhotoNotFound))

	_, err = svc.Vote(ctx, "c2", "a", "anna")
	assert.True(t, errors.Is(err, ErrPhotoNotInChallenge))

	_, err = svc.Vote(ctx, "c1", "g", "anna")
	assert.True(t, errors.Is(err, ErrPhotoNotInChallenge))

	_, err = svc.Vote(ctx, "c1", "a", "  ")
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	assert.Empty(t, events.events)
}

func TestVoteConcurrentUsersAndRepeats(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	seedPhoto(t, db, "b", "c1", "host", baseTime.Add(time.Minute))
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 40)
	for u := 0; u < 10; u++ {
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func(user string, target string) {
				defer wg.Done()
				if _, err := svc.Vote(ctx, "c1", target, user); err != nil {
					errs <- err
				}
			}(fmt.Sprintf("guest-%d", u), []string{"a", "b"}[i%2])
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for u := 0; u < 10; u++ {
		assert.LessOrEqual(t, countRows(t, db, "c1", fmt.Sprintf("guest-%d", u)), int64(1))
	}
	counts, err := svc.Counts(ctx, "c1", "")
	require.NoError(t, err)
	assert.LessOrEqual(t, counts.TotalVotes, int64(10))
}

func TestStatus(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	seedPhoto(t, db, "b", "c1", "host", baseTime.Add(time.Minute))
	ctx := context.Background()

	_, err := svc.Vote(ctx, "c1", "a", "anna")
	require.NoError(t, err)

	st, err := svc.Status(ctx, "c1", "a", "anna")
	require.NoError(t, err)
	assert.Equal(t, Status{HasVotedForThis: true, VoteCountForThis: 1}, *st)

	st, err = svc.Status(ctx, "c1", "b", "anna")
	require.NoError(t, err)
	assert.Equal(t, Status{HasVotedForOther: true}, *st)

	st, err = svc.Status(ctx, "c1", "a", "")
	require.NoError(t, err)
	assert.Equal(t, Status{VoteCountForThis: 1}, *st)
}

func TestCountsReportsUserVote(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "a", "c1", "host", baseTime)
	ctx := context.Background()

	_, err := svc.Vote(ctx, "c1", "a", "anna")
	require.NoError(t, err)

	counts, err := svc.Counts(ctx, "c1", "anna")
	require.NoError(t, err)
	require.NotNil(t, counts.UserVote)
	assert.Equal(t, "a", *counts.UserVote)
	assert.Equal(t, int64(1), counts.TotalVotes)

	counts, err = svc.Counts(ctx, "c1", "ben")
	require.NoError(t, err)
	assert.Nil(t, counts.UserVote)
}

func TestLeaderboardTieBreak(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "p1", "c1", "host", baseTime)
	seedPhoto(t, db, "p2", "c1", "host", baseTime.Add(time.Minute))
	seedPhoto(t, db, "p3", "c1", "host", baseTime.Add(2*time.Minute))
	seedPhoto(t, db, "p4", "c1", "host", baseTime.Add(3*time.Minute))
	ctx := context.Background()

	cast := map[string][]string{
		"p2": {"u1", "u2"},
		"p1": {"u3", "u4"},
		"p3": {"u5"},
	}
	for photoID, users := range cast {
		for _, u := range users {
			_, err := svc.Vote(ctx, "c1", photoID, u)
			require.NoError(t, err)
		}
	}

	top, err := svc.Leaderboard(ctx, "c1", 0)
	require.NoError(t, err)
	require.Len(t, top, DefaultTopN)

	assert.Equal(t, []string{"p1", "p2", "p3"}, []string{top[0].PhotoID, top[1].PhotoID, top[2].PhotoID})
	assert.Equal(t, []int{1, 1, 3}, []int{top[0].Rank, top[1].Rank, top[2].Rank})
	assert.Equal(t, "/uploads/p1.jpg", top[0].URL)

	all, err := svc.Leaderboard(ctx, "c1", 10)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "p4", all[3].PhotoID)
	assert.Equal(t, int64(0), all[3].VoteCount)
	assert.Equal(t, 4, all[3].Rank)
}

func TestLeaderboardIdenticalTimestampsFallBackToID(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "zz", "c1", "host", baseTime)
	seedPhoto(t, db, "aa", "c1", "host", baseTime)

	top, err := svc.Leaderboard(context.Background(), "c1", 3)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "aa", top[0].PhotoID)
	assert.Equal(t, 1, top[1].Rank)
}

func TestLeaderboardWithoutPhotosIsEmpty(t *testing.T) {
	svc, _, _ := setupService(t)

	top, err := svc.Leaderboard(context.Background(), "none", 3)
	require.NoError(t, err)
	assert.Empty(t, top)
	assert.NotNil(t, top)
}

func TestChallengePhotosNewestFirstWithCounts(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "old", "c1", "host", baseTime)
	seedPhoto(t, db, "new", "c1", "host", baseTime.Add(time.Hour))
	seedPhoto(t, db, "other", "c2", "host", baseTime)
	ctx := context.Background()

	_, err := svc.Vote(ctx, "c1", "old", "anna")
	require.NoError(t, err)

	photos, err := svc.ChallengePhotos(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, "new", photos[0].PhotoID)
	assert.Equal(t, int64(0), photos[0].VoteCount)
	assert.Equal(t, int64(1), photos[1].VoteCount)
	assert.Zero(t, photos[0].Rank)
}

func TestAssignRanks(t *testing.T) {
	tests := []struct {
		name   string
		counts []int64
		want   []int
	}{
		{"empty", nil, []int{}},
		{"distinct", []int64{5, 3, 1}, []int{1, 2, 3}},
		{"tie at top", []int64{2, 2, 1}, []int{1, 1, 3}},
		{"tie in middle", []int64{4, 2, 2, 2, 1}, []int{1, 2, 2, 2, 5}},
		{"all zero", []int64{0, 0, 0}, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := make([]Entry, len(tt.counts))
			for i, c := range tt.counts {
				entries[i].VoteCount = c
			}
			AssignRanks(entries)
			got := make([]int, len(entries))
			for i, e := range entries {
				got[i] = e.Rank
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
