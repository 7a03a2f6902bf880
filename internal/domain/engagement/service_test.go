package engagement

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"guestgallery/internal/database"
	"guestgallery/internal/pkg/apperror"
)

type recordingPublisher struct {
	mu    sync.Mutex
	types []string
}

func (r *recordingPublisher) Publish(eventType string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, eventType)
}

func setupService(t *testing.T) (*Service, *gorm.DB, *recordingPublisher) {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	events := &recordingPublisher{}
	return NewService(NewRepository(db), events), db, events
}

func seedPhoto(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	err := db.Exec(
		`INSERT INTO photos (id, filename, media_type, uploaded_by, uploaded_at, device_info, upload_kind) VALUES (?, ?, 'image', 'host', ?, '', 'general')`,
		id, id+".jpg", time.Now().UTC(),
	).Error
	require.NoError(t, err)
}

func TestToggleLikeTwiceRestoresState(t *testing.T) {
	svc, db, events := setupService(t)
	seedPhoto(t, db, "p1")
	ctx := context.Background()

	res, err := svc.ToggleLike(ctx, "p1", "anna")
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, int64(1), res.LikeCount)

	res, err = svc.ToggleLike(ctx, "p1", "anna")
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, int64(0), res.LikeCount)

	liked, err := svc.HasLiked(ctx, "p1", "anna")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Equal(t, []string{EventLikeToggled, EventLikeToggled}, events.types)
}

func TestToggleLikeCountsDistinctUsers(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "p1")
	ctx := context.Background()

	for _, u := range []string{"anna", "ben", "cleo"} {
		_, err := svc.ToggleLike(ctx, "p1", u)
		require.NoError(t, err)
	}
	n, err := svc.CountLikes(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestToggleLikeConcurrentKeepsAtMostOne(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "p1")
	ctx := context.Background()

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.ToggleLike(ctx, "p1", "anna"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	count, err := svc.CountLikes(ctx, "p1")
	require.NoError(t, err)
	assert.LessOrEqual(t, count, int64(1))
	// An even number of serialized toggles ends unliked.
	assert.Equal(t, int64(0), count)
}

func TestToggleLikeRejectsMissingUser(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "p1")

	_, err := svc.ToggleLike(context.Background(), "p1", "   ")
	assert.True(t, errors.Is(err, ErrMissingUser))
}

func TestToggleLikeUnknownPhoto(t *testing.T) {
	svc, _, events := setupService(t)

	_, err := svc.ToggleLike(context.Background(), "nope", "anna")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPhotoNotFound))
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	assert.Empty(t, events.types)
}

func TestAddCommentTrimsAndListsNewestFirst(t *testing.T) {
	svc, db, events := setupService(t)
	seedPhoto(t, db, "p1")
	ctx := context.Background()

	first, err := svc.AddComment(ctx, "p1", " anna ", "  lovely  ")
	require.NoError(t, err)
	assert.Equal(t, "lovely", first.Text)
	assert.Equal(t, "anna", first.UserName)

	_, err = svc.AddComment(ctx, "p1", "ben", "second")
	require.NoError(t, err)

	comments, err := svc.ListComments(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "second", comments[0].Text)
	assert.Equal(t, "lovely", comments[1].Text)
	assert.Equal(t, []string{EventCommentAdded, EventCommentAdded}, events.types)
}

func TestAddCommentRejectsBlankAndLongText(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "p1")
	ctx := context.Background()

	_, err := svc.AddComment(ctx, "p1", "anna", " \n\t ")
	assert.True(t, errors.Is(err, ErrEmptyComment))

	_, err = svc.AddComment(ctx, "p1", "anna", strings.Repeat("x", MaxCommentLen+1))
	assert.True(t, errors.Is(err, ErrCommentTooLong))

	comments, err := svc.ListComments(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestAddCommentUnknownPhoto(t *testing.T) {
	svc, _, _ := setupService(t)

	_, err := svc.AddComment(context.Background(), "nope", "anna", "hi")
	assert.True(t, errors.Is(err, ErrPhotoNotFound))

	_, err = svc.ListComments(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrPhotoNotFound))
}

func TestSummary(t *testing.T) {
	svc, db, _ := setupService(t)
	seedPhoto(t, db, "p1")
	ctx := context.Background()

	_, err := svc.ToggleLike(ctx, "p1", "anna")
	require.NoError(t, err)
	_, err = svc.AddComment(ctx, "p1", "ben", "nice")
	require.NoError(t, err)

	sum, err := svc.Summary(ctx, "p1", "anna")
	require.NoError(t, err)
	assert.Equal(t, int64(1), sum.LikeCount)
	assert.True(t, sum.Liked)
	assert.Len(t, sum.Comments, 1)

	sum, err = svc.Summary(ctx, "p1", "")
	require.NoError(t, err)
	assert.False(t, sum.Liked)
}

func TestMutationErrorWrapsStorageFailures(t *testing.T) {
	err := mutationError(errors.New("database is locked"))
	assert.Equal(t, apperror.KindTransaction, apperror.KindOf(err))

	err = mutationError(ErrPhotoNotFound)
	assert.Same(t, ErrPhotoNotFound, err)
}
