package engagement

import (
	"context"
	"log"
	"strings"
	"unicode/utf8"

	"guestgallery/internal/pkg/apperror"
)

const (
	MaxCommentLen  = 1000
	maxUserNameLen = 100

	EventLikeToggled  = "like_toggled"
	EventCommentAdded = "comment_added"
)

type EventPublisher interface {
	Publish(eventType string, payload any)
}

type LikeResult struct {
	PhotoID   string `json:"photo_id"`
	Liked     bool   `json:"liked"`
	LikeCount int64  `json:"like_count"`
}

// Service is the per-photo like and comment ledger.
type Service struct {
	repo   Repository
	events EventPublisher
}

func NewService(repo Repository, events EventPublisher) *Service {
	return &Service{repo: repo, events: events}
}

// ToggleLike likes the photo if userName has not, and unlikes it otherwise.
func (s *Service) ToggleLike(ctx context.Context, photoID, userName string) (*LikeResult, error) {
	userName, err := cleanUser(userName)
	if err != nil {
		return nil, err
	}

	liked, err := s.repo.ToggleLike(ctx, photoID, userName)
	if err != nil {
		return nil, mutationError(err)
	}
	count, err := s.repo.CountLikes(ctx, photoID)
	if err != nil {
		return nil, err
	}

	res := &LikeResult{PhotoID: photoID, Liked: liked, LikeCount: count}
	s.publish(EventLikeToggled, map[string]any{"photo_id": photoID, "user_name": userName, "liked": liked, "like_count": count})
	return res, nil
}

func (s *Service) CountLikes(ctx context.Context, photoID string) (int64, error) {
	return s.repo.CountLikes(ctx, photoID)
}

func (s *Service) HasLiked(ctx context.Context, photoID, userName string) (bool, error) {
	return s.repo.HasLiked(ctx, photoID, strings.TrimSpace(userName))
}

// AddComment appends a comment; blank text is rejected.
func (s *Service) AddComment(ctx context.Context, photoID, userName, text string) (*Comment, error) {
	userName, err := cleanUser(userName)
	if err != nil {
		return nil, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if utf8.RuneCountInString(text) > MaxCommentLen {
		return nil, ErrCommentTooLong.WithDetail("comment text must be at most %d characters", MaxCommentLen)
	}

	c := &Comment{PhotoID: photoID, UserName: userName, Text: text}
	if err := s.repo.AddComment(ctx, c); err != nil {
		return nil, mutationError(err)
	}

	log.Printf("comment_added photo_id=%s user=%q comment_id=%d", photoID, userName, c.ID)
	s.publish(EventCommentAdded, c)
	return c, nil
}

// ListComments returns the photo's comments, newest first.
func (s *Service) ListComments(ctx context.Context, photoID string) ([]Comment, error) {
	ok, err := s.repo.PhotoExists(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrPhotoNotFound
	}
	comments, err := s.repo.ListComments(ctx, photoID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []Comment{}
	}
	return comments, nil
}

// Summary bundles like count, the caller's like state and comments.
func (s *Service) Summary(ctx context.Context, photoID, userName string) (*Summary, error) {
	comments, err := s.ListComments(ctx, photoID)
	if err != nil {
		return nil, err
	}
	count, err := s.repo.CountLikes(ctx, photoID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{PhotoID: photoID, LikeCount: count, Comments: comments}
	if userName = strings.TrimSpace(userName); userName != "" {
		if sum.Liked, err = s.repo.HasLiked(ctx, photoID, userName); err != nil {
			return nil, err
		}
	}
	return sum, nil
}

func (s *Service) publish(eventType string, payload any) {
	if s.events != nil {
		s.events.Publish(eventType, payload)
	}
}

func cleanUser(userName string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", ErrMissingUser
	}
	if utf8.RuneCountInString(userName) > maxUserNameLen {
		return "", ErrMissingUser.WithDetail("userName must be at most %d characters", maxUserNameLen)
	}
	return userName, nil
}

// mutationError keeps domain errors and turns storage failures into a
// retryable transaction failure.
func mutationError(err error) error {
	if _, ok := apperror.As(err); ok {
		return err
	}
	return apperror.Transaction(err)
}
