package vote

import (
	"context"
	"log"
	"strings"

	"guestgallery/internal/pkg/apperror"
)

const (
	DefaultTopN = 3
	MaxTopN     = 100

	EventVoteChanged = "vote_changed"
)

type URLBuilder interface {
	URL(key string) string
}

type EventPublisher interface {
	Publish(eventType string, payload any)
}

// Service is the voting engine and leaderboard ranker.
type Service struct {
	repo      Repository
	originals URLBuilder
	thumbs    URLBuilder
	events    EventPublisher
}

func NewService(repo Repository, originals, thumbs URLBuilder, events EventPublisher) *Service {
	return &Service{repo: repo, originals: originals, thumbs: thumbs, events: events}
}

// Vote casts, moves or withdraws userName's vote in the challenge. Voting
// for one's own photo is allowed here; that policy belongs to callers.
func (s *Service) Vote(ctx context.Context, challengeID, photoID, userName string) (*VoteResult, error) {
	challengeID, photoID, userName, err := required(challengeID, photoID, userName)
	if err != nil {
		return nil, err
	}

	res, err := s.repo.Cast(ctx, challengeID, photoID, userName)
	if err != nil {
		if _, ok := apperror.As(err); ok {
			return nil, err
		}
		log.Printf("vote_failed challenge_id=%s photo_id=%s user=%q error=%v", challengeID, photoID, userName, err)
		return nil, apperror.Transaction(err)
	}

	log.Printf("vote_cast challenge_id=%s photo_id=%s user=%q action=%s", challengeID, photoID, userName, res.Action)
	if s.events != nil {
		s.events.Publish(EventVoteChanged, res)
	}
	return res, nil
}

func (s *Service) Status(ctx context.Context, challengeID, photoID, userName string) (*Status, error) {
	challengeID, photoID = strings.TrimSpace(challengeID), strings.TrimSpace(photoID)
	if challengeID == "" || photoID == "" {
		return nil, ErrMissingField.WithDetail("challengeId and photoId are required")
	}

	var err error
	st := &Status{}
	if st.VoteCountForThis, err = s.repo.CountForPhoto(ctx, challengeID, photoID); err != nil {
		return nil, err
	}
	if userName = strings.TrimSpace(userName); userName == "" {
		return st, nil
	}

	v, err := s.repo.Find(ctx, challengeID, userName)
	if err != nil {
		return nil, err
	}
	if v != nil {
		st.HasVotedForThis = v.PhotoID == photoID
		st.HasVotedForOther = v.PhotoID != photoID
	}
	return st, nil
}

// Counts returns the per-photo tally of a challenge and, when userName is
// given, the photo that user currently backs.
func (s *Service) Counts(ctx context.Context, challengeID, userName string) (*Counts, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return nil, ErrMissingField.WithDetail("challengeId is required")
	}

	counts, err := s.repo.CountsByPhoto(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	out := &Counts{ChallengeID: challengeID, VoteCounts: counts, TotalVotes: total(counts)}

	if userName = strings.TrimSpace(userName); userName != "" {
		v, err := s.repo.Find(ctx, challengeID, userName)
		if err != nil {
			return nil, err
		}
		if v != nil {
			out.UserVote = &v.PhotoID
		}
	}
	return out, nil
}

// ChallengePhotos lists every photo submitted to the challenge, newest
// first, with its vote count.
func (s *Service) ChallengePhotos(ctx context.Context, challengeID string) ([]Entry, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return nil, ErrMissingField.WithDetail("challengeId is required")
	}

	entries, err := s.repo.Entries(ctx, challengeID, 0, false)
	if err != nil {
		return nil, err
	}
	return s.decorate(entries), nil
}

// Leaderboard returns the top topN photos of the challenge ranked by votes.
// Earlier uploads win ties in order but share the rank.
func (s *Service) Leaderboard(ctx context.Context, challengeID string, topN int) ([]Entry, error) {
	challengeID = strings.TrimSpace(challengeID)
	if challengeID == "" {
		return nil, ErrMissingField.WithDetail("challengeId is required")
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	if topN > MaxTopN {
		topN = MaxTopN
	}

	entries, err := s.repo.Entries(ctx, challengeID, topN, true)
	if err != nil {
		return nil, err
	}
	AssignRanks(entries)
	return s.decorate(entries), nil
}

// AssignRanks applies standard competition ranking to entries already sorted
// by vote count descending: equal counts share a rank and the next distinct
// count skips ahead (1, 1, 3).
func AssignRanks(entries []Entry) {
	for i := range entries {
		if i > 0 && entries[i].VoteCount == entries[i-1].VoteCount {
			entries[i].Rank = entries[i-1].Rank
			continue
		}
		entries[i].Rank = i + 1
	}
}

func (s *Service) decorate(entries []Entry) []Entry {
	if entries == nil {
		return []Entry{}
	}
	for i := range entries {
		e := &entries[i]
		e.URL = s.originals.URL(e.Filename)
		if e.ThumbnailFilename != nil {
			u := s.thumbs.URL(*e.ThumbnailFilename)
			e.ThumbnailURL = &u
		}
	}
	return entries
}

func required(challengeID, photoID, userName string) (string, string, string, error) {
	challengeID = strings.TrimSpace(challengeID)
	photoID = strings.TrimSpace(photoID)
	userName = strings.TrimSpace(userName)
	switch {
	case challengeID == "":
		return "", "", "", ErrMissingField.WithDetail("challengeId is required")
	case photoID == "":
		return "", "", "", ErrMissingField.WithDetail("photoId is required")
	case userName == "":
		return "", "", "", ErrMissingField.WithDetail("userName is required")
	}
	return challengeID, photoID, userName, nil
}
