package photo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"guestgallery/internal/domain/media"
	"guestgallery/internal/pkg/apperror"
	"guestgallery/internal/pkg/validator"
)

const (
	DefaultMaxImageBytes = 10 * 1024 * 1024 // 10 MB
	DefaultMaxVideoBytes = 50 * 1024 * 1024 // 50 MB
	DefaultMaxBatchFiles = 30
)

const (
	EventPhotoUploaded = "photo_uploaded"
	EventPhotoDeleted  = "photo_deleted"
)

type Limits struct {
	MaxImageBytes int64
	MaxVideoBytes int64
	MaxBatchFiles int
}

func DefaultLimits() Limits {
	return Limits{MaxImageBytes: DefaultMaxImageBytes, MaxVideoBytes: DefaultMaxVideoBytes, MaxBatchFiles: DefaultMaxBatchFiles}
}

type ThumbnailDeriver interface {
	Derive(ctx context.Context, originalPath string, mediaType media.Type) *string
}

type EventPublisher interface {
	Publish(eventType string, payload any)
}

// IncomingFile is one uploaded file as seen by the coordinator. Open may be
// called more than once.
type IncomingFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

func FileFromHeader(fh *multipart.FileHeader) IncomingFile {
	return IncomingFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open:        func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// UploadMetadata is the per-request metadata shared by every file in a batch.
type UploadMetadata struct {
	UploadedBy     string `json:"uploadedBy" validate:"max=100"`
	UploadType     string `json:"uploadType" validate:"omitempty,oneof=general challenge"`
	ChallengeID    string `json:"challengeId" validate:"max=64"`
	ChallengeTitle string `json:"challengeTitle" validate:"max=255"`
	DeviceInfo     string `json:"deviceInfo" validate:"max=1000"`
}

type ItemResult struct {
	FileName string
	Photo    *Photo
	Err      error
}

type BatchResult struct {
	Items     []ItemResult
	Succeeded int
	Failed    int
}

// Service is the upload coordinator plus photo reads and owner deletes.
type Service struct {
	repo      Repository
	originals *media.Store
	thumbs    *media.Store
	deriver   ThumbnailDeriver
	limits    Limits
	events    EventPublisher
	now       func() time.Time
}

func NewService(repo Repository, originals, thumbs *media.Store, deriver ThumbnailDeriver, limits Limits, events EventPublisher) *Service {
	if limits.MaxImageBytes <= 0 {
		limits.MaxImageBytes = DefaultMaxImageBytes
	}
	if limits.MaxVideoBytes <= 0 {
		limits.MaxVideoBytes = DefaultMaxVideoBytes
	}
	if limits.MaxBatchFiles <= 0 {
		limits.MaxBatchFiles = DefaultMaxBatchFiles
	}
	return &Service{
		repo:      repo,
		originals: originals,
		thumbs:    thumbs,
		deriver:   deriver,
		limits:    limits,
		events:    events,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Ingest stores every file of a batch independently. A bad file never affects
// the others; its error is reported in its own ItemResult. Only request-level
// problems (no files, too many files, bad metadata) fail the whole call, and
// they do so before anything is written.
func (s *Service) Ingest(ctx context.Context, files []IncomingFile, meta UploadMetadata) (*BatchResult, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > s.limits.MaxBatchFiles {
		return nil, ErrTooManyFiles.WithDetail("at most %d files per upload, got %d", s.limits.MaxBatchFiles, len(files))
	}
	meta, err := normalizeMetadata(meta, false)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{Items: make([]ItemResult, 0, len(files))}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		p, err := s.ingestOne(ctx, f, meta)
		res.Items = append(res.Items, ItemResult{FileName: f.Name, Photo: p, Err: err})
		if err != nil {
			res.Failed++
			log.Printf("upload_item_failed file=%q uploaded_by=%q error=%q", f.Name, meta.UploadedBy, err.Error())
			continue
		}
		res.Succeeded++
	}
	return res, nil
}

// IngestSingle is the challenge upload path; uploader, challenge id and
// challenge title are all required.
func (s *Service) IngestSingle(ctx context.Context, f IncomingFile, meta UploadMetadata) (*Photo, error) {
	meta.UploadType = string(KindChallenge)
	meta, err := normalizeMetadata(meta, true)
	if err != nil {
		return nil, err
	}
	return s.ingestOne(ctx, f, meta)
}

func (s *Service) ingestOne(ctx context.Context, f IncomingFile, meta UploadMetadata) (*Photo, error) {
	mime, err := s.detectMime(f)
	if err != nil {
		return nil, err
	}
	if !media.AllowedMimeTypes[mime] {
		return nil, ErrInvalidMimeType.WithDetail("%s: file type %q is not allowed", f.Name, mime)
	}

	mediaType := media.TypeFromMime(mime)
	limit := s.limitFor(mediaType)
	if f.Size == 0 {
		return nil, ErrEmptyFile.WithDetail("%s is empty", f.Name)
	}
	if f.Size > limit {
		return nil, tooLarge(f.Name, mediaType, limit)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	key, n, err := s.originals.Save(io.LimitReader(rc, limit+1), f.Name)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("store %s: %w", f.Name, err)
	}
	// declared sizes can lie; the bytes actually read are authoritative
	if n > limit || n == 0 {
		_ = s.originals.Delete(key)
		if n == 0 {
			return nil, ErrEmptyFile.WithDetail("%s is empty", f.Name)
		}
		return nil, tooLarge(f.Name, mediaType, limit)
	}

	thumb := s.deriver.Derive(ctx, s.originals.Resolve(key), mediaType)

	p := &Photo{
		ID:                uuid.New().String(),
		Filename:          key,
		ThumbnailFilename: thumb,
		MediaType:         mediaType,
		UploadedBy:        meta.UploadedBy,
		UploadedAt:        s.now(),
		ChallengeID:       optional(meta.ChallengeID),
		ChallengeTitle:    optional(meta.ChallengeTitle),
		DeviceInfo:        meta.DeviceInfo,
		UploadKind:        UploadKind(meta.UploadType),
		Metadata: &Metadata{
			Version:      MetadataVersion,
			OriginalName: f.Name,
			MimeType:     mime,
			Size:         n,
		},
	}

	if err := s.repo.Create(ctx, p); err != nil {
		_ = s.originals.Delete(key)
		if thumb != nil {
			_ = s.thumbs.Delete(*thumb)
		}
		return nil, fmt.Errorf("save photo record: %w", err)
	}

	s.decorate(p)
	log.Printf("photo_uploaded id=%s file=%s media_type=%s uploaded_by=%q thumbnail=%t", p.ID, p.Filename, p.MediaType, p.UploadedBy, thumb != nil)
	s.publish(EventPhotoUploaded, p)
	return p, nil
}

// detectMime trusts a specific declared type and sniffs content only when the
// client sent none or a generic one.
func (s *Service) detectMime(f IncomingFile) (string, error) {
	declared := media.NormalizeMime(f.ContentType)
	if declared != "" && declared != "application/octet-stream" {
		return declared, nil
	}

	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	detected, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", fmt.Errorf("sniff %s: %w", f.Name, err)
	}
	return media.NormalizeMime(detected.String()), nil
}

func (s *Service) limitFor(t media.Type) int64 {
	if t == media.TypeVideo {
		return s.limits.MaxVideoBytes
	}
	return s.limits.MaxImageBytes
}

func tooLarge(name string, t media.Type, limit int64) error {
	return ErrFileTooLarge.WithDetail("%s exceeds the %d MB limit for %ss", name, limit/(1024*1024), t)
}

func (s *Service) Get(ctx context.Context, id string) (*Photo, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.decorate(p)
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Photo, error) {
	if f.Limit < 0 || f.Limit > 500 {
		f.Limit = 500
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	photos, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	for i := range photos {
		s.decorate(&photos[i])
	}
	return photos, nil
}

// Delete removes a photo owned by requester (exact name match), its ledger
// rows and, best-effort, its files.
func (s *Service) Delete(ctx context.Context, id, requester string) error {
	if strings.TrimSpace(requester) == "" {
		return ErrMissingField.WithDetail("userName is required")
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.UploadedBy != requester {
		return ErrNotOwner
	}

	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		if errors.Is(err, ErrPhotoNotFound) {
			return err
		}
		return apperror.Transaction(err)
	}

	if err := s.originals.Delete(p.Filename); err != nil {
		log.Printf("photo_file_delete_failed id=%s file=%s error=%q", p.ID, p.Filename, err.Error())
	}
	if p.ThumbnailFilename != nil {
		if err := s.thumbs.Delete(*p.ThumbnailFilename); err != nil {
			log.Printf("photo_file_delete_failed id=%s file=%s error=%q", p.ID, *p.ThumbnailFilename, err.Error())
		}
	}

	log.Printf("photo_deleted id=%s uploaded_by=%q", p.ID, p.UploadedBy)
	s.publish(EventPhotoDeleted, map[string]any{"id": p.ID, "challenge_id": p.ChallengeID})
	return nil
}

func (s *Service) decorate(p *Photo) {
	p.URL = s.originals.URL(p.Filename)
	if p.ThumbnailFilename != nil {
		u := s.thumbs.URL(*p.ThumbnailFilename)
		p.ThumbnailURL = &u
	}
}

func (s *Service) publish(eventType string, payload any) {
	if s.events != nil {
		s.events.Publish(eventType, payload)
	}
}

func normalizeMetadata(meta UploadMetadata, requireChallenge bool) (UploadMetadata, error) {
	meta.UploadedBy = strings.TrimSpace(meta.UploadedBy)
	meta.UploadType = strings.ToLower(strings.TrimSpace(meta.UploadType))
	meta.ChallengeID = strings.TrimSpace(meta.ChallengeID)
	meta.ChallengeTitle = strings.TrimSpace(meta.ChallengeTitle)
	meta.DeviceInfo = strings.TrimSpace(meta.DeviceInfo)

	if meta.UploadedBy == "" {
		return meta, ErrMissingField.WithDetail("uploadedBy is required")
	}
	if errs := validator.Validate(meta); errs != nil {
		return meta, ErrInvalidMetadata.WithDetail("invalid metadata: %s", validator.Message(errs)).WithFields(errs)
	}
	if requireChallenge {
		if meta.ChallengeID == "" {
			return meta, ErrMissingField.WithDetail("challengeId is required")
		}
		if meta.ChallengeTitle == "" {
			return meta, ErrMissingField.WithDetail("challengeTitle is required")
		}
	}

	if meta.UploadType == "" {
		meta.UploadType = string(KindGeneral)
		if meta.ChallengeID != "" {
			meta.UploadType = string(KindChallenge)
		}
	}

	if UploadKind(meta.UploadType) == KindGeneral {
		meta.ChallengeID, meta.ChallengeTitle = "", ""
	} else if meta.ChallengeID == "" {
		return meta, ErrMissingField.WithDetail("challengeId is required for challenge uploads")
	}
	return meta, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
