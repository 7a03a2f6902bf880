package engagement

import "guestgallery/internal/pkg/apperror"

var (
	ErrPhotoNotFound  = apperror.NotFound("PHOTO_NOT_FOUND", "photo not found")
	ErrMissingUser    = apperror.Validation("MISSING_FIELD", "userName is required")
	ErrEmptyComment   = apperror.Validation("EMPTY_COMMENT", "comment text must not be empty")
	ErrCommentTooLong = apperror.Validation("COMMENT_TOO_LONG", "comment text is too long")
)
