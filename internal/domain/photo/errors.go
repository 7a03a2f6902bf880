package photo

import "guestgallery/internal/pkg/apperror"

var (
	ErrPhotoNotFound   = apperror.NotFound("PHOTO_NOT_FOUND", "photo not found")
	ErrNotOwner        = apperror.Unauthorized("NOT_OWNER", "only the uploader can delete this photo")
	ErrFileTooLarge    = apperror.Validation("FILE_TOO_LARGE", "file exceeds maximum allowed size")
	ErrInvalidMimeType = apperror.Validation("INVALID_MIME_TYPE", "file type is not allowed")
	ErrEmptyFile       = apperror.Validation("EMPTY_FILE", "file is empty")
	ErrNoFiles         = apperror.Validation("NO_FILES", "no files provided")
	ErrTooManyFiles    = apperror.Validation("TOO_MANY_FILES", "too many files in one upload")
	ErrMissingField    = apperror.Validation("MISSING_FIELD", "a required field is missing")
	ErrInvalidMetadata = apperror.Validation("INVALID_METADATA", "upload metadata is invalid")
)
