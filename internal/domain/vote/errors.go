package vote

import "guestgallery/internal/pkg/apperror"

var (
	ErrPhotoNotFound       = apperror.NotFound("PHOTO_NOT_FOUND", "photo not found")
	ErrPhotoNotInChallenge = apperror.Validation("PHOTO_NOT_IN_CHALLENGE", "photo does not belong to this challenge")
	ErrMissingField        = apperror.Validation("MISSING_FIELD", "required field is missing")
)
