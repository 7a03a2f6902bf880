package admin

import "guestgallery/internal/pkg/apperror"

var ErrInvalidCredentials = apperror.Unauthorized("INVALID_CREDENTIALS", "invalid admin password")
