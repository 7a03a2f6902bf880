package response

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"guestgallery/internal/pkg/apperror"
)

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// FromError writes err using its apperror kind. Unknown errors are logged and
// reported as a generic internal failure.
func FromError(c *gin.Context, err error) {
	ae, ok := apperror.As(err)
	if !ok {
		_ = c.Error(err)
		log.Printf("unhandled_error method=%s path=%s error=%q", c.Request.Method, c.Request.URL.Path, err.Error())
		Error(c, http.StatusInternalServerError, "INTERNAL", "Internal error")
		return
	}
	if ae.Kind == apperror.KindTransaction || ae.Kind == apperror.KindInternal {
		_ = c.Error(err)
	}
	if len(ae.Fields) > 0 {
		ErrorWithDetails(c, StatusFor(ae), ae.Code, ae.Message, ae.Fields)
		return
	}
	Error(c, StatusFor(ae), ae.Code, ae.Message)
}

// StatusFor maps an apperror to its HTTP status.
func StatusFor(ae *apperror.Error) int {
	switch ae.Kind {
	case apperror.KindValidation:
		if ae.Code == "FILE_TOO_LARGE" {
			return http.StatusRequestEntityTooLarge
		}
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindUnauthorized:
		return http.StatusForbidden
	case apperror.KindTransaction:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
