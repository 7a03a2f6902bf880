package middleware

import (
	"fmt"
	"log"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// route params worth a log field, keyed by the name they are logged under
var galleryParams = []struct{ param, field string }{
	{"id", "photo_id"},
	{"photoId", "photo_id"},
	{"challengeId", "challenge_id"},
}

// ErrorLogger logs failed requests with the photo, challenge and guest they
// concern, and turns panics into a plain 500.
func ErrorLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				logRequestError(c, start, "panic", fmt.Sprint(recovered), debug.Stack())
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_SERVER_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			if len(c.Errors) == 0 {
				if c.Writer.Status() >= http.StatusInternalServerError {
					logRequestError(c, start, "http_error", http.StatusText(c.Writer.Status()), nil)
				}
				return
			}
			for _, err := range c.Errors {
				logRequestError(c, start, fmt.Sprintf("%v", err.Type), err.Error(), nil)
			}
		}()

		c.Next()
	}
}

func logRequestError(c *gin.Context, start time.Time, errType, message string, stack []byte) {
	log.Print(requestErrorLine(c, start, errType, message, stack))
}

func requestErrorLine(c *gin.Context, start time.Time, errType, message string, stack []byte) string {
	fields := []string{
		"request_error",
		"type=" + errType,
		"status=" + strconv.Itoa(c.Writer.Status()),
		"method=" + c.Request.Method,
		"route=" + c.FullPath(),
		"path=" + c.Request.URL.Path,
	}
	seen := map[string]bool{}
	for _, p := range galleryParams {
		if v := c.Param(p.param); v != "" && !seen[p.field] {
			seen[p.field] = true
			fields = append(fields, p.field+"="+v)
		}
	}
	// guest names are free text
	if guest := c.Query("userName"); guest != "" {
		fields = append(fields, "guest="+strconv.Quote(guest))
	}
	if subject := c.GetString("subject"); subject != "" {
		fields = append(fields, "subject="+subject, "role="+c.GetString("role"))
	}
	if id := requestID(c); id != "" {
		fields = append(fields, "request_id="+id)
	}
	fields = append(fields,
		"client_ip="+c.ClientIP(),
		"latency="+time.Since(start).String(),
		"error="+strconv.Quote(message),
	)
	if len(stack) > 0 {
		fields = append(fields, "stack="+strconv.Quote(string(stack)))
	}
	return strings.Join(fields, " ")
}

func requestID(c *gin.Context) string {
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	return c.GetHeader("X-Correlation-ID")
}
