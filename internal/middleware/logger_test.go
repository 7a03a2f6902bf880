package middleware

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestErrorLoggerNamesPhotoChallengeAndGuest(t *testing.T) {
	logs := captureLog(t)

	router := gin.New()
	router.Use(ErrorLogger())
	router.GET("/api/challenges/:challengeId/photos/:photoId/vote-status", func(c *gin.Context) {
		_ = c.Error(errors.New("database is locked"))
		c.Status(http.StatusConflict)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/challenges/smile/photos/p9/vote-status?userName=Anna+K", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(w, req)

	line := logs.String()
	assert.Contains(t, line, "request_error")
	assert.Contains(t, line, "status=409")
	assert.Contains(t, line, "route=/api/challenges/:challengeId/photos/:photoId/vote-status")
	assert.Contains(t, line, "challenge_id=smile")
	assert.Contains(t, line, "photo_id=p9")
	assert.Contains(t, line, `guest="Anna K"`)
	assert.Contains(t, line, "request_id=req-42")
	assert.Contains(t, line, `error="database is locked"`)
	assert.NotContains(t, line, "stack=")
}

func TestErrorLoggerQuietOnSuccess(t *testing.T) {
	logs := captureLog(t)

	router := gin.New()
	router.Use(ErrorLogger())
	router.GET("/api/photos/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/photos/p1", nil))
	assert.Empty(t, logs.String())
}

func TestErrorLoggerPanicKeepsStackInLog(t *testing.T) {
	logs := captureLog(t)

	router := gin.New()
	router.Use(ErrorLogger())
	router.DELETE("/api/photos/:id", func(c *gin.Context) { panic("nil store") })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/photos/p3", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), "type=panic")
	assert.Contains(t, logs.String(), "photo_id=p3")
	assert.Contains(t, logs.String(), "stack=")
}
