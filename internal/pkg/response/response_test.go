package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestgallery/internal/pkg/apperror"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  *apperror.Error
		want int
	}{
		{apperror.Validation("BAD", "bad"), http.StatusBadRequest},
		{apperror.Validation("FILE_TOO_LARGE", "big"), http.StatusRequestEntityTooLarge},
		{apperror.NotFound("GONE", "gone"), http.StatusNotFound},
		{apperror.Unauthorized("NOT_OWNER", "nope"), http.StatusForbidden},
		{apperror.Transaction(errors.New("locked")), http.StatusConflict},
		{apperror.New(apperror.KindInternal, "BOOM", "boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Code)
	}
}

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", func(c *gin.Context) { FromError(c, err) })

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return rr, out
}

func TestFromErrorTransactionIsRetryableConflict(t *testing.T) {
	rr, out := serve(t, apperror.Transaction(errors.New("database is locked")))

	assert.Equal(t, http.StatusConflict, rr.Code)
	e := out["error"].(map[string]any)
	assert.Equal(t, "TRANSACTION_FAILED", e["code"])
	assert.NotContains(t, e["message"], "locked")
}

func TestFromErrorIncludesFieldDetails(t *testing.T) {
	err := apperror.Validation("INVALID_METADATA", "invalid metadata").
		WithFields(map[string]string{"uploadType": "oneof=general challenge"})
	rr, out := serve(t, err)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	details := out["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "oneof=general challenge", details["uploadType"])
}

func TestFromErrorHidesForeignErrors(t *testing.T) {
	rr, out := serve(t, errors.New("pq: relation does not exist"))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Internal error", out["error"].(map[string]any)["message"])
}
