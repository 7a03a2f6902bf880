package photo

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"guestgallery/internal/pkg/apperror"
	"guestgallery/internal/pkg/response"
)

// Handler exposes upload, listing and owner delete over HTTP.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UploadBatch godoc
// @Summary Upload up to 30 photos or videos
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param photos formData file true "Files"
// @Param metadata formData string true "JSON: uploadedBy, uploadType, challengeId, challengeTitle, deviceInfo"
// @Success 201,207 {object} map[string]interface{}
// @Failure 400,413 {object} map[string]interface{}
// @Router /photos/upload [post]
func (h *Handler) UploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "multipart form expected")
		return
	}

	headers := form.File["photos"]
	if len(headers) == 0 {
		headers = form.File["files"]
	}
	files := make([]IncomingFile, 0, len(headers))
	for _, fh := range headers {
		files = append(files, FileFromHeader(fh))
	}

	var meta UploadMetadata
	if raw := firstValue(form.Value, "metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			response.FromError(c, ErrInvalidMetadata.WithDetail("metadata must be valid JSON"))
			return
		}
	}

	res, err := h.service.Ingest(c.Request.Context(), files, meta)
	if err != nil {
		response.FromError(c, err)
		return
	}

	items := make([]gin.H, 0, len(res.Items))
	for _, it := range res.Items {
		item := gin.H{"file_name": it.FileName, "success": it.Err == nil}
		if it.Err != nil {
			item["error"] = itemError(it.Err)
		} else {
			item["photo"] = it.Photo
		}
		items = append(items, item)
	}

	status := http.StatusCreated
	switch {
	case res.Succeeded == 0:
		status = http.StatusBadRequest
		if ae, ok := apperror.As(res.Items[0].Err); ok {
			status = response.StatusFor(ae)
		}
	case res.Failed > 0:
		status = http.StatusMultiStatus
	}

	c.JSON(status, gin.H{
		"success": res.Failed == 0,
		"data": gin.H{
			"items":     items,
			"succeeded": res.Succeeded,
			"failed":    res.Failed,
		},
	})
}

// UploadChallenge godoc
// @Summary Upload one photo to a challenge
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "File"
// @Param uploadedBy formData string true "Guest name"
// @Param challengeId formData string true "Challenge ID"
// @Param challengeTitle formData string true "Challenge title"
// @Success 201 {object} map[string]interface{}
// @Failure 400,413 {object} map[string]interface{}
// @Router /photos/challenge-upload [post]
func (h *Handler) UploadChallenge(c *gin.Context) {
	fh, err := c.FormFile("photo")
	if err != nil {
		response.FromError(c, ErrNoFiles)
		return
	}

	meta := UploadMetadata{
		UploadedBy:     c.PostForm("uploadedBy"),
		ChallengeID:    c.PostForm("challengeId"),
		ChallengeTitle: c.PostForm("challengeTitle"),
		DeviceInfo:     c.PostForm("deviceInfo"),
	}

	p, err := h.service.IngestSingle(c.Request.Context(), FileFromHeader(fh), meta)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, p)
}

// List godoc
// @Summary List photos, newest first
// @Tags Photos
// @Produce json
// @Param uploadedBy query string false "Only photos by this guest"
// @Param challengeId query string false "Only photos of this challenge"
// @Router /photos [get]
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	photos, err := h.service.List(c.Request.Context(), ListFilter{
		UploadedBy:  c.Query("uploadedBy"),
		ChallengeID: c.Query("challengeId"),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, photos)
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p)
}

type deleteRequest struct {
	UserName string `json:"userName"`
}

// Delete godoc
// @Summary Delete own photo with its likes, comments and votes
// @Tags Photos
// @Param id path string true "Photo ID"
// @Param userName query string false "Requesting guest (or JSON body)"
// @Failure 403,404,409 {object} map[string]interface{}
// @Router /photos/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	var req deleteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
			return
		}
	}
	if req.UserName == "" {
		req.UserName = c.Query("userName")
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), req.UserName); err != nil {
		response.FromError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "deleted"})
}

func itemError(err error) gin.H {
	if ae, ok := apperror.As(err); ok {
		return gin.H{"code": ae.Code, "message": ae.Message}
	}
	return gin.H{"code": "INTERNAL", "message": "upload failed"}
}

func firstValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}
