package engagement

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"guestgallery/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type likeRequest struct {
	UserName string `json:"userName"`
}

type commentRequest struct {
	UserName string `json:"userName"`
	Text     string `json:"text"`
}

// ToggleLike godoc
// @Summary Like or unlike a photo
// @Tags Engagement
// @Param id path string true "Photo ID"
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /photos/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	var req likeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.svc.ToggleLike(c.Request.Context(), c.Param("id"), req.UserName)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.svc.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, comments)
}

// AddComment godoc
// @Summary Comment on a photo
// @Tags Engagement
// @Param id path string true "Photo ID"
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /photos/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), c.Param("id"), req.UserName, req.Text)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, comment)
}

func (h *Handler) Summary(c *gin.Context) {
	sum, err := h.svc.Summary(c.Request.Context(), c.Param("id"), c.Query("userName"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, sum)
}
