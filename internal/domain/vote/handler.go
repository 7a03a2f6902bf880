package vote

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"guestgallery/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type voteRequest struct {
	PhotoID  string `json:"photoId"`
	UserName string `json:"userName"`
}

// Vote godoc
// @Summary Cast, move or withdraw a challenge vote
// @Tags Votes
// @Accept json
// @Produce json
// @Param challengeId path string true "Challenge ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400,404,409 {object} map[string]interface{}
// @Router /challenges/{challengeId}/votes [post]
func (h *Handler) Vote(c *gin.Context) {
	var req voteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	res, err := h.svc.Vote(c.Request.Context(), c.Param("challengeId"), req.PhotoID, req.UserName)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Counts(c *gin.Context) {
	res, err := h.svc.Counts(c.Request.Context(), c.Param("challengeId"), c.Query("userName"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) Status(c *gin.Context) {
	res, err := h.svc.Status(c.Request.Context(), c.Param("challengeId"), c.Param("photoId"), c.Query("userName"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

func (h *Handler) ChallengePhotos(c *gin.Context) {
	res, err := h.svc.ChallengePhotos(c.Request.Context(), c.Param("challengeId"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// Leaderboard godoc
// @Summary Top photos of a challenge
// @Tags Votes
// @Param challengeId path string true "Challenge ID"
// @Param limit query int false "Top N (default 3)"
// @Router /challenges/{challengeId}/leaderboard [get]
func (h *Handler) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			response.Error(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	res, err := h.svc.Leaderboard(c.Request.Context(), c.Param("challengeId"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}
