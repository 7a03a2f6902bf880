package vote

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	challenges := r.Group("/challenges/:challengeId")
	{
		challenges.GET("/photos", h.ChallengePhotos)
		challenges.GET("/photos/:photoId/vote-status", h.Status)
		challenges.POST("/votes", h.Vote)
		challenges.GET("/votes", h.Counts)
		challenges.GET("/leaderboard", h.Leaderboard)
	}
}
