package engagement

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	photos := r.Group("/photos/:id")
	{
		photos.GET("/engagement", h.Summary)
		photos.POST("/like", h.ToggleLike)
		photos.GET("/comments", h.ListComments)
		photos.POST("/comments", h.AddComment)
	}
}
