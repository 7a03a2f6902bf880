package photo

import "github.com/gin-gonic/gin"

func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	photos := r.Group("/photos")
	{
		photos.POST("/upload", h.UploadBatch)
		photos.POST("/challenge-upload", h.UploadChallenge)
		photos.GET("", h.List)
		photos.GET("/:id", h.Get)
		photos.DELETE("/:id", h.Delete)
	}
}
