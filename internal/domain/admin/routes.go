package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts login publicly and everything else behind protect.
func RegisterRoutes(r *gin.RouterGroup, h *Handler, protect ...gin.HandlerFunc) {
	admin := r.Group("/admin")
	admin.POST("/login", h.Login)

	protected := admin.Group("", protect...)
	{
		protected.GET("/stats", h.Stats)
	}
}
