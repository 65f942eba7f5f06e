package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *RoomHandler, authMiddleware gin.HandlerFunc) {
	rooms := g.Group("/rooms")
	rooms.Use(authMiddleware)
	{
		rooms.GET("", h.List)
		rooms.GET("/:id", h.Get)
		rooms.GET("/:id/lockouts", h.ListLockouts)
	}

	manage := rooms.Group("", auth.RequirePermission(auth.ActionManageRooms))
	{
		manage.POST("", h.Create)
		manage.PATCH("/:id", h.Update)
		manage.DELETE("/:id", h.Delete)
		manage.POST("/:id/lockouts", h.CreateLockout)
		manage.DELETE("/:id/lockouts/:lockoutId", h.DeleteLockout)
	}
}
