package http

import (
	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/studio-booking-backend/internal/auth"
)

func RegisterRoutes(g *gin.RouterGroup, h *EngineerHandler, authMiddleware gin.HandlerFunc) {
	engineers := g.Group("/engineers")
	engineers.Use(authMiddleware)
	{
		engineers.GET("", h.List)
		engineers.GET("/:id", h.Get)
		engineers.GET("/:id/availability", h.ListAvailability)
		engineers.GET("/:id/rates", h.ListRates)
	}

	manage := engineers.Group("", auth.RequirePermission(auth.ActionManageEngineers))
	{
		manage.POST("/:id/rooms", h.AssignRoom)
		manage.DELETE("/:id/rooms/:roomId", h.UnassignRoom)
		manage.PUT("/:id/availability", h.SetAvailability)
		manage.PUT("/:id/rates", h.SetRate)
	}
}
