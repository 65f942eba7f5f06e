package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. Permissions are checked by booking.Service.
func RegisterRoutes(g *gin.RouterGroup, h *BookingHandler, authMiddleware gin.HandlerFunc) {
	bookings := g.Group("/bookings")
	bookings.Use(authMiddleware)
	{
		bookings.GET("", h.List)
		bookings.POST("", h.Create)
		bookings.GET("/:id", h.Get)

		bookings.POST("/:id/extend", h.Extend)
		bookings.GET("/:id/extensions", h.ListExtensions)

		bookings.POST("/:id/swap-engineer", h.SwapEngineer)
		bookings.POST("/:id/swap-room", h.SwapRoom)

		bookings.POST("/:id/payments", h.RecordPayment)
		bookings.GET("/:id/payments", h.ListPayments)

		bookings.POST("/:id/discount", h.ApplyDiscount)
		bookings.POST("/:id/price-override", h.OverridePrice)

		bookings.POST("/:id/cancel", h.Cancel)
		bookings.POST("/:id/complete", h.Complete)
	}
}
