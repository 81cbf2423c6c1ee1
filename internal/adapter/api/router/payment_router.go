package router

import (
	"savepro/internal/adapter/api/handler"
	"savepro/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupPaymentRouter initializes payment routes
func SetupPaymentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	paymentHandler := handler.GetPaymentHandler()

	payments := e.Group("/v1/payments")
	payments.Use(authMiddleware.Authenticate)

	payments.POST("/from-quotation", paymentHandler.CreateFromQuotation)
	payments.GET("/my", paymentHandler.GetMyPayments)
	payments.GET("/room/:roomId", paymentHandler.GetRoomPayments)
	payments.GET("/quotation/:roomId/:messageId", paymentHandler.GetQuotationDetail)
	payments.GET("/:id", paymentHandler.GetPayment)
	payments.PUT("/:id/status", paymentHandler.UpdateStatus)
	payments.DELETE("/:id", paymentHandler.DeletePayment)
}
