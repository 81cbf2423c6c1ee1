package router

import (
	"savepro/internal/adapter/api/handler"
	"savepro/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

// SetupRoomRouter initializes room and message routes
func SetupRoomRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	roomHandler := handler.GetRoomHandler()

	rooms := e.Group("/v1/rooms")
	rooms.Use(authMiddleware.Authenticate)

	rooms.POST("", roomHandler.CreateRoom)
	rooms.POST("/join", roomHandler.JoinRoom)
	rooms.GET("", roomHandler.GetMyRooms)
	rooms.GET("/:id", roomHandler.GetRoom)
	rooms.PUT("/:id/complete", roomHandler.CompleteRoom)
	rooms.PUT("/:id/tracking", roomHandler.UpdateTracking)

	rooms.POST("/:id/messages", roomHandler.SendMessage)
	rooms.GET("/:id/messages", roomHandler.GetMessages)
	rooms.DELETE("/:id/messages/:messageId", roomHandler.DeleteMessage)
	rooms.PUT("/:id/quotation/:messageId", roomHandler.AcceptQuotation)
}
