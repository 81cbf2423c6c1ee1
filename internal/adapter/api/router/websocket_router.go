package router

import (
	"github.com/labstack/echo/v4"

	"savepro/internal/adapter/api/handler"
)

// SetupWebSocketRouter sets up WebSocket routes
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	// Auth is handled inside the handler: the token comes in the query string
	e.GET("/ws", wsHandler.HandleWebSocket)
}
