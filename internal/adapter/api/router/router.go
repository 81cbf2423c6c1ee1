package router

import (
	"savepro/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupRoomRouter(e, authMiddleware)
	SetupPaymentRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
