package handler

import (
	"savepro/internal/usecase"
)

var (
	roomHandler    *RoomHandler
	paymentHandler *PaymentHandler
)

func Setup(
	roomUseCase *usecase.RoomUseCase,
	paymentUseCase *usecase.PaymentUseCase,
) {
	roomHandler = NewRoomHandler(roomUseCase)
	paymentHandler = NewPaymentHandler(paymentUseCase)
}

func GetRoomHandler() *RoomHandler {
	return roomHandler
}

func GetPaymentHandler() *PaymentHandler {
	return paymentHandler
}
