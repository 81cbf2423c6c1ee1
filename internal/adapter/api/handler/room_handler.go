package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"savepro/internal/usecase"
	"savepro/pkg/response"
	"savepro/pkg/utils"
)

type RoomHandler struct {
	roomUseCase *usecase.RoomUseCase
}

func NewRoomHandler(roomUseCase *usecase.RoomUseCase) *RoomHandler {
	return &RoomHandler{
		roomUseCase: roomUseCase,
	}
}

type createRoomRequest struct {
	Role        string `json:"role" validate:"required,oneof=buyer seller"`
	RoomName    string `json:"roomName"`
	DisplayName string `json:"displayName" validate:"required"`
}

type joinRoomRequest struct {
	RoomCode    string `json:"roomCode" validate:"required"`
	DisplayName string `json:"displayName" validate:"required"`
}

type quotationPayload struct {
	ProductName string `json:"productName" validate:"required"`
	Details     string `json:"details" validate:"required"`
	Images      string `json:"images"`
	Price       string `json:"price" validate:"required"`
}

type sendMessageRequest struct {
	Text      string            `json:"text"`
	Type      string            `json:"type" validate:"omitempty,oneof=text image quotation"`
	Quotation *quotationPayload `json:"quotation"`
}

type trackingRequest struct {
	TrackingNumber string `json:"trackingNumber" validate:"required"`
}

// CreateRoom creates a new room with the caller as its sole member
func (h *RoomHandler) CreateRoom(c echo.Context) error {
	var req createRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, err := h.roomUseCase.CreateRoom(c.Request().Context(), userID, usecase.CreateRoomInput{
		DisplayName: req.DisplayName,
		Role:        req.Role,
		RoomName:    req.RoomName,
	})

	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"chatRoom": room,
	})
}

// JoinRoom joins a room by its share code; the open slot decides the role
func (h *RoomHandler) JoinRoom(c echo.Context) error {
	var req joinRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, assignedRole, err := h.roomUseCase.JoinRoom(c.Request().Context(), userID, req.DisplayName, req.RoomCode)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"chatRoom":     room,
		"assignedRole": assignedRole,
	})
}

// GetMyRooms lists the caller's active rooms, most recently updated first
func (h *RoomHandler) GetMyRooms(c echo.Context) error {
	userID := c.Get("uid").(string)

	rooms, err := h.roomUseCase.GetRoomsForUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"chatRooms": rooms,
	})
}

// GetRoom returns a full room including its message log
func (h *RoomHandler) GetRoom(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(string)

	room, err := h.roomUseCase.GetRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"chatRoom": room,
	})
}

// SendMessage appends a text, image or quotation message to the room log
func (h *RoomHandler) SendMessage(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(string)

	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	input := usecase.SendMessageInput{
		RoomID: roomID,
		Text:   req.Text,
		Type:   req.Type,
	}
	if req.Quotation != nil {
		input.Quotation = &usecase.QuotationInput{
			ProductName: req.Quotation.ProductName,
			Details:     req.Quotation.Details,
			Images:      req.Quotation.Images,
			Price:       req.Quotation.Price,
		}
	}

	message, err := h.roomUseCase.SendMessage(c.Request().Context(), userID, input)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"message": message,
		"RoomID":  roomID,
	})
}

// GetMessages returns the room log in append order
func (h *RoomHandler) GetMessages(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(string)

	messages, err := h.roomUseCase.ListMessages(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	total := int64(len(messages))

	start := params.Offset
	if start > len(messages) {
		start = len(messages)
	}
	end := start + params.PageSize
	if end > len(messages) {
		end = len(messages)
	}

	return response.SuccessPaginated(c, messages[start:end], total, params.PageSize, params.Offset)
}

// DeleteMessage removes a message; only its author may do so
func (h *RoomHandler) DeleteMessage(c echo.Context) error {
	roomID := c.Param("id")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	if err := h.roomUseCase.DeleteMessage(c.Request().Context(), userID, roomID, messageID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// CompleteRoom marks the transaction as finished
func (h *RoomHandler) CompleteRoom(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(string)

	room, notice, err := h.roomUseCase.CompleteRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"status":        room.Status,
		"systemMessage": notice,
	})
}

// UpdateTracking records the parcel tracking number (seller only)
func (h *RoomHandler) UpdateTracking(c echo.Context) error {
	roomID := c.Param("id")
	userID := c.Get("uid").(string)

	var req trackingRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	room, err := h.roomUseCase.SetTrackingNumber(c.Request().Context(), userID, roomID, req.TrackingNumber)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"trackingNumber": room.TrackingNumber,
	})
}

// AcceptQuotation latches a quotation to accepted; repeat calls succeed
// without a second transition
func (h *RoomHandler) AcceptQuotation(c echo.Context) error {
	roomID := c.Param("id")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	message, changed, err := h.roomUseCase.AcceptQuotation(c.Request().Context(), userID, roomID, messageID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": message,
		"changed": changed,
	})
}
