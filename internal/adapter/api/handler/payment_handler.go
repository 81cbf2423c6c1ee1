package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"savepro/internal/usecase"
	"savepro/pkg/response"
	"savepro/pkg/utils"
)

type PaymentHandler struct {
	paymentUseCase *usecase.PaymentUseCase
}

func NewPaymentHandler(paymentUseCase *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: paymentUseCase,
	}
}

type createPaymentRequest struct {
	RoomID             string `json:"RoomID" validate:"required"`
	QuotationMessageID string `json:"quotationMessageId" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note"`
}

// CreateFromQuotation creates the payment record for an accepted
// quotation. Calling it again for the same quotation returns the
// existing record.
func (h *PaymentHandler) CreateFromQuotation(c echo.Context) error {
	var req createPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	payment, created, err := h.paymentUseCase.CreateFromQuotation(c.Request().Context(), userID, req.RoomID, req.QuotationMessageID)
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.Created(c, map[string]interface{}{
			"payment": payment,
		})
	}

	return response.Success(c, map[string]interface{}{
		"payment": payment,
	})
}

// UpdateStatus moves a payment through its lifecycle
func (h *PaymentHandler) UpdateStatus(c echo.Context) error {
	paymentID := c.Param("id")
	userID := c.Get("uid").(string)

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	payment, err := h.paymentUseCase.UpdateStatus(c.Request().Context(), userID, paymentID, req.Status, req.Note)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"payment": payment,
	})
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	paymentID := c.Param("id")
	userID := c.Get("uid").(string)

	payment, err := h.paymentUseCase.GetByID(c.Request().Context(), userID, paymentID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"payment": payment,
	})
}

func (h *PaymentHandler) GetRoomPayments(c echo.Context) error {
	roomID := c.Param("roomId")
	userID := c.Get("uid").(string)

	payments, err := h.paymentUseCase.ListByRoom(c.Request().Context(), userID, roomID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"payments": payments,
	})
}

// GetMyPayments lists every payment where the caller is buyer or seller
func (h *PaymentHandler) GetMyPayments(c echo.Context) error {
	userID := c.Get("uid").(string)

	payments, err := h.paymentUseCase.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	params := utils.GetPaginationParams(c)
	total := int64(len(payments))

	start := params.Offset
	if start > len(payments) {
		start = len(payments)
	}
	end := start + params.PageSize
	if end > len(payments) {
		end = len(payments)
	}

	return response.SuccessPaginated(c, payments[start:end], total, params.PageSize, params.Offset)
}

// DeletePayment removes a payment record; only its creator may do so
func (h *PaymentHandler) DeletePayment(c echo.Context) error {
	paymentID := c.Param("id")
	userID := c.Get("uid").(string)

	if err := h.paymentUseCase.Delete(c.Request().Context(), userID, paymentID); err != nil {
		return response.Error(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// GetQuotationDetail returns a quotation with the platform fee, the
// total due and whether a payment already exists for it
func (h *PaymentHandler) GetQuotationDetail(c echo.Context) error {
	roomID := c.Param("roomId")
	messageID := c.Param("messageId")
	userID := c.Get("uid").(string)

	detail, err := h.paymentUseCase.GetQuotationDetail(c.Request().Context(), userID, roomID, messageID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"quotation": detail,
	})
}
