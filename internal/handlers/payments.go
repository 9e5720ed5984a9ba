package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/payment"
)

// SignatureHeader carries the webhook HMAC.
const SignatureHeader = "x-webhook-signature"

// PaymentHandler exposes checkout, verification and the provider webhook.
type PaymentHandler struct {
	payments *payment.Service
}

// CreateOrder opens a checkout, optionally tied to a booking.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req payment.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.payments.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// Verify is called by the checkout page after the customer returns. The
// booking may be passed as query parameters for orders opened without one.
func (h *PaymentHandler) Verify(c *gin.Context) {
	req, err := bookingFromQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.payments.Verify(c.Request.Context(), c.Param("orderId"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	if !res.Paid {
		c.JSON(http.StatusPaymentRequired, res)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	c.JSON(status, res)
}

// Webhook needs the raw body for signature verification.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		respondError(c, apperror.Validation("body", "unreadable body"))
		return
	}
	if err := h.payments.HandleWebhook(c.Request.Context(), body, c.GetHeader(SignatureHeader)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func bookingFromQuery(c *gin.Context) (*payment.BookingRequest, error) {
	bikeID := c.Query("bike_id")
	if bikeID == "" {
		return nil, nil
	}
	req := &payment.BookingRequest{
		BikeID:     bikeID,
		CustomerID: c.Query("customer_id"),
		Notes:      c.Query("notes"),
	}
	var err error
	if req.Start, err = parseQueryTime(c, "start_datetime"); err != nil {
		return nil, err
	}
	if req.End, err = parseQueryTime(c, "end_datetime"); err != nil {
		return nil, err
	}
	return req, nil
}

func parseQueryTime(c *gin.Context, key string) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return time.Time{}, apperror.Validation(key, key+" is required")
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, apperror.Validation(key, key+" must be RFC 3339")
	}
	return t, nil
}
