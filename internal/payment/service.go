package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/booking"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/models"
)

const currencyINR = "INR"

// refundMessage is shown whenever money was taken but no booking exists.
const refundMessage = "no booking was created; any amount debited will be refunded automatically by the payment provider"

// BookingRequest is the booking a customer intends to pay for.
type BookingRequest struct {
	BikeID     string    `json:"bike_id" binding:"required"`
	CustomerID string    `json:"customer_id" binding:"required"`
	Start      time.Time `json:"start_datetime" binding:"required"`
	End        time.Time `json:"end_datetime" binding:"required"`
	Notes      string    `json:"notes"`
}

// CreateOrderRequest opens a payment. With a booking attached the amount is
// computed from the bike's rates and the supplied amount is ignored.
type CreateOrderRequest struct {
	Amount        float64         `json:"amount" binding:"gte=0"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	CustomerPhone string          `json:"customer_phone" binding:"required"`
	CustomerEmail string          `json:"customer_email" binding:"omitempty,email"`
	Booking       *BookingRequest `json:"booking,omitempty"`
}

// OrderResult is handed to the checkout page.
type OrderResult struct {
	OrderID   string  `json:"order_id"`
	SessionID string  `json:"payment_session_id"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
}

// VerifyResult reports the provider's answer for an order.
type VerifyResult struct {
	OrderID        string              `json:"order_id"`
	ProviderStatus string              `json:"status"`
	Paid           bool                `json:"paid"`
	Message        string              `json:"message,omitempty"`
	Booking        *models.BookingView `json:"booking,omitempty"`
	Created        bool                `json:"created"`
}

// Service drives payment orders through
// order_created -> awaiting_confirmation -> paid | failed.
type Service struct {
	orders        db.PaymentOrderCollection
	bookings      *booking.Service
	provider      Provider
	webhookSecret string
	logger        *logrus.Logger
	newOrderID    func() string
}

// NewService wires payments to the booking service and a provider.
func NewService(store *db.Store, bookings *booking.Service, provider Provider, webhookSecret string, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		orders:        store.PaymentOrders,
		bookings:      bookings,
		provider:      provider,
		webhookSecret: webhookSecret,
		logger:        logger,
		newOrderID:    newOrderID,
	}
}

func newOrderID() string {
	return fmt.Sprintf("bike_%d_%s", time.Now().UnixMilli(), strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// CreateOrder records a local order and opens it with the provider.
func (s *Service) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := strings.TrimSpace(req.CustomerPhone)

	order := &models.PaymentOrder{
		OrderID:       s.newOrderID(),
		Amount:        req.Amount,
		Currency:      currencyINR,
		CustomerName:  name,
		CustomerPhone: phone,
		CustomerEmail: strings.ToLower(strings.TrimSpace(req.CustomerEmail)),
		Status:        models.OrderCreated,
	}

	customerRef := "cust_" + uuid.NewString()
	if req.Booking != nil {
		bc, err := bookingContext(req.Booking)
		if err != nil {
			return nil, err
		}
		avail, err := s.bookings.CheckAvailability(ctx, req.Booking.BikeID, bc.Start, bc.End)
		if err != nil {
			return nil, err
		}
		if !avail.Available {
			if avail.Conflict != nil {
				return nil, apperror.Overlap(avail.Conflict.Start, avail.Conflict.End)
			}
			return nil, apperror.Validation("end_datetime", "end must be after start")
		}
		order.Amount = avail.Quote.Amount
		order.Booking = bc
		customerRef = "cust_" + bc.CustomerID.Hex()
	}
	if order.Amount <= 0 {
		return nil, apperror.Validation("amount", "amount must be positive")
	}

	if err := s.orders.InsertPaymentOrder(ctx, order); err != nil {
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, apperror.Conflict("payment order id already used, please retry")
		}
		return nil, apperror.Persistence("insert payment order", err)
	}

	log := s.logger.WithFields(logrus.Fields{"order_id": order.OrderID, "amount": order.Amount})

	po, err := s.provider.CreateOrder(ctx, OrderRequest{
		OrderID:       order.OrderID,
		Amount:        order.Amount,
		Currency:      order.Currency,
		CustomerID:    customerRef,
		CustomerName:  order.CustomerName,
		CustomerEmail: order.CustomerEmail,
		CustomerPhone: order.CustomerPhone,
	})
	if err != nil {
		log.WithError(err).Error("payment order rejected by provider")
		if _, terr := s.orders.TransitionPaymentOrder(ctx, order.OrderID,
			[]models.PaymentOrderStatus{models.OrderCreated}, models.OrderFailed, models.PaymentOrderChanges{}); terr != nil {
			log.WithError(terr).Warn("could not mark payment order failed")
		}
		if apperror.Is(err, apperror.KindPaymentProvider) {
			return nil, err
		}
		return nil, apperror.Provider("payment order creation failed", err)
	}

	status := po.Status
	if _, err := s.orders.TransitionPaymentOrder(ctx, order.OrderID,
		[]models.PaymentOrderStatus{models.OrderCreated}, models.OrderAwaitingConfirmation,
		models.PaymentOrderChanges{SessionID: &po.SessionID, ProviderStatus: &status}); err != nil {
		return nil, apperror.Persistence("update payment order", err)
	}

	log.Info("payment order created")
	return &OrderResult{
		OrderID:   order.OrderID,
		SessionID: po.SessionID,
		Amount:    order.Amount,
		Currency:  order.Currency,
	}, nil
}

// Verify asks the provider for the authoritative status of orderID and, when
// paid, find-or-creates the booking. A booking stored with the order takes
// precedence over req.
func (s *Service) Verify(ctx context.Context, orderID string, req *BookingRequest) (*VerifyResult, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, apperror.Validation("order_id", "order id is required")
	}
	order, err := s.orders.FindPaymentOrder(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperror.NotFound("payment order", orderID)
	}
	if err != nil {
		return nil, apperror.Persistence("find payment order", err)
	}

	bc := order.Booking
	if bc == nil && req != nil {
		if bc, err = bookingContext(req); err != nil {
			return nil, err
		}
	}

	po, err := s.provider.GetOrder(ctx, orderID)
	if err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("payment verification failed")
		if apperror.Is(err, apperror.KindPaymentProvider) {
			return nil, err
		}
		return nil, apperror.Provider("payment verification failed", err)
	}

	result := &VerifyResult{OrderID: orderID, ProviderStatus: po.Status}
	if !strings.EqualFold(po.Status, StatusPaid) {
		s.recordUnpaid(ctx, order, po.Status)
		result.Message = "payment not completed; " + refundMessage
		return result, nil
	}

	amount := po.Amount
	if amount <= 0 {
		amount = order.Amount
	}
	view, created, err := s.settle(ctx, order, po.Status, amount, bc)
	if err != nil {
		return nil, err
	}
	result.Paid = true
	result.Booking = view
	result.Created = created
	return result, nil
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		OrderID     string `json:"order_id"`
		OrderStatus string `json:"order_status"`
		Order       struct {
			OrderID     string  `json:"order_id"`
			OrderAmount float64 `json:"order_amount"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string  `json:"payment_status"`
			PaymentAmount float64 `json:"payment_amount"`
		} `json:"payment"`
	} `json:"data"`
}

func (p webhookPayload) orderID() string {
	if p.Data.OrderID != "" {
		return p.Data.OrderID
	}
	return p.Data.Order.OrderID
}

// status normalizes both payload shapes to an order status.
func (p webhookPayload) status() string {
	if p.Data.OrderStatus != "" {
		return strings.ToUpper(p.Data.OrderStatus)
	}
	switch strings.ToUpper(p.Data.Payment.PaymentStatus) {
	case "SUCCESS":
		return StatusPaid
	case "FAILED":
		return StatusFailed
	case "USER_DROPPED":
		return StatusUserDropped
	case "":
		return ""
	default:
		return StatusPending
	}
}

// HandleWebhook authenticates and applies a provider push. Only storage
// failures are returned so the provider retries; everything else is acked.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if !VerifySignature(s.webhookSecret, body, signature) {
		s.logger.WithField("signature_present", signature != "").Warn("webhook signature rejected")
		return apperror.InvalidSignature()
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return apperror.Validation("body", "malformed webhook payload")
	}
	orderID := payload.orderID()
	if orderID == "" {
		return apperror.Validation("order_id", "webhook carries no order id")
	}
	status := payload.status()
	log := s.logger.WithFields(logrus.Fields{"order_id": orderID, "status": status, "type": payload.Type})

	order, err := s.orders.FindPaymentOrder(ctx, orderID)
	if errors.Is(err, db.ErrNotFound) {
		log.Info("webhook for unknown order acknowledged")
		return nil
	}
	if err != nil {
		return apperror.Persistence("find payment order", err)
	}

	if status != StatusPaid {
		s.recordUnpaid(ctx, order, status)
		log.Info("webhook recorded unpaid status")
		return nil
	}

	amount := payload.Data.Payment.PaymentAmount
	if amount <= 0 {
		amount = payload.Data.Order.OrderAmount
	}
	if amount <= 0 {
		amount = order.Amount
	}

	_, _, err = s.settle(ctx, order, status, amount, order.Booking)
	switch {
	case err == nil:
		log.Info("webhook payment settled")
		return nil
	case apperror.Is(err, apperror.KindPersistence):
		return err
	default:
		log.WithError(err).Error("paid order could not be turned into a booking")
		return nil
	}
}

// settle marks the order paid and makes sure a booking reflects it.
func (s *Service) settle(ctx context.Context, order *models.PaymentOrder, providerStatus string, amount float64, bc *models.BookingContext) (*models.BookingView, bool, error) {
	log := s.logger.WithField("order_id", order.OrderID)

	if err := s.markPaid(ctx, order, providerStatus); err != nil {
		return nil, false, err
	}

	if bc == nil {
		b, err := s.bookings.MarkPaidByOrder(ctx, order.OrderID)
		if apperror.Is(err, apperror.KindNotFound) {
			log.Info("paid order has no booking attached")
			return nil, false, nil
		}
		if err != nil {
			return nil, false, err
		}
		return &models.BookingView{Booking: *b}, false, nil
	}

	view, created, err := s.bookings.CreatePaid(ctx, booking.PaidRequest{
		OrderID:    order.OrderID,
		Context:    *bc,
		AmountPaid: amount,
	})
	if err != nil {
		e, ok := apperror.As(err)
		if !ok || (e.Kind != apperror.KindConflict && e.Kind != apperror.KindValidation && e.Kind != apperror.KindNotFound) {
			return nil, false, err
		}
		s.flagRefund(ctx, order.OrderID)
		log.WithError(err).Error("payment received but booking rejected")
		return nil, false, &apperror.Error{
			Kind:    e.Kind,
			Field:   e.Field,
			Message: "payment received but " + e.Message + "; " + refundMessage,
			Window:  e.Window,
			Err:     err,
		}
	}

	id := view.ID
	if _, err := s.orders.UpdatePaymentOrder(ctx, order.OrderID, models.PaymentOrderChanges{BookingID: &id}); err != nil {
		log.WithError(err).Warn("could not link booking to payment order")
	}
	return view, created, nil
}

func (s *Service) markPaid(ctx context.Context, order *models.PaymentOrder, providerStatus string) error {
	if order.Status == models.OrderPaid {
		return nil
	}
	_, err := s.orders.TransitionPaymentOrder(ctx, order.OrderID,
		[]models.PaymentOrderStatus{models.OrderCreated, models.OrderAwaitingConfirmation},
		models.OrderPaid, models.PaymentOrderChanges{ProviderStatus: &providerStatus})
	if err == nil {
		s.logger.WithField("order_id", order.OrderID).Info("payment order paid")
		return nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return apperror.Persistence("mark payment order paid", err)
	}

	latest, ferr := s.orders.FindPaymentOrder(ctx, order.OrderID)
	if ferr != nil {
		return apperror.Persistence("find payment order", ferr)
	}
	if latest.Status == models.OrderPaid {
		return nil
	}
	s.flagRefund(ctx, order.OrderID)
	return apperror.Conflict(fmt.Sprintf("payment order is %s; %s", latest.Status, refundMessage))
}

func (s *Service) recordUnpaid(ctx context.Context, order *models.PaymentOrder, providerStatus string) {
	live := []models.PaymentOrderStatus{models.OrderCreated, models.OrderAwaitingConfirmation}
	changes := models.PaymentOrderChanges{ProviderStatus: &providerStatus}

	var err error
	if IsFinalFailure(providerStatus) {
		_, err = s.orders.TransitionPaymentOrder(ctx, order.OrderID, live, models.OrderFailed, changes)
	} else {
		_, err = s.orders.TransitionPaymentOrder(ctx, order.OrderID, live, models.OrderAwaitingConfirmation, changes)
	}
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.logger.WithError(err).WithField("order_id", order.OrderID).Warn("could not record payment status")
	}
}

func (s *Service) flagRefund(ctx context.Context, orderID string) {
	flag := true
	if _, err := s.orders.UpdatePaymentOrder(ctx, orderID, models.PaymentOrderChanges{NeedsRefund: &flag}); err != nil {
		s.logger.WithError(err).WithField("order_id", orderID).Error("could not flag order for refund")
	}
}

func bookingContext(req *BookingRequest) (*models.BookingContext, error) {
	bikeID, err := models.ParseID("bike_id", req.BikeID)
	if err != nil {
		return nil, err
	}
	customerID, err := models.ParseID("customer_id", req.CustomerID)
	if err != nil {
		return nil, err
	}
	if req.Start.IsZero() || req.End.IsZero() {
		return nil, apperror.Validation("start_datetime", "start and end are required")
	}
	return &models.BookingContext{
		BikeID:     bikeID,
		CustomerID: customerID,
		Start:      req.Start.UTC().Truncate(time.Millisecond),
		End:        req.End.UTC().Truncate(time.Millisecond),
		Notes:      strings.TrimSpace(req.Notes),
	}, nil
}
