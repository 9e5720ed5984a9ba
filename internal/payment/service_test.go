package payment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/ukydev/scooter-rental/internal/apperror"
	"github.com/ukydev/scooter-rental/internal/booking"
	"github.com/ukydev/scooter-rental/internal/db"
	"github.com/ukydev/scooter-rental/internal/db/memdb"
	"github.com/ukydev/scooter-rental/internal/models"
	"github.com/ukydev/scooter-rental/internal/notify"
)

// MockProvider is a mock implementation of Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateOrder(ctx context.Context, req OrderRequest) (*ProviderOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderOrder), args.Error(1)
}

func (m *MockProvider) GetOrder(ctx context.Context, orderID string) (*ProviderOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ProviderOrder), args.Error(1)
}

const testSecret = "whsec_test"

type fixture struct {
	store    *db.Store
	bookings *booking.Service
	svc      *Service
	provider *MockProvider
	bike     *models.Bike
	customer *models.Customer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	store := memdb.New()
	bike := &models.Bike{Model: "Jupiter", CC: 110, NumberPlate: "GA03X9", PricePerHour: 100, PricePerDay: 600, Status: models.BikeAvailable}
	require.NoError(t, store.Bikes.InsertBike(ctx, bike))
	customer := &models.Customer{Name: "Asha", Phone: "9123456780", AadhaarImageURL: "https://cdn.example.com/a.jpg"}
	require.NoError(t, store.Customers.InsertCustomer(ctx, customer))

	bookings := booking.NewService(store, booking.NewLocalLocker(time.Second), notify.Nop{}, logger)
	provider := new(MockProvider)
	svc := NewService(store, bookings, provider, testSecret, logger)

	seq := 0
	var mu sync.Mutex
	svc.newOrderID = func() string {
		mu.Lock()
		defer mu.Unlock()
		seq++
		return fmt.Sprintf("bike_test_%d", seq)
	}

	return &fixture{store: store, bookings: bookings, svc: svc, provider: provider, bike: bike, customer: customer}
}

func at(hour int) time.Time {
	return time.Date(2025, 4, 2, hour, 0, 0, 0, time.UTC)
}

func (f *fixture) bookingRequest(start, end time.Time) *BookingRequest {
	return &BookingRequest{BikeID: f.bike.ID.Hex(), CustomerID: f.customer.ID.Hex(), Start: start, End: end}
}

func (f *fixture) openOrder(t *testing.T, br *BookingRequest) string {
	t.Helper()
	f.provider.On("CreateOrder", mock.Anything, mock.Anything).
		Return(&ProviderOrder{SessionID: "session_abc", Status: StatusActive}, nil).Once()
	res, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		Amount: 1, CustomerName: "Asha", CustomerPhone: "9123456780", Booking: br,
	})
	require.NoError(t, err)
	return res.OrderID
}

func (f *fixture) order(t *testing.T, id string) *models.PaymentOrder {
	t.Helper()
	o, err := f.store.PaymentOrders.FindPaymentOrder(context.Background(), id)
	require.NoError(t, err)
	return o
}

func TestCreateOrder_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateOrder(ctx, CreateOrderRequest{CustomerName: "Asha", CustomerPhone: "9123456780"})
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, "amount", e.Field)

	f.provider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_UsesServerPrice(t *testing.T) {
	f := newFixture(t)

	f.provider.On("CreateOrder", mock.Anything, mock.MatchedBy(func(r OrderRequest) bool {
		return r.Amount == 300 && r.Currency == "INR" && r.CustomerPhone == "9123456780"
	})).Return(&ProviderOrder{SessionID: "session_abc", Status: StatusActive}, nil).Once()

	res, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		Amount:        1,
		CustomerName:  " Asha ",
		CustomerPhone: "9123456780",
		Booking:       f.bookingRequest(at(9), at(12)),
	})
	require.NoError(t, err)
	assert.Equal(t, 300.0, res.Amount)
	assert.Equal(t, "session_abc", res.SessionID)

	o := f.order(t, res.OrderID)
	assert.Equal(t, models.OrderAwaitingConfirmation, o.Status)
	assert.Equal(t, "Asha", o.CustomerName)
	require.NotNil(t, o.Booking)
	assert.Equal(t, f.bike.ID, o.Booking.BikeID)
	f.provider.AssertExpectations(t)
}

func TestCreateOrder_RejectsTakenSlot(t *testing.T) {
	f := newFixture(t)
	_, err := f.bookings.AdminCreate(context.Background(), booking.CreateRequest{
		BikeID: f.bike.ID.Hex(), CustomerID: f.customer.ID.Hex(), Start: at(10), End: at(11),
	})
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(context.Background(), CreateOrderRequest{
		CustomerName: "Asha", CustomerPhone: "9123456780", Booking: f.bookingRequest(at(9), at(12)),
	})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	f.provider.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestCreateOrder_ProviderFailure(t *testing.T) {
	f := newFixture(t)
	f.provider.On("CreateOrder", mock.Anything, mock.Anything).
		Return(nil, apperror.Provider("payment provider returned 400", errors.New("order_amount invalid"))).Once()

	_, err := f.svc.CreateOrder(context.Background(), CreateOrderRequest{Amount: 50, CustomerName: "Asha", CustomerPhone: "9123456780"})
	require.True(t, apperror.Is(err, apperror.KindPaymentProvider))

	assert.Equal(t, models.OrderFailed, f.order(t, "bike_test_1").Status)
}

func TestVerify_PaidCreatesBookingOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.openOrder(t, f.bookingRequest(at(9), at(12)))

	f.provider.On("GetOrder", mock.Anything, orderID).
		Return(&ProviderOrder{OrderID: orderID, Amount: 300, Status: StatusPaid}, nil)

	const callers = 6
	var wg sync.WaitGroup
	results := make([]*VerifyResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.svc.Verify(ctx, orderID, nil)
		}(i)
	}
	wg.Wait()

	created := 0
	for i := range results {
		require.NoError(t, errs[i])
		assert.True(t, results[i].Paid)
		require.NotNil(t, results[i].Booking)
		assert.Equal(t, results[0].Booking.ID, results[i].Booking.ID)
		if results[i].Created {
			created++
		}
	}
	assert.Equal(t, 1, created)

	n, err := f.store.Bookings.CountBookings(ctx, models.BookingFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	o := f.order(t, orderID)
	assert.Equal(t, models.OrderPaid, o.Status)
	require.NotNil(t, o.BookingID)
	assert.Equal(t, results[0].Booking.ID, *o.BookingID)
}

func TestVerify_ClientContextWhenOrderHasNone(t *testing.T) {
	f := newFixture(t)
	orderID := f.openOrder(t, nil)

	f.provider.On("GetOrder", mock.Anything, orderID).
		Return(&ProviderOrder{OrderID: orderID, Amount: 100, Status: StatusPaid}, nil)

	res, err := f.svc.Verify(context.Background(), orderID, f.bookingRequest(at(9), at(10)))
	require.NoError(t, err)
	require.NotNil(t, res.Booking)
	assert.Equal(t, 100.0, res.Booking.TotalAmount)
	assert.Equal(t, models.PaymentPaid, res.Booking.PaymentStatus)
}

func TestVerify_NotPaid(t *testing.T) {
	tests := []struct {
		status string
		want   models.PaymentOrderStatus
	}{
		{StatusPending, models.OrderAwaitingConfirmation},
		{StatusActive, models.OrderAwaitingConfirmation},
		{StatusFailed, models.OrderFailed},
		{StatusUserDropped, models.OrderFailed},
		{"SOMETHING_NEW", models.OrderAwaitingConfirmation},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			f := newFixture(t)
			orderID := f.openOrder(t, f.bookingRequest(at(9), at(12)))
			f.provider.On("GetOrder", mock.Anything, orderID).
				Return(&ProviderOrder{OrderID: orderID, Status: tt.status}, nil)

			res, err := f.svc.Verify(context.Background(), orderID, nil)
			require.NoError(t, err)
			assert.False(t, res.Paid)
			assert.Nil(t, res.Booking)
			assert.Contains(t, res.Message, "no booking was created")
			assert.Equal(t, tt.want, f.order(t, orderID).Status)

			n, err := f.store.Bookings.CountBookings(context.Background(), models.BookingFilter{})
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestVerify_ProviderErrorMutatesNothing(t *testing.T) {
	f := newFixture(t)
	orderID := f.openOrder(t, f.bookingRequest(at(9), at(12)))
	f.provider.On("GetOrder", mock.Anything, orderID).
		Return(nil, apperror.Provider("payment provider unreachable", context.DeadlineExceeded))

	_, err := f.svc.Verify(context.Background(), orderID, nil)
	assert.True(t, apperror.Is(err, apperror.KindPaymentProvider))
	assert.Equal(t, models.OrderAwaitingConfirmation, f.order(t, orderID).Status)
}

func TestVerify_UnknownOrder(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Verify(context.Background(), "bike_nope", nil)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	f.provider.AssertNotCalled(t, "GetOrder", mock.Anything, mock.Anything)
}

func TestVerify_SlotTakenAfterPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.openOrder(t, f.bookingRequest(at(9), at(12)))

	// walk-in booked the bike while the customer was paying
	_, err := f.bookings.AdminCreate(ctx, booking.CreateRequest{
		BikeID: f.bike.ID.Hex(), CustomerID: f.customer.ID.Hex(), Start: at(11), End: at(13),
	})
	require.NoError(t, err)

	f.provider.On("GetOrder", mock.Anything, orderID).
		Return(&ProviderOrder{OrderID: orderID, Amount: 300, Status: StatusPaid}, nil)

	_, err = f.svc.Verify(ctx, orderID, nil)
	e, ok := apperror.As(err)
	require.True(t, ok)
	assert.Equal(t, apperror.KindConflict, e.Kind)
	assert.Contains(t, e.Message, "refunded")
	require.NotNil(t, e.Window)
	assert.True(t, e.Window.Start.Equal(at(11)))

	o := f.order(t, orderID)
	assert.Equal(t, models.OrderPaid, o.Status)
	assert.True(t, o.NeedsRefund)
}

func TestHandleWebhook_Signature(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"data":{"order_id":"bike_test_1","order_status":"PAID"}}`)

	err := f.svc.HandleWebhook(context.Background(), body, "")
	assert.True(t, apperror.Is(err, apperror.KindInvalidSignature))

	err = f.svc.HandleWebhook(context.Background(), body, Sign("other-secret", body))
	assert.True(t, apperror.Is(err, apperror.KindInvalidSignature))

	tampered := []byte(`{"data":{"order_id":"bike_test_2","order_status":"PAID"}}`)
	err = f.svc.HandleWebhook(context.Background(), tampered, Sign(testSecret, body))
	assert.True(t, apperror.Is(err, apperror.KindInvalidSignature))
}

func TestHandleWebhook_PaidCreatesBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	orderID := f.openOrder(t, f.bookingRequest(at(9), at(12)))

	body := []byte(fmt.Sprintf(`{"type":"PAYMENT_SUCCESS_WEBHOOK","data":{"order":{"order_id":%q,"order_amount":300},"payment":{"payment_status":"SUCCESS","payment_amount":300}}}`, orderID))
	require.NoError(t, f.svc.HandleWebhook(ctx, body, Sign(testSecret, body)))

	b, err := f.store.Bookings.FindBookingByOrderID(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	assert.Equal(t, models.PaymentPaid, b.PaymentStatus)

	// the poll path afterwards returns the same booking
	f.provider.On("GetOrder", mock.Anything, orderID).
		Return(&ProviderOrder{OrderID: orderID, Amount: 300, Status: StatusPaid}, nil)
	res, err := f.svc.Verify(ctx, orderID, nil)
	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, b.ID, res.Booking.ID)
}

func TestHandleWebhook_FailedMarksOrder(t *testing.T) {
	f := newFixture(t)
	orderID := f.openOrder(t, nil)

	body := []byte(fmt.Sprintf(`{"data":{"order":{"order_id":%q},"payment":{"payment_status":"FAILED"}}}`, orderID))
	require.NoError(t, f.svc.HandleWebhook(context.Background(), body, Sign(testSecret, body)))
	assert.Equal(t, models.OrderFailed, f.order(t, orderID).Status)
}

func TestHandleWebhook_UnknownOrderAcked(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"data":{"order_id":"bike_elsewhere","order_status":"PAID"}}`)
	assert.NoError(t, f.svc.HandleWebhook(context.Background(), body, Sign(testSecret, body)))
}

func TestHandleWebhook_MalformedBody(t *testing.T) {
	f := newFixture(t)
	body := []byte(`{"data":`)
	err := f.svc.HandleWebhook(context.Background(), body, Sign(testSecret, body))
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}
