package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bocm-app/bocm-api/internal/audit"
	"github.com/bocm-app/bocm-api/internal/config"
	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/notify"
	"github.com/bocm-app/bocm-api/internal/payments"
	bookinguc "github.com/bocm-app/bocm-api/internal/usecase/booking"
)

// stubBookingRepo serves one barber with one bookable service; everything the
// payment flow does not touch reports not found.
type stubBookingRepo struct {
	barber  *models.Barber
	service *models.Service
}

func (r *stubBookingRepo) GetBarberByID(ctx context.Context, id uint) (*models.Barber, error) {
	return r.barber, nil
}

func (r *stubBookingRepo) UpdateBarber(ctx context.Context, b *models.Barber) error {
	return nil
}

func (r *stubBookingRepo) GetService(ctx context.Context, barberID, serviceID uint) (*models.Service, error) {
	if r.service == nil || r.service.ID != serviceID {
		return nil, errors.New("not found")
	}
	return r.service, nil
}

func (r *stubBookingRepo) ListActiveAddons(ctx context.Context, barberID uint, addonIDs []uint) ([]models.ServiceAddon, error) {
	return nil, nil
}

func (r *stubBookingRepo) GetClientByID(ctx context.Context, id uint) (*models.Client, error) {
	return nil, errors.New("not found")
}

func (r *stubBookingRepo) FindBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	return nil, errors.New("not found")
}

func (r *stubBookingRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	return nil
}

func (r *stubBookingRepo) HasTimeConflict(ctx context.Context, barberID uint, start, end time.Time) (bool, error) {
	return false, nil
}

func (r *stubBookingRepo) GetBookingForBarber(ctx context.Context, bookingID, barberID uint) (*models.Booking, error) {
	return nil, errors.New("not found")
}

func (r *stubBookingRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return nil
}

func (r *stubBookingRepo) GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	return nil, errors.New("not found")
}

func (r *stubBookingRepo) ListBusyIntervals(ctx context.Context, barberID uint, start, end time.Time) ([]domain.Interval, error) {
	return nil, nil
}

var _ domain.Repository = (*stubBookingRepo)(nil)

type stubProcessor struct{}

func (p *stubProcessor) CreateAccount(ctx context.Context, email, businessType string) (string, error) {
	return "acct_test", nil
}

func (p *stubProcessor) AccountOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (string, error) {
	return "https://onboarding.example/" + accountID, nil
}

func (p *stubProcessor) RetrieveAccount(ctx context.Context, accountID string) (*payments.Account, error) {
	return &payments.Account{
		ID:               accountID,
		ChargesEnabled:   true,
		DetailsSubmitted: true,
		PayoutsEnabled:   true,
	}, nil
}

func (p *stubProcessor) CreatePaymentIntent(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	return &payments.Intent{
		ID:           "pi_handler",
		ClientSecret: "pi_handler_secret",
		Status:       "requires_payment_method",
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		Metadata:     req.Metadata,
	}, nil
}

func (p *stubProcessor) RetrievePaymentIntent(ctx context.Context, id string) (*payments.Intent, error) {
	return nil, errors.New("no such intent")
}

var _ payments.Processor = (*stubProcessor)(nil)

func newPaymentTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	repo := &stubBookingRepo{
		barber: &models.Barber{
			Timezone:        "America/New_York",
			StripeAccountID: "acct_1",
		},
		service: &models.Service{
			ID:          10,
			PriceCents:  3000,
			DurationMin: 30,
			Active:      true,
		},
	}

	auditD := audit.NewDispatcher(audit.New(nil))
	notifyD := notify.NewDispatcher(nil, notify.NoopSMSSender{}, notify.NoopEmailSender{})

	materialize := bookinguc.NewMaterializeBooking(repo, auditD, notifyD)
	createPayment := bookinguc.NewCreateBookingPayment(repo, &stubProcessor{}, materialize, auditD, "usd")

	h := NewPaymentHandler(createPayment, materialize, &stubProcessor{}, &config.Config{})

	r := gin.New()
	r.POST("/api/payments/create-booking-payment", h.CreateBookingPayment)
	return r
}

func postBookingPayment(t *testing.T, r *gin.Engine, body gin.H) *httptest.ResponseRecorder {
	t.Helper()

	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/payments/create-booking-payment", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func guestPaymentBody() gin.H {
	return gin.H{
		"barber_id":   1,
		"service_id":  10,
		"guest_name":  "Jay",
		"guest_email": "jay@example.com",
		"guest_phone": "+15551234567",
		"date":        "2026-03-14",
		"time":        "10:00",
	}
}

func TestCreateBookingPaymentCarriesModeThrough(t *testing.T) {
	r := newPaymentTestRouter()

	body := guestPaymentBody()
	body["mode"] = "fee_only"

	w := postBookingPayment(t, r, body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pi_handler", resp["payment_intent_id"])
	assert.Equal(t, "pi_handler_secret", resp["client_secret"])
}

func TestCreateBookingPaymentRejectsUnknownMode(t *testing.T) {
	r := newPaymentTestRouter()

	body := guestPaymentBody()
	body["mode"] = "subscription"

	w := postBookingPayment(t, r, body)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "invalid_payment_mode", resp["error_code"])
}
