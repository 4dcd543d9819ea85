package booking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bocm-app/bocm-api/internal/audit"
	domain "github.com/bocm-app/bocm-api/internal/domain/booking"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/notify"
	"github.com/bocm-app/bocm-api/internal/payments"
)

// fakeRepo is an in-memory domain.Repository with the same uniqueness
// semantics the real one gets from the database index.
type fakeRepo struct {
	mu sync.Mutex

	barber   *models.Barber
	service  *models.Service
	addons   []models.ServiceAddon
	client   *models.Client
	conflict bool

	workingHours *models.WorkingHours
	busy         []domain.Interval

	updateBarberErr error

	bookings []*models.Booking
	nextID   uint

	createCalls int

	// missLookups makes FindBookingByPaymentIntent report not-found that many
	// times, simulating the read racing ahead of a concurrent insert.
	missLookups int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		barber: &models.Barber{Timezone: "America/New_York"},
		service: &models.Service{
			ID:          10,
			PriceCents:  3000,
			DurationMin: 30,
			Active:      true,
		},
		nextID: 1,
	}
}

func (r *fakeRepo) GetBarberByID(ctx context.Context, id uint) (*models.Barber, error) {
	if r.barber == nil {
		return nil, errors.New("not found")
	}
	return r.barber, nil
}

func (r *fakeRepo) UpdateBarber(ctx context.Context, b *models.Barber) error {
	if r.updateBarberErr != nil {
		return r.updateBarberErr
	}
	r.barber = b
	return nil
}

func (r *fakeRepo) GetService(ctx context.Context, barberID, serviceID uint) (*models.Service, error) {
	if r.service == nil || r.service.ID != serviceID {
		return nil, errors.New("not found")
	}
	return r.service, nil
}

func (r *fakeRepo) ListActiveAddons(ctx context.Context, barberID uint, addonIDs []uint) ([]models.ServiceAddon, error) {
	var out []models.ServiceAddon
	for _, id := range addonIDs {
		for _, a := range r.addons {
			if a.ID == id && a.Active {
				out = append(out, a)
			}
		}
	}
	return out, nil
}

func (r *fakeRepo) GetClientByID(ctx context.Context, id uint) (*models.Client, error) {
	if r.client == nil || r.client.ID != id {
		return nil, errors.New("not found")
	}
	return r.client, nil
}

func (r *fakeRepo) FindBookingByPaymentIntent(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.missLookups > 0 {
		r.missLookups--
		return nil, errors.New("not found")
	}
	for _, b := range r.bookings {
		if b.PaymentIntentID != nil && *b.PaymentIntentID == paymentIntentID {
			return b, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.createCalls++

	if b.PaymentIntentID != nil {
		for _, existing := range r.bookings {
			if existing.PaymentIntentID != nil && *existing.PaymentIntentID == *b.PaymentIntentID {
				return httperr.ErrBusiness("duplicate_payment_intent")
			}
		}
	}

	b.ID = r.nextID
	r.nextID++
	r.bookings = append(r.bookings, b)
	return nil
}

func (r *fakeRepo) HasTimeConflict(ctx context.Context, barberID uint, start, end time.Time) (bool, error) {
	return r.conflict, nil
}

func (r *fakeRepo) GetBookingForBarber(ctx context.Context, bookingID, barberID uint) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == bookingID && b.BarberID == barberID {
			return b, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeRepo) UpdateBooking(ctx context.Context, b *models.Booking) error {
	return nil
}

func (r *fakeRepo) GetWorkingHours(ctx context.Context, barberID uint, weekday int) (*models.WorkingHours, error) {
	if r.workingHours == nil || r.workingHours.Weekday != weekday {
		return nil, errors.New("not found")
	}
	return r.workingHours, nil
}

func (r *fakeRepo) ListBusyIntervals(ctx context.Context, barberID uint, start, end time.Time) ([]domain.Interval, error) {
	return r.busy, nil
}

var _ domain.Repository = (*fakeRepo)(nil)

// fakeProcessor records every call so tests can assert the processor was
// bypassed (fail closed / developer flows).
type fakeProcessor struct {
	account *payments.Account

	retrieveAccountCalls int
	createIntentCalls    int

	lastIntentReq payments.IntentRequest
	intent        *payments.Intent
	retrieveErr   error
}

func (p *fakeProcessor) CreateAccount(ctx context.Context, email, businessType string) (string, error) {
	return "acct_test", nil
}

func (p *fakeProcessor) AccountOnboardingLink(ctx context.Context, accountID, returnURL, refreshURL string) (string, error) {
	return "https://onboarding.example/" + accountID, nil
}

func (p *fakeProcessor) RetrieveAccount(ctx context.Context, accountID string) (*payments.Account, error) {
	p.retrieveAccountCalls++
	if p.retrieveErr != nil {
		return nil, p.retrieveErr
	}
	return p.account, nil
}

func (p *fakeProcessor) CreatePaymentIntent(ctx context.Context, req payments.IntentRequest) (*payments.Intent, error) {
	p.createIntentCalls++
	p.lastIntentReq = req
	if p.intent != nil {
		return p.intent, nil
	}
	return &payments.Intent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Status:       "requires_payment_method",
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		Metadata:     req.Metadata,
	}, nil
}

func (p *fakeProcessor) RetrievePaymentIntent(ctx context.Context, id string) (*payments.Intent, error) {
	if p.intent != nil && p.intent.ID == id {
		return p.intent, nil
	}
	return nil, errors.New("no such intent")
}

var _ payments.Processor = (*fakeProcessor)(nil)

// Dispatchers wired with a nil database degrade to logging no-ops, which is
// all these tests need.
func testDispatchers() (*audit.Dispatcher, *notify.Dispatcher) {
	return audit.NewDispatcher(audit.New(nil)),
		notify.NewDispatcher(nil, notify.NoopSMSSender{}, notify.NoopEmailSender{})
}
