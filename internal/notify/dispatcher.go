package notify

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/models"
)

type Event struct {
	RecipientRole string
	RecipientID   uint

	Phone string
	Email string

	Kind      string
	Title     string
	Body      string
	BookingID *uint
}

// Dispatcher fans a notification out to the in-app table, SMS and email.
// Everything here is best-effort: a failed send is logged and dropped, never
// propagated back into the request that triggered it.
type Dispatcher struct {
	db    *gorm.DB
	sms   SMSSender
	email EmailSender
	queue chan Event
}

func NewDispatcher(db *gorm.DB, sms SMSSender, email EmailSender) *Dispatcher {
	d := &Dispatcher{
		db:    db,
		sms:   sms,
		email: email,
		queue: make(chan Event, 100),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	for ev := range d.queue {
		d.deliver(ev)
	}
}

func (d *Dispatcher) deliver(ev Event) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if d.db != nil && ev.RecipientID != 0 {
		n := models.Notification{
			RecipientRole: ev.RecipientRole,
			RecipientID:   ev.RecipientID,
			Kind:          ev.Kind,
			Title:         ev.Title,
			Body:          ev.Body,
			BookingID:     ev.BookingID,
		}
		if err := d.db.WithContext(ctx).Create(&n).Error; err != nil {
			log.Println("notify: failed to store notification:", err)
		}
	}

	if ev.Phone != "" {
		if err := d.sms.SendSMS(ctx, ev.Phone, ev.Body); err != nil {
			log.Println("notify: sms send failed:", err)
		}
	}

	if ev.Email != "" {
		if err := d.email.SendEmail(ev.Email, ev.Title, ev.Body); err != nil {
			log.Println("notify: email send failed:", err)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		// queue full, drop rather than block a booking
		log.Println("notify queue full, dropping event")
	}
}
