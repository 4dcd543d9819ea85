package handlers

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/bocm-app/bocm-api/internal/config"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/payments"
	bookinguc "github.com/bocm-app/bocm-api/internal/usecase/booking"
)

// ======================================================
// HANDLER
// ======================================================

type PaymentHandler struct {
	createPayment *bookinguc.CreateBookingPayment
	materialize   *bookinguc.MaterializeBooking
	processor     payments.Processor
	config        *config.Config
}

func NewPaymentHandler(
	createPayment *bookinguc.CreateBookingPayment,
	materialize *bookinguc.MaterializeBooking,
	processor payments.Processor,
	cfg *config.Config,
) *PaymentHandler {
	return &PaymentHandler{
		createPayment: createPayment,
		materialize:   materialize,
		processor:     processor,
		config:        cfg,
	}
}

// --------- Requests ---------

type CreateBookingPaymentRequest struct {
	BarberID   uint   `json:"barber_id" binding:"required"`
	ServiceID  uint   `json:"service_id" binding:"required"`
	AddonIDs   []uint `json:"addon_ids"`
	GuestName  string `json:"guest_name"`
	GuestEmail string `json:"guest_email"`
	GuestPhone string `json:"guest_phone"`
	Date       string `json:"date" binding:"required"`
	Time       string `json:"time" binding:"required"`
	Notes      string `json:"notes"`
	Mode       string `json:"mode"`
}

// ======================================================
// CREATE BOOKING PAYMENT
// ======================================================

func (h *PaymentHandler) CreateBookingPayment(c *gin.Context) {
	var req CreateBookingPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Invalid request: "+err.Error())
		return
	}

	input := bookinguc.CreateBookingPaymentInput{
		BarberID:   req.BarberID,
		ServiceID:  req.ServiceID,
		AddonIDs:   req.AddonIDs,
		GuestName:  strings.TrimSpace(req.GuestName),
		GuestEmail: strings.TrimSpace(req.GuestEmail),
		GuestPhone: strings.TrimSpace(req.GuestPhone),
		Date:       req.Date,
		Time:       req.Time,
		Notes:      req.Notes,
		Mode:       payments.Mode(req.Mode),
	}

	// Authenticated clients book under their own account; guests must supply
	// contact details instead.
	if id, ok := c.Get(middleware.ContextUserID); ok {
		if role, _ := c.Get(middleware.ContextUserRole); role == middleware.RoleClient {
			clientID := id.(uint)
			input.ClientID = &clientID
		}
	}

	result, err := h.createPayment.Execute(c.Request.Context(), input)
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			httperr.BadRequest(c, be.Code, businessMessage(be.Code))
			return
		}
		log.Printf("create booking payment: %v", err)
		httperr.BadGateway(c, "payment_provider_error", "Could not start payment.")
		return
	}

	// Developer barbers skip the payment flow entirely; the booking is
	// already confirmed.
	if result.Booking != nil {
		c.JSON(http.StatusCreated, gin.H{
			"booking":   bookingResponse(result.Booking),
			"free":      true,
			"reference": result.Booking.Reference,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"client_secret":     result.ClientSecret,
		"payment_intent_id": result.PaymentIntentID,
	})
}

// ======================================================
// WEBHOOK
// ======================================================

func (h *PaymentHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEventWithTolerance(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.config.StripeWebhookSecret,
		webhook.DefaultTolerance,
	)
	if err != nil {
		log.Printf("webhook signature verification failed: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			log.Printf("webhook: unmarshal payment intent: %v", err)
			c.Status(http.StatusBadRequest)
			return
		}
		if err := h.materializeFromIntentID(c, pi.ID); err != nil {
			// 5xx so the provider retries; business errors are permanent and
			// acknowledged to stop redelivery.
			if _, ok := httperr.AsBusiness(err); ok {
				log.Printf("webhook: intent %s rejected: %v", pi.ID, err)
				c.Status(http.StatusOK)
				return
			}
			log.Printf("webhook: intent %s: %v", pi.ID, err)
			c.Status(http.StatusInternalServerError)
			return
		}
	default:
		// Other event types are acknowledged and ignored.
	}

	c.Status(http.StatusOK)
}

// ======================================================
// VERIFY
// ======================================================

// Verify lets the client confirm a payment landed (e.g. after a redirect)
// without waiting on the webhook. Materializes the booking if the webhook has
// not arrived yet.
func (h *PaymentHandler) Verify(c *gin.Context) {
	intentID := c.Query("payment_intent")
	if intentID == "" {
		httperr.BadRequest(c, "invalid_request", "payment_intent is required")
		return
	}

	intent, err := h.processor.RetrievePaymentIntent(c.Request.Context(), intentID)
	if err != nil {
		httperr.BadGateway(c, "payment_provider_error", "Could not verify payment.")
		return
	}

	if intent.Status != payments.IntentStatusSucceeded {
		c.JSON(http.StatusOK, gin.H{
			"status": intent.Status,
		})
		return
	}

	input, err := bookinguc.InputFromIntent(intent)
	if err != nil {
		httperr.BadRequest(c, "invalid_intent_metadata", "Payment is not linked to a booking.")
		return
	}

	booking, err := h.materialize.Execute(c.Request.Context(), input)
	if err != nil {
		if be, ok := httperr.AsBusiness(err); ok {
			httperr.BadRequest(c, be.Code, businessMessage(be.Code))
			return
		}
		log.Printf("verify: materialize intent %s: %v", intentID, err)
		httperr.Internal(c, "failed_to_confirm_booking", "Payment received but booking could not be confirmed.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   intent.Status,
		"amount":   intent.AmountCents,
		"currency": intent.Currency,
		"booking":  bookingResponse(booking),
	})
}

func (h *PaymentHandler) materializeFromIntentID(c *gin.Context, intentID string) error {
	intent, err := h.processor.RetrievePaymentIntent(c.Request.Context(), intentID)
	if err != nil {
		return err
	}

	input, err := bookinguc.InputFromIntent(intent)
	if err != nil {
		return err
	}

	_, err = h.materialize.Execute(c.Request.Context(), input)
	return err
}
