package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/config"
	"github.com/bocm-app/bocm-api/internal/httperr"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/models"
	"github.com/bocm-app/bocm-api/internal/payments"
)

// ======================================================
// HANDLER
// ======================================================

type PaymentAccountHandler struct {
	db        *gorm.DB
	processor payments.Processor
	config    *config.Config
}

func NewPaymentAccountHandler(db *gorm.DB, processor payments.Processor, cfg *config.Config) *PaymentAccountHandler {
	return &PaymentAccountHandler{db: db, processor: processor, config: cfg}
}

// Create provisions the barber's connected account (if missing) and returns a
// fresh onboarding link. Safe to call again to resume onboarding.
func (h *PaymentAccountHandler) Create(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var barber models.Barber
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.Internal(c, "barber_not_found", "Account not found.")
		return
	}

	if barber.Developer {
		httperr.BadRequest(c, "developer_account", "Developer accounts do not take payments.")
		return
	}

	if barber.StripeAccountID == "" {
		accountID, err := h.processor.CreateAccount(c.Request.Context(), barber.Email, "individual")
		if err != nil {
			httperr.BadGateway(c, "payment_provider_error", "Could not create payment account.")
			return
		}

		barber.StripeAccountID = accountID
		barber.StripeAccountStatus = "pending"
		if err := h.db.Save(&barber).Error; err != nil {
			httperr.Internal(c, "failed_to_save_account", "Could not save payment account.")
			return
		}
	}

	link, err := h.processor.AccountOnboardingLink(
		c.Request.Context(),
		barber.StripeAccountID,
		h.config.StripeOnboardReturnURL,
		h.config.StripeOnboardRetryURL,
	)
	if err != nil {
		httperr.BadGateway(c, "payment_provider_error", "Could not create onboarding link.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"account_id":     barber.StripeAccountID,
		"onboarding_url": link,
	})
}

// Get reports the live account state from the processor and refreshes the
// stored status/ready flags.
func (h *PaymentAccountHandler) Get(c *gin.Context) {
	barberID := c.MustGet(middleware.ContextUserID).(uint)

	var barber models.Barber
	if err := h.db.First(&barber, barberID).Error; err != nil {
		httperr.Internal(c, "barber_not_found", "Account not found.")
		return
	}

	if barber.StripeAccountID == "" {
		c.JSON(http.StatusOK, gin.H{
			"status": "unset",
			"ready":  false,
		})
		return
	}

	account, err := h.processor.RetrieveAccount(c.Request.Context(), barber.StripeAccountID)
	if err != nil {
		httperr.BadGateway(c, "payment_provider_error", "Could not reach payment provider.")
		return
	}

	status := "pending"
	if account.Chargeable() {
		status = "active"
	}

	if barber.StripeAccountStatus != status || barber.StripeAccountReady != account.Chargeable() {
		barber.StripeAccountStatus = status
		barber.StripeAccountReady = account.Chargeable()
		h.db.Save(&barber)
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            status,
		"ready":             account.Chargeable(),
		"charges_enabled":   account.ChargesEnabled,
		"details_submitted": account.DetailsSubmitted,
		"payouts_enabled":   account.PayoutsEnabled,
	})
}
