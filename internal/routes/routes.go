package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"

	"github.com/bocm-app/bocm-api/internal/audit"
	"github.com/bocm-app/bocm-api/internal/config"
	"github.com/bocm-app/bocm-api/internal/handlers"
	infraRepo "github.com/bocm-app/bocm-api/internal/infra/repository"
	"github.com/bocm-app/bocm-api/internal/media"
	"github.com/bocm-app/bocm-api/internal/middleware"
	"github.com/bocm-app/bocm-api/internal/notify"
	"github.com/bocm-app/bocm-api/internal/payments"
	ucBooking "github.com/bocm-app/bocm-api/internal/usecase/booking"
)

func RegisterRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client, cfg *config.Config) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	bookingRepo := infraRepo.NewBookingGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger)

	var smsSender notify.SMSSender = notify.NoopSMSSender{}
	if cfg.SMSWebhookURL != "" {
		smsSender = notify.NewWebhookSMSSender(cfg.SMSWebhookURL, cfg.SMSWebhookToken)
	}
	var emailSender notify.EmailSender = notify.NoopEmailSender{}
	if cfg.SMTPHost != "" {
		emailSender = notify.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	}
	notifyDispatcher := notify.NewDispatcher(db, smsSender, emailSender)

	processor := payments.NewStripeProcessor(cfg.StripeSecretKey)

	uploader := media.NewUploader(
		cfg.S3Region,
		cfg.S3AccessKey,
		cfg.S3SecretKey,
		cfg.S3Bucket,
		cfg.S3PublicURL,
	)

	paymentLimiter := middleware.NewRateLimiter(rdb, 30, time.Minute, "pay")

	// ======================================================
	// 🧠 USE CASES — BOOKINGS
	// ======================================================
	materializeUC := ucBooking.NewMaterializeBooking(
		bookingRepo,
		auditDispatcher,
		notifyDispatcher,
	)

	createPaymentUC := ucBooking.NewCreateBookingPayment(
		bookingRepo,
		processor,
		materializeUC,
		auditDispatcher,
		cfg.Currency,
	)

	checkInUC := ucBooking.NewCheckInBooking(bookingRepo, auditDispatcher)
	cancelUC := ucBooking.NewCancelBooking(bookingRepo, auditDispatcher)
	completeUC := ucBooking.NewCompleteBooking(bookingRepo, auditDispatcher)
	noShowUC := ucBooking.NewMarkNoShow(bookingRepo, auditDispatcher)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)
	profileHandler := handlers.NewBarberProfileHandler(db, uploader)

	serviceHandler := handlers.NewServiceHandler(db)
	addonHandler := handlers.NewAddonHandler(db)
	workingHoursHandler := handlers.NewWorkingHoursHandler(db)

	bookingHandler := handlers.NewBookingHandler(
		db,
		checkInUC,
		cancelUC,
		completeUC,
		noShowUC,
	)

	paymentHandler := handlers.NewPaymentHandler(
		createPaymentUC,
		materializeUC,
		processor,
		cfg,
	)
	paymentAccountHandler := handlers.NewPaymentAccountHandler(db, processor, cfg)

	conversationHandler := handlers.NewConversationHandler(db)
	reviewHandler := handlers.NewReviewHandler(db, auditDispatcher)
	notificationHandler := handlers.NewNotificationHandler(db)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	publicHandler := handlers.NewPublicHandler(db)

	// ======================================================
	// 🛣️ ROUTES
	// ======================================================
	api := r.Group("/api")
	{
		// --------------------------------------------------
		// 1️⃣ PUBLIC (no auth)
		// --------------------------------------------------
		publicAPI := api.Group("/public")
		{
			publicAPI.GET("/barbers", publicHandler.ListBarbers)
			publicAPI.GET("/barbers/:id", publicHandler.GetBarber)
			publicAPI.GET("/barbers/:id/services", publicHandler.ListServices)
			publicAPI.GET("/barbers/:id/availability", publicHandler.Availability)
			publicAPI.GET("/barbers/:id/reviews", reviewHandler.ListForBarber)
		}

		// --------------------------------------------------
		// 2️⃣ AUTH
		// --------------------------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// --------------------------------------------------
		// 3️⃣ PAYMENTS
		// --------------------------------------------------
		// Webhook is signature-verified, never JWT-gated.
		api.POST("/payments/webhook", paymentHandler.Webhook)

		paymentsAPI := api.Group("/payments")
		paymentsAPI.Use(paymentLimiter.Middleware(), middleware.OptionalAuth(cfg))
		{
			paymentsAPI.POST("/create-booking-payment", paymentHandler.CreateBookingPayment)
			paymentsAPI.GET("/verify", paymentHandler.Verify)
		}

		// --------------------------------------------------
		// 4️⃣ SECURED — ANY ROLE
		// --------------------------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			secured.GET("/conversations", conversationHandler.List)
			secured.GET("/conversations/:id/messages", conversationHandler.ListMessages)
			secured.POST("/conversations/:id/messages", conversationHandler.SendMessage)

			secured.GET("/notifications", notificationHandler.List)
			secured.PATCH("/notifications/:id/read", notificationHandler.MarkRead)
			secured.PATCH("/notifications/read-all", notificationHandler.MarkAllRead)
		}

		// --------------------------------------------------
		// 5️⃣ SECURED — BARBER
		// --------------------------------------------------
		barberAPI := api.Group("/me")
		barberAPI.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(middleware.RoleBarber))
		{
			barberAPI.GET("/profile", profileHandler.Get)
			barberAPI.PATCH("/profile", profileHandler.Update)
			barberAPI.POST("/profile/photo", profileHandler.UploadPhoto)

			barberAPI.GET("/services", serviceHandler.List)
			barberAPI.POST("/services", serviceHandler.Create)
			barberAPI.PATCH("/services/:id", serviceHandler.Update)

			barberAPI.GET("/addons", addonHandler.List)
			barberAPI.POST("/addons", addonHandler.Create)
			barberAPI.PATCH("/addons/:id", addonHandler.Update)

			barberAPI.GET("/working-hours", workingHoursHandler.Get)
			barberAPI.PUT("/working-hours", workingHoursHandler.Update)

			barberAPI.GET("/bookings", bookingHandler.ListByDate)
			barberAPI.GET("/bookings/month", bookingHandler.ListByMonth)
			barberAPI.GET("/bookings/:id", bookingHandler.Get)
			barberAPI.PATCH("/bookings/:id/check-in", bookingHandler.CheckIn)
			barberAPI.PATCH("/bookings/:id/cancel", bookingHandler.Cancel)
			barberAPI.PATCH("/bookings/:id/complete", bookingHandler.Complete)
			barberAPI.PATCH("/bookings/:id/no-show", bookingHandler.NoShow)

			barberAPI.POST("/payment-account", paymentAccountHandler.Create)
			barberAPI.GET("/payment-account", paymentAccountHandler.Get)

			barberAPI.GET("/audit-logs", auditLogsHandler.List)
		}

		// --------------------------------------------------
		// 6️⃣ SECURED — CLIENT
		// --------------------------------------------------
		clientAPI := api.Group("/client")
		clientAPI.Use(middleware.AuthMiddleware(cfg), middleware.RequireRole(middleware.RoleClient))
		{
			clientAPI.GET("/bookings", bookingHandler.ListForClient)
			clientAPI.POST("/conversations", conversationHandler.Start)
			clientAPI.POST("/reviews", reviewHandler.Create)
		}
	}
}
