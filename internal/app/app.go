package app

import (
	"net/http"

	"github.com/Ajaysirivaram/flatmate-find-smart/internal/auth"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/clock"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/config"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/database"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/entitlements"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/feed"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/health"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/listings"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/messaging"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/middleware"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/payments"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/profiles"
	"github.com/Ajaysirivaram/flatmate-find-smart/internal/subscriptions"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"gorm.io/gorm"
)

// CreateApp builds the Fiber app with all global middleware and route
// registration.
func CreateApp(cfg *config.Config) (*fiber.App, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	// CORS (before session)
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	// Stripe webhook mounted early, before session: it authenticates with the
	// signature header and needs the raw body.
	stripeWebhook := &payments.WebhookHandler{WebhookSecret: cfg.StripeWebhookSecret}
	app.Post("/api/v1/stripe/webhook", func(c *fiber.Ctx) error {
		return stripeWebhook.HandleWebhook(c)
	})

	// Session (Redis); Redis client is reused for the health marker
	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
	}
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, err
	}
	app.Use(sessionHandler)

	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	// Health module (GET /, GET /reset, GET /health/json, GET /health/errors)
	var pinger health.DBPinger
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			pinger = sqlDB
		}
	}
	healthHandlers := &health.Handlers{
		Rdb:            rdb,
		DB:             pinger,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	app.Get("/", healthHandlers.Root)
	app.Get("/reset", healthHandlers.Reset)
	app.Get("/health/json", healthHandlers.JSON)
	app.Get("/health/errors", healthHandlers.Errors)

	// Auth (no auth middleware): POST login, GET me, DELETE logout
	var finder auth.ProfileFinder
	if db != nil {
		finder = &auth.GormProfileFinder{DB: db}
	}
	authHandlers := &auth.Handlers{Finder: finder, Rdb: rdb, Config: sessionCfg}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", authHandlers.Login)
	authGroup.Get("/me", authHandlers.Me)
	authGroup.Delete("/logout", authHandlers.Logout)

	if db != nil {
		clk := clock.Real{}
		policy := listings.DefaultPolicy()
		if cfg.ListingLifetime > 0 {
			policy.ListingLifetime = cfg.ListingLifetime
		}
		if cfg.BoostDuration > 0 {
			policy.BoostDuration = cfg.BoostDuration
		}
		if cfg.BoostPrice > 0 {
			policy.BoostPrice = cfg.BoostPrice
		}

		entSvc := &entitlements.Service{DB: db, Clock: clk}
		listingSvc := &listings.Service{DB: db, Clock: clk, Entitlements: entSvc, Policy: policy}
		feedSvc := &feed.Service{DB: db, Clock: clk}
		messagingSvc := &messaging.Service{DB: db, Clock: clk}
		subscriptionSvc := &subscriptions.Service{DB: db, Clock: clk}
		profileSvc := &profiles.Service{DB: db, Clock: clk}

		stripeWebhook.DB = db
		stripeWebhook.Listings = listingSvc
		stripeWebhook.Subscriptions = subscriptionSvc
		stripeWebhook.Messaging = messagingSvc

		// Profiles: register is public, the rest requires a session
		profileHandlers := &profiles.Handlers{Service: profileSvc}
		app.Post("/api/v1/profiles/register", profileHandlers.Register)
		profileGroup := app.Group("/api/v1/profiles", middleware.RequireAuth())
		profileGroup.Get("/me", profileHandlers.GetMe)
		profileGroup.Post("/set-user-type", profileHandlers.SetUserType)
		profileGroup.Put("/update/:profile_id", profileHandlers.UpdateProfile)

		// Listings module
		listingHandlers := &listings.Handlers{Service: listingSvc, Feed: feedSvc}
		listingGroup := app.Group("/api/v1/listings", middleware.RequireAuth())
		listingGroup.Post("/create-listing", listingHandlers.CreateListing)
		listingGroup.Get("/feed", listingHandlers.GetFeed)
		listingGroup.Get("/my-listings", listingHandlers.GetMyListings)
		listingGroup.Get("/get-listing/:listing_id", listingHandlers.GetListing)
		listingGroup.Post("/mark-expired", listingHandlers.MarkExpired)
		listingGroup.Put("/edit-listing", listingHandlers.EditListing)
		listingGroup.Delete("/delete-listing/:listing_id", listingHandlers.DeleteListing)

		// Chats module
		chatHandlers := &messaging.Handlers{Service: messagingSvc}
		chatGroup := app.Group("/api/v1/chats", middleware.RequireAuth())
		chatGroup.Post("/send-message", chatHandlers.SendMessage)
		chatGroup.Get("/get-chats", chatHandlers.GetChats)
		chatGroup.Get("/get-messages/:chat_id", chatHandlers.GetMessages)
		chatGroup.Post("/request-contact", chatHandlers.RequestContact)
		chatGroup.Post("/block", chatHandlers.Block)
		chatGroup.Post("/report", chatHandlers.Report)

		// Subscriptions module
		subHandlers := &subscriptions.Handlers{Service: subscriptionSvc, Entitlements: entSvc}
		subGroup := app.Group("/api/v1/subscriptions", middleware.RequireAuth())
		subGroup.Get("/plans", subHandlers.GetPlans)
		subGroup.Get("/current", subHandlers.GetCurrent)

		// Payment intents
		paymentHandlers := &payments.Handlers{
			Creator:       &payments.StripeCreator{SecretKey: cfg.StripeSecretKey},
			Webhook:       stripeWebhook,
			Currency:      "inr",
			BoostPrice:    policy.BoostPrice,
			PlanPriceFunc: subscriptions.PriceFor,
		}
		paymentGroup := app.Group("/api/v1/payments", middleware.RequireAuth())
		paymentGroup.Post("/boost-intent", paymentHandlers.CreateBoostIntent)
		paymentGroup.Post("/subscription-intent", middleware.RequireBusiness(), paymentHandlers.CreateSubscriptionIntent)
		paymentGroup.Post("/disclosure-intent", paymentHandlers.CreateDisclosureIntent)
	}

	return app, nil
}

// Handler returns an http.Handler wrapping the Fiber app for serverless
// deployment.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
