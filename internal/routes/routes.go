package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Hasninemamud/AuctionCraft/internal/auction"
	"github.com/Hasninemamud/AuctionCraft/internal/config"
	"github.com/Hasninemamud/AuctionCraft/internal/handlers"
	"github.com/Hasninemamud/AuctionCraft/internal/middleware"
	"github.com/Hasninemamud/AuctionCraft/internal/notify"
	"github.com/Hasninemamud/AuctionCraft/internal/payments"
)

func Register(router *gin.Engine, db *gorm.DB, cfg config.Config, mailer notify.Mailer, events auction.EventPublisher) {
	router.Use(corsMiddleware(cfg))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "auctioncraft-backend"})
	})

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	store := auction.NewGormStore(db)
	auctions := auction.NewService(store, notify.NewEmailNotifier(mailer), events)
	gateway := payments.NewGateway(payments.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
	})

	authHandler := handlers.NewAuthHandler(db, cfg, mailer)
	productHandler := handlers.NewProductHandler(db, auctions)
	bidHandler := handlers.NewBidHandler(db, auctions)
	categoryHandler := handlers.NewCategoryHandler(db)
	paymentHandler := handlers.NewPaymentHandler(gateway)

	api := router.Group("/api")
	{
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/token", authHandler.Token)
		api.POST("/auth/token/refresh", authHandler.Refresh)
		api.POST("/auth/logout", authHandler.Logout)
		api.POST("/auth/otp/request", middleware.RateLimit(cfg.OtpRequestPerMinute), authHandler.RequestOTP)
		api.POST("/auth/otp/verify", authHandler.VerifyOTP)

		api.GET("/products", productHandler.List)
		api.GET("/products/:id", productHandler.Get)
		api.GET("/categories", categoryHandler.List)
		api.GET("/bids", bidHandler.List)

		api.POST("/payments/webhook", paymentHandler.Webhook)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthRequired(cfg.JwtSecret))
	{
		protected.GET("/auth/me", authHandler.Me)
		protected.GET("/auth/notifications", authHandler.ListNotifications)
		protected.POST("/auth/notifications/:id/read", authHandler.MarkNotificationRead)

		protected.POST("/products", productHandler.Create)
		protected.PUT("/products/:id", productHandler.Update)
		protected.DELETE("/products/:id", productHandler.Delete)
		protected.POST("/products/:id/place_bid", productHandler.PlaceBid)
		protected.POST("/products/:id/close_auction", productHandler.CloseAuction)

		protected.POST("/bids", bidHandler.Create)
		protected.POST("/categories", categoryHandler.Create)

		protected.POST("/payments/create-payment-intent", paymentHandler.CreateIntent)
		protected.POST("/payments/confirm-order", paymentHandler.ConfirmOrder)
	}
}

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = []string{"Authorization", "Content-Type"}
	corsCfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

	if origins := cfg.AllowedOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
	}

	return cors.New(corsCfg)
}
