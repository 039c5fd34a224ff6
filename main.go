package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"marketplace-service/internal/auth"
	"marketplace-service/internal/config"
	"marketplace-service/internal/db"
	"marketplace-service/internal/handlers"
	"marketplace-service/internal/middleware"
	"marketplace-service/internal/observability"
	"marketplace-service/internal/rabbitmq"
	"marketplace-service/internal/repositories"
	"marketplace-service/internal/storage"
	"marketplace-service/internal/telemetry"
)

const serviceName = "marketplace-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}
	defer database.Close()

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.SetupTracing(context.Background(), cfg.OTLPEndpoint, serviceName, cfg.Environment)
		if err != nil {
			log.Fatalf("failed to set up tracing: %v", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdown(ctx)
		}()
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	mode, reason := rabbitmq.Describe(publisher)
	log.Printf("audit publisher mode=%s reason=%q", mode, reason)
	audit := telemetry.NewAuditEmitter(publisher, "marketplace.audit", serviceName, cfg.Environment)

	userRepo := repositories.NewUserRepo(database)
	listingRepo := repositories.NewListingRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	ratingRepo := repositories.NewRatingRepo(database)
	favoriteRepo := repositories.NewFavoriteRepo(database)
	paymentRepo := repositories.NewPaymentRepo(database)
	reportRepo := repositories.NewReportRepo(database)

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	images := storage.NewNormalizer(storage.NewDiskStore(cfg.StorageDir), "listings")

	authHandler := handlers.NewAuthHandler(userRepo, issuer)
	listingHandler := handlers.NewListingHandler(listingRepo, ratingRepo, userRepo, images, audit)
	chatHandler := handlers.NewChatHandler(messageRepo, userRepo, listingRepo, audit)
	ratingHandler := handlers.NewRatingHandler(ratingRepo, listingRepo, messageRepo, userRepo, audit)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteRepo, listingRepo)
	paymentHandler := handlers.NewPaymentHandler(paymentRepo, listingRepo, audit)
	adminHandler := handlers.NewAdminHandler(userRepo, listingRepo, messageRepo, ratingRepo, paymentRepo, reportRepo, images, audit)

	handlers.RegisterValidators()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/storage", cfg.StorageDir)

	authRequired := middleware.AuthMiddleware(issuer, userRepo)

	v1 := router.Group("/v1")
	{
		v1.POST("/register", authHandler.Register)
		v1.POST("/login", authHandler.Login)
		v1.GET("/listings", listingHandler.List)
		v1.GET("/listings/:id", listingHandler.Show)
		v1.GET("/listings/:id/ratings", ratingHandler.ListForListing)
	}

	authed := router.Group("/v1", authRequired)
	{
		authed.GET("/me", authHandler.Me)
		authed.POST("/logout", authHandler.Logout)

		authed.GET("/listings/mine", listingHandler.Mine)
		authed.POST("/listings", listingHandler.Create)
		authed.PUT("/listings/:id", listingHandler.Update)
		authed.DELETE("/listings/:id", listingHandler.Delete)

		authed.GET("/ratings/mine/:listing_id", ratingHandler.Mine)
		authed.POST("/ratings", ratingHandler.Create)
		authed.PUT("/ratings/:id", ratingHandler.Update)
		authed.DELETE("/ratings/:id", ratingHandler.Delete)

		authed.GET("/favorites", favoriteHandler.List)
		authed.POST("/favorites", favoriteHandler.Add)
		authed.DELETE("/favorites/:listing_id", favoriteHandler.Remove)

		authed.GET("/chat/conversations", chatHandler.Conversations)
		authed.GET("/chat/messages/:user_id", chatHandler.Transcript)
		authed.POST("/chat/messages", chatHandler.Send)
		authed.GET("/chat/contacted-listings", chatHandler.ContactedListings)

		authed.POST("/payments", paymentHandler.Create)
		authed.GET("/payments/made", paymentHandler.Made)
		authed.GET("/payments/received", paymentHandler.Received)
	}

	admin := router.Group("/v1/admin", authRequired, middleware.AdminGuard())
	{
		admin.GET("/dashboard", adminHandler.Dashboard)

		admin.GET("/users", adminHandler.ListUsers)
		admin.GET("/users/:id", adminHandler.GetUser)
		admin.PATCH("/users/:id/toggle", adminHandler.ToggleUser)
		admin.DELETE("/users/:id", adminHandler.DeleteUser)

		admin.GET("/listings", adminHandler.ListListings)
		admin.PATCH("/listings/:id/status", adminHandler.SetListingStatus)
		admin.DELETE("/listings/:id", adminHandler.DeleteListing)

		admin.GET("/messages", adminHandler.ListMessages)
		admin.DELETE("/messages/:id", adminHandler.DeleteMessage)
		admin.GET("/conversations", adminHandler.ListConversations)
		admin.GET("/conversations/:user_a/:user_b", adminHandler.ConversationTranscript)

		admin.GET("/payments", adminHandler.ListPayments)
		admin.PATCH("/payments/:id/status", adminHandler.SetPaymentStatus)

		admin.GET("/ratings", adminHandler.ListRatings)
		admin.DELETE("/ratings/:id", adminHandler.DeleteRating)

		admin.GET("/reports", adminHandler.ListReports)
		admin.POST("/reports", adminHandler.GenerateReport)
	}

	log.Printf("listening on :%s environment=%s", cfg.Port, cfg.Environment)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
