package main

import (
	"context"
	"database/sql"
	"log"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"campusBack/internal/config"
	"campusBack/internal/handlers"
	"campusBack/internal/pay"
	"campusBack/internal/repositories"
	"campusBack/internal/services"
	"campusBack/utils"
)

type application struct {
	errorLog *log.Logger
	infoLog  *log.Logger
	cfg      config.Config
	db       *sql.DB

	userRepo *repositories.UserRepository
	tokens   *utils.Manager

	statusHub *StatusHub

	requestService *services.DocumentRequestService
	webhookService *services.WebhookService

	userHandler         *handlers.UserHandler
	requestHandler      *handlers.DocumentRequestHandler
	paymentHandler      *handlers.PaymentHandler
	webhookHandler      *handlers.WebhookHandler
	feeHandler          *handlers.FeeHandler
	notificationHandler *handlers.NotificationHandler
}

func initializeApp(db *sql.DB, cfg config.Config, errorLog, infoLog *log.Logger) *application {
	// Repositories
	userRepo := &repositories.UserRepository{DB: db}
	requestRepo := &repositories.DocumentRequestRepository{DB: db}
	paymentRepo := &repositories.PaymentRepository{DB: db}
	eventRepo := repositories.NewWebhookEventRepository(db)
	feeRepo := &repositories.FeeScheduleRepository{DB: db}
	notificationRepo := repositories.NewNotificationRepository(db)

	tokens, err := utils.NewManager(cfg.JWT.SigningKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	cache := &services.StatusCache{RDB: rdb}

	hub := NewStatusHub()

	notificationService := &services.NotificationService{
		Repo:     notificationRepo,
		FCM:      newMessagingClient(cfg, errorLog),
		Hub:      hub,
		ErrorLog: errorLog,
	}

	provider, err := pay.NewClient(pay.Config{
		SecretKey:  cfg.PayMongo.SecretKey,
		BaseURL:    cfg.PayMongo.BaseURL,
		SuccessURL: cfg.PayMongo.SuccessURL,
		FailureURL: cfg.PayMongo.FailureURL,
	})
	if err != nil {
		// Digital payments stay disabled until the provider is configured.
		errorLog.Printf("paymongo client: %v", err)
	}

	receipts := &utils.Storage{
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
	}

	// Services
	userService := &services.UserService{UserRepo: userRepo, Tokens: tokens}
	feeService := &services.FeeService{FeeRepo: feeRepo}
	requestService := &services.DocumentRequestService{
		Requests:      requestRepo,
		Payments:      paymentRepo,
		Fees:          feeRepo,
		Cache:         cache,
		Notifier:      notificationService,
		DeadlineHours: cfg.Payments.DeadlineHours,
	}
	paymentService := &services.PaymentService{
		Payments:          paymentRepo,
		Requests:          requestRepo,
		Provider:          provider,
		Receipts:          receipts,
		Cache:             cache,
		Notifier:          notificationService,
		ReinstateLatePaid: cfg.Payments.ReinstateLatePaid,
	}
	webhookService := &services.WebhookService{
		Events:            eventRepo,
		Payments:          paymentRepo,
		Notifier:          notificationService,
		Cache:             cache,
		ReinstateLatePaid: cfg.Payments.ReinstateLatePaid,
	}

	// Handlers
	userHandler := &handlers.UserHandler{Service: userService}
	requestHandler := &handlers.DocumentRequestHandler{Service: requestService}
	paymentHandler := &handlers.PaymentHandler{Service: paymentService}
	webhookHandler := &handlers.WebhookHandler{
		Service:       webhookService,
		WebhookSecret: cfg.PayMongo.WebhookSecret,
	}
	feeHandler := &handlers.FeeHandler{Service: feeService}
	notificationHandler := &handlers.NotificationHandler{Service: notificationService}

	return &application{
		errorLog:            errorLog,
		infoLog:             infoLog,
		cfg:                 cfg,
		db:                  db,
		userRepo:            userRepo,
		tokens:              tokens,
		statusHub:           hub,
		requestService:      requestService,
		webhookService:      webhookService,
		userHandler:         userHandler,
		requestHandler:      requestHandler,
		paymentHandler:      paymentHandler,
		webhookHandler:      webhookHandler,
		feeHandler:          feeHandler,
		notificationHandler: notificationHandler,
	}
}

// newMessagingClient builds the FCM client, or nil when no credentials are
// configured. Push is an optional channel.
func newMessagingClient(cfg config.Config, errorLog *log.Logger) *messaging.Client {
	if cfg.Firebase.CredentialsFile == "" {
		return nil
	}
	ctx := context.Background()
	fbApp, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	if err != nil {
		errorLog.Printf("firebase init: %v", err)
		return nil
	}
	client, err := fbApp.Messaging(ctx)
	if err != nil {
		errorLog.Printf("firebase messaging: %v", err)
		return nil
	}
	return client
}
