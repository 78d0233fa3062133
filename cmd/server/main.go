package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/nbv3/kip-ventory/internal/caching"
	"github.com/nbv3/kip-ventory/internal/config"
	"github.com/nbv3/kip-ventory/internal/handlers"
	"github.com/nbv3/kip-ventory/internal/jobs"
	"github.com/nbv3/kip-ventory/internal/middleware"
	"github.com/nbv3/kip-ventory/internal/repositories"
	"github.com/nbv3/kip-ventory/internal/services"
	"github.com/nbv3/kip-ventory/pkg/database"
)

func main() {
	configPath := os.Getenv("CONFIG_FILE")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	pool, err := database.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	minioSvc, err := services.NewMinioService(cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey, cfg.Minio.UseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}
	if err := minioSvc.EnsureBucketExists(ctx, cfg.Minio.ReceiptBucket); err != nil {
		log.Printf("WARN: receipt bucket check failed: %v", err)
	}

	// Repositories
	usersRepo := repositories.NewUsersRepo(pool)
	itemsRepo := repositories.NewItemsRepo(pool)
	assetsRepo := repositories.NewAssetsRepo(pool)
	cartsRepo := repositories.NewCartsRepo(pool)
	requestsRepo := repositories.NewRequestsRepo(pool)
	loansRepo := repositories.NewLoansRepo(pool)
	disbursementsRepo := repositories.NewDisbursementsRepo(pool)
	backfillsRepo := repositories.NewBackfillsRepo(pool)
	transactionsRepo := repositories.NewTransactionsRepo(pool)
	logsRepo := repositories.NewLogsRepo(pool)
	remindersRepo := repositories.NewLoanRemindersRepo(pool)

	// Cache and notifications
	cacheSvc := caching.NewRedisCacheService(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	notificationSvc := services.NewNotificationService(usersRepo, cacheSvc, cfg.Notifications.SubjectPrefix)

	// Services
	catalogSvc := services.NewCatalogService(pool, itemsRepo, assetsRepo, transactionsRepo, requestsRepo, loansRepo, logsRepo, cacheSvc)
	cartSvc := services.NewCartService(pool, cartsRepo, itemsRepo, requestsRepo, logsRepo, notificationSvc)
	requestSvc := services.NewRequestService(pool, requestsRepo, itemsRepo, assetsRepo, loansRepo, disbursementsRepo, usersRepo, logsRepo, cacheSvc, notificationSvc)
	loanSvc := services.NewLoanService(pool, loansRepo, itemsRepo, assetsRepo, disbursementsRepo, backfillsRepo, requestsRepo, usersRepo, remindersRepo, logsRepo, cacheSvc, notificationSvc)
	userSvc := services.NewUserService(pool, usersRepo, logsRepo)
	auditLogSvc := services.NewAuditLogService(logsRepo)

	// Handlers
	itemHandlers := handlers.NewItemHandlers(catalogSvc)
	cartHandlers := handlers.NewCartHandlers(cartSvc)
	requestHandlers := handlers.NewRequestHandlers(requestSvc)
	loanHandlers := handlers.NewLoanHandlers(loanSvc, minioSvc, cfg.Minio.ReceiptBucket)
	logHandlers := handlers.NewLogHandlers(auditLogSvc)
	userHandlers := handlers.NewUserHandlers(userSvc, notificationSvc)
	healthHandlers := handlers.NewHealthHandlers(pool)

	// Background jobs
	scheduler, err := jobs.NewScheduler(loansRepo, requestsRepo, usersRepo, itemsRepo, remindersRepo, notificationSvc)
	if err != nil {
		log.Fatalf("Failed to initialize job scheduler: %v", err)
	}
	scheduler.Start()
	defer func() {
		if err := scheduler.Stop(); err != nil {
			log.Printf("WARN: scheduler shutdown failed: %v", err)
		}
	}()

	e := echo.New()
	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTMiddleware(usersRepo, cfg.Server.JWTSecret))

	// Catalog
	v1.GET("/items", itemHandlers.ListItems)
	v1.GET("/items/:id", itemHandlers.GetItem)
	v1.GET("/items/:id/fields", itemHandlers.GetFieldValues)
	v1.GET("/items/:id/assets", itemHandlers.ListAssets)
	v1.GET("/assets/:tag", itemHandlers.GetAssetByTag)
	v1.GET("/tags", itemHandlers.ListTags)
	v1.GET("/fields", itemHandlers.ListCustomFields)

	// Cart
	v1.GET("/cart", cartHandlers.GetCart)
	v1.POST("/cart", cartHandlers.AddToCart)
	v1.DELETE("/cart/:item_id", cartHandlers.RemoveFromCart)
	v1.POST("/cart/submit", cartHandlers.SubmitCart)

	// Requests
	v1.GET("/requests", requestHandlers.ListRequests)
	v1.GET("/requests/:id", requestHandlers.GetRequest)
	v1.DELETE("/requests/:id", requestHandlers.DeleteRequest)
	v1.GET("/requests/:id/backfills", loanHandlers.ListBackfills)

	// Loans
	v1.GET("/loans", loanHandlers.ListLoans)
	v1.GET("/loans/:id", loanHandlers.GetLoan)
	v1.POST("/loans/:id/backfill-requests", loanHandlers.CreateBackfillRequest)
	v1.GET("/loans/:id/backfill-requests", loanHandlers.ListBackfillRequests)
	v1.DELETE("/backfill-requests/:id", loanHandlers.DeleteBackfillRequest)

	// Profile
	v1.GET("/users/me", userHandlers.GetCurrentUser)
	v1.GET("/users/:id", userHandlers.GetUser)

	// Audit log
	v1.GET("/logs", logHandlers.ListLogs)

	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAdmin())

	admin.POST("/items", itemHandlers.CreateItem)
	admin.PUT("/items/:id", itemHandlers.UpdateItem)
	admin.DELETE("/items/:id", itemHandlers.DeleteItem)
	admin.POST("/items/:id/assets", itemHandlers.CreateAsset)
	admin.DELETE("/items/:id/assets/:asset_id", itemHandlers.DeleteAsset)
	admin.POST("/items/:id/fields/:name", itemHandlers.SetFieldValue)
	admin.POST("/fields", itemHandlers.CreateCustomField)
	admin.DELETE("/fields/:name", itemHandlers.DeleteCustomField)

	admin.POST("/transactions", itemHandlers.CreateTransaction)
	admin.GET("/transactions", itemHandlers.ListTransactions)

	admin.POST("/requests/:id/resolve", requestHandlers.ResolveRequest)
	admin.POST("/disburse", requestHandlers.DirectDisburse)

	admin.POST("/loans/:id/return", loanHandlers.ReturnLoan)
	admin.POST("/loans/:id/convert", loanHandlers.ConvertLoan)
	admin.POST("/backfill-requests/:id/resolve", loanHandlers.ResolveBackfillRequest)
	admin.POST("/backfills/:id/satisfy", loanHandlers.SatisfyBackfill)

	admin.POST("/reminders", loanHandlers.CreateLoanReminder)
	admin.GET("/reminders", loanHandlers.ListLoanReminders)
	admin.DELETE("/reminders/:id", loanHandlers.DeleteLoanReminder)

	admin.POST("/users", userHandlers.CreateUser)
	admin.GET("/users", userHandlers.ListUsers)
	admin.PUT("/users/me/subscription", userHandlers.SetSubscribed)
	admin.GET("/subject-prefix", userHandlers.GetSubjectPrefix)
	admin.PUT("/subject-prefix", userHandlers.SetSubjectPrefix)

	e.Logger.Fatal(e.Start(fmt.Sprintf(":%d", cfg.Server.Port)))
}
