package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/vitrinehq/vitrine/app/controllers"
	"github.com/vitrinehq/vitrine/app/repository"
	"github.com/vitrinehq/vitrine/internal/pkg/cache"
	"github.com/vitrinehq/vitrine/internal/pkg/checkout"
	"github.com/vitrinehq/vitrine/internal/pkg/database"
	"github.com/vitrinehq/vitrine/internal/pkg/env"
	"github.com/vitrinehq/vitrine/internal/pkg/jobqueue"
	"github.com/vitrinehq/vitrine/internal/pkg/mail"
	"github.com/vitrinehq/vitrine/internal/pkg/payment"
	"github.com/vitrinehq/vitrine/internal/pkg/router"
	"github.com/vitrinehq/vitrine/internal/pkg/statistics"
	"github.com/vitrinehq/vitrine/internal/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	app, jobs := NewApplication()

	go func() {
		addr := fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000"))
		if err := app.Listen(addr); err != nil {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	jobs.Stop()
}

func NewApplication() (*fiber.App, *jobqueue.Manager) {
	env.SetupEnvFile()
	db := database.SetupDatabase()
	redisClient := cache.SetupCache()

	paymentCfg, err := payment.LoadConfig()
	if err != nil {
		log.Fatalf("Payment configuration: %v", err)
	}
	if !paymentCfg.HasWebhookSecret() {
		log.Println("Warning: STRIPE_WEBHOOK_SECRET is not set, webhook deliveries will be rejected")
	}

	repository.InitializeFactory(db)
	repos := repository.GetGlobalFactory().GetRepositories()

	// object storage for product images
	storageCfg, err := storage.LoadConfig()
	if err != nil {
		log.Fatalf("Storage configuration: %v", err)
	}
	var store *storage.S3Store
	if storageCfg.IsEnabled() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err = storage.NewS3Store(ctx, storageCfg)
		if err != nil {
			log.Fatalf("S3 client: %v", err)
		}
		if err := store.Ping(ctx); err != nil {
			log.Printf("Warning: S3 bucket %s is not reachable: %v", storageCfg.BucketName, err)
		}
		cancel()
	}

	// mail
	mailCfg := mail.LoadConfig()
	var mailer mail.Mailer = mail.LogMailer{}
	if mailCfg.IsEnabled() {
		mailer = mail.NewSMTPMailer(mailCfg)
	}
	templates, err := mail.NewTemplates()
	if err != nil {
		log.Fatalf("Mail templates: %v", err)
	}

	// background jobs
	deps := jobqueue.Dependencies{
		Notifications: &jobqueue.OrderNotificationDeps{
			Orders:    repos.Order,
			Sellers:   repos.User,
			Mailer:    mailer,
			Templates: templates,
			Currency:  paymentCfg.Currency,
		},
	}
	if store != nil {
		deps.Images = store
	}
	jobs := jobqueue.NewManager(redisClient, env.GetEnvInt("JOB_QUEUE_WORKERS", 2), deps)
	jobs.Start()

	// checkout
	gateway := payment.NewStripeGateway(paymentCfg.SecretKey, nil)
	issuer := checkout.NewIssuer(repos.Product, gateway, paymentCfg)
	reconciler := checkout.NewReconciler(repos.Product, repos.Order, gateway, paymentCfg.WebhookSecret,
		checkout.WithInbox(repos.WebhookEvent),
		checkout.WithNotifier(jobqueue.NewOrderNotifier(jobs.GetQueue())),
	)

	var productCtrl *controllers.ProductController
	if store != nil {
		productCtrl = controllers.NewProductController(repos.Product,
			storage.NewImageUploader(store, storageCfg),
			jobqueue.NewImageCleaner(jobs.GetQueue()))
	} else {
		productCtrl = controllers.NewProductController(repos.Product, nil, nil)
	}

	summaries := statistics.NewService(repos.Order, statistics.RedisStore())

	app := fiber.New(fiber.Config{
		BodyLimit: 12 * 1024 * 1024,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// SWAGGER / OPENAPI
	if docs := findDocsFile(); docs != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/docs/api/",
			FilePath: docs,
			Path:     "v1",
		}))
	}

	// rate limit counters live in Redis when it is reachable
	var limiterStorage fiber.Storage
	pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err == nil {
		limiterStorage = router.NewLimiterStorage(redisClient)
	} else {
		log.Printf("Warning: rate limiting falls back to process memory: %v", err)
	}
	cancel()

	// ROUTER
	router.InstallRouter(app, router.Controllers{
		Checkout: controllers.NewCheckoutController(issuer),
		Webhook:  controllers.NewWebhookController(reconciler),
		Config:   controllers.NewConfigController(paymentCfg),
		Product:  productCtrl,
		Order:    controllers.NewOrderController(repos.Order, summaries),
		Stats:    controllers.NewStatsController(summaries),
		Seller:   controllers.NewSellerController(repos.User),
	}, router.Options{
		Users:          repos.User,
		LimiterStorage: limiterStorage,
		RateLimitMax:   env.GetEnvInt("RATE_LIMIT_MAX", 60),
	})

	return app, jobs
}

func findDocsFile() string {
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/vitrine to project root
		"../../../", // Fallback
	}
	for _, path := range basePaths {
		file := path + "public/docs/v1/openapi.yml"
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}
	log.Println("Warning: OpenAPI document not found, /docs/api/v1 is disabled")
	return ""
}
