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
	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/favicon"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bewear-pt/storefront/app/repository"
	"github.com/bewear-pt/storefront/internal/pkg/cache"
	"github.com/bewear-pt/storefront/internal/pkg/database"
	"github.com/bewear-pt/storefront/internal/pkg/env"
	"github.com/bewear-pt/storefront/internal/pkg/events"
	"github.com/bewear-pt/storefront/internal/pkg/hcaptcha"
	"github.com/bewear-pt/storefront/internal/pkg/jobqueue"
	"github.com/bewear-pt/storefront/internal/pkg/mail"
	"github.com/bewear-pt/storefront/internal/pkg/metrics/counter"
	"github.com/bewear-pt/storefront/internal/pkg/notification"
	"github.com/bewear-pt/storefront/internal/pkg/payment"
	"github.com/bewear-pt/storefront/internal/pkg/router"
	"github.com/bewear-pt/storefront/internal/pkg/s3archive"
	"github.com/bewear-pt/storefront/internal/pkg/viewmodel"
)

const viewFlushInterval = 5 * time.Minute

func main() {
	app, shutdown := NewApplication()
	defer shutdown()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		fiberlog.Info("[Server] Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			fiberlog.Errorf("[Server] Shutdown failed: %v", err)
		}
	}()

	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	if err != nil {
		log.Fatal(err)
	}
}

// NewApplication wires the storefront. The returned func stops the
// background workers and closes the event publisher.
func NewApplication() (*fiber.App, func()) {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	basePath := findBasePath()
	db := database.GetDB()
	repos := repository.NewRepositories(db)

	manager := jobqueue.GetManager()

	notifier := notification.NewNotifier(repos.Order, mail.NewSMTPMailer(mail.LoadSMTPConfig()), notification.Options{
		Recipient: env.GetEnv("NOTIFICATION_RECIPIENT", ""),
		OrdersURL: publicURL() + "/my-orders",
		Queue:     manager.GetQueue(),
		Archiver:  receiptArchiver(),
	})
	notifier.Register(manager)

	views := counter.New(cache.GetClient(), db)
	manager.AddPeriodicTask(jobqueue.PeriodicTask{
		Name:     "variant view flush",
		Interval: viewFlushInterval,
		Run:      views.Flush,
	})
	manager.Start()

	stripeKey := env.GetEnv("STRIPE_SECRET_KEY", "")
	var checkout payment.CheckoutCreator
	if sc, err := payment.NewStripeCheckout(stripeKey); err != nil {
		fiberlog.Warnf("[Payment] Checkout disabled: %v", err)
	} else {
		checkout = sc
	}

	publisher := events.FromURL(env.GetEnv("AMQP_URL", ""))

	app := fiber.New(fiber.Config{
		Views:     viewmodel.NewEngine(basePath + "views"),
		BodyLimit: 1 << 20,
	})

	app.Use(favicon.New(favicon.Config{
		File:         basePath + "public/assets/icons/favicon.ico",
		URL:          "/favicon.ico",
		CacheControl: "public, max-age=604800",
	}))
	app.Use(recover.New(), logger.New())

	if user, pass := env.GetEnv("METRICS_USER", ""), env.GetEnv("METRICS_PASSWORD", ""); user != "" && pass != "" {
		app.Get("/metrics", basicauth.New(basicauth.Config{
			Users: map[string]string{user: pass},
		}), monitor.New())
	}

	app.Static("/", basePath+"public/assets", fiber.Static{
		CacheDuration: 15 * time.Second,
		Compress:      true,
	})

	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "docs/openapi.yml",
		Path:     "v1",
	}))

	router.InstallRouter(app, router.Dependencies{
		Repos:               repos,
		Payments:            payment.NewServiceFromDB(db),
		Checkout:            checkout,
		Notifier:            notifier,
		Publisher:           publisher,
		ViewCounter:         views,
		Captcha:             hcaptcha.FromEnv(),
		StripeSecretKey:     stripeKey,
		StripeWebhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		BaseURL:             publicURL(),
		CacheCatalog:        !env.IsDev(),
	})

	shutdown := func() {
		manager.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := views.Flush(ctx); err != nil {
			fiberlog.Warnf("[Server] Final view flush failed: %v", err)
		}
		publisher.Close()
	}
	return app, shutdown
}

// receiptArchiver returns nil unless S3 archiving is enabled and reachable.
func receiptArchiver() s3archive.Archiver {
	cfg, err := s3archive.LoadConfig()
	if err != nil {
		fiberlog.Errorf("[Archive] %v; receipts will not be archived", err)
		return nil
	}
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := s3archive.NewClient(context.Background(), cfg)
	if err != nil {
		fiberlog.Errorf("[Archive] %v; receipts will not be archived", err)
		return nil
	}
	return client
}

func publicURL() string {
	return env.GetEnv("PUBLIC_DOMAIN", "http://localhost:4000")
}

// findBasePath locates the directory holding views/, so the binary also runs from cmd/storefront.
func findBasePath() string {
	for _, path := range []string{"./", "../../", "../../../"} {
		if _, err := os.Stat(path + "views"); err == nil {
			return path
		}
	}
	panic("could not find project root directory")
}
