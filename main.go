package main

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/sanyogjadhav24/Krushi-Sarjana/configs"
	orderController "github.com/sanyogjadhav24/Krushi-Sarjana/controllers/orders"
	paymentController "github.com/sanyogjadhav24/Krushi-Sarjana/controllers/payments"
	"github.com/sanyogjadhav24/Krushi-Sarjana/events"
	"github.com/sanyogjadhav24/Krushi-Sarjana/gateway"
	"github.com/sanyogjadhav24/Krushi-Sarjana/middlewares"
	"github.com/sanyogjadhav24/Krushi-Sarjana/routes"
	"github.com/sanyogjadhav24/Krushi-Sarjana/store"
)

func main() {
	log.SetFormatter(&log.JSONFormatter{})
	log.SetLevel(log.InfoLevel)

	configs.LoadEnv()

	client := configs.ConnectDB()
	orderStore := store.New(client, configs.EnvDBName())

	stripeGateway := gateway.NewStripeGateway(
		configs.EnvStripeSecretKey(),
		configs.EnvStripeWebhookSecret(),
		configs.EnvCurrency(),
	)

	// Event publishing is optional; without a broker URL orders still work.
	var orderEvents *events.Publisher
	if url := configs.EnvRabbitMQURL(); url != "" {
		publisher, err := events.NewPublisher(url, "orders_exchange")
		if err != nil {
			log.WithError(err).Warn("event publishing disabled: broker unreachable")
		} else {
			orderEvents = publisher
			defer orderEvents.Close()
		}
	}

	var orderPublisher orderController.EventPublisher
	var paymentPublisher paymentController.EventPublisher
	if orderEvents != nil {
		orderPublisher = orderEvents
		paymentPublisher = orderEvents
	}

	orders := orderController.NewOrderController(orderStore, orderPublisher)
	payments := paymentController.NewPaymentController(stripeGateway, orderStore, paymentPublisher)

	app := fiber.New()
	app.Use(middlewares.PrometheusMiddleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	routes.OrderRoutes(app, orders, payments)

	port := configs.EnvPort()
	log.Infof("order service starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
