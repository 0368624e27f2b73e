package routes

import (
	"github.com/gofiber/fiber/v2"

	orderController "github.com/sanyogjadhav24/Krushi-Sarjana/controllers/orders"
	paymentController "github.com/sanyogjadhav24/Krushi-Sarjana/controllers/payments"
	"github.com/sanyogjadhav24/Krushi-Sarjana/middlewares"
)

// OrderRoutes mounts the order and payment surface. The webhook route is
// deliberately outside the auth middleware: the provider signs its
// payloads instead of carrying a token.
func OrderRoutes(app *fiber.App, orders *orderController.OrderController, payments *paymentController.PaymentController) {
	app.Post("/api/orders/webhook", payments.HandleWebhook)

	app.Post("/api/orders/create-order", middlewares.AuthMiddleware, orders.CreateOrder)
	app.Post("/api/orders/checkout", middlewares.AuthMiddleware, payments.CreateCheckoutSession)
	app.Post("/api/orders/payment-intent", middlewares.AuthMiddleware, payments.CreatePaymentIntent)
	app.Get("/api/orders/:userId", middlewares.AuthMiddleware, orders.GetUserOrders)
	app.Put("/api/orders/:orderId/status", middlewares.AuthMiddleware, orders.UpdateOrderStatus)
	app.Delete("/api/orders/:orderId/cancel", middlewares.AuthMiddleware, orders.DeleteOrder)
}
