package controllers

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sanyogjadhav24/Krushi-Sarjana/configs"
	"github.com/sanyogjadhav24/Krushi-Sarjana/events"
	"github.com/sanyogjadhav24/Krushi-Sarjana/gateway"
	"github.com/sanyogjadhav24/Krushi-Sarjana/middlewares"
	"github.com/sanyogjadhav24/Krushi-Sarjana/models"
	"github.com/sanyogjadhav24/Krushi-Sarjana/responses"
	"github.com/sanyogjadhav24/Krushi-Sarjana/store"
)

// PaymentGateway is the provider boundary: sessions, intents, and the
// webhook trust check.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, items []gateway.LineItem, successURL, cancelURL string, metadata map[string]string) (string, error)
	CreatePaymentIntent(ctx context.Context, amountMinor int64, currency string) (string, error)
	VerifyWebhook(payload []byte, signatureHeader string) (gateway.WebhookEvent, error)
}

// ReconcileStore is what the webhook path needs: the two
// compare-and-set transitions to Paid.
type ReconcileStore interface {
	MarkOrderPaid(ctx context.Context, orderID string) (*models.Order, error)
	MarkLatestPendingPaid(ctx context.Context, buyerID primitive.ObjectID) (*models.Order, error)
}

// EventPublisher emits order events after successful reconciliation.
type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

type PaymentController struct {
	gateway PaymentGateway
	store   ReconcileStore
	events  EventPublisher
}

func NewPaymentController(paymentGateway PaymentGateway, reconcileStore ReconcileStore, publisher EventPublisher) *PaymentController {
	return &PaymentController{
		gateway: paymentGateway,
		store:   reconcileStore,
		events:  publisher,
	}
}

// CheckoutItem is one cart entry as the client sends it.
type CheckoutItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int64   `json:"quantity"`
}

// CheckoutRequest is a cart snapshot. OrderID, when the client already
// placed the order, is stamped into session metadata so the webhook can
// reconcile by exact lookup instead of the buyer heuristic.
type CheckoutRequest struct {
	Items   []CheckoutItem `json:"items"`
	UserID  string         `json:"userId"`
	OrderID string         `json:"orderId,omitempty"`
}

// PaymentIntentRequest is the embedded-flow alternative to checkout.
type PaymentIntentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateCheckoutSession builds provider line items from the cart snapshot
// and returns the hosted session id for redirect.
func (h *PaymentController) CreateCheckoutSession(c *fiber.Ctx) error {
	defer h.recordOperation(c, "checkout")

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if len(req.Items) == 0 {
		return badRequest(c, "Invalid order items")
	}

	items := make([]gateway.LineItem, 0, len(req.Items))
	for _, item := range req.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		items = append(items, gateway.LineItem{
			Name:     item.Name,
			Price:    item.Price,
			Image:    item.Image,
			Quantity: quantity,
		})
	}

	metadata := map[string]string{"userId": req.UserID}
	if req.OrderID != "" {
		metadata["orderId"] = req.OrderID
	}

	clientURL := configs.EnvClientURL()
	sessionID, err := h.gateway.CreateCheckoutSession(ctx, items,
		clientURL+"/success?session_id={CHECKOUT_SESSION_ID}",
		clientURL+"/cancel",
		metadata,
	)
	if err != nil {
		log.WithError(err).Error("checkout session creation failed")
		return upstreamError(c, "Error creating checkout session")
	}

	return c.Status(fiber.StatusOK).JSON(responses.OrderResponse{
		Status:  fiber.StatusOK,
		Message: "Checkout session created",
		Result:  &fiber.Map{"sessionId": sessionID},
	})
}

// CreatePaymentIntent returns a client secret for embedded payment flows.
func (h *PaymentController) CreatePaymentIntent(c *fiber.Ctx) error {
	defer h.recordOperation(c, "payment_intent")

	ctx, cancel := context.WithTimeout(c.Context(), 15*time.Second)
	defer cancel()

	var req PaymentIntentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Amount <= 0 || req.Currency == "" {
		return badRequest(c, "Amount and currency are required")
	}

	clientSecret, err := h.gateway.CreatePaymentIntent(ctx, toMinorUnits(req.Amount), req.Currency)
	if err != nil {
		log.WithError(err).Error("payment intent creation failed")
		return upstreamError(c, "Error creating payment intent")
	}

	return c.Status(fiber.StatusOK).JSON(responses.OrderResponse{
		Status:  fiber.StatusOK,
		Message: "Payment intent created",
		Result:  &fiber.Map{"clientSecret": clientSecret},
	})
}

// HandleWebhook reconciles provider-confirmed payment state with the
// order store. Deliveries are at-least-once and unordered relative to the
// client's own calls, so the transition is a compare-and-set and a second
// delivery of the same event is an acknowledged no-op. Only
// paymentStatus is ever touched here.
func (h *PaymentController) HandleWebhook(c *fiber.Ctx) error {
	defer h.recordOperation(c, "webhook")

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	event, err := h.gateway.VerifyWebhook(c.Body(), c.Get("stripe-signature"))
	if err != nil {
		log.WithError(err).Warn("webhook signature verification failed")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Webhook signature verification failed",
		})
	}

	if event.Type != gateway.EventCheckoutCompleted {
		// Unknown event types are acknowledged so the provider can add
		// new ones without breaking us.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	order, err := h.reconcile(ctx, event.Metadata)
	if errors.Is(err, store.ErrNotFound) {
		// Either a re-delivery (already Paid) or the client's own
		// order-creation call hasn't landed yet. Both are acknowledged;
		// the provider should not retry a verified event forever.
		log.WithFields(log.Fields{
			"orderId": event.Metadata["orderId"],
			"userId":  event.Metadata["userId"],
		}).Info("webhook matched no pending order")
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}
	if err != nil {
		// Store failure: let the provider retry.
		log.WithError(err).Error("webhook reconciliation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Internal Server Error",
		})
	}

	log.WithFields(log.Fields{"orderId": order.OrderID}).Info("order marked as paid")
	h.publishPaid(ctx, order)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
}

// reconcile prefers the exact orderId stamped into session metadata at
// checkout; sessions created without one fall back to the buyer's most
// recent pending order.
func (h *PaymentController) reconcile(ctx context.Context, metadata map[string]string) (*models.Order, error) {
	if orderID := metadata["orderId"]; orderID != "" {
		return h.store.MarkOrderPaid(ctx, orderID)
	}

	userID := metadata["userId"]
	if userID == "" {
		return nil, store.ErrNotFound
	}
	buyerID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return h.store.MarkLatestPendingPaid(ctx, buyerID)
}

func (h *PaymentController) publishPaid(ctx context.Context, order *models.Order) {
	if h.events == nil {
		return
	}
	err := h.events.Publish(ctx, events.OrderEvent{
		OrderID:       order.OrderID,
		Type:          events.TypePaid,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		Occurred:      time.Now(),
	})
	if err != nil {
		log.WithFields(log.Fields{"orderId": order.OrderID}).
			WithError(err).Warn("failed to publish order paid event")
	}
}

func (h *PaymentController) recordOperation(c *fiber.Ctx, operation string) {
	code := c.Response().StatusCode()
	middlewares.RecordOrderOperation(operation, code >= 200 && code < 300)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(responses.OrderResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func upstreamError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(responses.OrderResponse{
		Status:  fiber.StatusInternalServerError,
		Message: message,
	})
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
