package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/sanyogjadhav24/Krushi-Sarjana/events"
	"github.com/sanyogjadhav24/Krushi-Sarjana/middlewares"
	"github.com/sanyogjadhav24/Krushi-Sarjana/models"
	"github.com/sanyogjadhav24/Krushi-Sarjana/responses"
	"github.com/sanyogjadhav24/Krushi-Sarjana/store"
)

// OrderStore is what the lifecycle handlers need from the data layer.
type OrderStore interface {
	InsertOrder(ctx context.Context, order *models.Order) error
	OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, orderStatus models.OrderStatus, paymentStatus models.PaymentStatus) (*models.Order, error)
	DeleteOrder(ctx context.Context, orderID string) (*models.Order, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

// EventPublisher emits order events after successful writes.
type EventPublisher interface {
	Publish(ctx context.Context, event events.OrderEvent) error
}

type OrderController struct {
	store    OrderStore
	events   EventPublisher
	validate *validator.Validate
}

func NewOrderController(orderStore OrderStore, publisher EventPublisher) *OrderController {
	return &OrderController{
		store:    orderStore,
		events:   publisher,
		validate: validator.New(),
	}
}

// CreateOrderRequest holds the data required to place an order.
type CreateOrderRequest struct {
	BuyerID        string  `json:"buyerId" validate:"required"`
	ProductID      string  `json:"productId" validate:"required"`
	PaymentID      string  `json:"paymentId" validate:"required"`
	SubTotalAmount float64 `json:"subTotalAmount" validate:"required,gt=0"`
	TotalAmount    float64 `json:"totalAmount" validate:"required,gt=0"`
}

// UpdateOrderStatusRequest carries both status axes; both are required
// even when only one changes.
type UpdateOrderStatusRequest struct {
	OrderStatus   string `json:"orderStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

// CreateOrder places a Pending/Pending order with denormalized
// buyer/product/seller snapshots taken at call time.
func (h *OrderController) CreateOrder(c *fiber.Ctx) error {
	defer h.recordOperation(c, "create")

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return badRequest(c, "All fields are required")
	}

	buyerID, err := primitive.ObjectIDFromHex(req.BuyerID)
	if err != nil {
		return badRequest(c, "Invalid buyer ID format")
	}
	productID, err := primitive.ObjectIDFromHex(req.ProductID)
	if err != nil {
		return badRequest(c, "Invalid product ID format")
	}

	buyer, err := h.store.FindUserByID(ctx, buyerID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Buyer not found")
	}
	if err != nil {
		return internalError(c, "create order", err)
	}

	product, err := h.store.FindProductByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Product not found")
	}
	if err != nil {
		return internalError(c, "create order", err)
	}

	// Data-integrity guard: a product whose seller record vanished must
	// not produce an order with a dangling snapshot.
	seller, err := h.store.FindUserByID(ctx, product.Seller)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Seller not found")
	}
	if err != nil {
		return internalError(c, "create order", err)
	}

	now := time.Now()
	order := models.Order{
		ID:      primitive.NewObjectID(),
		OrderID: uuid.NewString(),
		Buyer: models.BuyerSnapshot{
			ID:           buyer.Id,
			Name:         buyer.Name,
			ProfileImage: buyer.ProfileImage,
			Role:         buyer.Role,
		},
		Product: models.ProductSnapshot{
			ID:    product.ID,
			Name:  product.Name,
			Image: product.Image,
			Seller: models.SellerSnapshot{
				ID:   seller.Id,
				Name: seller.Name,
				Role: seller.Role,
			},
		},
		PaymentID:      req.PaymentID,
		PaymentStatus:  models.PaymentPending,
		SubTotalAmount: req.SubTotalAmount,
		TotalAmount:    req.TotalAmount,
		OrderStatus:    models.OrderPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := h.store.InsertOrder(ctx, &order); err != nil {
		return internalError(c, "create order", err)
	}

	h.publish(ctx, events.TypeCreated, &order)

	return c.Status(fiber.StatusCreated).JSON(responses.OrderResponse{
		Status:  fiber.StatusCreated,
		Message: "Order placed successfully",
		Result:  &fiber.Map{"order": order},
	})
}

// GetUserOrders returns every order where the user is buyer or seller.
func (h *OrderController) GetUserOrders(c *fiber.Ctx) error {
	defer h.recordOperation(c, "list")

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	userParam := c.Params("userId")
	if userParam == "" {
		return badRequest(c, "User ID is required")
	}
	userID, err := primitive.ObjectIDFromHex(userParam)
	if err != nil {
		return badRequest(c, "Invalid user ID format")
	}

	orders, err := h.store.OrdersForUser(ctx, userID)
	if err != nil {
		return internalError(c, "list orders", err)
	}
	if len(orders) == 0 {
		return notFound(c, "No orders found")
	}

	return c.Status(fiber.StatusOK).JSON(responses.OrderResponse{
		Status:  fiber.StatusOK,
		Message: "Orders fetched successfully",
		Result:  &fiber.Map{"orders": orders},
	})
}

// UpdateOrderStatus applies both status fields atomically. Any
// combination of the two enums is permitted by this endpoint; sellers
// drive orderStatus, while paymentStatus normally belongs to the
// webhook reconciler.
func (h *OrderController) UpdateOrderStatus(c *fiber.Ctx) error {
	defer h.recordOperation(c, "update_status")

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	orderID := c.Params("orderId")
	if orderID == "" {
		return badRequest(c, "Order ID is required")
	}

	var req UpdateOrderStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.OrderStatus == "" || req.PaymentStatus == "" {
		return badRequest(c, "Order status and payment status are required")
	}

	orderStatus := models.OrderStatus(req.OrderStatus)
	if !orderStatus.Valid() {
		return badRequest(c, "Invalid order status")
	}
	paymentStatus := models.PaymentStatus(req.PaymentStatus)
	if !paymentStatus.Valid() {
		return badRequest(c, "Invalid payment status")
	}

	order, err := h.store.UpdateOrderStatus(ctx, orderID, orderStatus, paymentStatus)
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return internalError(c, "update order status", err)
	}

	h.publish(ctx, events.TypeStatusUpdated, order)

	return c.Status(fiber.StatusOK).JSON(responses.OrderResponse{
		Status:  fiber.StatusOK,
		Message: "Order updated successfully",
		Result:  &fiber.Map{"order": order},
	})
}

// DeleteOrder cancels an order with a hard delete, returning the removed
// record. Completed and Rejected orders are past cancellation.
func (h *OrderController) DeleteOrder(c *fiber.Ctx) error {
	defer h.recordOperation(c, "cancel")

	ctx, cancel := context.WithTimeout(c.Context(), 10*time.Second)
	defer cancel()

	orderID := c.Params("orderId")
	if orderID == "" {
		return badRequest(c, "Order ID is required")
	}

	order, err := h.store.DeleteOrder(ctx, orderID)
	if errors.Is(err, store.ErrTerminalState) {
		return badRequest(c, "Cannot cancel a completed or rejected order")
	}
	if errors.Is(err, store.ErrNotFound) {
		return notFound(c, "Order not found")
	}
	if err != nil {
		return internalError(c, "cancel order", err)
	}

	h.publish(ctx, events.TypeCancelled, order)

	return c.Status(fiber.StatusOK).JSON(responses.OrderResponse{
		Status:  fiber.StatusOK,
		Message: "Order deleted successfully",
		Result:  &fiber.Map{"order": order},
	})
}

func (h *OrderController) publish(ctx context.Context, eventType string, order *models.Order) {
	if h.events == nil {
		return
	}
	err := h.events.Publish(ctx, events.OrderEvent{
		OrderID:       order.OrderID,
		Type:          eventType,
		OrderStatus:   order.OrderStatus,
		PaymentStatus: order.PaymentStatus,
		TotalAmount:   order.TotalAmount,
		Occurred:      time.Now(),
	})
	if err != nil {
		log.WithFields(log.Fields{"orderId": order.OrderID, "type": eventType}).
			WithError(err).Warn("failed to publish order event")
	}
}

func (h *OrderController) recordOperation(c *fiber.Ctx, operation string) {
	code := c.Response().StatusCode()
	middlewares.RecordOrderOperation(operation, code >= 200 && code < 300)
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(responses.OrderResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func notFound(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(responses.OrderResponse{
		Status:  fiber.StatusNotFound,
		Message: message,
	})
}

func internalError(c *fiber.Ctx, operation string, err error) error {
	log.WithError(err).Errorf("%s failed", operation)
	return c.Status(fiber.StatusInternalServerError).JSON(responses.OrderResponse{
		Status:  fiber.StatusInternalServerError,
		Message: "Internal Server Error",
	})
}
