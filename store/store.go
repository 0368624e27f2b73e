package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sanyogjadhav24/Krushi-Sarjana/models"
)

var (
	// ErrNotFound is returned when no document matches the query.
	ErrNotFound = errors.New("store: not found")
	// ErrTerminalState is returned when a cancel hits a completed or
	// rejected order.
	ErrTerminalState = errors.New("store: order in terminal state")
)

// Store owns all order-related collection access. Users and products are
// read-only here; their subsystems write them.
type Store struct {
	orders   *mongo.Collection
	users    *mongo.Collection
	products *mongo.Collection
}

func New(client *mongo.Client, db string) *Store {
	database := client.Database(db)
	return &Store{
		orders:   database.Collection("orders"),
		users:    database.Collection("users"),
		products: database.Collection("products"),
	}
}

func (s *Store) InsertOrder(ctx context.Context, order *models.Order) error {
	_, err := s.orders.InsertOne(ctx, order)
	return err
}

// OrdersForUser returns every order where the user is the buyer or the
// product's seller, newest first.
func (s *Store) OrdersForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"buyer._id": userID},
		bson.M{"product.seller._id": userID},
	}}

	cursor, err := s.orders.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus applies both status fields in one atomic
// find-and-update and returns the post-update document.
func (s *Store) UpdateOrderStatus(ctx context.Context, orderID string, orderStatus models.OrderStatus, paymentStatus models.PaymentStatus) (*models.Order, error) {
	update := bson.M{"$set": bson.M{
		"orderStatus":   orderStatus,
		"paymentStatus": paymentStatus,
		"updatedAt":     time.Now(),
	}}

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx,
		bson.M{"orderId": orderID},
		update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// DeleteOrder hard-deletes an order and returns the removed document.
// Orders already Completed or Rejected are refused.
func (s *Store) DeleteOrder(ctx context.Context, orderID string) (*models.Order, error) {
	filter := bson.M{
		"orderId":     orderID,
		"orderStatus": bson.M{"$nin": bson.A{models.OrderCompleted, models.OrderRejected}},
	}

	var order models.Order
	err := s.orders.FindOneAndDelete(ctx, filter).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Distinguish absent from terminal for the caller's status code.
		count, countErr := s.orders.CountDocuments(ctx, bson.M{"orderId": orderID})
		if countErr != nil {
			return nil, countErr
		}
		if count > 0 {
			return nil, ErrTerminalState
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkOrderPaid flips paymentStatus Pending -> Paid for one order. The
// filter doubles as a compare-and-set: a re-delivered webhook event
// matches nothing and gets ErrNotFound.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID string) (*models.Order, error) {
	return s.markPaid(ctx, bson.M{
		"orderId":       orderID,
		"paymentStatus": models.PaymentPending,
	})
}

// MarkLatestPendingPaid is the legacy correlation: the buyer's most
// recent pending order. Only used when session metadata carries no
// order id.
func (s *Store) MarkLatestPendingPaid(ctx context.Context, buyerID primitive.ObjectID) (*models.Order, error) {
	return s.markPaid(ctx, bson.M{
		"buyer._id":     buyerID,
		"paymentStatus": models.PaymentPending,
	})
}

func (s *Store) markPaid(ctx context.Context, filter bson.M) (*models.Order, error) {
	update := bson.M{"$set": bson.M{
		"paymentStatus": models.PaymentPaid,
		"updatedAt":     time.Now(),
	}}

	var order models.Order
	err := s.orders.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().
			SetSort(bson.D{{Key: "createdAt", Value: -1}}).
			SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) FindProductByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var product models.Product
	err := s.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}
