package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oceanharvest/storefront-api/internal/apperr"
	"github.com/oceanharvest/storefront-api/internal/models"
)

// OrderStore reads and writes the denormalized order lines. Every
// operation that touches order-level state addresses all lines sharing
// the orderId, never the first match.
type OrderStore struct {
	coll *mongo.Collection
}

func NewOrderStore(coll *mongo.Collection) *OrderStore {
	return &OrderStore{coll: coll}
}

// InsertLines persists every line of one order as a single ordered
// insert. If it fails partway Mongo stops at the failing document, the
// caller treats the order as not placed and retries under a fresh id.
func (s *OrderStore) InsertLines(ctx context.Context, lines []models.OrderLine) error {
	docs := make([]interface{}, len(lines))
	for i := range lines {
		docs[i] = lines[i]
	}
	if _, err := s.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true)); err != nil {
		return apperr.Wrap(apperr.KindUpstream, "failed to persist order", err)
	}
	return nil
}

// OrderIDExists reports whether any line already uses the generated id.
func (s *OrderStore) OrderIDExists(ctx context.Context, orderID string) (bool, error) {
	count, err := s.coll.CountDocuments(ctx, bson.M{"orderId": orderID}, options.Count().SetLimit(1))
	if err != nil {
		return false, apperr.Wrap(apperr.KindUpstream, "failed to check order id", err)
	}
	return count > 0, nil
}

// UpdateStatus applies the new status to every line of the order and
// returns how many lines it touched.
func (s *OrderStore) UpdateStatus(ctx context.Context, orderID, status string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, bson.M{"orderId": orderID}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUpstream, "failed to update order status", err)
	}
	return res.MatchedCount, nil
}

// MarkPaid flips the payment flag and status on every line of the order.
func (s *OrderStore) MarkPaid(ctx context.Context, orderID, status string) (int64, error) {
	res, err := s.coll.UpdateMany(ctx, bson.M{"orderId": orderID}, bson.M{"$set": bson.M{
		"payment": true,
		"status":  status,
	}})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUpstream, "failed to mark order paid", err)
	}
	return res.MatchedCount, nil
}

// DeleteOrder removes every line of the order. Deleting an order that
// is already gone is not an error; the payment-failure callback can
// arrive more than once.
func (s *OrderStore) DeleteOrder(ctx context.Context, orderID string) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{"orderId": orderID})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUpstream, "failed to delete order", err)
	}
	return res.DeletedCount, nil
}

// ListAll returns every order line, newest order first.
func (s *OrderStore) ListAll(ctx context.Context) ([]models.OrderLine, error) {
	return s.find(ctx, bson.M{})
}

// ListByCustomer returns the order lines belonging to one customer.
func (s *OrderStore) ListByCustomer(ctx context.Context, customerID string) ([]models.OrderLine, error) {
	return s.find(ctx, bson.M{"customerId": customerID})
}

func (s *OrderStore) find(ctx context.Context, filter bson.M) ([]models.OrderLine, error) {
	cur, err := s.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to list orders", err)
	}
	defer cur.Close(ctx)

	var lines []models.OrderLine
	if err := cur.All(ctx, &lines); err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "failed to decode orders", err)
	}
	return lines, nil
}

// DeleteUnpaidBefore removes gateway orders that were never paid and
// are older than the cutoff. Used by the background sweeper.
func (s *OrderStore) DeleteUnpaidBefore(ctx context.Context, method string, cutoff time.Time) (int64, error) {
	res, err := s.coll.DeleteMany(ctx, bson.M{
		"paymentMethod": method,
		"payment":       false,
		"date":          bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUpstream, "failed to sweep unpaid orders", err)
	}
	return res.DeletedCount, nil
}
