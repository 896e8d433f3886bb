package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusshelf/library-system/internal/core/domain"
)

// errDedup is internal: it never leaves Create.
var errDedup = errors.New("dedup key taken")

type NotificationRepository struct {
	coll *mongo.Collection
}

// Create checks the dedup key before inserting: inside a transaction a
// duplicate-key write error would abort the whole transaction.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) (bool, error) {
	if n.DedupKey != "" {
		count, err := r.coll.CountDocuments(ctx, bson.M{"dedup_key": n.DedupKey})
		if err != nil {
			return false, fmt.Errorf("check dedup key: %w", err)
		}
		if count > 0 {
			return false, nil
		}
	}

	n.ID = newID(n.ID)
	if err := insertOne(ctx, r.coll, n, errDedup); err != nil {
		if errors.Is(err, errDedup) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *NotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	return findOne[domain.Notification](ctx, r.coll, bson.M{"_id": id}, domain.ErrNotificationNotFound)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return findMany[domain.Notification](ctx, r.coll, bson.M{"user_id": userID}, bson.D{{Key: "date", Value: -1}})
}

func (r *NotificationRepository) Update(ctx context.Context, n *domain.Notification) error {
	return replaceOne(ctx, r.coll, n.ID, n, domain.ErrNotificationNotFound, nil)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.coll.UpdateMany(ctx,
		bson.M{"user_id": userID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return int(res.ModifiedCount), nil
}

type PaymentRepository struct {
	coll *mongo.Collection
}

func (r *PaymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	p.ID = newID(p.ID)
	return insertOne(ctx, r.coll, p, nil)
}

func (r *PaymentRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Payment, error) {
	return findMany[domain.Payment](ctx, r.coll, bson.M{"user_id": userID}, bson.D{{Key: "paid_at", Value: 1}})
}
