package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusshelf/library-system/internal/core/domain"
)

type UserRepository struct {
	coll *mongo.Collection
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	u.ID = newID(u.ID)
	u.Email = domain.NormalizeEmail(u.Email)
	return insertOne(ctx, r.coll, u, domain.ErrUserExists)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.coll, bson.M{"_id": id}, domain.ErrUserNotFound)
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return findOne[domain.User](ctx, r.coll, bson.M{"email": domain.NormalizeEmail(email)}, domain.ErrUserNotFound)
}

func (r *UserRepository) List(ctx context.Context, roles []domain.Role) ([]*domain.User, error) {
	return findMany[domain.User](ctx, r.coll, roleFilter(roles), bson.D{{Key: "created_at", Value: 1}})
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	u.Email = domain.NormalizeEmail(u.Email)
	return replaceOne(ctx, r.coll, u.ID, u, domain.ErrUserNotFound, domain.ErrUserExists)
}

func roleFilter(roles []domain.Role) bson.M {
	if roles == nil {
		return bson.M{}
	}
	in := make(bson.A, 0, len(roles))
	for _, r := range roles {
		in = append(in, string(r))
	}
	return bson.M{"role": bson.M{"$in": in}}
}
