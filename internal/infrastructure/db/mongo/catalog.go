package mongo

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

type BookRepository struct {
	coll *mongo.Collection
}

func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	b.ID = newID(b.ID)
	return insertOne(ctx, r.coll, b, domain.ErrDuplicateISBN)
}

func (r *BookRepository) FindByID(ctx context.Context, id string) (*domain.Book, error) {
	return findOne[domain.Book](ctx, r.coll, bson.M{"_id": id}, domain.ErrBookNotFound)
}

func (r *BookRepository) List(ctx context.Context, f ports.BookFilter) ([]*domain.Book, error) {
	return findMany[domain.Book](ctx, r.coll, bookFilter(f), bson.D{{Key: "added_at", Value: 1}})
}

func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	return replaceOne(ctx, r.coll, b.ID, b, domain.ErrBookNotFound, domain.ErrDuplicateISBN)
}

// bookFilter matches title and author by case-insensitive substring and genre
// by case-insensitive equality.
func bookFilter(f ports.BookFilter) bson.M {
	filter := bson.M{}
	if f.Query != "" {
		filter["title"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}
	if f.Author != "" {
		filter["author"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Author), Options: "i"}
	}
	if f.Genre != "" {
		filter["genre"] = primitive.Regex{Pattern: "^" + regexp.QuoteMeta(f.Genre) + "$", Options: "i"}
	}
	return filter
}

type GenreRepository struct {
	coll *mongo.Collection
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	g.ID = newID(g.ID)
	return insertOne(ctx, r.coll, g, domain.ErrDuplicateGenre)
}

func (r *GenreRepository) FindByID(ctx context.Context, id string) (*domain.Genre, error) {
	return findOne[domain.Genre](ctx, r.coll, bson.M{"_id": id}, domain.ErrGenreNotFound)
}

func (r *GenreRepository) List(ctx context.Context) ([]*domain.Genre, error) {
	return findMany[domain.Genre](ctx, r.coll, bson.M{}, bson.D{{Key: "name", Value: 1}})
}

func (r *GenreRepository) Update(ctx context.Context, g *domain.Genre) error {
	return replaceOne(ctx, r.coll, g.ID, g, domain.ErrGenreNotFound, domain.ErrDuplicateGenre)
}

func (r *GenreRepository) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete genre: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrGenreNotFound
	}
	return nil
}
