package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campusshelf/library-system/internal/core/ports"
)

const (
	usersCollection         = "users"
	booksCollection         = "books"
	genresCollection        = "genres"
	requestsCollection      = "borrow_requests"
	loansCollection         = "loans"
	notificationsCollection = "notifications"
	paymentsCollection      = "payments"
)

// Store implements ports.Store on MongoDB. Multi-document transactions need
// a replica set; with transactions disabled WithinTx runs fn directly.
type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool

	users         *UserRepository
	books         *BookRepository
	genres        *GenreRepository
	requests      *BorrowRequestRepository
	loans         *LoanRepository
	notifications *NotificationRepository
	payments      *PaymentRepository
}

func NewStore(client *mongo.Client, db *mongo.Database, transactions bool) *Store {
	return &Store{
		client:        client,
		db:            db,
		transactions:  transactions,
		users:         &UserRepository{coll: db.Collection(usersCollection)},
		books:         &BookRepository{coll: db.Collection(booksCollection)},
		genres:        &GenreRepository{coll: db.Collection(genresCollection)},
		requests:      &BorrowRequestRepository{coll: db.Collection(requestsCollection)},
		loans:         &LoanRepository{coll: db.Collection(loansCollection)},
		notifications: &NotificationRepository{coll: db.Collection(notificationsCollection)},
		payments:      &PaymentRepository{coll: db.Collection(paymentsCollection)},
	}
}

func (s *Store) Users() ports.UserRepository                 { return s.users }
func (s *Store) Books() ports.BookRepository                 { return s.books }
func (s *Store) Genres() ports.GenreRepository               { return s.genres }
func (s *Store) Requests() ports.BorrowRequestRepository     { return s.requests }
func (s *Store) Loans() ports.LoanRepository                 { return s.loans }
func (s *Store) Notifications() ports.NotificationRepository { return s.notifications }
func (s *Store) Payments() ports.PaymentRepository           { return s.payments }

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// WithinTx runs fn inside a session transaction. Repositories pick the
// session up from the context they are handed.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if !s.transactions {
		return fn(ctx)
	}

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}

	specs := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		booksCollection: {
			{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		genresCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetCollation(caseInsensitive)},
		},
		requestsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		loansCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "returned", Value: 1}}},
		},
		notificationsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "date", Value: -1}}},
			{
				Keys: bson.D{{Key: "dedup_key", Value: 1}},
				Options: options.Index().SetUnique(true).
					SetPartialFilterExpression(bson.M{"dedup_key": bson.M{"$exists": true}}),
			},
		},
		paymentsCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}}},
		},
	}

	for name, models := range specs {
		if _, err := s.db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("create indexes on %s: %w", name, err)
		}
	}
	return nil
}

var _ ports.Store = (*Store)(nil)
