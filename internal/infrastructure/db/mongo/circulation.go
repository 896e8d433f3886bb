package mongo

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

type BorrowRequestRepository struct {
	coll *mongo.Collection
}

func (r *BorrowRequestRepository) Create(ctx context.Context, req *domain.BorrowRequest) error {
	req.ID = newID(req.ID)
	return insertOne(ctx, r.coll, req, nil)
}

func (r *BorrowRequestRepository) FindByID(ctx context.Context, id string) (*domain.BorrowRequest, error) {
	return findOne[domain.BorrowRequest](ctx, r.coll, bson.M{"_id": id}, domain.ErrRequestNotFound)
}

func (r *BorrowRequestRepository) List(ctx context.Context, f ports.RequestFilter) ([]*domain.BorrowRequest, error) {
	return findMany[domain.BorrowRequest](ctx, r.coll, requestFilter(f), bson.D{{Key: "request_date", Value: 1}})
}

func (r *BorrowRequestRepository) Update(ctx context.Context, req *domain.BorrowRequest) error {
	return replaceOne(ctx, r.coll, req.ID, req, domain.ErrRequestNotFound, nil)
}

func requestFilter(f ports.RequestFilter) bson.M {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.BookID != "" {
		filter["book_id"] = f.BookID
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	return filter
}

type LoanRepository struct {
	coll *mongo.Collection
}

func (r *LoanRepository) Create(ctx context.Context, l *domain.Loan) error {
	l.ID = newID(l.ID)
	return insertOne(ctx, r.coll, l, nil)
}

func (r *LoanRepository) FindByID(ctx context.Context, id string) (*domain.Loan, error) {
	return findOne[domain.Loan](ctx, r.coll, bson.M{"_id": id}, domain.ErrLoanNotFound)
}

func (r *LoanRepository) List(ctx context.Context, f ports.LoanFilter) ([]*domain.Loan, error) {
	return findMany[domain.Loan](ctx, r.coll, loanFilter(f), bson.D{{Key: "issue_date", Value: 1}})
}

func (r *LoanRepository) Update(ctx context.Context, l *domain.Loan) error {
	return replaceOne(ctx, r.coll, l.ID, l, domain.ErrLoanNotFound, nil)
}

func loanFilter(f ports.LoanFilter) bson.M {
	filter := bson.M{}
	if f.UserID != "" {
		filter["user_id"] = f.UserID
	}
	if f.Returned != nil {
		filter["returned"] = *f.Returned
	}
	return filter
}
