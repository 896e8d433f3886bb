package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/ports"
)

func TestBookFilter(t *testing.T) {
	if got := bookFilter(ports.BookFilter{}); len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}

	got := bookFilter(ports.BookFilter{Query: "c++ (2nd ed.)", Genre: "Sci-Fi"})
	title, ok := got["title"].(primitive.Regex)
	if !ok {
		t.Fatalf("expected regex on title, got %T", got["title"])
	}
	if title.Pattern != `c\+\+ \(2nd ed\.\)` || title.Options != "i" {
		t.Fatalf("unexpected title regex: %+v", title)
	}
	genre := got["genre"].(primitive.Regex)
	if genre.Pattern != "^Sci-Fi$" {
		t.Fatalf("genre must be anchored, got %q", genre.Pattern)
	}
	if _, ok := got["author"]; ok {
		t.Fatalf("author should not be filtered")
	}
}

func TestRoleFilter(t *testing.T) {
	if got := roleFilter(nil); len(got) != 0 {
		t.Fatalf("nil roles should match everything, got %v", got)
	}

	got := roleFilter([]domain.Role{domain.RoleGuest, domain.RoleStudent})
	in := got["role"].(bson.M)["$in"].(bson.A)
	if len(in) != 2 || in[0] != "guest" || in[1] != "student" {
		t.Fatalf("unexpected $in: %v", in)
	}

	if got := roleFilter([]domain.Role{}); len(got["role"].(bson.M)["$in"].(bson.A)) != 0 {
		t.Fatalf("empty roles should match nothing")
	}
}

func TestLoanAndRequestFilters(t *testing.T) {
	open := false
	got := loanFilter(ports.LoanFilter{UserID: "u1", Returned: &open})
	if got["user_id"] != "u1" || got["returned"] != false {
		t.Fatalf("unexpected loan filter: %v", got)
	}
	if len(loanFilter(ports.LoanFilter{})) != 0 {
		t.Fatalf("empty loan filter expected")
	}

	req := requestFilter(ports.RequestFilter{Status: domain.RequestPending})
	if req["status"] != "pending" || len(req) != 1 {
		t.Fatalf("unexpected request filter: %v", req)
	}
}
