package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/campusshelf/library-system/internal/api/metrics"
	"github.com/campusshelf/library-system/internal/core/domain"
	"github.com/campusshelf/library-system/internal/core/policy"
	"github.com/campusshelf/library-system/internal/core/ports"
)

// CatalogService manages books, genres and inventory counts.
type CatalogService struct {
	base
}

func NewCatalogService(store ports.Store, exec ports.Executor, logger zerolog.Logger) *CatalogService {
	return &CatalogService{base: newBase(store, exec, logger)}
}

func (s *CatalogService) ListBooks(ctx context.Context, actor ports.Actor, filter ports.BookFilter) ([]*domain.Book, error) {
	if _, err := s.authorize(ctx, actor, policy.ViewCatalog); err != nil {
		return nil, err
	}
	return s.store.Books().List(ctx, filter)
}

// AddBook creates a catalog entry with every copy on the shelf and tells
// every active user about the new arrival.
func (s *CatalogService) AddBook(ctx context.Context, actor ports.Actor, in ports.AddBookInput) (*domain.Book, error) {
	if _, err := s.authorize(ctx, actor, policy.ManageBooks); err != nil {
		return nil, err
	}
	if err := required(
		[2]string{"title", in.Title},
		[2]string{"author", in.Author},
		[2]string{"genre", in.Genre},
		[2]string{"isbn", in.ISBN},
	); err != nil {
		return nil, err
	}
	if in.Quantity < 0 {
		return nil, domain.Invalid("quantity must not be negative")
	}

	book := &domain.Book{
		Title:             strings.TrimSpace(in.Title),
		Author:            strings.TrimSpace(in.Author),
		Genre:             strings.TrimSpace(in.Genre),
		ISBN:              strings.TrimSpace(in.ISBN),
		TotalQuantity:     in.Quantity,
		AvailableQuantity: in.Quantity,
		AddedAt:           s.now().UTC(),
	}

	err := s.mutate(ctx, func(ctx context.Context) error {
		if err := s.store.Books().Create(ctx, book); err != nil {
			return err
		}
		users, err := s.store.Users().List(ctx, nil)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		for _, u := range users {
			if !u.IsActive {
				continue
			}
			if _, err := s.notify(ctx, &domain.Notification{
				UserID:  u.ID,
				Type:    domain.NotificationNewArrival,
				Title:   "New arrival",
				Message: fmt.Sprintf("%q by %s is now in the catalog.", book.Title, book.Author),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.BooksAddedTotal.Inc()
	s.logger.Info().Str("book_id", book.ID).Str("isbn", book.ISBN).Int("quantity", book.TotalQuantity).Msg("book added")
	return book, nil
}

// ResizeBookQuantity changes the number of owned copies. Copies out on loan
// stay accounted for; availability never drops below zero.
func (s *CatalogService) ResizeBookQuantity(ctx context.Context, actor ports.Actor, bookID string, newTotal int) (*domain.Book, error) {
	if _, err := s.authorize(ctx, actor, policy.ManageBooks); err != nil {
		return nil, err
	}

	var book *domain.Book
	err := s.mutate(ctx, func(ctx context.Context) error {
		b, err := s.store.Books().FindByID(ctx, bookID)
		if err != nil {
			return err
		}
		if err := b.Resize(newTotal); err != nil {
			return err
		}
		if err := s.store.Books().Update(ctx, b); err != nil {
			return err
		}
		book = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("book_id", book.ID).Int("total", book.TotalQuantity).Int("available", book.AvailableQuantity).Msg("book resized")
	return book, nil
}

func (s *CatalogService) ListGenres(ctx context.Context, actor ports.Actor) ([]*domain.Genre, error) {
	if _, err := s.authorize(ctx, actor, policy.ViewCatalog); err != nil {
		return nil, err
	}
	return s.store.Genres().List(ctx)
}

func (s *CatalogService) AddGenre(ctx context.Context, actor ports.Actor, in ports.GenreInput) (*domain.Genre, error) {
	if _, err := s.authorize(ctx, actor, policy.ManageGenres); err != nil {
		return nil, err
	}
	if err := required([2]string{"name", in.Name}); err != nil {
		return nil, err
	}

	g := &domain.Genre{Name: strings.TrimSpace(in.Name), Description: strings.TrimSpace(in.Description)}
	if err := s.mutate(ctx, func(ctx context.Context) error {
		return s.store.Genres().Create(ctx, g)
	}); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *CatalogService) UpdateGenre(ctx context.Context, actor ports.Actor, genreID string, in ports.GenreInput) (*domain.Genre, error) {
	if _, err := s.authorize(ctx, actor, policy.ManageGenres); err != nil {
		return nil, err
	}
	if err := required([2]string{"name", in.Name}); err != nil {
		return nil, err
	}

	var genre *domain.Genre
	err := s.mutate(ctx, func(ctx context.Context) error {
		g, err := s.store.Genres().FindByID(ctx, genreID)
		if err != nil {
			return err
		}
		g.Name = strings.TrimSpace(in.Name)
		g.Description = strings.TrimSpace(in.Description)
		if err := s.store.Genres().Update(ctx, g); err != nil {
			return err
		}
		genre = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return genre, nil
}

// DeleteGenre removes a genre. Books tagged with its name keep the tag.
func (s *CatalogService) DeleteGenre(ctx context.Context, actor ports.Actor, genreID string) error {
	if _, err := s.authorize(ctx, actor, policy.ManageGenres); err != nil {
		return err
	}
	return s.mutate(ctx, func(ctx context.Context) error {
		return s.store.Genres().Delete(ctx, genreID)
	})
}

var _ ports.CatalogService = (*CatalogService)(nil)
