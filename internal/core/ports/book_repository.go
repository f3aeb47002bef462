package ports

import (
	"context"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// BookFilter carries the query parameters for listing books.
type BookFilter struct {
	Status       domain.ListingStatus // empty = any status
	OwnerID      *int64               // nil = any owner
	Condition    domain.BookCondition // optional
	ExchangeType domain.ExchangeType  // optional
	Language     string               // optional, case-insensitive exact match
	Search       string               // optional, case-insensitive substring of title or author
	Page         int                  // 1-based
	Limit        int                  // 0 = no limit
}

// BookRepository defines persistence operations for book listings.
type BookRepository interface {
	// Create assigns the book ID and persists it.
	Create(ctx context.Context, book *domain.Book) error
	FindByID(ctx context.Context, id int64) (*domain.Book, error)
	Update(ctx context.Context, book *domain.Book) error
	Delete(ctx context.Context, id int64) error
	// List returns the matching page, newest first, and the total count.
	List(ctx context.Context, filter BookFilter) ([]*domain.Book, int64, error)
}
