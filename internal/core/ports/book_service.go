package ports

import (
	"context"
	"io"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// BookInput carries the writable fields of a listing. Status is only honoured
// on update; new listings always start AVAILABLE.
type BookInput struct {
	Title        string
	AuthorName   string
	Description  string
	Language     string
	Condition    domain.BookCondition
	ExchangeType domain.ExchangeType
	Status       domain.ListingStatus
}

// ListBooksInput carries the public catalog query.
type ListBooksInput struct {
	Condition    domain.BookCondition
	ExchangeType domain.ExchangeType
	Language     string
	Search       string
	Page         int
	Limit        int
}

// ImageUpload is a cover image received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// BookView is a listing together with its owner's display name.
type BookView struct {
	Book          domain.Book
	OwnerUsername string
}

// BookPage is one page of the public catalog.
type BookPage struct {
	Items      []BookView
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// BookService defines use-case operations on book listings. A nil principal
// means the caller is anonymous.
type BookService interface {
	ListPublic(ctx context.Context, input ListBooksInput) (*BookPage, error)
	Get(ctx context.Context, p *domain.Principal, id int64) (*BookView, error)
	ListMine(ctx context.Context, p *domain.Principal) ([]BookView, error)
	ListAll(ctx context.Context, p *domain.Principal) ([]BookView, error)
	Create(ctx context.Context, p *domain.Principal, input BookInput) (*BookView, error)
	Update(ctx context.Context, p *domain.Principal, id int64, input BookInput) (*BookView, error)
	Delete(ctx context.Context, p *domain.Principal, id int64) error
	AttachImage(ctx context.Context, p *domain.Principal, id int64, upload ImageUpload) (*BookView, error)
	RemoveImage(ctx context.Context, p *domain.Principal, id int64) (*BookView, error)
}
