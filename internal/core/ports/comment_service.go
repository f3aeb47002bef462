package ports

import (
	"context"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// CommentView is a comment together with its author's display name.
type CommentView struct {
	Comment        domain.Comment
	AuthorUsername string
}

// CommentService defines use-case operations on comments.
type CommentService interface {
	ListForBook(ctx context.Context, p *domain.Principal, bookID int64) ([]CommentView, error)
	ListMine(ctx context.Context, p *domain.Principal) ([]CommentView, error)
	ListAll(ctx context.Context, p *domain.Principal) ([]CommentView, error)
	Create(ctx context.Context, p *domain.Principal, bookID int64, content string) (*CommentView, error)
	Update(ctx context.Context, p *domain.Principal, id int64, content string) (*CommentView, error)
	Delete(ctx context.Context, p *domain.Principal, id int64) error
}
