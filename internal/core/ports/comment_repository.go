package ports

import (
	"context"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// CommentFilter narrows a comment listing. With both IDs nil every comment
// is returned.
type CommentFilter struct {
	BookID      *int64
	AuthorID    *int64
	NewestFirst bool
}

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	// Create assigns the comment ID and persists it.
	Create(ctx context.Context, comment *domain.Comment) error
	FindByID(ctx context.Context, id int64) (*domain.Comment, error)
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter CommentFilter) ([]*domain.Comment, error)
	DeleteByBook(ctx context.Context, bookID int64) (int64, error)
}
