package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/policy"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

const maxCommentLength = 1000

type CommentService struct {
	comments ports.CommentRepository
	books    ports.BookRepository
	accounts ports.AccountRepository
	log      zerolog.Logger
}

func NewCommentService(
	comments ports.CommentRepository,
	books ports.BookRepository,
	accounts ports.AccountRepository,
	log zerolog.Logger,
) *CommentService {
	return &CommentService{comments: comments, books: books, accounts: accounts, log: log}
}

// ListForBook returns the comments of a listing, oldest first. The listing's
// visibility applies to its comments.
func (s *CommentService) ListForBook(ctx context.Context, p *domain.Principal, bookID int64) ([]ports.CommentView, error) {
	if _, err := s.visibleBook(ctx, p, bookID); err != nil {
		return nil, err
	}
	comments, err := s.comments.List(ctx, ports.CommentFilter{BookID: &bookID})
	if err != nil {
		return nil, fmt.Errorf("list book comments: %w", err)
	}
	return s.views(ctx, comments)
}

func (s *CommentService) ListMine(ctx context.Context, p *domain.Principal) ([]ports.CommentView, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	comments, err := s.comments.List(ctx, ports.CommentFilter{AuthorID: policy.OwnedBy(p.ID), NewestFirst: true})
	if err != nil {
		return nil, fmt.Errorf("list own comments: %w", err)
	}
	return s.views(ctx, comments)
}

func (s *CommentService) ListAll(ctx context.Context, p *domain.Principal) ([]ports.CommentView, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	comments, err := s.comments.List(ctx, ports.CommentFilter{NewestFirst: true})
	if err != nil {
		return nil, fmt.Errorf("list all comments: %w", err)
	}
	return s.views(ctx, comments)
}

// Create adds a comment to an AVAILABLE listing.
func (s *CommentService) Create(ctx context.Context, p *domain.Principal, bookID int64, content string) (*ports.CommentView, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	content, err := cleanComment(content)
	if err != nil {
		return nil, err
	}

	book, err := s.visibleBook(ctx, p, bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsPublic() {
		return nil, domain.ErrBookUnavailable
	}

	now := time.Now().UTC()
	comment := &domain.Comment{
		BookID:    book.ID,
		AuthorID:  policy.OwnedBy(p.ID),
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	s.log.Info().Int64("comment_id", comment.ID).Int64("book_id", book.ID).Int64("author_id", p.ID).Msg("comment created")
	return s.view(ctx, comment)
}

func (s *CommentService) Update(ctx context.Context, p *domain.Principal, id int64, content string) (*ports.CommentView, error) {
	comment, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	content, err = cleanComment(content)
	if err != nil {
		return nil, err
	}

	comment.Content = content
	comment.UpdatedAt = time.Now().UTC()
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, err
	}
	return s.view(ctx, comment)
}

func (s *CommentService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	comment, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return err
	}
	if err := s.comments.Delete(ctx, comment.ID); err != nil {
		return err
	}
	s.log.Info().Int64("comment_id", comment.ID).Int64("principal_id", p.ID).Msg("comment deleted")
	return nil
}

func (s *CommentService) visibleBook(ctx context.Context, p *domain.Principal, bookID int64) (*domain.Book, error) {
	book, err := s.books.FindByID(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireVisible(p, bookResource(book)); err != nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (s *CommentService) loadForWrite(ctx context.Context, p *domain.Principal, id int64) (*domain.Comment, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(p, comment.AuthorID); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) view(ctx context.Context, c *domain.Comment) (*ports.CommentView, error) {
	views, err := s.views(ctx, []*domain.Comment{c})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CommentService) views(ctx context.Context, comments []*domain.Comment) ([]ports.CommentView, error) {
	ids := make([]int64, 0, len(comments))
	for _, c := range comments {
		if c.AuthorID != nil {
			ids = append(ids, *c.AuthorID)
		}
	}

	names := map[int64]string{}
	if len(ids) > 0 {
		var err error
		names, err = s.accounts.Usernames(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve authors: %w", err)
		}
	}

	out := make([]ports.CommentView, 0, len(comments))
	for _, c := range comments {
		v := ports.CommentView{Comment: *c}
		if c.AuthorID != nil {
			v.AuthorUsername = names[*c.AuthorID]
		}
		out = append(out, v)
	}
	return out, nil
}

func cleanComment(content string) (string, error) {
	content = strings.TrimSpace(content)
	var c checks
	c.notBlank("content", content)
	c.maxLen("content", content, maxCommentLength)
	return content, c.err()
}
