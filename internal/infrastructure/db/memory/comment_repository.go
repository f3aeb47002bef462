package memory

import (
	"context"
	"sort"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

type CommentRepository struct {
	s *Store
}

func NewCommentRepository(s *Store) *CommentRepository {
	return &CommentRepository{s: s}
}

func (r *CommentRepository) Create(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c.ID = r.s.next("comments")
	r.s.comments[c.ID] = cloneComment(c)
	return nil
}

func (r *CommentRepository) FindByID(_ context.Context, id int64) (*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.comments[id]
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	return cloneComment(c), nil
}

func (r *CommentRepository) Update(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[c.ID]; !ok {
		return domain.ErrCommentNotFound
	}
	r.s.comments[c.ID] = cloneComment(c)
	return nil
}

func (r *CommentRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.comments[id]; !ok {
		return domain.ErrCommentNotFound
	}
	delete(r.s.comments, id)
	return nil
}

func (r *CommentRepository) List(_ context.Context, f ports.CommentFilter) ([]*domain.Comment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*domain.Comment, 0)
	for _, c := range r.s.comments {
		if f.BookID != nil && c.BookID != *f.BookID {
			continue
		}
		if f.AuthorID != nil && (c.AuthorID == nil || *c.AuthorID != *f.AuthorID) {
			continue
		}
		out = append(out, cloneComment(c))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if f.NewestFirst {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out, nil
}

func (r *CommentRepository) DeleteByBook(_ context.Context, bookID int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for id, c := range r.s.comments {
		if c.BookID == bookID {
			delete(r.s.comments, id)
			n++
		}
	}
	return n, nil
}
