package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

type BookRepository struct {
	s *Store
}

func NewBookRepository(s *Store) *BookRepository {
	return &BookRepository{s: s}
}

func (r *BookRepository) Create(_ context.Context, b *domain.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b.ID = r.s.next("books")
	r.s.books[b.ID] = cloneBook(b)
	return nil
}

func (r *BookRepository) FindByID(_ context.Context, id int64) (*domain.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.books[id]
	if !ok {
		return nil, domain.ErrBookNotFound
	}
	return cloneBook(b), nil
}

func (r *BookRepository) Update(_ context.Context, b *domain.Book) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[b.ID]; !ok {
		return domain.ErrBookNotFound
	}
	r.s.books[b.ID] = cloneBook(b)
	return nil
}

func (r *BookRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.books[id]; !ok {
		return domain.ErrBookNotFound
	}
	delete(r.s.books, id)
	return nil
}

func (r *BookRepository) List(_ context.Context, f ports.BookFilter) ([]*domain.Book, int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(f.Search))
	matched := make([]*domain.Book, 0)
	for _, b := range r.s.books {
		switch {
		case f.Status != "" && b.Status != f.Status:
			continue
		case f.OwnerID != nil && (b.OwnerID == nil || *b.OwnerID != *f.OwnerID):
			continue
		case f.Condition != "" && b.Condition != f.Condition:
			continue
		case f.ExchangeType != "" && b.ExchangeType != f.ExchangeType:
			continue
		case f.Language != "" && !strings.EqualFold(b.Language, f.Language):
			continue
		case search != "" &&
			!strings.Contains(strings.ToLower(b.Title), search) &&
			!strings.Contains(strings.ToLower(b.AuthorName), search):
			continue
		}
		matched = append(matched, b)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID > matched[j].ID
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		start := len(matched)
		// Checked before multiplying so huge pages cannot overflow.
		if page-1 <= len(matched)/f.Limit {
			start = min((page-1)*f.Limit, len(matched))
		}
		end := start + min(f.Limit, len(matched)-start)
		matched = matched[start:end]
	}

	out := make([]*domain.Book, 0, len(matched))
	for _, b := range matched {
		out = append(out, cloneBook(b))
	}
	return out, total, nil
}
