// Package memory provides map-backed repositories. They back local runs with
// DB_DRIVER=memory and the handler and service tests.
package memory

import (
	"sync"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// Store holds all collections behind a single lock.
type Store struct {
	mu       sync.RWMutex
	seq      map[string]int64
	accounts map[int64]*domain.Account
	books    map[int64]*domain.Book
	comments map[int64]*domain.Comment
}

func NewStore() *Store {
	return &Store{
		seq:      make(map[string]int64),
		accounts: make(map[int64]*domain.Account),
		books:    make(map[int64]*domain.Book),
		comments: make(map[int64]*domain.Comment),
	}
}

// next must be called with mu held for writing.
func (s *Store) next(name string) int64 {
	s.seq[name]++
	return s.seq[name]
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func cloneBook(b *domain.Book) *domain.Book {
	if b == nil {
		return nil
	}
	c := *b
	c.OwnerID = cloneID(b.OwnerID)
	return &c
}

func cloneComment(cm *domain.Comment) *domain.Comment {
	if cm == nil {
		return nil
	}
	c := *cm
	c.AuthorID = cloneID(cm.AuthorID)
	return &c
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
