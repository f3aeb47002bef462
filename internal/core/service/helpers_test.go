package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
	"github.com/bookxchange/marketplace/internal/infrastructure/db/memory"
)

type testEnv struct {
	accounts *memory.AccountRepository
	books    *memory.BookRepository
	comments *memory.CommentRepository
}

func newTestEnv() *testEnv {
	store := memory.NewStore()
	return &testEnv{
		accounts: memory.NewAccountRepository(store),
		books:    memory.NewBookRepository(store),
		comments: memory.NewCommentRepository(store),
	}
}

func (e *testEnv) principal(t *testing.T, username string, role domain.Role) *domain.Principal {
	t.Helper()
	acc, err := e.accounts.Create(context.Background(), &domain.Account{
		Email:       username + "@example.com",
		Username:    username,
		CountryCode: "AT",
		Role:        role,
		Enabled:     true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create account %s: %v", username, err)
	}
	p := domain.NewPrincipal(acc)
	return &p
}

func (e *testEnv) book(t *testing.T, owner *int64, status domain.ListingStatus) *domain.Book {
	t.Helper()
	b := &domain.Book{
		OwnerID:      owner,
		Title:        "Dune",
		AuthorName:   "Frank Herbert",
		Language:     "English",
		Condition:    domain.ConditionGood,
		ExchangeType: domain.ExchangeOnly,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := e.books.Create(context.Background(), b); err != nil {
		t.Fatalf("create book: %v", err)
	}
	return b
}

type stubStorage struct {
	mu        sync.Mutex
	objects   map[string][]byte
	uploadErr error
}

func newStubStorage() *stubStorage {
	return &stubStorage{objects: make(map[string][]byte)}
}

func (s *stubStorage) Upload(_ context.Context, key, _ string, _ int64, body io.Reader) (string, error) {
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = data
	return "http://storage.local/books-bucket/" + key, nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

type recordingCleaner struct {
	keys []string
}

func (c *recordingCleaner) Enqueue(key string) { c.keys = append(c.keys, key) }

type mapCache struct {
	pages         map[string]*ports.BookPage
	gets          int
	hits          int
	invalidations int
}

func newMapCache() *mapCache { return &mapCache{pages: make(map[string]*ports.BookPage)} }

func (c *mapCache) Get(_ context.Context, key string) (*ports.BookPage, bool, error) {
	c.gets++
	p, ok := c.pages[key]
	if ok {
		c.hits++
	}
	return p, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, page *ports.BookPage) error {
	c.pages[key] = page
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.invalidations++
	c.pages = make(map[string]*ports.BookPage)
	return nil
}

func pngUpload(size int) ports.ImageUpload {
	return ports.ImageUpload{
		Filename:    "cover.png",
		ContentType: "image/png",
		Size:        int64(size),
		Body:        bytes.NewReader(bytes.Repeat([]byte{0x89}, size)),
	}
}

func nopLogger() zerolog.Logger { return zerolog.Nop() }

func ownerOf(p *domain.Principal) *int64 {
	id := p.ID
	return &id
}

func mustf(t *testing.T, err error, format string, args ...any) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", fmt.Sprintf(format, args...), err)
	}
}
