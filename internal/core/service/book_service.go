package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/policy"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	imageKeyPrefix  = "books/"
)

type BookService struct {
	books    ports.BookRepository
	comments ports.CommentRepository
	accounts ports.AccountRepository
	storage  ports.ImageStorage
	cleaner  ports.ImageCleaner
	cache    ports.CatalogCache
	log      zerolog.Logger
}

// NewBookService wires the book use cases. cache may be nil, in which case
// the public catalog is always read from the repository.
func NewBookService(
	books ports.BookRepository,
	comments ports.CommentRepository,
	accounts ports.AccountRepository,
	storage ports.ImageStorage,
	cleaner ports.ImageCleaner,
	cache ports.CatalogCache,
	log zerolog.Logger,
) *BookService {
	return &BookService{
		books:    books,
		comments: comments,
		accounts: accounts,
		storage:  storage,
		cleaner:  cleaner,
		cache:    cache,
		log:      log,
	}
}

// ListPublic returns a page of AVAILABLE listings. Pages are served from the
// catalog cache when possible; cache failures only cost a repository read.
func (s *BookService) ListPublic(ctx context.Context, in ports.ListBooksInput) (*ports.BookPage, error) {
	page, limit := normalizePage(in.Page, in.Limit)
	in.Page, in.Limit = page, limit
	in.Language = strings.TrimSpace(in.Language)
	in.Search = strings.TrimSpace(in.Search)

	key := catalogKey(in)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("catalog cache read failed")
		} else if ok {
			return cached, nil
		}
	}

	books, total, err := s.books.List(ctx, ports.BookFilter{
		Status:       domain.StatusAvailable,
		Condition:    in.Condition,
		ExchangeType: in.ExchangeType,
		Language:     in.Language,
		Search:       in.Search,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list public books: %w", err)
	}

	items, err := s.views(ctx, books)
	if err != nil {
		return nil, err
	}

	result := &ports.BookPage{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, result); err != nil {
			s.log.Warn().Err(err).Str("key", key).Msg("catalog cache write failed")
		}
	}
	return result, nil
}

// Get returns a single listing. Listings that are not AVAILABLE are reported
// as not found unless the caller owns them or is an administrator.
func (s *BookService) Get(ctx context.Context, p *domain.Principal, id int64) (*ports.BookView, error) {
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireVisible(p, bookResource(book)); err != nil {
		return nil, domain.ErrBookNotFound
	}
	return s.view(ctx, book)
}

func (s *BookService) ListMine(ctx context.Context, p *domain.Principal) ([]ports.BookView, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	books, _, err := s.books.List(ctx, ports.BookFilter{OwnerID: policy.OwnedBy(p.ID)})
	if err != nil {
		return nil, fmt.Errorf("list own books: %w", err)
	}
	return s.views(ctx, books)
}

func (s *BookService) ListAll(ctx context.Context, p *domain.Principal) ([]ports.BookView, error) {
	if err := policy.RequireAdmin(p); err != nil {
		return nil, err
	}
	books, _, err := s.books.List(ctx, ports.BookFilter{})
	if err != nil {
		return nil, fmt.Errorf("list all books: %w", err)
	}
	return s.views(ctx, books)
}

// Create lists a new book owned by the caller. New listings are always AVAILABLE.
func (s *BookService) Create(ctx context.Context, p *domain.Principal, in ports.BookInput) (*ports.BookView, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	in = trimBookInput(in)
	if err := validateBook(in, false); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &domain.Book{
		OwnerID:      policy.OwnedBy(p.ID),
		Title:        in.Title,
		AuthorName:   in.AuthorName,
		Description:  in.Description,
		Language:     in.Language,
		Condition:    in.Condition,
		ExchangeType: in.ExchangeType,
		Status:       domain.StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.books.Create(ctx, book); err != nil {
		s.log.Error().Err(err).Int64("owner_id", p.ID).Msg("failed to create book")
		return nil, err
	}

	s.log.Info().Int64("book_id", book.ID).Int64("owner_id", p.ID).Msg("book listed")
	s.invalidate(ctx)
	return s.view(ctx, book)
}

func (s *BookService) Update(ctx context.Context, p *domain.Principal, id int64, in ports.BookInput) (*ports.BookView, error) {
	book, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}
	in = trimBookInput(in)
	if err := validateBook(in, true); err != nil {
		return nil, err
	}

	book.Title = in.Title
	book.AuthorName = in.AuthorName
	book.Description = in.Description
	book.Language = in.Language
	book.Condition = in.Condition
	book.ExchangeType = in.ExchangeType
	if in.Status != "" {
		book.Status = in.Status
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.view(ctx, book)
}

// Delete removes a listing, then its comments. The cover image is removed in
// the background. A failed comment cleanup is logged and leaves orphaned
// comments behind; the listing itself is already gone.
func (s *BookService) Delete(ctx context.Context, p *domain.Principal, id int64) error {
	book, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return err
	}

	if err := s.books.Delete(ctx, book.ID); err != nil {
		return err
	}
	s.discard(book.ImageObjectKey)
	s.invalidate(ctx)

	removed, err := s.comments.DeleteByBook(ctx, book.ID)
	if err != nil {
		s.log.Error().Err(err).Int64("book_id", book.ID).Msg("delete book comments failed")
	}

	s.log.Info().Int64("book_id", book.ID).Int64("comments_removed", removed).Msg("book deleted")
	return nil
}

// AttachImage uploads a cover image and replaces any previous one.
func (s *BookService) AttachImage(ctx context.Context, p *domain.Principal, id int64, up ports.ImageUpload) (*ports.BookView, error) {
	book, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}

	if up.Body == nil || up.Size <= 0 {
		return nil, domain.ErrEmptyImage
	}
	ext, ok := domain.ImageExtension(up.ContentType)
	if !ok {
		return nil, domain.ErrInvalidImageType
	}

	key := imageKeyPrefix + uuid.NewString() + "." + ext
	url, err := s.storage.Upload(ctx, key, up.ContentType, up.Size, up.Body)
	if err != nil {
		return nil, fmt.Errorf("upload book image: %w", err)
	}

	previous := book.ImageObjectKey
	book.ImageURL = url
	book.ImageObjectKey = key
	book.ImageContentType = up.ContentType
	book.UpdatedAt = time.Now().UTC()

	if err := s.books.Update(ctx, book); err != nil {
		s.discard(key)
		return nil, err
	}
	s.discard(previous)

	s.log.Info().Int64("book_id", book.ID).Str("object_key", key).Msg("book image updated")
	s.invalidate(ctx)
	return s.view(ctx, book)
}

func (s *BookService) RemoveImage(ctx context.Context, p *domain.Principal, id int64) (*ports.BookView, error) {
	book, err := s.loadForWrite(ctx, p, id)
	if err != nil {
		return nil, err
	}

	previous := book.ClearImage()
	book.UpdatedAt = time.Now().UTC()
	if err := s.books.Update(ctx, book); err != nil {
		return nil, err
	}
	s.discard(previous)

	s.invalidate(ctx)
	return s.view(ctx, book)
}

// loadForWrite fetches a listing and checks that the caller may modify it.
func (s *BookService) loadForWrite(ctx context.Context, p *domain.Principal, id int64) (*domain.Book, error) {
	if err := policy.RequireAuthenticated(p); err != nil {
		return nil, err
	}
	book, err := s.books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireOwnerOrAdmin(p, book.OwnerID); err != nil {
		s.log.Debug().Int64("book_id", id).Int64("principal_id", p.ID).Msg("book write denied")
		return nil, err
	}
	return book, nil
}

func (s *BookService) discard(key string) {
	if key != "" && s.cleaner != nil {
		s.cleaner.Enqueue(key)
	}
}

func (s *BookService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}

func (s *BookService) view(ctx context.Context, book *domain.Book) (*ports.BookView, error) {
	views, err := s.views(ctx, []*domain.Book{book})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *BookService) views(ctx context.Context, books []*domain.Book) ([]ports.BookView, error) {
	ids := make([]int64, 0, len(books))
	for _, b := range books {
		if b.OwnerID != nil {
			ids = append(ids, *b.OwnerID)
		}
	}

	names := map[int64]string{}
	if len(ids) > 0 {
		var err error
		names, err = s.accounts.Usernames(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("resolve owners: %w", err)
		}
	}

	out := make([]ports.BookView, 0, len(books))
	for _, b := range books {
		v := ports.BookView{Book: *b}
		if b.OwnerID != nil {
			v.OwnerUsername = names[*b.OwnerID]
		}
		out = append(out, v)
	}
	return out, nil
}

func bookResource(b *domain.Book) policy.Resource {
	return policy.Resource{OwnerID: b.OwnerID, Public: b.IsPublic()}
}

func trimBookInput(in ports.BookInput) ports.BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.AuthorName = strings.TrimSpace(in.AuthorName)
	in.Description = strings.TrimSpace(in.Description)
	in.Language = strings.TrimSpace(in.Language)
	return in
}

func validateBook(in ports.BookInput, update bool) error {
	var c checks
	c.notBlank("title", in.Title)
	c.maxLen("title", in.Title, 200)
	c.notBlank("authorName", in.AuthorName)
	c.maxLen("authorName", in.AuthorName, 150)
	c.maxLen("description", in.Description, 2000)
	c.notBlank("language", in.Language)
	c.maxLen("language", in.Language, 50)
	c.require(in.Condition.Valid(), "condition must be one of: NEW, GOOD, USED")
	c.require(in.ExchangeType.Valid(), "exchangeType must be one of: EXCHANGE_ONLY, GIVEAWAY, EXCHANGE_OR_GIVEAWAY")
	if update && in.Status != "" {
		c.require(in.Status.Valid(), "status must be one of: AVAILABLE, RESERVED, EXCHANGED")
	}
	return c.err()
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func catalogKey(in ports.ListBooksInput) string {
	return fmt.Sprintf("c=%s|e=%s|l=%s|q=%s|p=%d|n=%d",
		in.Condition, in.ExchangeType,
		strings.ToLower(in.Language), strings.ToLower(in.Search),
		in.Page, in.Limit)
}

