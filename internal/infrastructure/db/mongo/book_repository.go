package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

const collectionBooks = "books"

type BookRepository struct {
	col *mongo.Collection
	seq *sequence
}

func NewBookRepository(db *mongo.Database) *BookRepository {
	return &BookRepository{
		col: db.Collection(collectionBooks),
		seq: newSequence(db, collectionBooks),
	}
}

type mongoBook struct {
	ID               int64  `bson:"_id"`
	OwnerID          *int64 `bson:"owner_id"`
	Title            string `bson:"title"`
	AuthorName       string `bson:"author_name"`
	Description      string `bson:"description,omitempty"`
	Language         string `bson:"language"`
	Condition        string `bson:"condition"`
	ExchangeType     string `bson:"exchange_type"`
	Status           string `bson:"status"`
	ImageURL         string `bson:"image_url,omitempty"`
	ImageObjectKey   string `bson:"image_object_key,omitempty"`
	ImageContentType string `bson:"image_content_type,omitempty"`
	CreatedAt        int64  `bson:"created_at"`
	UpdatedAt        int64  `bson:"updated_at"`
}

func toMongoBook(b *domain.Book) mongoBook {
	return mongoBook{
		ID:               b.ID,
		OwnerID:          b.OwnerID,
		Title:            b.Title,
		AuthorName:       b.AuthorName,
		Description:      b.Description,
		Language:         b.Language,
		Condition:        string(b.Condition),
		ExchangeType:     string(b.ExchangeType),
		Status:           string(b.Status),
		ImageURL:         b.ImageURL,
		ImageObjectKey:   b.ImageObjectKey,
		ImageContentType: b.ImageContentType,
		CreatedAt:        b.CreatedAt.Unix(),
		UpdatedAt:        b.UpdatedAt.Unix(),
	}
}

func (m mongoBook) toDomain() *domain.Book {
	return &domain.Book{
		ID:               m.ID,
		OwnerID:          m.OwnerID,
		Title:            m.Title,
		AuthorName:       m.AuthorName,
		Description:      m.Description,
		Language:         m.Language,
		Condition:        domain.BookCondition(m.Condition),
		ExchangeType:     domain.ExchangeType(m.ExchangeType),
		Status:           domain.ListingStatus(m.Status),
		ImageURL:         m.ImageURL,
		ImageObjectKey:   m.ImageObjectKey,
		ImageContentType: m.ImageContentType,
		CreatedAt:        unixToTime(m.CreatedAt),
		UpdatedAt:        unixToTime(m.UpdatedAt),
	}
}

// Create inserts a new listing and sets b.ID.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := r.seq.next(ctx)
	if err != nil {
		return err
	}
	doc := toMongoBook(b)
	doc.ID = id
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	b.ID = id
	return nil
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (*domain.Book, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoBook
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("find book: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *BookRepository) Update(ctx context.Context, b *domain.Book) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.ReplaceOne(ctx, bson.M{"_id": b.ID}, toMongoBook(b))
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrBookNotFound
	}
	return nil
}

// List returns a page of books matching filter, newest first, and the total count.
func (r *BookRepository) List(ctx context.Context, f ports.BookFilter) ([]*domain.Book, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := bson.M{}
	if f.Status != "" {
		query["status"] = string(f.Status)
	}
	if f.OwnerID != nil {
		query["owner_id"] = *f.OwnerID
	}
	if f.Condition != "" {
		query["condition"] = string(f.Condition)
	}
	if f.ExchangeType != "" {
		query["exchange_type"] = string(f.ExchangeType)
	}
	if f.Language != "" {
		query["language"] = exactFold(f.Language)
	}
	if f.Search != "" {
		query["$or"] = bson.A{
			bson.M{"title": containsFold(f.Search)},
			bson.M{"author_name": containsFold(f.Search)},
		}
	}

	total, err := r.col.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if f.Limit > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		// Past the last page; also keeps the skip from overflowing.
		if int64(page-1) > total/int64(f.Limit) {
			return []*domain.Book{}, total, nil
		}
		opts.SetSkip(int64(page-1) * int64(f.Limit)).SetLimit(int64(f.Limit))
	}

	cur, err := r.col.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find books: %w", err)
	}
	var docs []mongoBook
	if err := cur.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode books: %w", err)
	}

	out := make([]*domain.Book, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, total, nil
}

// EnsureIndexes creates the indexes used by the catalog and owner queries.
func (r *BookRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
