package ports

import (
	"context"
	"io"
)

// ImageStorage stores book cover images in an object store.
type ImageStorage interface {
	// Upload writes the object and returns its public URL.
	Upload(ctx context.Context, key, contentType string, size int64, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageCleaner removes stale objects asynchronously. Enqueue never blocks.
type ImageCleaner interface {
	Enqueue(key string)
}

// CatalogCache caches pages of the public catalog.
type CatalogCache interface {
	Get(ctx context.Context, key string) (*BookPage, bool, error)
	Set(ctx context.Context, key string, page *BookPage) error
	// Invalidate drops every cached page.
	Invalidate(ctx context.Context) error
}
