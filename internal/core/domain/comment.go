package domain

import "time"

// Comment is a remark left on a book listing. AuthorID is nil when the author
// account no longer exists.
type Comment struct {
	ID        int64
	BookID    int64
	AuthorID  *int64
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
