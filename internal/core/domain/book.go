package domain

import "time"

// ListingStatus is the lifecycle state of a book listing. Only AVAILABLE
// listings are public.
type ListingStatus string

const (
	StatusAvailable ListingStatus = "AVAILABLE"
	StatusReserved  ListingStatus = "RESERVED"
	StatusExchanged ListingStatus = "EXCHANGED"
)

func (s ListingStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusExchanged:
		return true
	}
	return false
}

type BookCondition string

const (
	ConditionNew  BookCondition = "NEW"
	ConditionGood BookCondition = "GOOD"
	ConditionUsed BookCondition = "USED"
)

func (c BookCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionGood, ConditionUsed:
		return true
	}
	return false
}

type ExchangeType string

const (
	ExchangeOnly       ExchangeType = "EXCHANGE_ONLY"
	Giveaway           ExchangeType = "GIVEAWAY"
	ExchangeOrGiveaway ExchangeType = "EXCHANGE_OR_GIVEAWAY"
)

func (e ExchangeType) Valid() bool {
	switch e {
	case ExchangeOnly, Giveaway, ExchangeOrGiveaway:
		return true
	}
	return false
}

// Book is a listing offered for exchange or giveaway. OwnerID is nil when the
// owning account no longer exists.
type Book struct {
	ID               int64
	OwnerID          *int64
	Title            string
	AuthorName       string
	Description      string
	Language         string
	Condition        BookCondition
	ExchangeType     ExchangeType
	Status           ListingStatus
	ImageURL         string
	ImageObjectKey   string
	ImageContentType string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IsPublic reports whether anonymous callers may see the listing.
func (b *Book) IsPublic() bool {
	return b.Status == StatusAvailable
}

// ClearImage drops the stored image metadata and returns the previous object key.
func (b *Book) ClearImage() string {
	key := b.ImageObjectKey
	b.ImageURL = ""
	b.ImageObjectKey = ""
	b.ImageContentType = ""
	return key
}

// imageExtensions lists the accepted cover image content types.
var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// ImageExtension returns the object key extension for an accepted content type.
func ImageExtension(contentType string) (string, bool) {
	ext, ok := imageExtensions[contentType]
	return ext, ok
}
