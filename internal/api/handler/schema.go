package handler

import (
	"strings"
	"time"

	"github.com/bookxchange/marketplace/internal/core/domain"
)

// errorResponse documents the error envelope rendered by the API error handler.
type errorResponse struct {
	Timestamp string   `json:"timestamp" example:"2024-05-01T12:00:00Z"`
	Status    int      `json:"status"    example:"403"`
	Error     string   `json:"error"     example:"Forbidden"`
	Message   string   `json:"message"   example:"Access denied"`
	Path      string   `json:"path"      example:"/books/7"`
	Details   []string `json:"details,omitempty"`
}

// --- Books ---

type listBooksQuery struct {
	Condition    string `query:"condition"    validate:"omitempty,bookcondition"`
	ExchangeType string `query:"exchangeType" validate:"omitempty,exchangetype"`
	Language     string `query:"language"     validate:"max=50"`
	Search       string `query:"search"       validate:"max=200"`
	Page         int    `query:"page"         validate:"min=0"`
	Limit        int    `query:"limit"        validate:"min=0"`
}

type createBookRequest struct {
	Title        string `json:"title"        validate:"required,max=200"`
	AuthorName   string `json:"authorName"   validate:"required,max=150"`
	Description  string `json:"description"  validate:"max=2000"`
	Language     string `json:"language"     validate:"required,max=50"`
	Condition    string `json:"condition"    validate:"required,bookcondition"`
	ExchangeType string `json:"exchangeType" validate:"required,exchangetype"`
}

type updateBookRequest struct {
	createBookRequest
	Status string `json:"status" validate:"omitempty,listingstatus"`
}

type bookResponse struct {
	ID            int64                `json:"id"`
	Title         string               `json:"title"`
	AuthorName    string               `json:"authorName"`
	Description   string               `json:"description,omitempty"`
	Language      string               `json:"language"`
	Condition     domain.BookCondition `json:"condition"`
	ExchangeType  domain.ExchangeType  `json:"exchangeType"`
	Status        domain.ListingStatus `json:"status"`
	ImageURL      string               `json:"imageUrl,omitempty"`
	OwnerID       *int64               `json:"ownerId"`
	OwnerUsername string               `json:"ownerUsername,omitempty"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

type bookPageResponse struct {
	Items      []bookResponse `json:"items"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

// --- Comments ---

type commentRequest struct {
	Content string `json:"content" validate:"required,max=1000"`
}

type commentResponse struct {
	ID             int64     `json:"id"`
	BookID         int64     `json:"bookId"`
	AuthorID       *int64    `json:"authorId"`
	AuthorUsername string    `json:"authorUsername,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// --- Users ---

type updateProfileRequest struct {
	Username          string `json:"username"          validate:"required,min=5,max=50"`
	CountryCode       string `json:"countryCode"       validate:"required,countrycode"`
	ProfilePictureURL string `json:"profilePictureUrl" validate:"max=1000"`
}

func (r *updateProfileRequest) normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.CountryCode = strings.TrimSpace(r.CountryCode)
	r.ProfilePictureURL = strings.TrimSpace(r.ProfilePictureURL)
}

type setRoleRequest struct {
	Role string `json:"role" validate:"required,role"`
}
