package handler

import (
	"strings"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

// --- Request → Service input ---

func toBookInput(req createBookRequest) ports.BookInput {
	return ports.BookInput{
		Title:        req.Title,
		AuthorName:   req.AuthorName,
		Description:  req.Description,
		Language:     req.Language,
		Condition:    domain.BookCondition(req.Condition),
		ExchangeType: domain.ExchangeType(req.ExchangeType),
	}
}

func toBookUpdateInput(req updateBookRequest) ports.BookInput {
	in := toBookInput(req.createBookRequest)
	in.Status = domain.ListingStatus(req.Status)
	return in
}

func toListBooksInput(q listBooksQuery) ports.ListBooksInput {
	return ports.ListBooksInput{
		Condition:    domain.BookCondition(q.Condition),
		ExchangeType: domain.ExchangeType(q.ExchangeType),
		Language:     strings.TrimSpace(q.Language),
		Search:       strings.TrimSpace(q.Search),
		Page:         q.Page,
		Limit:        q.Limit,
	}
}

// --- Service output → Response ---

func toBookResponse(v ports.BookView) bookResponse {
	b := v.Book
	return bookResponse{
		ID:            b.ID,
		Title:         b.Title,
		AuthorName:    b.AuthorName,
		Description:   b.Description,
		Language:      b.Language,
		Condition:     b.Condition,
		ExchangeType:  b.ExchangeType,
		Status:        b.Status,
		ImageURL:      b.ImageURL,
		OwnerID:       b.OwnerID,
		OwnerUsername: v.OwnerUsername,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func toBookResponses(views []ports.BookView) []bookResponse {
	out := make([]bookResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toBookResponse(v))
	}
	return out
}

func toBookPageResponse(p *ports.BookPage) bookPageResponse {
	return bookPageResponse{
		Items:      toBookResponses(p.Items),
		Total:      p.Total,
		Page:       p.Page,
		Limit:      p.Limit,
		TotalPages: p.TotalPages,
	}
}

func toCommentResponse(v ports.CommentView) commentResponse {
	c := v.Comment
	return commentResponse{
		ID:             c.ID,
		BookID:         c.BookID,
		AuthorID:       c.AuthorID,
		AuthorUsername: v.AuthorUsername,
		Content:        c.Content,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toCommentResponses(views []ports.CommentView) []commentResponse {
	out := make([]commentResponse, 0, len(views))
	for _, v := range views {
		out = append(out, toCommentResponse(v))
	}
	return out
}
