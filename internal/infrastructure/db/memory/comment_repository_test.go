package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookxchange/marketplace/internal/core/domain"
	"github.com/bookxchange/marketplace/internal/core/ports"
)

func TestCommentRepository_ListOrderAndFilters(t *testing.T) {
	repo := NewCommentRepository(NewStore())
	ctx := context.Background()
	alice, bob := int64(1), int64(2)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, c := range []*domain.Comment{
		{BookID: 10, AuthorID: &alice, Content: "first"},
		{BookID: 10, AuthorID: &bob, Content: "second"},
		{BookID: 11, AuthorID: &alice, Content: "third"},
		{BookID: 10, Content: "orphan"},
	} {
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, c))
	}

	contents := func(cs []*domain.Comment) []string {
		out := make([]string, 0, len(cs))
		for _, c := range cs {
			out = append(out, c.Content)
		}
		return out
	}

	book := int64(10)
	got, err := repo.List(ctx, ports.CommentFilter{BookID: &book})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "orphan"}, contents(got))

	got, err = repo.List(ctx, ports.CommentFilter{AuthorID: &alice, NewestFirst: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"third", "first"}, contents(got))

	n, err := repo.DeleteByBook(ctx, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	got, err = repo.List(ctx, ports.CommentFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"third"}, contents(got))
}
