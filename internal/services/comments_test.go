package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskhub-dev/taskhub/internal/apperr"
	"github.com/taskhub-dev/taskhub/internal/models"
)

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin := f.user(t, models.RoleAdmin)
	author := f.user(t, models.RoleUser)
	other := f.user(t, models.RoleUser)
	project := f.project(t, admin)
	issue := f.issue(t, project.ID, nil, admin, author)

	first, err := f.svc.Comments.Create(ctx, author, issue.ID, "first")
	require.NoError(t, err)
	require.NotNil(t, first.Author)
	assert.Equal(t, author.ID, first.Author.ID)

	_, err = f.svc.Comments.Create(ctx, other, issue.ID, "second")
	require.NoError(t, err)

	_, err = f.svc.Comments.Create(ctx, author, 9999, "lost")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = f.svc.Comments.Create(ctx, author, issue.ID, "  ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	list, err := f.svc.Comments.List(ctx, issue.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Body, "oldest first")

	_, err = f.svc.Comments.Update(ctx, other, first.ID, "hijacked")
	assert.ErrorIs(t, err, ErrNotCommentAuthor)

	edited, err := f.svc.Comments.Update(ctx, author, first.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", edited.Body)

	assert.ErrorIs(t, f.svc.Comments.Delete(ctx, other, first.ID), ErrNotCommentAuthor)
	require.NoError(t, f.svc.Comments.Delete(ctx, admin, first.ID))

	err = f.svc.Comments.Delete(ctx, admin, first.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
