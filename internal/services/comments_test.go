package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestCommentService(t *testing.T) (*CommentService, *IdeaService, *gorm.DB) {
	t.Helper()
	svc, conn := newTestIdeaService(t)
	notifier := NewNotifier(conn, NewMailService())
	t.Cleanup(notifier.Close)
	return NewCommentService(conn, notifier), svc, conn
}

func TestCommentCreateAndList(t *testing.T) {
	comments, ideas, conn := newTestCommentService(t)
	author := createUser(t, conn, "author")
	commenter := createUser(t, conn, "commenter")
	idea := createIdea(t, ideas, conn, author.ID, "idea", "body", day1)

	first, err := comments.Create(commenter.ID, idea.ID, "first thought")
	require.NoError(t, err)
	second, err := comments.Create(author.ID, idea.ID, "author replies")
	require.NoError(t, err)

	// 手动拉开 modified，确认列表按最新修改在前
	require.NoError(t, conn.Model(first).Update("modified", day1).Error)
	require.NoError(t, conn.Model(second).Update("modified", day2).Error)

	listed, err := comments.ListByIdea(idea.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID)
	require.Equal(t, "author", listed[0].User.Username)
	require.Equal(t, first.ID, listed[1].ID)
}

func TestCommentOnMissingIdea(t *testing.T) {
	comments, _, conn := newTestCommentService(t)
	user := createUser(t, conn, "user")

	_, err := comments.Create(user.ID, 99999, "into the void")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCommentUpdateAuthorOnly(t *testing.T) {
	comments, ideas, conn := newTestCommentService(t)
	author := createUser(t, conn, "author")
	commenter := createUser(t, conn, "commenter")
	intruder := createUser(t, conn, "intruder")
	idea := createIdea(t, ideas, conn, author.ID, "idea", "body", day1)

	comment, err := comments.Create(commenter.ID, idea.ID, "original")
	require.NoError(t, err)

	_, err = comments.Update(comment.ID, intruder.ID, "hijacked")
	require.ErrorIs(t, err, ErrForbidden)

	updated, err := comments.Update(comment.ID, commenter.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", updated.Description)
	require.True(t, updated.Modified.After(comment.Modified) || updated.Modified.Equal(comment.Modified))

	_, err = comments.Update(99999, commenter.ID, "x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCommentDeleteAuthorOnly(t *testing.T) {
	comments, ideas, conn := newTestCommentService(t)
	author := createUser(t, conn, "author")
	commenter := createUser(t, conn, "commenter")
	intruder := createUser(t, conn, "intruder")
	idea := createIdea(t, ideas, conn, author.ID, "idea", "body", day1)

	comment, err := comments.Create(commenter.ID, idea.ID, "to be removed")
	require.NoError(t, err)

	require.ErrorIs(t, comments.Delete(comment.ID, intruder.ID), ErrForbidden)
	require.NoError(t, comments.Delete(comment.ID, commenter.ID))
	require.ErrorIs(t, comments.Delete(comment.ID, commenter.ID), ErrNotFound)
}
