package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/famfeed/internal/model"
	"github.com/dukerupert/famfeed/internal/websocket"
)

func TestCreateAndListPostsEndToEnd(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")

	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("Hello family"), nil)
	require.NoError(t, err)
	assert.Equal(t, alice.FamilyID, post.FamilyID)

	page, err := env.posts.ListPosts(ctx, alice.FamilyID, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	got := page.Posts[0]
	assert.Equal(t, "Hello family", *got.Content)
	assert.Equal(t, 0, got.LikesCount)
	assert.Equal(t, 0, got.CommentsCount)
	assert.Equal(t, "Alice", got.UserName)
	assert.Equal(t, 1, page.Total)
}

func TestCreatePostPublishesToFamily(t *testing.T) {
	env := setupEnv(t)
	alice := env.register(t, "a@x.com", "Alice", "Smiths")

	post, err := env.posts.CreatePost(context.Background(), alice.ID, nil, strPtr("/uploads/cat.png"))
	require.NoError(t, err)

	events := env.pub.all()
	require.Len(t, events, 1)
	assert.Equal(t, websocket.FamilyTopic(alice.FamilyID), events[0].topic)
	assert.Equal(t, websocket.EventPostCreated, events[0].event)
	assert.Equal(t, post.ID, events[0].payload.(*model.Post).ID)
}

func TestCreatePostEmpty(t *testing.T) {
	env := setupEnv(t)
	alice := env.register(t, "a@x.com", "Alice", "Smiths")

	_, err := env.posts.CreatePost(context.Background(), alice.ID, strPtr("   "), strPtr(""))
	assert.ErrorIs(t, err, ErrEmptyPost)
	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM posts`))
	assert.Empty(t, env.pub.all())
}

func TestListPostsPagination(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	for _, c := range []string{"one", "two", "three"} {
		_, err := env.posts.CreatePost(ctx, alice.ID, strPtr(c), nil)
		require.NoError(t, err)
	}

	page, err := env.posts.ListPosts(ctx, alice.FamilyID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page.Posts, 1)
	assert.Equal(t, "one", *page.Posts[0].Content)

	page, err = env.posts.ListPosts(ctx, alice.FamilyID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, defaultPageSize, page.Limit)
	assert.Equal(t, "three", *page.Posts[0].Content)

	page, err = env.posts.ListPosts(ctx, alice.FamilyID, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, page.Limit)

	_, err = env.posts.ListPosts(ctx, "", 1, 10)
	assert.Equal(t, KindValidation, AsError(err).Kind)
}

func TestToggleLikeDoubleToggle(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("like me"), nil)
	require.NoError(t, err)

	res, err := env.posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.Equal(t, 1, res.LikesCount)

	res, err = env.posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.Equal(t, 0, res.LikesCount)
}

func TestToggleLikeParallel(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("race"), nil)
	require.NoError(t, err)

	for round := 0; round < 5; round++ {
		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = env.posts.ToggleLike(ctx, post.ID, alice.ID)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}
		n := env.count(t, `SELECT COUNT(*) FROM likes WHERE post_id = ? AND user_id = ?`, post.ID, alice.ID)
		assert.Contains(t, []int{0, 1}, n)
	}
}

func TestToggleLikeErrors(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	dave := env.register(t, "d@x.com", "Dave", "Joneses")
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("private"), nil)
	require.NoError(t, err)

	_, err = env.posts.ToggleLike(ctx, "missing", alice.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	_, err = env.posts.ToggleLike(ctx, post.ID, dave.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)
}

func TestDeletePostByNonAuthor(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	bob := env.join(t, "b@x.com", "Bob", alice.FamilyID)

	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("mine"), nil)
	require.NoError(t, err)
	_, err = env.posts.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	_, err = env.posts.AddComment(ctx, post.ID, bob.ID, "nice")
	require.NoError(t, err)

	err = env.posts.DeletePost(ctx, post.ID, bob.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	assert.Equal(t, 1, env.count(t, `SELECT COUNT(*) FROM posts WHERE id = ?`, post.ID))
	assert.Equal(t, 1, env.count(t, `SELECT COUNT(*) FROM likes WHERE post_id = ?`, post.ID))
	assert.Equal(t, 1, env.count(t, `SELECT COUNT(*) FROM comments WHERE post_id = ?`, post.ID))
}

func TestDeletePostByAuthor(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("temporary"), nil)
	require.NoError(t, err)
	_, err = env.posts.ToggleLike(ctx, post.ID, alice.ID)
	require.NoError(t, err)
	_, err = env.posts.AddComment(ctx, post.ID, alice.ID, "self comment")
	require.NoError(t, err)

	require.NoError(t, env.posts.DeletePost(ctx, post.ID, alice.ID))

	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM posts`))
	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM likes`))
	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM comments`))

	err = env.posts.DeletePost(ctx, post.ID, alice.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestAddCommentEmpty(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("hi"), nil)
	require.NoError(t, err)
	before := len(env.pub.all())

	_, err = env.posts.AddComment(ctx, post.ID, alice.ID, "  \n ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	assert.Equal(t, 0, env.count(t, `SELECT COUNT(*) FROM comments`))
	assert.Len(t, env.pub.all(), before)
}

func TestAddCommentNotifiesAuthor(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	bob := env.join(t, "b@x.com", "Bob", alice.FamilyID)
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("hi"), nil)
	require.NoError(t, err)

	comment, err := env.posts.AddComment(ctx, post.ID, bob.ID, "  great post  ")
	require.NoError(t, err)
	assert.Equal(t, "great post", comment.Content)
	assert.Equal(t, "Bob", comment.UserName)

	events := env.pub.all()
	last := events[len(events)-1]
	assert.Equal(t, websocket.EventCommentCreated, last.event)
	assert.Equal(t, websocket.FamilyTopic(alice.FamilyID), last.topic)

	notes, err := env.notifications.ListNotifications(ctx, alice.ID, true)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotifTypeComment, notes[0].Type)
	assert.Len(t, env.notifier.sent, 1)

	// Commenting on your own post does not notify you.
	_, err = env.posts.AddComment(ctx, post.ID, alice.ID, "thanks")
	require.NoError(t, err)
	notes, err = env.notifications.ListNotifications(ctx, alice.ID, false)
	require.NoError(t, err)
	assert.Len(t, notes, 1)

	comments, err := env.posts.ListComments(ctx, post.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "great post", comments[0].Content)
	assert.Equal(t, "thanks", comments[1].Content)
}

func TestListCommentsOtherFamily(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	alice := env.register(t, "a@x.com", "Alice", "Smiths")
	dave := env.register(t, "d@x.com", "Dave", "Joneses")
	post, err := env.posts.CreatePost(ctx, alice.ID, strPtr("hi"), nil)
	require.NoError(t, err)

	_, err = env.posts.ListComments(ctx, post.ID, dave.ID)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	_, err = env.posts.AddComment(ctx, post.ID, dave.ID, "hello stranger")
	assert.ErrorIs(t, err, ErrNotAuthorized)
}
