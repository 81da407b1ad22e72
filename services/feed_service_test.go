package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryouko/microblog/models"
	"github.com/ryouko/microblog/services"
	"github.com/ryouko/microblog/session"
	"github.com/ryouko/microblog/store"
)

func TestCreatePostAppearsFirstByRecency(t *testing.T) {
	ctx := context.Background()
	posts := newMockPostStore()
	feed := services.NewFeedService(posts)
	author := &models.User{ID: 1, Username: "sam"}

	_, err := feed.CreatePost(ctx, author, "older", "first in", "")
	require.NoError(t, err)
	created, err := feed.CreatePost(ctx, author, "newest", "last in", "")
	require.NoError(t, err)

	listed, err := feed.ListPosts(ctx, store.SortRecency)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, created.ID, listed[0].ID)
	assert.Equal(t, "newest", listed[0].Title)
	assert.EqualValues(t, 0, listed[0].Likes)
}

func TestCreatePostRequiresAuthor(t *testing.T) {
	feed := services.NewFeedService(newMockPostStore())

	_, err := feed.CreatePost(context.Background(), nil, "t", "c", "")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestLikePostCountsEveryCall(t *testing.T) {
	ctx := context.Background()
	posts := newMockPostStore()
	feed := services.NewFeedService(posts)

	created, err := feed.CreatePost(ctx, &models.User{ID: 1, Username: "sam"}, "t", "c", "")
	require.NoError(t, err)

	for i := int64(1); i <= 5; i++ {
		likes, err := feed.LikePost(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, i, likes)
	}

	stored, err := posts.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, stored.Likes)
}

func TestLikePostConcurrentCountsAreExact(t *testing.T) {
	ctx := context.Background()
	posts := newMockPostStore()
	feed := services.NewFeedService(posts)

	created, err := feed.CreatePost(ctx, &models.User{ID: 1, Username: "sam"}, "t", "c", "")
	require.NoError(t, err)

	const n = 20
	counts := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			likes, err := feed.LikePost(ctx, created.ID)
			assert.NoError(t, err)
			counts <- likes
		}()
	}
	wg.Wait()
	close(counts)

	// Every call observes its own increment: the returned counts are a
	// permutation of 1..n, no value repeated or skipped.
	seen := map[int64]bool{}
	for c := range counts {
		assert.False(t, seen[c], "count %d returned twice", c)
		seen[c] = true
	}
	require.Len(t, seen, n)
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "count %d missing", i)
	}
}

func TestLikePostUnknownID(t *testing.T) {
	feed := services.NewFeedService(newMockPostStore())

	_, err := feed.LikePost(context.Background(), 42)
	assert.ErrorIs(t, err, services.ErrPostNotFound)
}

func TestListPostsLikesOrderWithRecencyTiebreak(t *testing.T) {
	ctx := context.Background()
	posts := newMockPostStore()
	feed := services.NewFeedService(posts)
	author := &models.User{ID: 1, Username: "sam"}

	first, err := feed.CreatePost(ctx, author, "zero likes old", "c", "")
	require.NoError(t, err)
	second, err := feed.CreatePost(ctx, author, "two likes", "c", "")
	require.NoError(t, err)
	third, err := feed.CreatePost(ctx, author, "zero likes new", "c", "")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err := feed.LikePost(ctx, second.ID)
		require.NoError(t, err)
	}

	listed, err := feed.ListPosts(ctx, store.SortLikes)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	// Highest like count first, then ties broken by recency.
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, third.ID, listed[1].ID)
	assert.Equal(t, first.ID, listed[2].ID)
}

func TestDeletePostOwnerOnly(t *testing.T) {
	ctx := context.Background()
	posts := newMockPostStore()
	feed := services.NewFeedService(posts)

	created, err := feed.CreatePost(ctx, &models.User{ID: 1, Username: "owner"}, "t", "c", "")
	require.NoError(t, err)

	err = feed.DeletePost(ctx, created.ID, "intruder")
	assert.ErrorIs(t, err, services.ErrUnauthorized)

	// The failed delete must leave the post in place.
	still, err := posts.ByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner", still.Username)

	require.NoError(t, feed.DeletePost(ctx, created.ID, "owner"))
	_, err = posts.ByID(ctx, created.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDeletePostUnknownID(t *testing.T) {
	feed := services.NewFeedService(newMockPostStore())

	err := feed.DeletePost(context.Background(), 99, "anyone")
	assert.ErrorIs(t, err, services.ErrPostNotFound)
}

func TestListByAuthorFiltersAndOrders(t *testing.T) {
	ctx := context.Background()
	posts := newMockPostStore()
	feed := services.NewFeedService(posts)

	_, err := feed.CreatePost(ctx, &models.User{ID: 1, Username: "alice"}, "a1", "c", "")
	require.NoError(t, err)
	_, err = feed.CreatePost(ctx, &models.User{ID: 2, Username: "bob"}, "b1", "c", "")
	require.NoError(t, err)
	latest, err := feed.CreatePost(ctx, &models.User{ID: 1, Username: "alice"}, "a2", "c", "")
	require.NoError(t, err)

	listed, err := feed.ListByAuthor(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, latest.ID, listed[0].ID)
	for _, p := range listed {
		assert.Equal(t, "alice", p.Username)
	}
}

// End-to-end over the service layer: a fresh user registers, publishes a
// post, and likes it once; the likes-ordered feed reflects exactly one like.
func TestRegisterPostAndLikeFlow(t *testing.T) {
	ctx := context.Background()
	users := newMockUserStore()
	posts := newMockPostStore()
	sessions := session.NewStore(nil, time.Hour)
	identity := services.NewIdentityService(users, sessions, &stubAvatarRenderer{payload: []byte("png")})
	feed := services.NewFeedService(posts)

	sess, err := sessions.Create(ctx)
	require.NoError(t, err)

	user, err := identity.Register(ctx, sess, "Himeko")
	require.NoError(t, err)

	created, err := feed.CreatePost(ctx, user, "hello", "first post", "")
	require.NoError(t, err)

	listed, err := feed.ListPosts(ctx, store.SortLikes)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.EqualValues(t, 0, listed[0].Likes)

	likes, err := feed.LikePost(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)

	listed, err = feed.ListPosts(ctx, store.SortLikes)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.EqualValues(t, 1, listed[0].Likes)
	assert.Equal(t, "Himeko", listed[0].Username)
}
