package post_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/microblog-app/microblog-back/internal/account"
	"github.com/microblog-app/microblog-back/internal/like"
	"github.com/microblog-app/microblog-back/internal/post"
	"github.com/microblog-app/microblog-back/internal/testutil"
	"github.com/microblog-app/microblog-back/internal/user"
)

func listFeed(t *testing.T, sort post.SortKey, viewerID *uint) *post.Page {
	t.Helper()
	page, err := post.ListPosts(sort, 1, post.PostsPerPage, viewerID)
	require.NoError(t, err)
	return page
}

func findView(t *testing.T, page *post.Page, id uint) post.PostView {
	t.Helper()
	for _, v := range page.Posts {
		if v.ID == id {
			return v
		}
	}
	require.Failf(t, "post missing from feed", "post %d", id)
	return post.PostView{}
}

// warmFeed fills the cache, then edits the row behind its back so the
// next read shows whether it came from Redis.
func warmFeed(t *testing.T, db *gorm.DB, postID uint) {
	t.Helper()
	listFeed(t, post.SortRecency, nil)
	require.NoError(t, db.Model(&post.Post{}).Where("id = ?", postID).Update("title", "Behind the cache").Error)
	assert.NotEqual(t, "Behind the cache", findView(t, listFeed(t, post.SortRecency, nil), postID).Title, "feed served from cache")
}

func cachedPages(mr *miniredis.Miniredis) []string {
	var pages []string
	for _, k := range mr.Keys() {
		if k != "feed:version" {
			pages = append(pages, k)
		}
	}
	return pages
}

func TestCachedFeedServesRepeatReads(t *testing.T) {
	db := testutil.SetupDB(t)
	mr := testutil.SetupRedis(t)
	created := createPosts(t, "Mia", 2)

	warmFeed(t, db, created[0].ID)
	assert.Len(t, cachedPages(mr), 1)
}

func TestCreatePostInvalidatesFeed(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupRedis(t)
	created := createPosts(t, "Mia", 2)
	warmFeed(t, db, created[0].ID)

	fresh, err := post.CreatePost("Fresh", "Just in", "Mia")
	require.NoError(t, err)

	page := listFeed(t, post.SortRecency, nil)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, fresh.ID, page.Posts[0].ID)
}

func TestDeletePostInvalidatesFeed(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupRedis(t)
	created := createPosts(t, "Mia", 2)
	warmFeed(t, db, created[0].ID)

	require.NoError(t, post.DeletePost(created[1].ID, "Mia"))

	page := listFeed(t, post.SortRecency, nil)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, []uint{created[0].ID}, ids(page.Posts))
}

func TestToggleLikeInvalidatesFeed(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupRedis(t)
	created := createPosts(t, "Mia", 2)
	warmFeed(t, db, created[0].ID)
	listFeed(t, post.SortLikes, nil)

	_, err := like.ToggleLike(created[0].ID, 7)
	require.NoError(t, err)

	assert.Equal(t, int64(1), findView(t, listFeed(t, post.SortRecency, nil), created[0].ID).Likes)
	byLikes := listFeed(t, post.SortLikes, nil)
	assert.Equal(t, created[0].ID, byLikes.Posts[0].ID, "liked post moves to the top")

	_, err = like.ToggleLike(created[0].ID, 7)
	require.NoError(t, err)
	assert.Zero(t, findView(t, listFeed(t, post.SortRecency, nil), created[0].ID).Likes)
}

func TestRenameInvalidatesFeed(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupRedis(t)
	josefina, err := user.Register("Josefina", "hash-j")
	require.NoError(t, err)
	created := createPosts(t, "Josefina", 1)
	warmFeed(t, db, created[0].ID)

	_, err = user.Rename(josefina.ID, "Renamed")
	require.NoError(t, err)

	assert.Equal(t, "Renamed", findView(t, listFeed(t, post.SortRecency, nil), created[0].ID).Username)
	// second read comes from the refilled cache
	assert.Equal(t, "Renamed", findView(t, listFeed(t, post.SortRecency, nil), created[0].ID).Username)
}

func TestDeleteAccountInvalidatesFeed(t *testing.T) {
	db := testutil.SetupDB(t)
	testutil.SetupRedis(t)
	josefina, err := user.Register("Josefina", "hash-j")
	require.NoError(t, err)
	_, err = user.Register("Mia", "hash-m")
	require.NoError(t, err)
	gone := createPosts(t, "Josefina", 1)[0]
	kept := createPosts(t, "Mia", 1)[0]
	_, err = like.ToggleLike(kept.ID, josefina.ID)
	require.NoError(t, err)
	warmFeed(t, db, kept.ID)

	_, err = account.DeleteAccount(josefina.ID)
	require.NoError(t, err)

	page := listFeed(t, post.SortRecency, nil)
	assert.Equal(t, []uint{kept.ID}, ids(page.Posts))
	assert.Zero(t, findView(t, page, kept.ID).Likes)
	assert.NotContains(t, ids(page.Posts), gone.ID)
}

func TestCachedFeedAppliesLikedPerViewer(t *testing.T) {
	testutil.SetupDB(t)
	mr := testutil.SetupRedis(t)
	created := createPosts(t, "Mia", 2)
	viewer, other := uint(42), uint(43)
	_, err := like.ToggleLike(created[1].ID, viewer)
	require.NoError(t, err)

	listFeed(t, post.SortRecency, nil)
	require.Len(t, cachedPages(mr), 1)

	for _, v := range listFeed(t, post.SortRecency, &viewer).Posts {
		assert.Equal(t, v.ID == created[1].ID, v.Liked, "post %d", v.ID)
	}
	for _, v := range listFeed(t, post.SortRecency, &other).Posts {
		assert.False(t, v.Liked, "post %d", v.ID)
	}
	for _, v := range listFeed(t, post.SortRecency, nil).Posts {
		assert.False(t, v.Liked, "post %d", v.ID)
	}
}
