package sqldb_test

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/model"
	"yatube/internal/repository/sqldb"
	"yatube/internal/testutil"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func TestFollowIsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, db, "reader")
	author := testutil.CreateUser(t, db, "author")
	repo := &sqldb.FollowRepository{DB: db}

	changed, err := repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	n, err := repo.CountEdges(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, int64(1), testutil.CountRows(t, db, &model.Outbox{}))

	following, err := repo.IsFollowing(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, following)

	back, err := repo.IsFollowing(ctx, author.ID, reader.ID)
	require.NoError(t, err)
	assert.False(t, back)
}

func TestFollowUniqueConstraintInStorage(t *testing.T) {
	db := testutil.NewDB(t)
	reader := testutil.CreateUser(t, db, "reader")
	author := testutil.CreateUser(t, db, "author")

	require.NoError(t, db.Omit("User", "Author").Create(&model.Follow{UserID: reader.ID, AuthorID: author.ID}).Error)
	err := db.Omit("User", "Author").Create(&model.Follow{UserID: reader.ID, AuthorID: author.ID}).Error
	assert.Error(t, err)
}

func TestUnfollow(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	reader := testutil.CreateUser(t, db, "reader")
	author := testutil.CreateUser(t, db, "author")
	repo := &sqldb.FollowRepository{DB: db}

	changed, err := repo.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = repo.Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	changed, err = repo.Unfollow(ctx, reader.ID, author.ID)
	require.NoError(t, err)
	assert.True(t, changed)

	followers, err := repo.CountFollowers(ctx, author.ID)
	require.NoError(t, err)
	assert.Zero(t, followers)
	assert.Equal(t, int64(2), testutil.CountRows(t, db, &model.Outbox{}))
}

func TestPostListOrderingAndWindows(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	group := testutil.CreateGroup(t, db, "cats")
	posts := testutil.CreatePosts(t, db, author, group, 13, base)
	repo := &sqldb.PostRepository{DB: db}

	total, err := repo.Count(ctx, sqldb.PostFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(13), total)

	first, err := repo.List(ctx, sqldb.PostFilter{}, 0, 10)
	require.NoError(t, err)
	second, err := repo.List(ctx, sqldb.PostFilter{}, 10, 10)
	require.NoError(t, err)
	require.Len(t, first, 10)
	require.Len(t, second, 3)

	all := append(first, second...)
	ids := lo.Map(all, func(p model.Post, _ int) uint64 { return p.ID })
	assert.Len(t, lo.Uniq(ids), 13)
	assert.Equal(t, posts[12].ID, all[0].ID)
	assert.Equal(t, posts[0].ID, all[12].ID)
	for i := 1; i < len(all); i++ {
		assert.False(t, all[i].CreatedAt.After(all[i-1].CreatedAt))
	}
	assert.Equal(t, "author", all[0].Author.Username)
	require.NotNil(t, all[0].Group)
	assert.Equal(t, "cats", all[0].Group.Slug)
}

func TestPostListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")
	cats := testutil.CreateGroup(t, db, "cats")
	testutil.CreatePosts(t, db, alice, cats, 2, base)
	testutil.CreatePosts(t, db, bob, nil, 3, base)
	repo := &sqldb.PostRepository{DB: db}
	follows := &sqldb.FollowRepository{DB: db}

	n, err := repo.Count(ctx, sqldb.PostFilter{GroupID: &cats.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = repo.Count(ctx, sqldb.PostFilter{AuthorID: &bob.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	n, err = repo.Count(ctx, sqldb.PostFilter{FollowerID: &carol.ID})
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = follows.Follow(ctx, carol.ID, bob.ID)
	require.NoError(t, err)
	feed, err := repo.List(ctx, sqldb.PostFilter{FollowerID: &carol.ID}, 0, 10)
	require.NoError(t, err)
	require.Len(t, feed, 3)
	for _, p := range feed {
		assert.Equal(t, bob.ID, p.AuthorID)
		assert.Equal(t, "bob", p.Author.Username)
	}
}

func TestPostUpdateKeepsImmutableColumns(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	cats := testutil.CreateGroup(t, db, "cats")
	post := testutil.CreatePosts(t, db, author, cats, 1, base)[0]
	repo := &sqldb.PostRepository{DB: db}

	edited := post
	edited.Text = "changed"
	edited.GroupID = nil
	edited.AuthorID = 999
	edited.CreatedAt = base.Add(time.Hour * 24)
	require.NoError(t, repo.Update(ctx, &edited))

	got, err := repo.FindByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Text)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, author.ID, got.AuthorID)
	assert.True(t, got.CreatedAt.Equal(post.CreatedAt))
}

func TestPostCreateWritesOutbox(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	repo := &sqldb.PostRepository{DB: db}

	post := &model.Post{Text: "hello", AuthorID: author.ID}
	require.NoError(t, repo.Create(ctx, post))
	assert.NotZero(t, post.ID)
	assert.False(t, post.CreatedAt.IsZero())

	events, err := (&sqldb.OutboxRepository{DB: db}).ListDeliverable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventPostCreated, events[0].EventType)
	assert.Equal(t, post.ID, events[0].AggregateID)
	assert.Contains(t, events[0].Payload, `"event":"post.created"`)
}

func TestUserDeleteCascades(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	reader := testutil.CreateUser(t, db, "reader")
	post := testutil.CreatePosts(t, db, author, nil, 1, base)[0]
	require.NoError(t, (&sqldb.CommentRepository{DB: db}).Create(ctx, &model.Comment{PostID: post.ID, AuthorID: reader.ID, Text: "hi"}))
	_, err := (&sqldb.FollowRepository{DB: db}).Follow(ctx, reader.ID, author.ID)
	require.NoError(t, err)

	require.NoError(t, (&sqldb.UserRepository{DB: db}).Delete(ctx, author.ID))

	assert.Zero(t, testutil.CountRows(t, db, &model.Post{}))
	assert.Zero(t, testutil.CountRows(t, db, &model.Comment{}))
	assert.Zero(t, testutil.CountRows(t, db, &model.Follow{}))
}

func TestGroupDeleteRestrictedWhileReferenced(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	cats := testutil.CreateGroup(t, db, "cats")
	testutil.CreateGroup(t, db, "dogs")
	testutil.CreatePosts(t, db, author, cats, 1, base)
	repo := &sqldb.GroupRepository{DB: db}

	_, err := repo.DeleteBySlug(ctx, "cats")
	assert.Error(t, err)

	n, err := repo.DeleteBySlug(ctx, "dogs")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.DeleteBySlug(ctx, "dogs")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCommentsOldestFirst(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	author := testutil.CreateUser(t, db, "author")
	post := testutil.CreatePosts(t, db, author, nil, 1, base)[0]
	repo := &sqldb.CommentRepository{DB: db}
	for _, text := range []string{"first", "second"} {
		require.NoError(t, repo.Create(ctx, &model.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}))
	}

	list, err := repo.ListByPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "author", list[0].Author.Username)
}

func TestOutboxDeliveryBookkeeping(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	repo := &sqldb.OutboxRepository{DB: db}
	require.NoError(t, repo.Insert(ctx, model.EventFollow, 1, map[string]any{"user_id": 2}))
	require.NoError(t, repo.Insert(ctx, model.EventFollow, 3, map[string]any{"user_id": 4}))

	list, err := repo.ListDeliverable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)

	require.NoError(t, repo.MarkSent(ctx, list[0].ID))
	require.NoError(t, repo.MarkFailed(ctx, list[1].ID))

	list, err = repo.ListDeliverable(ctx, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, list[0].Retry)
	assert.Equal(t, model.OutboxFailed, list[0].Status)

	purged, err := repo.PurgeSent(ctx, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)
}
