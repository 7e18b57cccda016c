package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/policy"
	"yatube/internal/testutil"
)

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) { c.n++ }

func actorOf(u *model.User) policy.Actor {
	return policy.Actor{ID: u.ID, Username: u.Username}
}

func formErrors(t *testing.T, err error) form.Errors {
	t.Helper()
	var errs form.Errors
	require.ErrorAs(t, err, &errs)
	return errs
}

type postFixture struct {
	db     *gorm.DB
	svc    *PostService
	images *testutil.MemStore
	pages  *countingInvalidator
	author *model.User
	group  *model.Group
}

func newPostFixture(t *testing.T) *postFixture {
	db := testutil.NewDB(t)
	f := &postFixture{
		db:     db,
		images: testutil.NewMemStore(),
		pages:  &countingInvalidator{},
		author: testutil.CreateUser(t, db, "leo"),
		group:  testutil.CreateGroup(t, db, "cats"),
	}
	f.svc = NewPostService(db, f.images, f.pages)
	return f
}

func TestCreatePostRequiresLogin(t *testing.T) {
	f := newPostFixture(t)
	_, err := f.svc.Create(context.Background(), policy.Anonymous, &form.PostInput{Text: "hi"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, testutil.CountRows(t, f.db, &model.Post{}))
	assert.Zero(t, f.pages.n)
}

func TestCreatePostValidation(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, actorOf(f.author), &form.PostInput{Text: "   "})
	assert.True(t, formErrors(t, err).Has("text"))

	_, err = f.svc.Create(ctx, actorOf(f.author), &form.PostInput{Text: "ok", Group: "999"})
	assert.Equal(t, msgInvalidChoice, formErrors(t, err).First("group"))

	_, err = f.svc.Create(ctx, actorOf(f.author), &form.PostInput{
		Text:  "ok",
		Image: &form.Upload{Filename: "a.gif", Data: []byte("not an image at all")},
	})
	assert.True(t, formErrors(t, err).Has("image"))

	assert.Zero(t, testutil.CountRows(t, f.db, &model.Post{}))
	assert.Zero(t, f.pages.n)
	assert.Empty(t, f.images.Files)
}

func TestCreatePostStoresImageAndInvalidates(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()

	post, err := f.svc.Create(ctx, actorOf(f.author), &form.PostInput{
		Text:  "  with picture ",
		Group: "1",
		Image: &form.Upload{Filename: "small.gif", Data: testutil.SmallGIF},
	})
	require.NoError(t, err)
	assert.Equal(t, "with picture", post.Text)
	assert.Equal(t, f.author.ID, post.AuthorID)
	require.NotNil(t, post.GroupID)
	assert.Equal(t, f.group.ID, *post.GroupID)
	assert.Contains(t, post.Image, ".gif")
	assert.True(t, f.images.Has(post.Image))
	assert.Equal(t, 1, f.pages.n)
	assert.EqualValues(t, 1, testutil.CountRows(t, f.db, &model.Outbox{}))
}

func TestEditPostByNonAuthorIsRefused(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	other := testutil.CreateUser(t, f.db, "mia")
	post := testutil.CreatePosts(t, f.db, f.author, nil, 1, base)[0]

	got, err := f.svc.Edit(ctx, actorOf(other), post.ID, &form.PostInput{Text: "hijack"})
	assert.ErrorIs(t, err, ErrForbidden)
	require.NotNil(t, got)
	assert.Equal(t, post.Text, got.Text)

	stored, err := f.svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.Text, stored.Text)
	assert.Zero(t, f.pages.n)

	_, err = f.svc.Edit(ctx, policy.Anonymous, post.ID, &form.PostInput{Text: "x"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = f.svc.Edit(ctx, actorOf(f.author), 9999, &form.PostInput{Text: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEditPostMovesGroupAndReplacesImage(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	dogs := testutil.CreateGroup(t, f.db, "dogs")

	post, err := f.svc.Create(ctx, actorOf(f.author), &form.PostInput{
		Text: "first", Group: "1",
		Image: &form.Upload{Filename: "a.gif", Data: testutil.SmallGIF},
	})
	require.NoError(t, err)
	oldImage := post.Image

	edited, err := f.svc.Edit(ctx, actorOf(f.author), post.ID, &form.PostInput{
		Text: "second", Group: "2",
		Image: &form.Upload{Filename: "b.gif", Data: testutil.SmallGIF},
	})
	require.NoError(t, err)
	assert.Equal(t, "second", edited.Text)
	assert.Equal(t, dogs.ID, *edited.GroupID)
	assert.NotEqual(t, oldImage, edited.Image)
	assert.False(t, f.images.Has(oldImage))
	assert.True(t, f.images.Has(edited.Image))

	stored, err := f.svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.CreatedAt.Unix(), stored.CreatedAt.Unix())
	assert.Equal(t, "dogs", stored.Group.Slug)

	cleared, err := f.svc.Edit(ctx, actorOf(f.author), post.ID, &form.PostInput{Text: "third", ClearImage: true})
	require.NoError(t, err)
	assert.Empty(t, cleared.Image)
	assert.Nil(t, cleared.GroupID)
	assert.Empty(t, f.images.Files)
	assert.Equal(t, 3, f.pages.n)
}

func TestCommentService(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	svc := NewCommentService(db)
	author := testutil.CreateUser(t, db, "leo")
	post := testutil.CreatePosts(t, db, author, nil, 1, base)[0]

	_, err := svc.Add(ctx, policy.Anonymous, post.ID, &form.CommentInput{Text: "hello"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.Zero(t, testutil.CountRows(t, db, &model.Comment{}))

	_, err = svc.Add(ctx, actorOf(author), 9999, &form.CommentInput{Text: "hello"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Add(ctx, actorOf(author), post.ID, &form.CommentInput{Text: " "})
	assert.True(t, formErrors(t, err).Has("text"))

	c, err := svc.Add(ctx, actorOf(author), post.ID, &form.CommentInput{Text: " nice "})
	require.NoError(t, err)
	assert.Equal(t, "nice", c.Text)

	list, err := svc.List(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "leo", list[0].Author.Username)
}
