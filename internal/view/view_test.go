package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/form"
	"yatube/internal/model"
	"yatube/internal/pkg"
	"yatube/internal/policy"
)

func newRenderer(t *testing.T) *Renderer {
	r, err := New(func(key string) string { return "/media/" + key })
	require.NoError(t, err)
	return r
}

func TestEveryPageParses(t *testing.T) {
	r := newRenderer(t)
	for _, page := range []string{
		"posts/index.html", "posts/group_list.html", "posts/profile.html",
		"posts/post_detail.html", "posts/create_post.html", "posts/follow.html",
		"users/signup.html", "users/login.html", "users/logged_out.html",
		"users/password_change_form.html", "users/password_change_done.html",
		"users/password_reset_form.html", "users/password_reset_done.html",
		"users/password_reset_confirm.html", "users/password_reset_complete.html",
		"core/404.html", "core/500.html",
	} {
		assert.Contains(t, r.pages, page)
	}
}

func TestRenderIndexEscapesAndPaginates(t *testing.T) {
	r := newRenderer(t)
	group := &model.Group{ID: 1, Title: "Cats", Slug: "cats"}
	posts := make([]model.Post, 0, 10)
	for i := 0; i < 10; i++ {
		posts = append(posts, model.Post{
			ID:        uint64(i + 1),
			Text:      "<b>hi</b>\nthere",
			Author:    model.User{Username: "leo"},
			Group:     group,
			Image:     "posts/a.gif",
			CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		})
	}
	page := pkg.NewPage(posts, pkg.ResolvePage("1", 13, pkg.PostsPerPage), 13)

	out, err := r.Bytes("posts/index.html", map[string]any{
		"Actor": policy.Anonymous,
		"Page":  page,
	})
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "&lt;b&gt;hi&lt;/b&gt;<br>there")
	assert.Contains(t, html, `src="/media/posts/a.gif"`)
	assert.Contains(t, html, `href="/group/cats/"`)
	assert.Contains(t, html, `href="?page=2"`)
	assert.Contains(t, html, "1 March 2024")
	assert.Contains(t, html, `href="/auth/login/"`)
}

func TestRenderCreateFormKeepsSubmittedValues(t *testing.T) {
	r := newRenderer(t)
	errs := form.Errors{}
	errs.Add("text", "This field is required.")
	out, err := r.Bytes("posts/create_post.html", map[string]any{
		"Actor":  policy.Actor{ID: 1, Username: "leo"},
		"IsEdit": false,
		"Form":   &form.PostInput{Group: "2"},
		"Errors": errs,
		"Groups": []model.Group{{ID: 1, Title: "Cats"}, {ID: 2, Title: "Dogs"}},
		"Post":   (*model.Post)(nil),
	})
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "This field is required.")
	assert.Contains(t, html, `<option value="2" selected>Dogs</option>`)
	assert.Contains(t, html, `action="/create/"`)
}

func TestRenderUnknownPage(t *testing.T) {
	_, err := newRenderer(t).Bytes("posts/missing.html", nil)
	assert.Error(t, err)
}
