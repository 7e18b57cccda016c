package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"yatube/internal/form"
	"yatube/internal/middleware"
	"yatube/internal/model"
	"yatube/internal/policy"
	"yatube/internal/service"
)

type PostHandler struct {
	*Pages
	posts    *service.PostService
	comments *service.CommentService
}

func NewPostHandler(pages *Pages, posts *service.PostService, comments *service.CommentService) *PostHandler {
	return &PostHandler{Pages: pages, posts: posts, comments: comments}
}

// bindPost reads the multipart post form. The checkbox and the file are
// read by hand since they do not map onto plain form binding.
func bindPost(c *gin.Context) (*form.PostInput, error) {
	in := &form.PostInput{
		Text:       c.PostForm("text"),
		Group:      c.PostForm("group"),
		ClearImage: c.PostForm("image-clear") != "",
	}
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return in, nil
	}
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, form.MaxImageSize+1))
	if err != nil {
		return nil, err
	}
	in.Image = &form.Upload{Filename: fh.Filename, Data: data}
	return in, nil
}

// renderDetail shows a post with its comments and a comment form.
func (h *PostHandler) renderDetail(c *gin.Context, post *model.Post, in *form.CommentInput, errs form.Errors) {
	ctx := c.Request.Context()
	comments, err := h.comments.List(ctx, post.ID)
	if err != nil {
		h.ServerError(c, err)
		return
	}
	count, err := h.posts.CountByAuthor(ctx, post.AuthorID)
	if err != nil {
		h.ServerError(c, err)
		return
	}
	if in == nil {
		in = &form.CommentInput{}
	}
	h.Render(c, http.StatusOK, "posts/post_detail.html", gin.H{
		"Post":      post,
		"Comments":  comments,
		"PostCount": count,
		"CanEdit":   policy.CanEditPost(middleware.ActorFromCtx(c), post),
		"Form":      in,
		"Errors":    errs,
	})
}

func (h *PostHandler) renderForm(c *gin.Context, post *model.Post, in *form.PostInput, errs form.Errors) {
	groups, err := h.posts.Groups(c.Request.Context())
	if err != nil {
		h.ServerError(c, err)
		return
	}
	h.Render(c, http.StatusOK, "posts/create_post.html", gin.H{
		"IsEdit": post != nil,
		"Post":   post,
		"Form":   in,
		"Errors": errs,
		"Groups": groups,
	})
}

func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.renderDetail(c, post, nil, nil)
}

func (h *PostHandler) CreateForm(c *gin.Context) {
	h.renderForm(c, nil, &form.PostInput{}, nil)
}

func (h *PostHandler) Create(c *gin.Context) {
	in, err := bindPost(c)
	if err != nil {
		h.ServerError(c, err)
		return
	}
	actor := middleware.ActorFromCtx(c)
	if _, err = h.posts.Create(c.Request.Context(), actor, in); err != nil {
		if errs, ok := asFormErrors(err); ok {
			h.renderForm(c, nil, in, errs)
			return
		}
		h.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", actor.Username))
}

// EditForm shows the edit form to the author and the read view to anyone
// else.
func (h *PostHandler) EditForm(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.Fail(c, err)
		return
	}
	if !policy.CanEditPost(middleware.ActorFromCtx(c), post) {
		h.renderDetail(c, post, nil, nil)
		return
	}
	in := &form.PostInput{Text: post.Text}
	if post.GroupID != nil {
		in.Group = strconv.FormatUint(*post.GroupID, 10)
	}
	h.renderForm(c, post, in, nil)
}

func (h *PostHandler) Edit(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	in, err := bindPost(c)
	if err != nil {
		h.ServerError(c, err)
		return
	}
	post, err := h.posts.Edit(c.Request.Context(), middleware.ActorFromCtx(c), id, in)
	switch {
	case errors.Is(err, service.ErrForbidden):
		h.renderDetail(c, post, nil, nil)
		return
	case err != nil:
		if errs, ok := asFormErrors(err); ok {
			h.renderForm(c, post, in, errs)
			return
		}
		h.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", id))
}

// AddComment re-renders the detail page when the comment is rejected.
func (h *PostHandler) AddComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		h.NotFound(c)
		return
	}
	var in form.CommentInput
	if err := c.ShouldBind(&in); err != nil {
		h.ServerError(c, err)
		return
	}
	ctx := c.Request.Context()
	if _, err := h.comments.Add(ctx, middleware.ActorFromCtx(c), id, &in); err != nil {
		errs, ok := asFormErrors(err)
		if !ok {
			h.Fail(c, err)
			return
		}
		post, err := h.posts.Get(ctx, id)
		if err != nil {
			h.Fail(c, err)
			return
		}
		h.renderDetail(c, post, &in, errs)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/posts/%d/", id))
}
