package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube/internal/cache"
	"yatube/internal/middleware"
	"yatube/internal/service"
)

type FeedHandler struct {
	*Pages
	svc   *service.FeedService
	cache *cache.PageCache
}

func NewFeedHandler(pages *Pages, svc *service.FeedService, pc *cache.PageCache) *FeedHandler {
	return &FeedHandler{Pages: pages, svc: svc, cache: pc}
}

// indexKey separates viewers because the page header names the actor.
func indexKey(c *gin.Context) string {
	return fmt.Sprintf("index:%d:%s", middleware.ActorFromCtx(c).ID, c.Request.URL.RequestURI())
}

// Index serves the home feed from the page cache while it is fresh.
func (h *FeedHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	key := indexKey(c)
	if page, ok := h.cache.Get(ctx, key); ok {
		c.Data(page.Status, page.ContentType, page.Body)
		return
	}

	posts, err := h.svc.Home(ctx, c.Query("page"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	body, err := h.page(c, "posts/index.html", gin.H{"Page": posts})
	if err != nil {
		h.ServerError(c, err)
		return
	}
	if err = h.cache.Set(ctx, key, cache.Page{Status: http.StatusOK, ContentType: htmlContentType, Body: body}); err != nil {
		log.Warn().Err(err).Msg("page cache write failed")
	}
	c.Data(http.StatusOK, htmlContentType, body)
}

func (h *FeedHandler) Group(c *gin.Context) {
	feed, err := h.svc.Group(c.Request.Context(), c.Param("slug"), c.Query("page"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Render(c, http.StatusOK, "posts/group_list.html", gin.H{"Group": feed.Group, "Page": feed.Posts})
}

func (h *FeedHandler) Profile(c *gin.Context) {
	actor := middleware.ActorFromCtx(c)
	feed, err := h.svc.Profile(c.Request.Context(), actor, c.Param("username"), c.Query("page"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Render(c, http.StatusOK, "posts/profile.html", gin.H{
		"Author":     feed.Author,
		"Page":       feed.Posts,
		"Following":  feed.Following,
		"Followers":  feed.Followers,
		"Followings": feed.Followings,
	})
}

// Following lists posts of the authors the actor follows.
func (h *FeedHandler) Following(c *gin.Context) {
	posts, err := h.svc.Following(c.Request.Context(), middleware.ActorFromCtx(c), c.Query("page"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	h.Render(c, http.StatusOK, "posts/follow.html", gin.H{"Page": posts})
}
