package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"yatube/internal/middleware"
	"yatube/internal/service"
)

type FollowHandler struct {
	*Pages
	svc *service.FollowService
}

func NewFollowHandler(pages *Pages, svc *service.FollowService) *FollowHandler {
	return &FollowHandler{Pages: pages, svc: svc}
}

func (h *FollowHandler) Follow(c *gin.Context) {
	author, _, err := h.svc.Follow(c.Request.Context(), middleware.ActorFromCtx(c), c.Param("username"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}

func (h *FollowHandler) Unfollow(c *gin.Context) {
	author, _, err := h.svc.Unfollow(c.Request.Context(), middleware.ActorFromCtx(c), c.Param("username"))
	if err != nil {
		h.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, fmt.Sprintf("/profile/%s/", author.Username))
}
