package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube/internal/form"
	"yatube/internal/middleware"
	"yatube/internal/service"
	"yatube/internal/view"
)

const htmlContentType = "text/html; charset=utf-8"

// Pages renders templates for every handler.
type Pages struct {
	Views *view.Renderer
}

// page renders name with data plus the request's actor. Rendering happens
// into memory so a template error still yields a clean 500 page.
func (p *Pages) page(c *gin.Context, name string, data gin.H) ([]byte, error) {
	if data == nil {
		data = gin.H{}
	}
	data["Actor"] = middleware.ActorFromCtx(c)
	if _, ok := data["Errors"]; !ok {
		data["Errors"] = form.Errors(nil)
	}
	return p.Views.Bytes(name, data)
}

func (p *Pages) Render(c *gin.Context, status int, name string, data gin.H) {
	body, err := p.page(c, name, data)
	if err != nil {
		p.ServerError(c, err)
		return
	}
	c.Data(status, htmlContentType, body)
}

func (p *Pages) NotFound(c *gin.Context) {
	body, err := p.page(c, "core/404.html", gin.H{"Path": c.Request.URL.Path})
	if err != nil {
		log.Error().Err(err).Msg("render 404 failed")
		c.String(http.StatusNotFound, "not found")
		return
	}
	c.Data(http.StatusNotFound, htmlContentType, body)
}

func (p *Pages) ServerError(c *gin.Context, err error) {
	_ = c.Error(err)
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	body, rerr := p.page(c, "core/500.html", nil)
	if rerr != nil {
		c.String(http.StatusInternalServerError, "server error")
		return
	}
	c.Data(http.StatusInternalServerError, htmlContentType, body)
}

// Recovery turns a panic into the 500 page.
func (p *Pages) Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error().Interface("panic", recovered).Str("path", c.Request.URL.Path).Msg("panic recovered")
		c.Abort()
		if body, err := p.page(c, "core/500.html", nil); err == nil {
			c.Data(http.StatusInternalServerError, htmlContentType, body)
			return
		}
		c.String(http.StatusInternalServerError, "server error")
	})
}

// Fail maps service errors onto responses.
func (p *Pages) Fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		p.NotFound(c)
	case errors.Is(err, service.ErrUnauthorized):
		c.Redirect(http.StatusFound, middleware.LoginURL(c.Request.URL.RequestURI()))
	default:
		p.ServerError(c, err)
	}
}

func asFormErrors(err error) (form.Errors, bool) {
	var errs form.Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// idParam parses a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}
