package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube/internal/form"
	"yatube/internal/middleware"
	"yatube/internal/service"
)

type UserHandler struct {
	*Pages
	svc  *service.UserService
	auth *middleware.Auth
}

func NewUserHandler(pages *Pages, svc *service.UserService, auth *middleware.Auth) *UserHandler {
	return &UserHandler{Pages: pages, svc: svc, auth: auth}
}

// submit binds the form into in and runs action. Field errors re-render
// page with 200; success redirects to done.
func (h *UserHandler) submit(c *gin.Context, page string, in any, action func() error, done string) {
	if err := c.ShouldBind(in); err != nil {
		h.ServerError(c, err)
		return
	}
	if err := action(); err != nil {
		if errs, ok := asFormErrors(err); ok {
			h.Render(c, http.StatusOK, page, gin.H{"Form": in, "Errors": errs})
			return
		}
		h.Fail(c, err)
		return
	}
	c.Redirect(http.StatusFound, done)
}

func (h *UserHandler) SignupForm(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/signup.html", gin.H{"Form": &form.SignupInput{}})
}

func (h *UserHandler) Signup(c *gin.Context) {
	var in form.SignupInput
	h.submit(c, "users/signup.html", &in, func() error {
		user, err := h.svc.Register(c.Request.Context(), &in)
		if err == nil {
			log.Info().Uint64("user_id", user.ID).Str("username", user.Username).Msg("user signed up")
		}
		return err
	}, "/")
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/login.html", gin.H{"Form": &form.LoginInput{Next: c.Query("next")}})
}

func (h *UserHandler) Login(c *gin.Context) {
	var in form.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		h.ServerError(c, err)
		return
	}
	if in.Next == "" {
		in.Next = c.Query("next")
	}
	_, token, err := h.svc.Login(c.Request.Context(), &in)
	if err != nil {
		if errs, ok := asFormErrors(err); ok {
			in.Password = ""
			h.Render(c, http.StatusOK, "users/login.html", gin.H{"Form": &in, "Errors": errs})
			return
		}
		h.Fail(c, err)
		return
	}
	h.auth.SetCookie(c, token)
	c.Redirect(http.StatusFound, middleware.SafeNext(in.Next))
}

func (h *UserHandler) Logout(c *gin.Context) {
	if actor := middleware.ActorFromCtx(c); actor.IsAuthenticated() {
		if err := h.svc.Logout(c.Request.Context(), actor.ID); err != nil {
			h.ServerError(c, err)
			return
		}
	}
	h.auth.ClearCookie(c)
	c.Set(middleware.ContextActorKey, nil)
	h.Render(c, http.StatusOK, "users/logged_out.html", nil)
}

func (h *UserHandler) PasswordChangeForm(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/password_change_form.html", gin.H{"Form": &form.PasswordChangeInput{}})
}

func (h *UserHandler) PasswordChange(c *gin.Context) {
	var in form.PasswordChangeInput
	h.submit(c, "users/password_change_form.html", &in, func() error {
		token, err := h.svc.ChangePassword(c.Request.Context(), middleware.ActorFromCtx(c), &in)
		if err != nil {
			return err
		}
		h.auth.SetCookie(c, token)
		return nil
	}, "/auth/password_change/done/")
}

func (h *UserHandler) PasswordChangeDone(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/password_change_done.html", nil)
}

func (h *UserHandler) PasswordResetForm(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/password_reset_form.html", gin.H{"Form": &form.PasswordResetInput{}})
}

func (h *UserHandler) PasswordReset(c *gin.Context) {
	var in form.PasswordResetInput
	h.submit(c, "users/password_reset_form.html", &in, func() error {
		return h.svc.RequestPasswordReset(c.Request.Context(), &in)
	}, "/auth/password_reset/done/")
}

func (h *UserHandler) PasswordResetDone(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/password_reset_done.html", nil)
}

func (h *UserHandler) ResetConfirmForm(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/password_reset_confirm.html", gin.H{
		"Form": &form.PasswordResetConfirmInput{Email: c.Query("email")},
	})
}

func (h *UserHandler) ResetConfirm(c *gin.Context) {
	var in form.PasswordResetConfirmInput
	h.submit(c, "users/password_reset_confirm.html", &in, func() error {
		return h.svc.ResetPassword(c.Request.Context(), &in)
	}, "/auth/reset/done/")
}

func (h *UserHandler) ResetComplete(c *gin.Context) {
	h.Render(c, http.StatusOK, "users/password_reset_complete.html", nil)
}
