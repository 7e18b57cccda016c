package router

import (
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"yatube/internal/cache"
	"yatube/internal/handler"
	"yatube/internal/middleware"
	"yatube/internal/pkg"
	"yatube/internal/repository/redis"
	"yatube/internal/service"
	"yatube/internal/storage"
	"yatube/internal/view"
)

// Deps are the long-lived resources the HTTP layer is built from.
type Deps struct {
	DB       *gorm.DB
	Sessions *redis.SessionRepository
	Emails   *redis.EmailRepository
	Tokens   *pkg.TokenIssuer
	Mailer   pkg.Mailer
	Pages    *cache.PageCache
	Images   storage.ImageStore

	CookieName   string
	SecureCookie bool
	// MediaRoot is served under MediaPrefix when images live on local disk.
	MediaRoot   string
	MediaPrefix string
}

func InitRouter(d Deps) (*gin.Engine, error) {
	views, err := view.New(d.Images.URL)
	if err != nil {
		return nil, err
	}
	pages := &handler.Pages{Views: views}
	auth := &middleware.Auth{
		Tokens:     d.Tokens,
		Sessions:   d.Sessions,
		CookieName: d.CookieName,
		Secure:     d.SecureCookie,
	}

	emailSvc := service.NewEmailService(d.Mailer, d.Emails)
	feed := handler.NewFeedHandler(pages, service.NewFeedService(d.DB), d.Pages)
	post := handler.NewPostHandler(pages,
		service.NewPostService(d.DB, d.Images, d.Pages),
		service.NewCommentService(d.DB))
	follow := handler.NewFollowHandler(pages, service.NewFollowService(d.DB))
	user := handler.NewUserHandler(pages, service.NewUserService(d.DB, d.Sessions, d.Tokens, emailSvc), auth)

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(pages.Recovery(), middleware.Logger(), auth.Session())
	r.NoRoute(pages.NotFound)

	if d.MediaRoot != "" {
		r.Static(strings.TrimSuffix(d.MediaPrefix, "/"), d.MediaRoot)
	}

	// read-only pages
	r.GET("/", feed.Index)
	r.GET("/group/:slug/", feed.Group)
	r.GET("/profile/:username/", feed.Profile)
	r.GET("/posts/:id/", post.Detail)

	// pages behind login
	authed := r.Group("/")
	authed.Use(middleware.LoginRequired())
	{
		authed.GET("/create/", post.CreateForm)
		authed.POST("/create/", post.Create)
		authed.GET("/posts/:id/edit/", post.EditForm)
		authed.POST("/posts/:id/edit/", post.Edit)
		authed.POST("/posts/:id/comment/", post.AddComment)
		authed.GET("/follow/", feed.Following)
		authed.GET("/profile/:username/follow/", follow.Follow)
		authed.POST("/profile/:username/follow/", follow.Follow)
		authed.GET("/profile/:username/unfollow/", follow.Unfollow)
		authed.POST("/profile/:username/unfollow/", follow.Unfollow)
	}

	// accounts
	users := r.Group("/auth")
	{
		users.GET("/signup/", user.SignupForm)
		users.POST("/signup/", user.Signup)
		users.GET("/login/", user.LoginForm)
		users.POST("/login/", user.Login)
		users.GET("/logout/", user.Logout)
		users.POST("/logout/", user.Logout)
		users.GET("/password_reset/", user.PasswordResetForm)
		users.POST("/password_reset/", user.PasswordReset)
		users.GET("/password_reset/done/", user.PasswordResetDone)
		users.GET("/reset/", user.ResetConfirmForm)
		users.POST("/reset/", user.ResetConfirm)
		users.GET("/reset/done/", user.ResetComplete)
	}
	password := users.Group("/password_change")
	password.Use(middleware.LoginRequired())
	{
		password.GET("/", user.PasswordChangeForm)
		password.POST("/", user.PasswordChange)
		password.GET("/done/", user.PasswordChangeDone)
	}

	return r, nil
}
