package middleware

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"yatube/internal/pkg"
	"yatube/internal/policy"
	"yatube/internal/repository/redis"
)

const (
	ContextActorKey = "actor"
	LoginPath       = "/auth/login/"
)

// Auth resolves the session cookie into a policy.Actor.
type Auth struct {
	Tokens     *pkg.TokenIssuer
	Sessions   *redis.SessionRepository
	CookieName string
	Secure     bool
}

// Session never rejects a request: a missing, expired or superseded token
// leaves the request anonymous.
func (a *Auth) Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextActorKey, a.resolve(c))
		c.Next()
	}
}

func (a *Auth) resolve(c *gin.Context) policy.Actor {
	tokenStr, err := c.Cookie(a.CookieName)
	if err != nil || tokenStr == "" {
		return policy.Anonymous
	}
	claims, err := a.Tokens.Parse(tokenStr)
	if err != nil {
		a.ClearCookie(c)
		return policy.Anonymous
	}

	ctx := c.Request.Context()
	current, err := a.Sessions.GetUserToken(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, redis.ErrTokenNotFound) {
			log.Error().Err(err).Uint64("user_id", claims.UserID).Msg("session lookup failed")
		}
		a.ClearCookie(c)
		return policy.Anonymous
	}
	// a newer login replaced this token
	if current != tokenStr {
		a.ClearCookie(c)
		return policy.Anonymous
	}
	if err = a.Sessions.ExtendUserToken(ctx, claims.UserID); err != nil {
		log.Warn().Err(err).Uint64("user_id", claims.UserID).Msg("session extend failed")
	}
	return policy.Actor{ID: claims.UserID, Username: claims.Username}
}

func (a *Auth) SetCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.CookieName, token, int(a.Tokens.TTL().Seconds()), "/", "", a.Secure, true)
}

func (a *Auth) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(a.CookieName, "", -1, "/", "", a.Secure, true)
}

// LoginRequired sends anonymous actors to the login page, remembering where
// they were going.
func LoginRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFromCtx(c).IsAuthenticated() {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, LoginURL(c.Request.URL.RequestURI()))
		c.Abort()
	}
}

// LoginURL keeps slashes readable in the next parameter.
func LoginURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// SafeNext accepts only local absolute paths.
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}

func ActorFromCtx(c *gin.Context) policy.Actor {
	if v, ok := c.Get(ContextActorKey); ok {
		if actor, ok := v.(policy.Actor); ok {
			return actor
		}
	}
	return policy.Anonymous
}
