package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// CookieName carries the session token for server-rendered views.
const CookieName = "portal_session"

// LoginPath is where unauthenticated visitors are sent.
const LoginPath = "/login"

// RequireAPI rejects API calls without a session with 401.
func (g *Guard) RequireAPI() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Check(c.Request.Context(), requestToken(c)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "login required"})
			return
		}
		c.Set("email", g.Email(c.Request.Context()))
		c.Next()
	}
}

// RequireView redirects visitors without a session to the login view.
func (g *Guard) RequireView() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := g.Check(c.Request.Context(), requestToken(c)); err != nil {
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authorized reports whether the request carries a valid session.
func (g *Guard) Authorized(c *gin.Context) bool {
	return g.Check(c.Request.Context(), requestToken(c)) == nil
}

// SetCookie hands the session token to a browser. Nothing is set when
// tokens are disabled.
func SetCookie(c *gin.Context, s Session, secure bool) {
	if s.Token == "" {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, s.Token, 0, "/", "", secure, true)
}

// ClearCookie expires the session cookie.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}

func requestToken(c *gin.Context) string {
	authz := c.GetHeader("Authorization")
	if authz != "" && strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	if tok, err := c.Cookie(CookieName); err == nil {
		return tok
	}
	return ""
}
