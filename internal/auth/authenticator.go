// Package auth implements the authentication lifecycle: the soft-fail
// request authenticator, the authorization gate, and the login / refresh /
// logout / register endpoints.
package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/notekeeper/internal/auth/authctx"
	"github.com/kbukum/notekeeper/internal/cookie"
	apperrors "github.com/kbukum/notekeeper/internal/errors"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/token"
	"github.com/kbukum/notekeeper/internal/user"
)

// Cookie names for the two session tokens.
const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// TokenSource supplies a bearer string from a request. The default reads
// the access token cookie; any other transport (e.g. a header) can be
// substituted without touching validation or principal resolution.
type TokenSource func(*gin.Context) (string, bool)

// CookieTokenSource returns a TokenSource reading the named cookie.
func CookieTokenSource(name string) TokenSource {
	return func(c *gin.Context) (string, bool) {
		return cookie.Read(c, name)
	}
}

// Authenticator resolves the principal behind each request.
type Authenticator struct {
	tokens *token.Service
	users  user.Repository
	source TokenSource
	log    *logger.Logger
}

// NewAuthenticator creates an authenticator using the access token cookie
// as its credential source.
func NewAuthenticator(tokens *token.Service, users user.Repository, log *logger.Logger) *Authenticator {
	return &Authenticator{
		tokens: tokens,
		users:  users,
		source: CookieTokenSource(AccessTokenCookie),
		log:    log.WithComponent("authenticator"),
	}
}

// WithTokenSource replaces the credential source and returns the receiver.
func (a *Authenticator) WithTokenSource(src TokenSource) *Authenticator {
	a.source = src
	return a
}

// Middleware returns the soft-fail authentication middleware. It never
// aborts: a request with no usable credential proceeds anonymously and is
// only rejected by RequireUser (or whatever gate a route installs).
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := a.source(c)
		if !ok {
			c.Next()
			return
		}

		userID, err := a.tokens.Validate(raw, token.KindAccess)
		if err != nil {
			// Expired, malformed, and forged tokens are all the same to
			// the client; the distinction only matters here.
			a.log.Debug("access token rejected", map[string]interface{}{
				"reason": err.Error(),
			})
			c.Next()
			return
		}

		u, err := a.users.ByID(c.Request.Context(), userID)
		if err != nil {
			if !errors.Is(err, user.ErrNotFound) {
				a.log.Warn("principal lookup failed", map[string]interface{}{
					"user_id": userID,
					"error":   err.Error(),
				})
			}
			c.Next()
			return
		}

		ctx := authctx.Set(c.Request.Context(), &authctx.Identity{User: u, Token: raw})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireUser is the authorization gate: it rejects requests that carry no
// authenticated identity with a standard 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authctx.Get(c.Request.Context()); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.Unauthorized("").ToResponse())
			return
		}
		c.Next()
	}
}
