// Package cookie is a key/value accessor for the HTTP cookies that carry
// session tokens. It knows nothing about token semantics; the same
// accessor serves both the access and the refresh cookie.
//
// All cookies written here share fixed attributes: HTTP-only, secure,
// SameSite=None, path "/". No client-readable flag is ever set. Lifetime
// is left to the token's own expiry (MaxAge 0) — expiry is enforced by
// token validation, not cookie deletion, except on explicit logout.
package cookie

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Write sets a cookie with the fixed security attributes.
func Write(c *gin.Context, name, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}

// Read returns the raw cookie value. A missing cookie is not an error;
// the second return is false.
func Read(c *gin.Context, name string) (string, bool) {
	ck, err := c.Request.Cookie(name)
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

// Clear instructs the client to delete the cookie. Attributes match Write
// so the deletion targets the same cookie scope.
func Clear(c *gin.Context, name string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})
}
