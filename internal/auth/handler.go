package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/notekeeper/internal/auth/password"
	"github.com/kbukum/notekeeper/internal/cookie"
	apperrors "github.com/kbukum/notekeeper/internal/errors"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/server"
	"github.com/kbukum/notekeeper/internal/token"
	"github.com/kbukum/notekeeper/internal/user"
	"github.com/kbukum/notekeeper/internal/validation"
)

// Handler serves the authentication endpoints. The session is a pure state
// machine over client calls: every transition re-derives from the incoming
// request, nothing is persisted server-side.
type Handler struct {
	users  user.Repository
	tokens *token.Service
	hasher password.Hasher
	log    *logger.Logger
}

// NewHandler creates the auth endpoint handler.
func NewHandler(users user.Repository, tokens *token.Service, hasher password.Hasher, log *logger.Logger) *Handler {
	return &Handler{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		log:    log.WithComponent("auth"),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// loginFailure is the constant-shape login rejection. It never reveals
// which of username or password was wrong.
func loginFailure(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "invalid username or password",
	})
}

// Login handles POST /login. On success both token cookies are set; on any
// failure no cookie is touched.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		loginFailure(c)
		return
	}

	u, err := h.users.ByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			loginFailure(c)
			return
		}
		h.log.WithError(err).Error("user lookup failed during login")
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}

	if err := h.hasher.Verify(req.Password, u.PasswordHash); err != nil {
		loginFailure(c)
		return
	}

	access, err := h.tokens.Issue(u.ID, token.KindAccess)
	if err == nil {
		var refresh string
		refresh, err = h.tokens.Issue(u.ID, token.KindRefresh)
		if err == nil {
			cookie.Write(c, AccessTokenCookie, access)
			cookie.Write(c, RefreshTokenCookie, refresh)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
	}

	h.log.WithError(err).Error("token issuance failed during login")
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "could not establish session",
	})
}

// Refresh handles POST /refresh. A valid refresh cookie mints a new access
// token; everything else leaves the access cookie untouched.
func (h *Handler) Refresh(c *gin.Context) {
	raw, ok := cookie.Read(c, RefreshTokenCookie)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"refreshed": false})
		return
	}

	userID, err := h.tokens.Validate(raw, token.KindRefresh)
	if err != nil {
		h.log.Debug("refresh token rejected", map[string]interface{}{
			"reason": err.Error(),
		})
		c.JSON(http.StatusUnauthorized, gin.H{"refreshed": false})
		return
	}

	access, err := h.tokens.Issue(userID, token.KindAccess)
	if err != nil {
		h.log.WithError(err).Error("token issuance failed during refresh")
		c.JSON(http.StatusInternalServerError, gin.H{"refreshed": false})
		return
	}

	cookie.Write(c, AccessTokenCookie, access)
	c.JSON(http.StatusOK, gin.H{"refreshed": true})
}

// Logout handles POST /logout. Cookie deletion is unconditional — there is
// no state in which logout leaves a stale cookie behind. The tokens
// themselves stay valid until natural expiry (accepted limitation of the
// stateless scheme).
func (h *Handler) Logout(c *gin.Context) {
	cookie.Clear(c, AccessTokenCookie)
	cookie.Clear(c, RefreshTokenCookie)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// IsAuthenticated handles POST /is-authenticated. The RequireUser gate in
// front of it produces the 401 for anonymous callers; reaching this
// handler means authentication succeeded.
func (h *Handler) IsAuthenticated(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"authenticated": true})
}

// RegisterUser handles POST /register. Validation failures return 400 with
// field-level detail; success echoes the created account (never the
// password) and leaves the caller anonymous — registering does not log in.
func (h *Handler) RegisterUser(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("request body must be valid JSON"))
		return
	}

	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		h.log.WithError(err).Error("password hashing failed")
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}

	u := &user.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.users.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, user.ErrUsernameTaken) {
			appErr := apperrors.AlreadyExists("user").WithDetail("fields", []validation.FieldError{
				{Field: "username", Message: "is already taken"},
			})
			server.RespondWithError(c, appErr)
			return
		}
		h.log.WithError(err).Error("user creation failed")
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
	})
}
