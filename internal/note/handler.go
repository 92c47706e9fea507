package note

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/notekeeper/internal/auth/authctx"
	apperrors "github.com/kbukum/notekeeper/internal/errors"
	"github.com/kbukum/notekeeper/internal/logger"
	"github.com/kbukum/notekeeper/internal/server"
	"github.com/kbukum/notekeeper/internal/validation"
)

// Handler serves the note endpoints. All routes sit behind the
// authorization gate, so an identity is always present in the context.
type Handler struct {
	notes Repository
	log   *logger.Logger
}

// NewHandler creates the note endpoint handler.
func NewHandler(notes Repository, log *logger.Logger) *Handler {
	return &Handler{
		notes: notes,
		log:   log.WithComponent("notes"),
	}
}

type createRequest struct {
	Description string `json:"description" validate:"required,max=225"`
}

// List handles GET /notes. The owner filter comes solely from the
// authenticated identity — nothing in the request can widen it.
func (h *Handler) List(c *gin.Context) {
	id := authctx.MustGet(c.Request.Context())

	notes, err := h.notes.ListByOwner(c.Request.Context(), id.User.ID)
	if err != nil {
		h.log.WithError(err).Error("note listing failed")
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}

	c.JSON(http.StatusOK, notes)
}

// Create handles POST /notes, inserting a note owned by the caller.
func (h *Handler) Create(c *gin.Context) {
	id := authctx.MustGet(c.Request.Context())

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		server.RespondWithError(c, apperrors.Validation("request body must be valid JSON"))
		return
	}
	if err := validation.Validate(&req); err != nil {
		server.RespondWithError(c, err)
		return
	}

	n := &Note{
		Description: req.Description,
		OwnerID:     id.User.ID,
	}
	if err := h.notes.Create(c.Request.Context(), n); err != nil {
		h.log.WithError(err).Error("note creation failed")
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}

	c.JSON(http.StatusCreated, n)
}
