package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pollroom/internal/services"
	pollroom_errors "pollroom/pkg/errors"
)

// PollHandler handles poll lifecycle actions and the read views.
type PollHandler struct {
	service *services.PollService
}

func NewPollHandler(service *services.PollService) *PollHandler {
	return &PollHandler{service: service}
}

// Create handles POST /polls. Validation runs before the identity check so
// a malformed form never costs an identity lookup.
func (h *PollHandler) Create(c *gin.Context) {
	in := services.CreatePollInput{
		Question: c.PostForm("question"),
		Options:  c.PostFormArray("options"),
	}
	if err := in.Validate(); err != nil {
		failTo(c, "/polls/new", "missing_fields")
		return
	}

	userID, ok := services.CurrentUser(c.Request.Context())
	if !ok {
		toSignIn(c, "/polls/new")
		return
	}

	if _, err := h.service.Create(c.Request.Context(), userID, in); err != nil {
		if errors.Is(err, pollroom_errors.ErrInvalidInput) {
			failTo(c, "/polls/new", "missing_fields")
			return
		}
		failTo(c, "/polls/new", "create_failed")
		return
	}
	seeOther(c, "/polls?created=1")
}

// Update handles POST /polls/:id/update.
func (h *PollHandler) Update(c *gin.Context) {
	in := services.UpdatePollInput{
		ID:       c.Param("id"),
		Question: c.PostForm("question"),
		Option1:  c.PostForm("option1"),
		Option2:  c.PostForm("option2"),
	}
	pollPath := "/polls/" + in.ID

	if err := in.Validate(); err != nil {
		failTo(c, pollPath, "missing_fields")
		return
	}

	userID, ok := services.CurrentUser(c.Request.Context())
	if !ok {
		toSignIn(c, pollPath)
		return
	}

	if err := h.service.Update(c.Request.Context(), userID, in); err != nil {
		switch {
		case errors.Is(err, pollroom_errors.ErrForbidden):
			failTo(c, pollPath, "forbidden")
		case errors.Is(err, pollroom_errors.ErrNotFound):
			failTo(c, pollPath, "not_found")
		case errors.Is(err, pollroom_errors.ErrInvalidInput):
			failTo(c, pollPath, "missing_fields")
		default:
			failTo(c, pollPath, "update_failed")
		}
		return
	}
	seeOther(c, "/polls")
}

// Delete handles POST /polls/delete with the poll id in the form body. An
// empty id is silently ignored, before any identity or store work.
func (h *PollHandler) Delete(c *gin.Context) {
	pollID := c.PostForm("pollId")
	if pollID == "" {
		seeOther(c, "/polls")
		return
	}

	userID, ok := services.CurrentUser(c.Request.Context())
	if !ok {
		toSignIn(c, "/polls")
		return
	}

	if err := h.service.Delete(c.Request.Context(), userID, pollID); err != nil {
		if errors.Is(err, pollroom_errors.ErrInvalidInput) {
			seeOther(c, "/polls")
			return
		}
		failTo(c, "/polls", "delete_failed")
		return
	}
	seeOther(c, "/polls")
}

// List handles GET /polls.
func (h *PollHandler) List(c *gin.Context) {
	polls, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"polls": polls})
}

// Get handles GET /polls/:id. Anonymous viewers get the ballot state
// (voted=false); a caller who has voted gets the thank-you state.
func (h *PollHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pollroom_errors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get_failed"})
		return
	}
	c.JSON(http.StatusOK, detail)
}
