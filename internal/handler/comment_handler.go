package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"pollroom/internal/services"
	pollroom_errors "pollroom/pkg/errors"
)

// CommentHandler handles comment creation.
type CommentHandler struct {
	service *services.CommentService
}

func NewCommentHandler(service *services.CommentService) *CommentHandler {
	return &CommentHandler{service: service}
}

// Create handles POST /polls/:id/comments and lands the browser back on
// the poll anchored at the comment section.
func (h *CommentHandler) Create(c *gin.Context) {
	pollID := c.Param("id")
	pollPath := "/polls/" + pollID

	in := services.CommentInput{
		PollID:  pollID,
		Content: c.PostForm("content"),
	}
	if err := in.Validate(); err != nil {
		failTo(c, pollPath, "missing_fields")
		return
	}

	userID, ok := services.CurrentUser(c.Request.Context())
	if !ok {
		toSignIn(c, pollPath)
		return
	}

	if _, err := h.service.CreateComment(c.Request.Context(), userID, in); err != nil {
		switch {
		case errors.Is(err, pollroom_errors.ErrInvalidInput):
			failTo(c, pollPath, "missing_fields")
		case errors.Is(err, pollroom_errors.ErrNotFound):
			failTo(c, pollPath, "not_found")
		default:
			failTo(c, pollPath, "comment_failed")
		}
		return
	}
	seeOther(c, pollPath+"#comments")
}
