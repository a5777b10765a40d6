package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"pollroom/internal/services"
	pollroom_errors "pollroom/pkg/errors"
)

// VoteHandler handles ballot submission.
type VoteHandler struct {
	service *services.VoteService
}

func NewVoteHandler(service *services.VoteService) *VoteHandler {
	return &VoteHandler{service: service}
}

// Submit handles POST /polls/:id/vote. The cheap validation runs first: a
// malformed submission is bounced straight back to the poll without an
// error banner and without touching the identity provider or the store.
func (h *VoteHandler) Submit(c *gin.Context) {
	pollID := c.Param("id")
	option, _ := strconv.Atoi(c.PostForm("option"))
	pollPath := "/polls/" + pollID

	in := services.VoteInput{PollID: pollID, Option: option}
	if err := in.Validate(); err != nil {
		seeOther(c, pollPath)
		return
	}

	userID, ok := services.CurrentUser(c.Request.Context())
	if !ok {
		toSignIn(c, pollPath)
		return
	}

	if err := h.service.SubmitVote(c.Request.Context(), userID, in); err != nil {
		if errors.Is(err, pollroom_errors.ErrInvalidInput) {
			seeOther(c, pollPath)
			return
		}
		failTo(c, pollPath, "vote_failed")
		return
	}
	seeOther(c, pollPath+"?voted=1")
}
