package handlers

import (
	"net/http"

	"lightbulb/internal/middleware"
	"lightbulb/internal/models"
	"lightbulb/internal/services"
	"lightbulb/internal/utils"

	"github.com/gin-gonic/gin"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Cast 给 idea 投票。重复投票返回 409 "already voted"
func (h *VoteHandler) Cast(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	ideaID := uint(utils.StringToInt(c.Param("id")))

	vote, err := h.votes.Cast(user.ID, ideaID)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "vote_id": vote.ID})
}

// Retract 撤回投票。没有投过票返回 404
func (h *VoteHandler) Retract(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	ideaID := uint(utils.StringToInt(c.Param("id")))

	if err := h.votes.Retract(user.ID, ideaID); err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
