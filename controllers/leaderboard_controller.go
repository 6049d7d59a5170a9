package controllers

import (
	"net/http"

	"habitstracker/models"

	"github.com/gin-gonic/gin"
)

// GET /leaderboard?frame=daily|weekly&scope=global|private
func (ctl *Controller) GetLeaderboard(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}

	tf := models.TimeFrame(c.DefaultQuery("frame", string(models.TimeFrameDaily)))
	if tf != models.TimeFrameDaily && tf != models.TimeFrameWeekly {
		c.JSON(http.StatusBadRequest, gin.H{"error": "frame must be daily or weekly"})
		return
	}
	scope := models.Scope(c.DefaultQuery("scope", string(models.ScopeGlobal)))
	if scope != models.ScopeGlobal && scope != models.ScopePrivate {
		c.JSON(http.StatusBadRequest, gin.H{"error": "scope must be global or private"})
		return
	}

	var memberIds []string
	if scope == models.ScopePrivate {
		memberIds = s.Friends.GetFriendsIdsWithStatus(models.StatusConfirmed)
	}

	board, position, err := ctl.Boards.Board(c.Request.Context(), s.UID, memberIds, tf, scope)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"frame":    tf,
		"scope":    scope,
		"position": position,
		"board":    board,
	})
}
