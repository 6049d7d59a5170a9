package controllers

import (
	"errors"
	"net/http"

	"habitstracker/models"
	"habitstracker/services"
	"habitstracker/store"

	"github.com/gin-gonic/gin"
)

type friendInput struct {
	FriendID string `json:"friend_id" binding:"required"`
}

func friendStatusCode(err error) int {
	switch {
	case errors.Is(err, services.ErrPreconditionFailed):
		return http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (ctl *Controller) session(c *gin.Context) (*services.Session, bool) {
	uid := c.GetString("userID")
	s, err := ctl.Sessions.Get(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}

// POST /friends/requests
func (ctl *Controller) AddRequest(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}
	var input friendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Friends.AddRequest(c.Request.Context(), s.UID, input.FriendID); err != nil {
		c.JSON(friendStatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "request sent"})
}

// POST /friends/confirm
func (ctl *Controller) ConfirmFriend(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}
	var input friendInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.Friends.ConfirmFriend(c.Request.Context(), s.UID, input.FriendID); err != nil {
		c.JSON(friendStatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "friend confirmed"})
}

// DELETE /friends/:id
func (ctl *Controller) RemoveFriend(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}
	friendID := c.Param("id")
	if err := s.Friends.RemoveFriend(c.Request.Context(), s.UID, friendID); err != nil {
		c.JSON(friendStatusCode(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// GET /friends?status=confirmed|waiting|request
func (ctl *Controller) ListFriends(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}
	status := models.FriendStatus(c.DefaultQuery("status", string(models.StatusConfirmed)))
	ids := s.Friends.GetFriendsIdsWithStatus(status)
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"status": status, "ids": ids})
}

// GET /friends/:id/status
func (ctl *Controller) GetFriendStatus(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}
	status, exists := s.Friends.GetFriendStatus(c.Param("id"))
	if !exists {
		c.JSON(http.StatusOK, gin.H{"status": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// GET /friends/requests — pending requesters resolved to profiles.
func (ctl *Controller) GetRequests(c *gin.Context) {
	s, ok := ctl.session(c)
	if !ok {
		return
	}
	pending := s.Friends.GetFriendsIdsWithStatus(models.StatusRequest)
	users, err := s.Friends.GetRequests(c.Request.Context(), pending)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, users)
}
