package controllers

import (
	"errors"
	"net/http"

	"habitstracker/services"
	"habitstracker/store"

	"github.com/gin-gonic/gin"
)

// GET /user/profile
func (ctl *Controller) GetProfile(c *gin.Context) {
	uid := c.GetString("userID")
	user, err := ctl.Users.GetUser(c.Request.Context(), uid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, user)
}

// PUT /user/field
func (ctl *Controller) ModifyUserField(c *gin.Context) {
	uid := c.GetString("userID")

	var req struct {
		Field string `json:"field" binding:"required"`
		Value any    `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.Users.ModifyUserField(c.Request.Context(), uid, req.Field, req.Value); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /user/username
func (ctl *Controller) SetUsername(c *gin.Context) {
	uid := c.GetString("userID")

	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.Users.SetUsername(c.Request.Context(), uid, req.Username); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, services.ErrPreconditionFailed) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// PUT /user/picture
func (ctl *Controller) SetProfilePicture(c *gin.Context) {
	uid := c.GetString("userID")

	var req struct {
		Picture string `json:"picture" binding:"required"` // data-URI base64
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := ctl.Users.SetProfilePicture(c.Request.Context(), uid, req.Picture)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"picture": url})
}

// DELETE /user
func (ctl *Controller) DeleteAccount(c *gin.Context) {
	uid := c.GetString("userID")

	ctl.Sessions.Drop(uid)
	if err := ctl.Users.DeleteAccount(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
