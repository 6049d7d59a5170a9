package controllers

import (
	"errors"
	"net/http"

	"habitstracker/models"
	"habitstracker/store"

	"github.com/gin-gonic/gin"
)

// PUT /scores/today
func (ctl *Controller) UpdateDailyScores(c *gin.Context) {
	uid := c.GetString("userID")

	var req struct {
		Score int `json:"score"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := ctl.Scores.UpdateDailyScores(c.Request.Context(), uid, req.Score); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /activities
func (ctl *Controller) LogActivity(c *gin.Context) {
	uid := c.GetString("userID")

	var req struct {
		Kind     models.ActivityKind `json:"kind" binding:"required"`
		Quantity float64             `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	improved, err := ctl.Scores.LogActivity(c.Request.Context(), uid, req.Kind, req.Quantity)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, store.ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"new_record": improved})
}

// GET /activities/catalog
func (ctl *Controller) GetActivityCatalog(c *gin.Context) {
	catalog := make([]gin.H, 0, len(models.ActivityKinds))
	for _, kind := range models.ActivityKinds {
		def := models.ActivityCatalog[kind]
		catalog = append(catalog, gin.H{
			"kind":        kind,
			"point_value": def.PointValue,
			"unit":        def.Unit,
		})
	}
	c.JSON(http.StatusOK, catalog)
}
