package handler

import (
	"context"
	"net/http"
	"strconv"

	"crimewatch/internal/middleware"
	"crimewatch/internal/models"
	"crimewatch/internal/service"

	"github.com/gin-gonic/gin"
)

// LocationRecorder is implemented by *service.LocationService.
type LocationRecorder interface {
	RecordLocation(ctx context.Context, in service.LocationInput) (*service.LocationResult, error)
	ListHistory(ctx context.Context, userID uint, limit int) ([]models.LocationHistoryEntry, error)
}

type LocationHandler struct {
	svc LocationRecorder
}

func NewLocationHandler(svc LocationRecorder) *LocationHandler {
	return &LocationHandler{svc: svc}
}

// Pointers so that 0 passes the required check; 0,0 is a real place.
type checkLocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180"`
	Accuracy  *float64 `json:"accuracy" binding:"omitempty,gte=0"`
	Address   *string  `json:"address" binding:"omitempty,max=512"`
	Activity  *string  `json:"activity" binding:"omitempty,max=64"`
}

// CheckLocation records a ping and reports the zone it falls in, if any.
func (h *LocationHandler) CheckLocation(c *gin.Context) {
	userID := middleware.GetUserID(c)
	var req checkLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.svc.RecordLocation(c.Request.Context(), service.LocationInput{
		UserID:    userID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		Accuracy:  req.Accuracy,
		Address:   req.Address,
		Activity:  req.Activity,
	})
	if err != nil {
		respondError(c, err, "location check failed")
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *LocationHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = n
	}
	list, err := h.svc.ListHistory(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, err, "list history failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": list, "count": len(list)})
}
