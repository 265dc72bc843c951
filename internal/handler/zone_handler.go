package handler

import (
	"context"
	"net/http"

	"crimewatch/internal/models"
	"crimewatch/internal/service"

	"github.com/gin-gonic/gin"
)

// ZoneManager is implemented by *service.ZoneService.
type ZoneManager interface {
	ListActiveZones(ctx context.Context) ([]models.GeofenceZone, error)
	ListZones(ctx context.Context) ([]models.GeofenceZone, error)
	GetZone(ctx context.Context, id uint) (*models.GeofenceZone, error)
	CreateZone(ctx context.Context, in service.ZoneInput) (*models.GeofenceZone, error)
	UpdateZone(ctx context.Context, id uint, p service.ZonePatch) (*models.GeofenceZone, error)
	DeleteZone(ctx context.Context, id uint) error
	RefreshZoneStats(ctx context.Context, id uint) (*models.GeofenceZone, error)
	RefreshAllZoneStats(ctx context.Context) (service.RefreshSummary, error)
}

// HotspotGenerator is implemented by *service.ZoneGenerator.
type HotspotGenerator interface {
	AutoGenerateZones(ctx context.Context) (*service.GenerateResult, error)
}

type ZoneHandler struct {
	zones ZoneManager
	gen   HotspotGenerator
}

func NewZoneHandler(zones ZoneManager, gen HotspotGenerator) *ZoneHandler {
	return &ZoneHandler{zones: zones, gen: gen}
}

type createZoneRequest struct {
	Name            string   `json:"name" binding:"required,max=255"`
	CenterLatitude  *float64 `json:"center_latitude" binding:"required,gte=-90,lte=90"`
	CenterLongitude *float64 `json:"center_longitude" binding:"required,gte=-180,lte=180"`
	RadiusMeters    float64  `json:"radius_meters" binding:"required,gt=0"`
	RiskLevel       string   `json:"risk_level" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL low medium high critical"`
	District        *string  `json:"district" binding:"omitempty,max=128"`
	Division        *string  `json:"division" binding:"omitempty,max=128"`
}

type updateZoneRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=255"`
	CenterLatitude  *float64 `json:"center_latitude" binding:"omitempty,gte=-90,lte=90"`
	CenterLongitude *float64 `json:"center_longitude" binding:"omitempty,gte=-180,lte=180"`
	RadiusMeters    *float64 `json:"radius_meters" binding:"omitempty,gt=0"`
	RiskLevel       *string  `json:"risk_level" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL low medium high critical"`
	District        *string  `json:"district" binding:"omitempty,max=128"`
	Division        *string  `json:"division" binding:"omitempty,max=128"`
	IsActive        *bool    `json:"is_active"`
}

// ListActive is the public zone map, highest risk first.
func (h *ZoneHandler) ListActive(c *gin.Context) {
	zones, err := h.zones.ListActiveZones(c.Request.Context())
	if err != nil {
		respondError(c, err, "list zones failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones, "count": len(zones)})
}

// ListAll includes inactive zones.
func (h *ZoneHandler) ListAll(c *gin.Context) {
	zones, err := h.zones.ListZones(c.Request.Context())
	if err != nil {
		respondError(c, err, "list zones failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"zones": zones, "count": len(zones)})
}

func (h *ZoneHandler) Get(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	z, err := h.zones.GetZone(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "get zone failed")
		return
	}
	c.JSON(http.StatusOK, z)
}

func (h *ZoneHandler) Create(c *gin.Context) {
	var req createZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	z, err := h.zones.CreateZone(c.Request.Context(), service.ZoneInput{
		Name:            req.Name,
		CenterLatitude:  *req.CenterLatitude,
		CenterLongitude: *req.CenterLongitude,
		RadiusMeters:    req.RadiusMeters,
		RiskLevel:       req.RiskLevel,
		District:        req.District,
		Division:        req.Division,
	})
	if err != nil {
		respondError(c, err, "create zone failed")
		return
	}
	c.JSON(http.StatusCreated, z)
}

func (h *ZoneHandler) Update(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req updateZoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	z, err := h.zones.UpdateZone(c.Request.Context(), id, service.ZonePatch{
		Name:            req.Name,
		CenterLatitude:  req.CenterLatitude,
		CenterLongitude: req.CenterLongitude,
		RadiusMeters:    req.RadiusMeters,
		RiskLevel:       req.RiskLevel,
		District:        req.District,
		Division:        req.Division,
		IsActive:        req.IsActive,
	})
	if err != nil {
		respondError(c, err, "update zone failed")
		return
	}
	c.JSON(http.StatusOK, z)
}

func (h *ZoneHandler) Delete(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.zones.DeleteZone(c.Request.Context(), id); err != nil {
		respondError(c, err, "delete zone failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ZoneHandler) RefreshStats(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	z, err := h.zones.RefreshZoneStats(c.Request.Context(), id)
	if err != nil {
		respondError(c, err, "refresh failed")
		return
	}
	c.JSON(http.StatusOK, z)
}

func (h *ZoneHandler) RefreshAllStats(c *gin.Context) {
	sum, err := h.zones.RefreshAllZoneStats(c.Request.Context())
	if err != nil {
		respondError(c, err, "refresh failed")
		return
	}
	c.JSON(http.StatusOK, sum)
}

func (h *ZoneHandler) AutoGenerate(c *gin.Context) {
	res, err := h.gen.AutoGenerateZones(c.Request.Context())
	if err != nil {
		respondError(c, err, "auto-generate failed")
		return
	}
	c.JSON(http.StatusOK, res)
}
