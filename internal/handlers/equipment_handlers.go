package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/services"
)

type EquipmentHandler struct {
	svc services.EquipmentService
}

type createEquipmentRequest struct {
	Name              string `json:"name" binding:"required"`
	Tag               string `json:"tag" binding:"required"`
	Condition         string `json:"condition" binding:"required"`
	TotalQuantity     int    `json:"total_quantity" binding:"min=0"`
	AvailableQuantity int    `json:"available_quantity" binding:"min=0"`
}

func (h *EquipmentHandler) createEquipment(c *gin.Context) {
	var req createEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	equipment, err := h.svc.CreateEquipment(services.EquipmentInput{
		Name:              req.Name,
		Tag:               req.Tag,
		Condition:         models.EquipmentCondition(req.Condition),
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: req.AvailableQuantity,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, equipment)
}

// searchEquipment forwards the raw query parameters; sanitization and
// predicate composition happen in the service.
func (h *EquipmentHandler) searchEquipment(c *gin.Context) {
	params := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	equipment, err := h.svc.SearchEquipment(params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

func (h *EquipmentHandler) getEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	equipment, err := h.svc.GetEquipment(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

type replaceEquipmentRequest struct {
	Name              *string `json:"name"`
	Tag               *string `json:"tag"`
	Condition         *string `json:"condition"`
	TotalQuantity     *int    `json:"total_quantity" binding:"omitempty,min=0"`
	AvailableQuantity *int    `json:"available_quantity" binding:"omitempty,min=0"`
}

func (h *EquipmentHandler) replaceEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	var req replaceEquipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := services.EquipmentPatch{
		Name:              req.Name,
		Tag:               req.Tag,
		TotalQuantity:     req.TotalQuantity,
		AvailableQuantity: req.AvailableQuantity,
	}
	if req.Condition != nil {
		condition := models.EquipmentCondition(*req.Condition)
		patch.Condition = &condition
	}

	equipment, err := h.svc.ReplaceEquipment(id, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, equipment)
}

func (h *EquipmentHandler) deleteEquipment(c *gin.Context) {
	id, ok := parseIDParam(c, "equipment")
	if !ok {
		return
	}
	if err := h.svc.DeleteEquipment(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
