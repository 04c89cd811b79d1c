package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/services"
)

type BorrowHandler struct {
	svc services.BorrowService
}

type borrowItemSpec struct {
	EquipmentID uint      `json:"equipment_id" binding:"required"`
	Quantity    int       `json:"quantity" binding:"required"`
	BorrowDate  time.Time `json:"borrow_date" binding:"required"`
	ReturnDate  time.Time `json:"return_date" binding:"required"`
}

type createRequestRequest struct {
	UserID      uint             `json:"user_id" binding:"required"`
	RequestDate *time.Time       `json:"request_date"`
	Status      string           `json:"status"`
	Items       []borrowItemSpec `json:"items" binding:"required,min=1,dive"`
}

func (h *BorrowHandler) createRequest(c *gin.Context) {
	var req createRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := services.CreateRequestInput{
		UserID: req.UserID,
		Status: models.RequestStatus(req.Status),
		Items:  make([]services.BorrowItemSpec, 0, len(req.Items)),
	}
	if req.RequestDate != nil {
		input.RequestDate = *req.RequestDate
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, services.BorrowItemSpec{
			EquipmentID: item.EquipmentID,
			Quantity:    item.Quantity,
			BorrowDate:  item.BorrowDate,
			ReturnDate:  item.ReturnDate,
		})
	}

	request, err := h.svc.CreateRequest(input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, request)
}

func (h *BorrowHandler) addItem(c *gin.Context) {
	id, ok := parseIDParam(c, "request")
	if !ok {
		return
	}
	var req borrowItemSpec
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := h.svc.AddItem(id, services.BorrowItemSpec{
		EquipmentID: req.EquipmentID,
		Quantity:    req.Quantity,
		BorrowDate:  req.BorrowDate,
		ReturnDate:  req.ReturnDate,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *BorrowHandler) getRequestDetails(c *gin.Context) {
	id, ok := parseIDParam(c, "request")
	if !ok {
		return
	}
	details, err := h.svc.GetRequestDetails(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *BorrowHandler) listUserRequests(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}
	requests, err := h.svc.FindByUserID(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *BorrowHandler) approveRequest(c *gin.Context) {
	h.transition(c, h.svc.ApproveRequest)
}

func (h *BorrowHandler) rejectRequest(c *gin.Context) {
	h.transition(c, h.svc.RejectRequest)
}

func (h *BorrowHandler) returnRequest(c *gin.Context) {
	h.transition(c, h.svc.ReturnRequest)
}

func (h *BorrowHandler) transition(c *gin.Context, fn func(uint) (*models.BorrowRequest, error)) {
	id, ok := parseIDParam(c, "request")
	if !ok {
		return
	}
	request, err := fn(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, request)
}

func (h *BorrowHandler) deleteRequest(c *gin.Context) {
	id, ok := parseIDParam(c, "request")
	if !ok {
		return
	}
	if err := h.svc.DeleteRequest(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
