package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/services"
)

// RegisterRoutes wires all endpoints onto the router.
func RegisterRoutes(
	r *gin.Engine,
	auth services.AuthService,
	equipment services.EquipmentService,
	borrow services.BorrowService,
	sessions services.SessionStore,
	jwtSecret []byte,
) {
	ah := &AuthHandler{svc: auth}
	eh := &EquipmentHandler{svc: equipment}
	bh := &BorrowHandler{svc: borrow}

	r.POST("/auth/register", ah.register)
	r.POST("/auth/login", ah.login)

	authed := r.Group("/", RequireAuth(jwtSecret, sessions))
	staff := RequireRole(models.UserRoleStaff, models.UserRoleAdmin)
	admin := RequireRole(models.UserRoleAdmin)

	authed.POST("/auth/logout", ah.logout)

	// Equipment catalogue
	authed.GET("/equipment", eh.searchEquipment)
	authed.GET("/equipment/:id", eh.getEquipment)
	authed.POST("/equipment", staff, eh.createEquipment)
	authed.PUT("/equipment/:id", staff, eh.replaceEquipment)
	authed.DELETE("/equipment/:id", admin, eh.deleteEquipment)

	// Borrow requests
	authed.POST("/requests", bh.createRequest)
	authed.GET("/requests/:id/details", bh.getRequestDetails)
	authed.POST("/requests/:id/items", bh.addItem)
	authed.POST("/requests/:id/approve", staff, bh.approveRequest)
	authed.POST("/requests/:id/reject", staff, bh.rejectRequest)
	authed.POST("/requests/:id/return", staff, bh.returnRequest)
	authed.DELETE("/requests/:id", bh.deleteRequest)
	authed.GET("/users/:id/requests", bh.listUserRequests)

	// User administration
	authed.GET("/users", admin, ah.listUsers)
	authed.GET("/users/:id", admin, ah.getUser)
	authed.DELETE("/users/:id", admin, ah.deleteUser)
}

// respondError maps domain sentinels onto HTTP statuses; anything unknown is
// treated as a storage failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrEquipmentNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrRequestNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrInvalidAvailabilityBound),
		errors.Is(err, services.ErrInvalidQuantity),
		errors.Is(err, services.ErrInvalidQuantities),
		errors.Is(err, services.ErrNoItems),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidRole):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrEmailTaken),
		errors.Is(err, services.ErrInvalidStatusTransition),
		errors.Is(err, services.ErrInsufficientAvailability),
		errors.Is(err, services.ErrInventoryConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " id"})
		return 0, false
	}
	return uint(id), true
}
