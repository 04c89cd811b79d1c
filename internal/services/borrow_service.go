package services

import (
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/repositories"
)

var (
	// ErrUserNotFound is returned when the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRequestNotFound is returned when the referenced borrow request does not exist.
	ErrRequestNotFound = errors.New("borrow request not found")

	// ErrInvalidQuantity is returned when a borrow item quantity is not a positive integer.
	ErrInvalidQuantity = errors.New("quantity must be a positive integer")

	// ErrNoItems is returned when a borrow request is submitted without items.
	ErrNoItems = errors.New("borrow request must contain at least one item")

	// ErrInvalidStatus is returned when the submitted request status is not a known status.
	ErrInvalidStatus = errors.New("invalid request status")

	// ErrInvalidStatusTransition is returned when an operation is not allowed
	// in the request's current status.
	ErrInvalidStatusTransition = errors.New("operation not allowed in current request status")

	// ErrInsufficientAvailability is returned when approving a request would
	// drive an equipment's available quantity below zero.
	ErrInsufficientAvailability = errors.New("insufficient equipment availability")

	// ErrInventoryConflict is returned when restoring availability would
	// exceed the equipment's total quantity.
	ErrInventoryConflict = errors.New("availability restore exceeds total quantity")
)

// BorrowItemSpec is one line item of a borrow request submission. The owning
// request id is never taken from the spec; the service binds it.
type BorrowItemSpec struct {
	EquipmentID uint
	Quantity    int
	BorrowDate  time.Time
	ReturnDate  time.Time
}

// CreateRequestInput carries the header fields and ordered item specs of a
// borrow request submission.
type CreateRequestInput struct {
	UserID      uint
	RequestDate time.Time
	Status      models.RequestStatus
	Items       []BorrowItemSpec
}

// BorrowService manages borrow requests and their items as one aggregate.
type BorrowService interface {
	CreateRequest(input CreateRequestInput) (*models.BorrowRequest, error)
	AddItem(requestID uint, spec BorrowItemSpec) (*models.BorrowItem, error)
	FindByUserID(userID uint) ([]models.BorrowRequest, error)
	GetRequestDetails(requestID uint) ([]models.RequestItemDetail, error)
	ApproveRequest(requestID uint) (*models.BorrowRequest, error)
	RejectRequest(requestID uint) (*models.BorrowRequest, error)
	ReturnRequest(requestID uint) (*models.BorrowRequest, error)
	DeleteRequest(requestID uint) error
}

// txRunner is the subset of *gorm.DB the service needs to open transactions.
type txRunner interface {
	Transaction(fn func(tx *gorm.DB) error, opts ...*sql.TxOptions) error
}

type borrowService struct {
	db            txRunner
	userRepo      repositories.UserRepository
	equipmentRepo repositories.EquipmentRepository
	requestRepo   repositories.BorrowRequestRepository
	itemRepo      repositories.BorrowItemRepository
}

// NewBorrowService wires up all dependencies and returns a BorrowService.
func NewBorrowService(
	db *gorm.DB,
	userRepo repositories.UserRepository,
	equipmentRepo repositories.EquipmentRepository,
	requestRepo repositories.BorrowRequestRepository,
	itemRepo repositories.BorrowItemRepository,
) BorrowService {
	return &borrowService{
		db:            db,
		userRepo:      userRepo,
		equipmentRepo: equipmentRepo,
		requestRepo:   requestRepo,
		itemRepo:      itemRepo,
	}
}

// CreateRequest persists the request header and all of its items as one
// transaction. Any item failure rolls the whole aggregate back, header
// included. The returned header carries no item details; those are retrieved
// via GetRequestDetails.
func (s *borrowService) CreateRequest(input CreateRequestInput) (*models.BorrowRequest, error) {
	if len(input.Items) == 0 {
		return nil, ErrNoItems
	}

	status := input.Status
	if status == "" {
		status = models.RequestStatusPending
	}
	if !validStatus(status) {
		return nil, ErrInvalidStatus
	}

	requestDate := input.RequestDate
	if requestDate.IsZero() {
		requestDate = time.Now().UTC()
	}

	request := &models.BorrowRequest{
		Reference:   uuid.New(),
		RequestDate: requestDate,
		UserID:      input.UserID,
		Status:      status,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.GetByID(tx, input.UserID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if err := s.requestRepo.Create(tx, request); err != nil {
			log.Printf("[ERROR] CreateRequest: failed to create request header for user %d: %v", input.UserID, err)
			return err
		}

		for i, spec := range input.Items {
			if _, err := s.createItem(tx, request.ID, spec); err != nil {
				log.Printf("[ERROR] CreateRequest: item %d failed for request %d: %v", i+1, request.ID, err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	request.Items = nil
	log.Printf("[INFO] CreateRequest: created request %d (ref=%s) for user %d with %d items",
		request.ID, request.Reference, request.UserID, len(input.Items))
	return request, nil
}

// createItem materializes one borrow item bound to the given request id. The
// equipment must exist and the quantity must be positive.
func (s *borrowService) createItem(tx *gorm.DB, requestID uint, spec BorrowItemSpec) (*models.BorrowItem, error) {
	if spec.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.equipmentRepo.GetByID(tx, spec.EquipmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}

	item := &models.BorrowItem{
		BorrowRequestID: requestID,
		EquipmentID:     spec.EquipmentID,
		Quantity:        spec.Quantity,
		BorrowDate:      spec.BorrowDate,
		ReturnDate:      spec.ReturnDate,
	}
	if err := s.itemRepo.Create(tx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// AddItem appends a single item to an existing pending request.
func (s *borrowService) AddItem(requestID uint, spec BorrowItemSpec) (*models.BorrowItem, error) {
	var item *models.BorrowItem

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.GetByIDForUpdate(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != models.RequestStatusPending {
			return ErrInvalidStatusTransition
		}

		item, err = s.createItem(tx, requestID, spec)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] AddItem: added item %d (equipment %d, qty %d) to request %d",
		item.ID, item.EquipmentID, item.Quantity, requestID)
	return item, nil
}

// FindByUserID returns all borrow requests owned by the given user, in storage order.
func (s *borrowService) FindByUserID(userID uint) ([]models.BorrowRequest, error) {
	return s.requestRepo.ListByUser(nil, userID)
}

// GetRequestDetails returns the flattened item/equipment rows for one request,
// ordered by equipment name then item id. An unknown request id or a request
// without items yields an empty slice, not an error.
func (s *borrowService) GetRequestDetails(requestID uint) ([]models.RequestItemDetail, error) {
	return s.itemRepo.DetailsByRequest(nil, requestID)
}

// ApproveRequest moves a pending request to approved and decrements each
// item's equipment availability in the same transaction. The decrement is a
// conditional update, so two concurrent approvals cannot over-allocate; any
// shortfall rolls the whole approval back.
func (s *borrowService) ApproveRequest(requestID uint) (*models.BorrowRequest, error) {
	var updated *models.BorrowRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, err := s.lockPendingRequest(tx, requestID)
		if err != nil {
			return err
		}

		items, err := s.itemRepo.ListByRequest(tx, requestID)
		if err != nil {
			return err
		}
		for _, item := range items {
			n, err := s.equipmentRepo.AdjustAvailability(tx, item.EquipmentID, -item.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				log.Printf("[WARN] ApproveRequest: equipment %d cannot cover quantity %d for request %d",
					item.EquipmentID, item.Quantity, requestID)
				return ErrInsufficientAvailability
			}
		}

		now := time.Now().UTC()
		if err := s.requestRepo.UpdateStatus(tx, requestID, models.RequestStatusApproved, &now); err != nil {
			return err
		}
		request.Status = models.RequestStatusApproved
		request.ApprovalDate = &now
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] ApproveRequest: request %d approved", requestID)
	return updated, nil
}

// RejectRequest moves a pending request to rejected. Availability is untouched
// since nothing was allocated.
func (s *borrowService) RejectRequest(requestID uint) (*models.BorrowRequest, error) {
	var updated *models.BorrowRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, err := s.lockPendingRequest(tx, requestID)
		if err != nil {
			return err
		}
		if err := s.requestRepo.UpdateStatus(tx, requestID, models.RequestStatusRejected, nil); err != nil {
			return err
		}
		request.Status = models.RequestStatusRejected
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] RejectRequest: request %d rejected", requestID)
	return updated, nil
}

// ReturnRequest moves an approved request to returned and restores each
// item's equipment availability.
func (s *borrowService) ReturnRequest(requestID uint) (*models.BorrowRequest, error) {
	var updated *models.BorrowRequest

	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.GetByIDForUpdate(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status != models.RequestStatusApproved {
			log.Printf("[WARN] ReturnRequest: request %d is %s, not approved", requestID, request.Status)
			return ErrInvalidStatusTransition
		}

		items, err := s.itemRepo.ListByRequest(tx, requestID)
		if err != nil {
			return err
		}
		for _, item := range items {
			n, err := s.equipmentRepo.AdjustAvailability(tx, item.EquipmentID, item.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				log.Printf("[ERROR] ReturnRequest: restoring %d units of equipment %d for request %d exceeds total",
					item.Quantity, item.EquipmentID, requestID)
				return ErrInventoryConflict
			}
		}

		if err := s.requestRepo.UpdateStatus(tx, requestID, models.RequestStatusReturned, nil); err != nil {
			return err
		}
		request.Status = models.RequestStatusReturned
		updated = request
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[INFO] ReturnRequest: request %d returned", requestID)
	return updated, nil
}

// DeleteRequest removes a request together with its items. Approved requests
// must be returned first so allocated availability is not stranded.
func (s *borrowService) DeleteRequest(requestID uint) error {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		request, err := s.requestRepo.GetByIDForUpdate(tx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRequestNotFound
			}
			return err
		}
		if request.Status == models.RequestStatusApproved {
			return ErrInvalidStatusTransition
		}

		if err := s.itemRepo.DeleteByRequest(tx, requestID); err != nil {
			return err
		}
		return s.requestRepo.Delete(tx, requestID)
	})
	if err != nil {
		return err
	}
	log.Printf("[INFO] DeleteRequest: request %d removed", requestID)
	return nil
}

func (s *borrowService) lockPendingRequest(tx *gorm.DB, requestID uint) (*models.BorrowRequest, error) {
	request, err := s.requestRepo.GetByIDForUpdate(tx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		log.Printf("[WARN] request %d is %s, not pending", requestID, request.Status)
		return nil, ErrInvalidStatusTransition
	}
	return request, nil
}

func validStatus(status models.RequestStatus) bool {
	switch status {
	case models.RequestStatusPending, models.RequestStatusApproved,
		models.RequestStatusRejected, models.RequestStatusReturned:
		return true
	}
	return false
}
