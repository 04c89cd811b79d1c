package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
)

type EquipmentRepository interface {
	Create(db *gorm.DB, equipment *models.Equipment) error
	Save(db *gorm.DB, equipment *models.Equipment) error
	List(db *gorm.DB) ([]models.Equipment, error)
	Search(db *gorm.DB, filter models.EquipmentFilter) ([]models.Equipment, error)
	GetByID(db *gorm.DB, id uint) (*models.Equipment, error)
	AdjustAvailability(db *gorm.DB, id uint, delta int) (int64, error)
	Delete(db *gorm.DB, id uint) error
}

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	GetByID(db *gorm.DB, id uint) (*models.User, error)
	GetByEmail(db *gorm.DB, email string) (*models.User, error)
	List(db *gorm.DB) ([]models.User, error)
	Delete(db *gorm.DB, id uint) error
}

type BorrowRequestRepository interface {
	Create(db *gorm.DB, request *models.BorrowRequest) error
	GetByID(db *gorm.DB, id uint) (*models.BorrowRequest, error)
	GetByIDForUpdate(db *gorm.DB, id uint) (*models.BorrowRequest, error)
	ListByUser(db *gorm.DB, userID uint) ([]models.BorrowRequest, error)
	UpdateStatus(db *gorm.DB, id uint, status models.RequestStatus, approvalDate *time.Time) error
	Delete(db *gorm.DB, id uint) error
}

type BorrowItemRepository interface {
	Create(db *gorm.DB, item *models.BorrowItem) error
	ListByRequest(db *gorm.DB, requestID uint) ([]models.BorrowItem, error)
	DetailsByRequest(db *gorm.DB, requestID uint) ([]models.RequestItemDetail, error)
	DeleteByRequest(db *gorm.DB, requestID uint) error
}

// concrete implementations

type equipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) EquipmentRepository {
	return &equipmentRepository{db: db}
}

func (r *equipmentRepository) Create(db *gorm.DB, equipment *models.Equipment) error {
	if db == nil {
		db = r.db
	}
	return db.Create(equipment).Error
}

func (r *equipmentRepository) Save(db *gorm.DB, equipment *models.Equipment) error {
	if db == nil {
		db = r.db
	}
	return db.Save(equipment).Error
}

func (r *equipmentRepository) List(db *gorm.DB) ([]models.Equipment, error) {
	if db == nil {
		db = r.db
	}
	var equipment []models.Equipment
	if err := db.Find(&equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

// Search applies the surviving filter predicates, ANDed together. An empty
// filter returns the full catalogue.
func (r *equipmentRepository) Search(db *gorm.DB, filter models.EquipmentFilter) ([]models.Equipment, error) {
	if db == nil {
		db = r.db
	}
	q := db.Model(&models.Equipment{})
	if filter.Name != nil {
		q = q.Where("name ILIKE ?", "%"+*filter.Name+"%")
	}
	if filter.MaxAvailable != nil {
		q = q.Where("available_quantity BETWEEN ? AND ?", 0, *filter.MaxAvailable)
	}
	if filter.Condition != nil {
		q = q.Where("condition = ?", *filter.Condition)
	}
	var equipment []models.Equipment
	if err := q.Find(&equipment).Error; err != nil {
		return nil, err
	}
	return equipment, nil
}

func (r *equipmentRepository) GetByID(db *gorm.DB, id uint) (*models.Equipment, error) {
	if db == nil {
		db = r.db
	}
	var equipment models.Equipment
	if err := db.First(&equipment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &equipment, nil
}

// AdjustAvailability applies a guarded relative update to available_quantity.
// The WHERE clause keeps 0 <= available_quantity <= total_quantity, so a zero
// row count means the adjustment would have violated the inventory bounds.
func (r *equipmentRepository) AdjustAvailability(db *gorm.DB, id uint, delta int) (int64, error) {
	if db == nil {
		db = r.db
	}
	res := db.Model(&models.Equipment{}).
		Where("id = ? AND available_quantity + ? >= 0 AND available_quantity + ? <= total_quantity", id, delta, delta).
		UpdateColumn("available_quantity", gorm.Expr("available_quantity + ?", delta))
	return res.RowsAffected, res.Error
}

func (r *equipmentRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.Equipment{}, "id = ?", id).Error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Create(user).Error
}

func (r *userRepository) GetByID(db *gorm.DB, id uint) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(db *gorm.DB, email string) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		db = r.db
	}
	var users []models.User
	if err := db.Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.User{}, "id = ?", id).Error
}

type borrowRequestRepository struct {
	db *gorm.DB
}

func NewBorrowRequestRepository(db *gorm.DB) BorrowRequestRepository {
	return &borrowRequestRepository{db: db}
}

func (r *borrowRequestRepository) Create(db *gorm.DB, request *models.BorrowRequest) error {
	if db == nil {
		db = r.db
	}
	return db.Create(request).Error
}

func (r *borrowRequestRepository) GetByID(db *gorm.DB, id uint) (*models.BorrowRequest, error) {
	if db == nil {
		db = r.db
	}
	var request models.BorrowRequest
	if err := db.First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *borrowRequestRepository) GetByIDForUpdate(db *gorm.DB, id uint) (*models.BorrowRequest, error) {
	if db == nil {
		db = r.db
	}
	var request models.BorrowRequest
	err := db.
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&request, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *borrowRequestRepository) ListByUser(db *gorm.DB, userID uint) ([]models.BorrowRequest, error) {
	if db == nil {
		db = r.db
	}
	var requests []models.BorrowRequest
	if err := db.Where("user_id = ?", userID).Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *borrowRequestRepository) UpdateStatus(db *gorm.DB, id uint, status models.RequestStatus, approvalDate *time.Time) error {
	if db == nil {
		db = r.db
	}
	updates := map[string]interface{}{"status": status}
	if approvalDate != nil {
		updates["approval_date"] = *approvalDate
	}
	return db.Model(&models.BorrowRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *borrowRequestRepository) Delete(db *gorm.DB, id uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.BorrowRequest{}, "id = ?", id).Error
}

type borrowItemRepository struct {
	db *gorm.DB
}

func NewBorrowItemRepository(db *gorm.DB) BorrowItemRepository {
	return &borrowItemRepository{db: db}
}

func (r *borrowItemRepository) Create(db *gorm.DB, item *models.BorrowItem) error {
	if db == nil {
		db = r.db
	}
	return db.Create(item).Error
}

func (r *borrowItemRepository) ListByRequest(db *gorm.DB, requestID uint) ([]models.BorrowItem, error) {
	if db == nil {
		db = r.db
	}
	var items []models.BorrowItem
	if err := db.Where("borrow_request_id = ?", requestID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// DetailsByRequest flattens borrow items with their request and equipment into
// report rows. Ordered by equipment name with item id as the tie-break so the
// projection is stable across calls.
func (r *borrowItemRepository) DetailsByRequest(db *gorm.DB, requestID uint) ([]models.RequestItemDetail, error) {
	if db == nil {
		db = r.db
	}
	rows := make([]models.RequestItemDetail, 0)
	err := db.Model(&models.BorrowItem{}).
		Select("equipment.name AS equipment_name, equipment.tag AS equipment_tag, borrow_items.quantity AS borrowed_quantity, borrow_items.borrow_date, borrow_items.return_date").
		Joins("JOIN borrow_requests ON borrow_requests.id = borrow_items.borrow_request_id").
		Joins("JOIN equipment ON equipment.id = borrow_items.equipment_id").
		Where("borrow_requests.id = ?", requestID).
		Order("equipment.name ASC, borrow_items.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *borrowItemRepository) DeleteByRequest(db *gorm.DB, requestID uint) error {
	if db == nil {
		db = r.db
	}
	return db.Delete(&models.BorrowItem{}, "borrow_request_id = ?", requestID).Error
}
