package services

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/repositories"
)

var (
	// ErrEquipmentNotFound is returned when the referenced equipment does not exist.
	ErrEquipmentNotFound = errors.New("equipment not found")

	// ErrInvalidQuantities is returned when quantities are negative or the
	// available quantity exceeds the total quantity.
	ErrInvalidQuantities = errors.New("available quantity must be between 0 and total quantity")
)

// EquipmentService manages the equipment catalogue.
type EquipmentService interface {
	CreateEquipment(input EquipmentInput) (*models.Equipment, error)
	ListEquipment() ([]models.Equipment, error)
	SearchEquipment(params map[string]string) ([]models.Equipment, error)
	GetEquipment(id uint) (*models.Equipment, error)
	ReplaceEquipment(id uint, patch EquipmentPatch) (*models.Equipment, error)
	DeleteEquipment(id uint) error
}

// EquipmentInput carries the fields for equipment intake.
type EquipmentInput struct {
	Name              string
	Tag               string
	Condition         models.EquipmentCondition
	TotalQuantity     int
	AvailableQuantity int
}

// EquipmentPatch carries the partial fields for a replace operation.
// Nil fields are left unchanged on an existing record.
type EquipmentPatch struct {
	Name              *string
	Tag               *string
	Condition         *models.EquipmentCondition
	TotalQuantity     *int
	AvailableQuantity *int
}

type equipmentService struct {
	equipmentRepo repositories.EquipmentRepository
}

func NewEquipmentService(equipmentRepo repositories.EquipmentRepository) EquipmentService {
	return &equipmentService{equipmentRepo: equipmentRepo}
}

func (s *equipmentService) CreateEquipment(input EquipmentInput) (*models.Equipment, error) {
	if err := validateQuantities(input.TotalQuantity, input.AvailableQuantity); err != nil {
		return nil, err
	}
	equipment := &models.Equipment{
		Name:              input.Name,
		Tag:               input.Tag,
		Condition:         input.Condition,
		TotalQuantity:     input.TotalQuantity,
		AvailableQuantity: input.AvailableQuantity,
	}
	if err := s.equipmentRepo.Create(nil, equipment); err != nil {
		log.Printf("[ERROR] CreateEquipment: failed to create %q: %v", input.Name, err)
		return nil, err
	}
	log.Printf("[INFO] CreateEquipment: created %q (id=%d, tag=%s)", equipment.Name, equipment.ID, equipment.Tag)
	return equipment, nil
}

func (s *equipmentService) ListEquipment() ([]models.Equipment, error) {
	return s.equipmentRepo.List(nil)
}

// SearchEquipment sanitizes the raw query parameters and runs the composed
// predicate against the catalogue. With no surviving filter the full
// catalogue is returned.
func (s *equipmentService) SearchEquipment(params map[string]string) ([]models.Equipment, error) {
	filter, err := ParseEquipmentFilter(params)
	if err != nil {
		return nil, err
	}
	if filter.Empty() {
		return s.equipmentRepo.List(nil)
	}
	return s.equipmentRepo.Search(nil, filter)
}

func (s *equipmentService) GetEquipment(id uint) (*models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEquipmentNotFound
		}
		return nil, err
	}
	return equipment, nil
}

// ReplaceEquipment implements create-or-update keyed by id. An existing record
// gets only the supplied fields overwritten; a missing id yields a new record
// built from the supplied fields.
func (s *equipmentService) ReplaceEquipment(id uint, patch EquipmentPatch) (*models.Equipment, error) {
	equipment, err := s.equipmentRepo.GetByID(nil, id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		equipment = &models.Equipment{ID: id}
		log.Printf("[INFO] ReplaceEquipment: no equipment with id=%d, creating", id)
	}

	if patch.Name != nil {
		equipment.Name = *patch.Name
	}
	if patch.Tag != nil {
		equipment.Tag = *patch.Tag
	}
	if patch.Condition != nil {
		equipment.Condition = *patch.Condition
	}
	if patch.TotalQuantity != nil {
		equipment.TotalQuantity = *patch.TotalQuantity
	}
	if patch.AvailableQuantity != nil {
		equipment.AvailableQuantity = *patch.AvailableQuantity
	}
	if err := validateQuantities(equipment.TotalQuantity, equipment.AvailableQuantity); err != nil {
		return nil, err
	}

	if err := s.equipmentRepo.Save(nil, equipment); err != nil {
		log.Printf("[ERROR] ReplaceEquipment: failed to save equipment id=%d: %v", id, err)
		return nil, err
	}
	log.Printf("[INFO] ReplaceEquipment: saved equipment id=%d (tag=%s)", equipment.ID, equipment.Tag)
	return equipment, nil
}

func (s *equipmentService) DeleteEquipment(id uint) error {
	if _, err := s.equipmentRepo.GetByID(nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrEquipmentNotFound
		}
		return err
	}
	if err := s.equipmentRepo.Delete(nil, id); err != nil {
		log.Printf("[ERROR] DeleteEquipment: failed to delete equipment id=%d: %v", id, err)
		return err
	}
	log.Printf("[INFO] DeleteEquipment: deleted equipment id=%d", id)
	return nil
}

func validateQuantities(total, available int) error {
	if total < 0 || available < 0 || available > total {
		return ErrInvalidQuantities
	}
	return nil
}
