package models

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	UserRoleStudent UserRole = "student"
	UserRoleStaff   UserRole = "staff"
	UserRoleAdmin   UserRole = "admin"
)

type EquipmentCondition string

const (
	ConditionGood      EquipmentCondition = "Good"
	ConditionExcellent EquipmentCondition = "Excellent"
	ConditionFair      EquipmentCondition = "Fair"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
	RequestStatusReturned RequestStatus = "returned"
)

type Equipment struct {
	ID                uint               `gorm:"primaryKey" json:"id"`
	Name              string             `gorm:"size:255;not null" json:"name"`
	Tag               string             `gorm:"size:64;uniqueIndex;not null" json:"tag"`
	Condition         EquipmentCondition `gorm:"size:32;not null" json:"condition"`
	TotalQuantity     int                `gorm:"not null" json:"total_quantity"`
	AvailableQuantity int                `gorm:"not null" json:"available_quantity"`
	Items             []BorrowItem       `gorm:"foreignKey:EquipmentID" json:"-"`
}

type User struct {
	ID       uint            `gorm:"primaryKey" json:"id"`
	Name     string          `gorm:"size:255;not null" json:"name"`
	Email    string          `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password string          `gorm:"size:255;not null" json:"-"`
	Role     UserRole        `gorm:"size:32;not null" json:"role"`
	Requests []BorrowRequest `gorm:"foreignKey:UserID" json:"-"`
}

type BorrowRequest struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Reference    uuid.UUID     `gorm:"type:uuid;uniqueIndex;not null" json:"reference"`
	RequestDate  time.Time     `gorm:"not null" json:"request_date"`
	UserID       uint          `gorm:"not null;index" json:"user_id"`
	User         User          `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Status       RequestStatus `gorm:"size:32;not null;index" json:"status"`
	ApprovalDate *time.Time    `json:"approval_date,omitempty"`
	Items        []BorrowItem  `gorm:"foreignKey:BorrowRequestID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"items,omitempty"`
}

// BorrowItem rows never outlive their BorrowRequest.
type BorrowItem struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BorrowRequestID uint      `gorm:"not null;index" json:"borrow_request_id"`
	EquipmentID     uint      `gorm:"not null;index" json:"equipment_id"`
	Equipment       Equipment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	BorrowDate      time.Time `gorm:"not null" json:"borrow_date"`
	ReturnDate      time.Time `gorm:"not null" json:"return_date"`
}

// EquipmentFilter is the sanitized search input for the equipment catalogue.
// A nil field means the corresponding predicate is absent.
type EquipmentFilter struct {
	Name         *string
	MaxAvailable *int
	Condition    *string
}

// Empty reports whether no predicate survived sanitization.
func (f EquipmentFilter) Empty() bool {
	return f.Name == nil && f.MaxAvailable == nil && f.Condition == nil
}

// RequestItemDetail is one row of the denormalized request report
// (borrow item joined with its request and equipment).
type RequestItemDetail struct {
	EquipmentName    string    `json:"equipmentName"`
	EquipmentTag     string    `json:"equipmentTag"`
	BorrowedQuantity int       `json:"borrowedQuantity"`
	BorrowDate       time.Time `json:"borrowDate"`
	ReturnDate       time.Time `json:"returnDate"`
}
