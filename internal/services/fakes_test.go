package services

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/session"
)

// fakeState is an in-memory stand-in for the database. Slices keep storage
// order. The fake repositories all share one state so joins work.
type fakeState struct {
	equipment []*models.Equipment
	users     []*models.User
	requests  []*models.BorrowRequest
	items     []*models.BorrowItem
	nextID    uint
}

func newFakeState() *fakeState {
	return &fakeState{nextID: 1}
}

func (s *fakeState) id() uint {
	id := s.nextID
	s.nextID++
	return id
}

func (s *fakeState) clone() *fakeState {
	c := &fakeState{nextID: s.nextID}
	for _, e := range s.equipment {
		v := *e
		c.equipment = append(c.equipment, &v)
	}
	for _, u := range s.users {
		v := *u
		c.users = append(c.users, &v)
	}
	for _, r := range s.requests {
		v := *r
		c.requests = append(c.requests, &v)
	}
	for _, i := range s.items {
		v := *i
		c.items = append(c.items, &v)
	}
	return c
}

// fakeDB satisfies txRunner. On error the state snapshot is restored, which
// mirrors a rolled-back transaction.
type fakeDB struct {
	state *fakeState
}

func (f *fakeDB) Transaction(fn func(tx *gorm.DB) error, _ ...*sql.TxOptions) error {
	snapshot := f.state.clone()
	if err := fn(nil); err != nil {
		*f.state = *snapshot
		return err
	}
	return nil
}

type fakeEquipmentRepo struct {
	state *fakeState
}

func (r *fakeEquipmentRepo) Create(_ *gorm.DB, equipment *models.Equipment) error {
	if equipment.ID == 0 {
		equipment.ID = r.state.id()
	}
	v := *equipment
	r.state.equipment = append(r.state.equipment, &v)
	return nil
}

func (r *fakeEquipmentRepo) Save(_ *gorm.DB, equipment *models.Equipment) error {
	if equipment.ID == 0 {
		equipment.ID = r.state.id()
	}
	for i, e := range r.state.equipment {
		if e.ID == equipment.ID {
			v := *equipment
			r.state.equipment[i] = &v
			return nil
		}
	}
	v := *equipment
	r.state.equipment = append(r.state.equipment, &v)
	return nil
}

func (r *fakeEquipmentRepo) List(_ *gorm.DB) ([]models.Equipment, error) {
	out := make([]models.Equipment, 0, len(r.state.equipment))
	for _, e := range r.state.equipment {
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEquipmentRepo) Search(_ *gorm.DB, filter models.EquipmentFilter) ([]models.Equipment, error) {
	out := make([]models.Equipment, 0)
	for _, e := range r.state.equipment {
		if filter.Name != nil &&
			!strings.Contains(strings.ToLower(e.Name), strings.ToLower(*filter.Name)) {
			continue
		}
		if filter.MaxAvailable != nil &&
			(e.AvailableQuantity < 0 || e.AvailableQuantity > *filter.MaxAvailable) {
			continue
		}
		if filter.Condition != nil && string(e.Condition) != *filter.Condition {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeEquipmentRepo) GetByID(_ *gorm.DB, id uint) (*models.Equipment, error) {
	for _, e := range r.state.equipment {
		if e.ID == id {
			v := *e
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeEquipmentRepo) AdjustAvailability(_ *gorm.DB, id uint, delta int) (int64, error) {
	for _, e := range r.state.equipment {
		if e.ID != id {
			continue
		}
		next := e.AvailableQuantity + delta
		if next < 0 || next > e.TotalQuantity {
			return 0, nil
		}
		e.AvailableQuantity = next
		return 1, nil
	}
	return 0, nil
}

func (r *fakeEquipmentRepo) Delete(_ *gorm.DB, id uint) error {
	kept := r.state.equipment[:0]
	for _, e := range r.state.equipment {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	r.state.equipment = kept
	return nil
}

type fakeUserRepo struct {
	state *fakeState
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	if user.ID == 0 {
		user.ID = r.state.id()
	}
	v := *user
	r.state.users = append(r.state.users, &v)
	return nil
}

func (r *fakeUserRepo) GetByID(_ *gorm.DB, id uint) (*models.User, error) {
	for _, u := range r.state.users {
		if u.ID == id {
			v := *u
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.state.users {
		if u.Email == email {
			v := *u
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ *gorm.DB) ([]models.User, error) {
	out := make([]models.User, 0, len(r.state.users))
	for _, u := range r.state.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Delete(_ *gorm.DB, id uint) error {
	kept := r.state.users[:0]
	for _, u := range r.state.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	r.state.users = kept
	return nil
}

type fakeRequestRepo struct {
	state *fakeState
}

func (r *fakeRequestRepo) Create(_ *gorm.DB, request *models.BorrowRequest) error {
	if request.ID == 0 {
		request.ID = r.state.id()
	}
	v := *request
	r.state.requests = append(r.state.requests, &v)
	return nil
}

func (r *fakeRequestRepo) GetByID(_ *gorm.DB, id uint) (*models.BorrowRequest, error) {
	for _, req := range r.state.requests {
		if req.ID == id {
			v := *req
			return &v, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) GetByIDForUpdate(db *gorm.DB, id uint) (*models.BorrowRequest, error) {
	return r.GetByID(db, id)
}

func (r *fakeRequestRepo) ListByUser(_ *gorm.DB, userID uint) ([]models.BorrowRequest, error) {
	out := make([]models.BorrowRequest, 0)
	for _, req := range r.state.requests {
		if req.UserID == userID {
			out = append(out, *req)
		}
	}
	return out, nil
}

func (r *fakeRequestRepo) UpdateStatus(_ *gorm.DB, id uint, status models.RequestStatus, approvalDate *time.Time) error {
	for _, req := range r.state.requests {
		if req.ID == id {
			req.Status = status
			if approvalDate != nil {
				d := *approvalDate
				req.ApprovalDate = &d
			}
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeRequestRepo) Delete(_ *gorm.DB, id uint) error {
	kept := r.state.requests[:0]
	for _, req := range r.state.requests {
		if req.ID != id {
			kept = append(kept, req)
		}
	}
	r.state.requests = kept
	return nil
}

type fakeItemRepo struct {
	state *fakeState

	createCalls int
	failOnCall  int // 0 means never fail
}

var errItemStore = errors.New("item store failure")

func (r *fakeItemRepo) Create(_ *gorm.DB, item *models.BorrowItem) error {
	r.createCalls++
	if r.failOnCall > 0 && r.createCalls == r.failOnCall {
		return errItemStore
	}
	if item.ID == 0 {
		item.ID = r.state.id()
	}
	v := *item
	r.state.items = append(r.state.items, &v)
	return nil
}

func (r *fakeItemRepo) ListByRequest(_ *gorm.DB, requestID uint) ([]models.BorrowItem, error) {
	out := make([]models.BorrowItem, 0)
	for _, item := range r.state.items {
		if item.BorrowRequestID == requestID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (r *fakeItemRepo) DetailsByRequest(_ *gorm.DB, requestID uint) ([]models.RequestItemDetail, error) {
	rows := make([]models.RequestItemDetail, 0)
	for _, item := range r.state.items {
		if item.BorrowRequestID != requestID {
			continue
		}
		for _, e := range r.state.equipment {
			if e.ID == item.EquipmentID {
				rows = append(rows, models.RequestItemDetail{
					EquipmentName:    e.Name,
					EquipmentTag:     e.Tag,
					BorrowedQuantity: item.Quantity,
					BorrowDate:       item.BorrowDate,
					ReturnDate:       item.ReturnDate,
				})
				break
			}
		}
	}
	// Equipment name ascending, then insertion (item id) order; insertion
	// order is already item id order, so a stable sort by name suffices.
	for i := 1; i < len(rows); i++ {
		for j := i; j > 0 && rows[j-1].EquipmentName > rows[j].EquipmentName; j-- {
			rows[j-1], rows[j] = rows[j], rows[j-1]
		}
	}
	return rows, nil
}

func (r *fakeItemRepo) DeleteByRequest(_ *gorm.DB, requestID uint) error {
	kept := r.state.items[:0]
	for _, item := range r.state.items {
		if item.BorrowRequestID != requestID {
			kept = append(kept, item)
		}
	}
	r.state.items = kept
	return nil
}

type fakeSessionStore struct {
	sessions map[string]*session.Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*session.Session)}
}

var errSessionNotFound = errors.New("session not found")

func (s *fakeSessionStore) Create(_ context.Context, id string, userID uint) error {
	now := time.Now()
	s.sessions[id] = &session.Session{
		UserID:    userID,
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}
	return nil
}

func (s *fakeSessionStore) Get(_ context.Context, id string) (*session.Session, error) {
	sess, ok := s.sessions[id]
	if !ok {
		return nil, errSessionNotFound
	}
	return sess, nil
}

func (s *fakeSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

func (s *fakeSessionStore) RevokeAllForUser(_ context.Context, userID uint) error {
	for id, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, id)
		}
	}
	return nil
}
