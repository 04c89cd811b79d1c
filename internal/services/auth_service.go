package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/models"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/repositories"
	"github.com/PhaniTejaPLS/SE-ZG503-Assignment-Phase-2-Backend/internal/session"
)

var (
	// ErrEmailTaken is returned when registering with an email that is already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on a failed login. The cause (unknown
	// email vs. wrong password) is deliberately not distinguished.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidRole is returned when the submitted role is not a known role.
	ErrInvalidRole = errors.New("invalid user role")
)

// SessionStore is the session registry the auth service and middleware rely
// on; *session.Store is the redis-backed implementation.
type SessionStore interface {
	Create(ctx context.Context, id string, userID uint) error
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID uint) error
}

// RegisterInput carries the fields for user registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// AuthService manages users, credentials and login sessions.
type AuthService interface {
	Register(input RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	Logout(ctx context.Context, sessionID string) error
	ListUsers() ([]models.User, error)
	GetUser(id uint) (*models.User, error)
	DeleteUser(ctx context.Context, id uint) error
}

type authService struct {
	userRepo repositories.UserRepository
	sessions SessionStore
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(userRepo repositories.UserRepository, sessions SessionStore, secret []byte, tokenTTL time.Duration) AuthService {
	return &authService{
		userRepo: userRepo,
		sessions: sessions,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *authService) Register(input RegisterInput) (*models.User, error) {
	role := input.Role
	if role == "" {
		role = models.UserRoleStudent
	}
	switch role {
	case models.UserRoleStudent, models.UserRoleStaff, models.UserRoleAdmin:
	default:
		return nil, ErrInvalidRole
	}

	if _, err := s.userRepo.GetByEmail(nil, input.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hash),
		Role:     role,
	}
	if err := s.userRepo.Create(nil, user); err != nil {
		log.Printf("[ERROR] Register: failed to create user %s: %v", input.Email, err)
		return nil, err
	}
	log.Printf("[INFO] Register: created user %s (id=%d, role=%s)", user.Email, user.ID, user.Role)
	return user, nil
}

// Login verifies the credentials, records a session in redis and issues an
// HS256 JWT carrying the user id, role and session id.
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(nil, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("[WARN] Login: bad password for %s", email)
		return "", nil, ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	if err := s.sessions.Create(ctx, sessionID, user.ID); err != nil {
		return "", nil, err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  strconv.FormatUint(uint64(user.ID), 10),
		"role": string(user.Role),
		"sid":  sessionID,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	log.Printf("[INFO] Login: user %s (id=%d) logged in", user.Email, user.ID)
	return signed, user, nil
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

func (s *authService) ListUsers() ([]models.User, error) {
	return s.userRepo.List(nil)
}

func (s *authService) GetUser(id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the user and revokes all of their live sessions.
func (s *authService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.userRepo.GetByID(nil, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := s.userRepo.Delete(nil, id); err != nil {
		log.Printf("[ERROR] DeleteUser: failed to delete user %d: %v", id, err)
		return err
	}
	if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
		log.Printf("[WARN] DeleteUser: failed to revoke sessions for user %d: %v", id, err)
	}
	log.Printf("[INFO] DeleteUser: deleted user %d", id)
	return nil
}
