package services

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/scrubline/scrubline-backend-go/apperrors"
	"github.com/scrubline/scrubline-backend-go/metrics"
	"github.com/scrubline/scrubline-backend-go/models"
	"github.com/scrubline/scrubline-backend-go/repository"
	"github.com/scrubline/scrubline-backend-go/utils"
	"go.uber.org/zap"
)

const minPasswordLength = 8

type SignupInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Phone     string `json:"phone"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ProfileUpdate struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      *models.User `json:"user"`
}

type AuthService struct {
	users repository.UserRepository
	jwt   *utils.JWTManager
	log   *zap.Logger
}

func NewAuthService(users repository.UserRepository, jwt *utils.JWTManager, log *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, log: log}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, apperrors.BadRequest("Invalid email format")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperrors.BadRequest("Password must be at least 8 characters")
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, apperrors.BadRequest("First and last name are required")
	}

	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, apperrors.Conflict("Email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, apperrors.New(http.StatusInternalServerError, "Failed to process password", err)
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Phone:     strings.TrimSpace(in.Phone),
		Role:      models.RoleCustomer,
		Status:    models.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already registered")
		}
		return nil, err
	}

	s.log.Info("User registered", zap.String("user_id", user.ID.Hex()))
	user.Password = ""
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown emails and
// wrong passwords get the same answer; only active accounts may sign in.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if err != nil || !utils.CheckPassword(user.Password, in.Password) {
		metrics.AuthAttempts.WithLabelValues("invalid").Inc()
		return nil, apperrors.Unauthorized("Invalid email or password")
	}
	if user.Status != "" && user.Status != models.UserStatusActive {
		metrics.AuthAttempts.WithLabelValues("blocked").Inc()
		return nil, apperrors.Forbidden("Account is " + user.Status)
	}

	role := user.Role
	if role == "" {
		role = models.RoleCustomer
	}
	token, err := s.jwt.GenerateJWT(user.ID.Hex(), user.Email, role)
	if err != nil {
		return nil, apperrors.New(http.StatusInternalServerError, "Failed to generate token", err)
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	user.Password = ""
	return &Session{
		Token:     token,
		ExpiresAt: time.Now().Add(s.jwt.TTL()).UTC(),
		User:      user,
	}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	fields := repository.Fields{}
	if v, ok := trimmed(in.FirstName); ok {
		fields["firstName"] = v
	}
	if v, ok := trimmed(in.LastName); ok {
		fields["lastName"] = v
	}
	if v, ok := trimmed(in.Phone); ok {
		fields["phone"] = v
	}
	if v, ok := trimmed(in.Address); ok {
		fields["address"] = v
	}
	if len(fields) == 0 {
		return nil, apperrors.BadRequest("no fields to update")
	}
	fields["updatedAt"] = time.Now().UTC()

	user, err := s.users.Update(ctx, userID, fields)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	user.Password = ""
	return user, nil
}

func (s *AuthService) ListUsers(ctx context.Context, f repository.UserFilter) ([]models.User, error) {
	return s.users.List(ctx, f)
}

func (s *AuthService) SetStatus(ctx context.Context, caller *Caller, id, status string) (*models.User, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if !models.ValidUserStatus(status) {
		return nil, apperrors.BadRequest("status must be active, inactive or suspended")
	}
	if caller != nil && caller.UserID == id && status != models.UserStatusActive {
		return nil, apperrors.BadRequest("you cannot deactivate your own account")
	}
	user, err := s.users.Update(ctx, id, repository.Fields{"status": status, "updatedAt": time.Now().UTC()})
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	user.Password = ""
	s.log.Info("User status changed", zap.String("user_id", id), zap.String("status", status))
	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, caller *Caller, id string) error {
	if caller != nil && caller.UserID == id {
		return apperrors.BadRequest("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return notFound(err, "User not found")
	}
	s.log.Info("User deleted", zap.String("user_id", id))
	return nil
}
