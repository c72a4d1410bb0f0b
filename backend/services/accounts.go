package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lms/backend/apperr"
	"lms/backend/models"
	"lms/backend/repository"
	"lms/backend/utils"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type ProfileInput struct {
	Username    string `json:"username" validate:"omitempty,min=3,max=50"`
	Email       string `json:"email" validate:"omitempty,email"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" validate:"omitempty,min=6"`
}

type AccountService struct {
	db    *gorm.DB
	repos *repository.Repos
	log   *utils.Logger
}

func NewAccountService(db *gorm.DB, repos *repository.Repos, log *utils.Logger) *AccountService {
	return &AccountService{db: db, repos: repos, log: log.With("component", "accounts")}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: username, Email: email, PasswordHash: string(hashed)}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken, err := s.repos.Users.Taken(ctx, tx, username, email, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperr.BadRequest("username or email already taken")
		}
		return s.repos.Users.Create(ctx, tx, &user)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", "user_id", user.ID)
	return &user, nil
}

// Authenticate returns ErrInvalidCredentials for both unknown users and wrong passwords.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.repos.Users.GetByUsername(ctx, nil, strings.TrimSpace(username))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) Profile(ctx context.Context, req Requester) (*models.User, error) {
	user, err := s.repos.Users.GetByID(ctx, nil, req.UserID)
	if err != nil {
		return nil, notFound(err, "user")
	}
	return user, nil
}

// UpdateProfile changes username, email or password; a new password needs the current one.
func (s *AccountService) UpdateProfile(ctx context.Context, req Requester, in ProfileInput) (*models.User, error) {
	var user *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = s.repos.Users.GetByID(ctx, tx, req.UserID)
		if err != nil {
			return notFound(err, "user")
		}
		if v := strings.TrimSpace(in.Username); v != "" {
			user.Username = v
		}
		if v := strings.ToLower(strings.TrimSpace(in.Email)); v != "" {
			user.Email = v
		}
		if in.NewPassword != "" {
			if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
				return apperr.BadRequest("current password is incorrect")
			}
			hashed, err := bcrypt.GenerateFromPassword([]byte(in.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("hash password: %w", err)
			}
			user.PasswordHash = string(hashed)
		}
		taken, err := s.repos.Users.Taken(ctx, tx, user.Username, user.Email, user.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.BadRequest("username or email already taken")
		}
		return s.repos.Users.Update(ctx, tx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Certificates lists every certificate the requester holds.
func (s *AccountService) Certificates(ctx context.Context, req Requester) ([]models.Certificate, error) {
	return s.repos.Certificates.ListByUser(ctx, nil, req.UserID)
}
