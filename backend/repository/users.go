package repository

import (
	"context"

	"lms/backend/models"

	"gorm.io/gorm"
)

type UserRepo interface {
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error)
	// Taken reports whether another user already holds the username or email.
	Taken(ctx context.Context, tx *gorm.DB, username, email string, exceptID uint) (bool, error)
	Update(ctx context.Context, tx *gorm.DB, user *models.User) error
}

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return conn(r.db, tx).WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	var user models.User
	if err := conn(r.db, tx).WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := conn(r.db, tx).WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) Taken(ctx context.Context, tx *gorm.DB, username, email string, exceptID uint) (bool, error) {
	var count int64
	err := conn(r.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("(username = ? OR email = ?) AND id <> ?", username, email, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *userRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(user).
		Updates(map[string]interface{}{
			"username":      user.Username,
			"email":         user.Email,
			"password_hash": user.PasswordHash,
		}).Error
}
