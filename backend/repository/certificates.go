package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lms/backend/models"
	"lms/backend/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// maxIDAttempts bounds retries when a freshly generated certificate id collides.
const maxIDAttempts = 5

type CertificateRepo interface {
	// GetOrCreate returns the existing certificate for the pair or inserts one with newID().
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID, courseID uint, newID func() string) (cert *models.Certificate, created bool, err error)
	Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Certificate, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Certificate, error)
}

type certificateRepo struct {
	db  *gorm.DB
	log *utils.Logger
}

func NewCertificateRepo(db *gorm.DB, baseLog *utils.Logger) CertificateRepo {
	return &certificateRepo{db: db, log: baseLog.With("repo", "CertificateRepo")}
}

func (r *certificateRepo) GetOrCreate(ctx context.Context, tx *gorm.DB, userID, courseID uint, newID func() string) (*models.Certificate, bool, error) {
	db := conn(r.db, tx).WithContext(ctx)

	for i := 0; i < maxIDAttempts; i++ {
		cert := models.Certificate{
			UserID:        userID,
			CourseID:      courseID,
			CertificateID: newID(),
			IssuedAt:      time.Now().UTC(),
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&cert)
		if res.Error != nil {
			return nil, false, res.Error
		}
		if res.RowsAffected == 1 {
			return &cert, true, nil
		}

		existing, err := r.Get(ctx, tx, userID, courseID)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, err
		}
		// The pair is free, so the generated certificate id itself collided.
		r.log.Warn("certificate id collision, regenerating", "attempt", i+1)
	}
	return nil, false, fmt.Errorf("could not allocate a unique certificate id after %d attempts", maxIDAttempts)
}

func (r *certificateRepo) Get(ctx context.Context, tx *gorm.DB, userID, courseID uint) (*models.Certificate, error) {
	var cert models.Certificate
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cert).Error; err != nil {
		return nil, err
	}
	return &cert, nil
}

func (r *certificateRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.Certificate, error) {
	var certs []models.Certificate
	if err := conn(r.db, tx).WithContext(ctx).
		Where("user_id = ?", userID).
		Order("issued_at DESC").
		Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}
