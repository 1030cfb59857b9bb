package repository

import (
	"context"

	"snapshare/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository stores the append-only history of profile images.
type ProfileRepository interface {
	Append(ctx context.Context, record *models.ProfileRecord) error
	Latest(ctx context.Context, accountID uint) (*models.ProfileRecord, error)
	ImageInUse(ctx context.Context, key string) (bool, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) Append(ctx context.Context, record *models.ProfileRecord) error {
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// Latest returns the most recently appended record, or NotFound when the account
// never uploaded an image.
func (r *profileRepository) Latest(ctx context.Context, accountID uint) (*models.ProfileRecord, error) {
	var record models.ProfileRecord
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		return nil, notFoundOrInternal(err, "Profile image for account", accountID)
	}
	return &record, nil
}

func (r *profileRepository) ImageInUse(ctx context.Context, key string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.ProfileRecord{}).Where("image_path = ?", key).Limit(1).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}
