package repository

import (
	"context"
	"errors"
	"lingocode_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// FindByUserID 没有档案时返回 (nil, nil)
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *ProfileRepository) UpsertLevels(ctx context.Context, profile *model.UserProfile) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"english_level", "programming_level", "updated_at"}),
	}).Create(profile).Error
}
