package repository

import (
	"context"
	"lingocode_backend/internal/model"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

// UpsertCompletion 按 (user_id, module_id, lesson_id) 写入完成记录，重复写入只更新完成状态
func (r *ProgressRepository) UpsertCompletion(ctx context.Context, progress *model.LessonProgress) error {
	if progress.CompletedAt == nil {
		now := time.Now()
		progress.CompletedAt = &now
	}
	progress.Completed = true

	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "module_id"},
			{Name: "lesson_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"completed", "completed_at", "updated_at"}),
	}).Create(progress).Error
}

// ListCompleted 用户已完成的课程，按完成时间排序
func (r *ProgressRepository) ListCompleted(ctx context.Context, userID uint) ([]model.LessonProgress, error) {
	var records []model.LessonProgress
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND completed = ?", userID, true).
		Order("completed_at ASC").
		Find(&records).Error
	return records, err
}

// IsCompleted 查询某一课是否已完成，没有记录视为未完成
func (r *ProgressRepository) IsCompleted(ctx context.Context, userID uint, moduleID, lessonID int) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.LessonProgress{}).
		Where("user_id = ? AND module_id = ? AND lesson_id = ? AND completed = ?", userID, moduleID, lessonID, true).
		Count(&count).Error
	return count > 0, err
}
