package model

import (
	"time"
)

// LessonProgress 用户对某一课的完成记录，(user_id, module_id, lesson_id) 唯一
// swagger:model LessonProgress
type LessonProgress struct {
	BaseModel
	UserID      uint       `gorm:"not null;index:idx_progress_user_lesson,unique" json:"userId"`
	ModuleID    int        `gorm:"not null;index:idx_progress_user_lesson,unique" json:"moduleId"`
	LessonID    int        `gorm:"not null;index:idx_progress_user_lesson,unique" json:"lessonId"`
	Completed   bool       `gorm:"default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

func (LessonProgress) TableName() string {
	return "progress"
}
