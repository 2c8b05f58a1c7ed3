package model

import (
	"time"
)

// UserProfile 学习者的英语与编程水平，AI 导师据此调整回答
// swagger:model UserProfile
type UserProfile struct {
	UserID           uint      `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	EnglishLevel     string    `gorm:"size:10;not null" json:"englishLevel"`
	ProgrammingLevel string    `gorm:"size:20;not null" json:"programmingLevel"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (UserProfile) TableName() string {
	return "profiles"
}
