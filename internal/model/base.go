package model

import (
	"time"
)

// BaseModel 不使用软删除，停用账号通过 User.Disabled 表示
// swagger:model
type BaseModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
