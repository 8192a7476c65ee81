package models

import (
	"time"
)

type Idea struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"not null;index" json:"user_id"` // 作者，创建后不可变更
	User        User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Title       string `gorm:"size:100;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	Link        string `gorm:"size:200" json:"link"` // Optional
	// Modified 在每次内容编辑时刷新为当前时间，只增不减，用于 latest 排序
	Modified  time.Time `gorm:"not null;index" json:"modified"`
	CreatedAt time.Time `json:"created_at"`
}
