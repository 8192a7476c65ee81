package models

import (
	"time"
)

type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	IdeaID      uint      `gorm:"not null;index" json:"idea_id"`
	Idea        Idea      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"idea"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	User        User      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Modified    time.Time `gorm:"not null;index" json:"modified"`
}
