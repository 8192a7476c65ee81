package models

import (
	"time"
)

// Vote 用户对 idea 的投票，每个 (user, idea) 至多一票。
// 唯一性由数据库唯一索引保证，而不是先查后插，
// 并发投票时只有一条能写入成功。
type Vote struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"not null;index;uniqueIndex:idx_user_idea" json:"user_id"`
	IdeaID   uint      `gorm:"not null;index;uniqueIndex:idx_user_idea" json:"idea_id"`
	Idea     Idea      `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"idea"`
	Modified time.Time `json:"modified"` // 投票时间，投票本身不会被原地更新
}
