package services

import (
	"errors"
	"time"

	"lightbulb/internal/models"

	"gorm.io/gorm"
)

type VoteService struct {
	db *gorm.DB
}

func NewVoteService(conn *gorm.DB) *VoteService {
	return &VoteService{db: conn}
}

// Cast 投票。(user, idea) 的唯一性靠数据库唯一索引兜底，
// 同一用户并发投同一 idea 时只有一条写入成功，其余拿到 ErrAlreadyVoted。
func (s *VoteService) Cast(userID, ideaID uint) (*models.Vote, error) {
	vote := &models.Vote{
		UserID:   userID,
		IdeaID:   ideaID,
		Modified: time.Now(),
	}
	if err := s.db.Create(vote).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyVoted
		}
		return nil, err
	}
	return vote, nil
}

// Retract 撤票。票不存在时返回 ErrNotFound
func (s *VoteService) Retract(userID, ideaID uint) error {
	res := s.db.Where("user_id = ? AND idea_id = ?", userID, ideaID).Delete(&models.Vote{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
