package services

import (
	"errors"
	"time"

	"lightbulb/internal/models"

	"gorm.io/gorm"
)

type CommentService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewCommentService(conn *gorm.DB, notifier *Notifier) *CommentService {
	return &CommentService{db: conn, notifier: notifier}
}

// Create 发表评论。通知作者是旁路事件：这里只入队，
// 邮件投递的成败不影响写事务。
func (s *CommentService) Create(userID, ideaID uint, description string) (*models.Comment, error) {
	var idea models.Idea
	if err := s.db.First(&idea, ideaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		IdeaID:      ideaID,
		UserID:      userID,
		Description: description,
		Modified:    time.Now(),
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(CommentEvent{CommentID: comment.ID, IdeaID: ideaID, ActorID: userID})
	return comment, nil
}

// Update 修改评论，只允许评论作者本人
func (s *CommentService) Update(commentID, userID uint, description string) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if comment.UserID != userID {
		return nil, ErrForbidden
	}

	comment.Description = description
	comment.Modified = time.Now()
	if err := s.db.Save(&comment).Error; err != nil {
		return nil, err
	}

	s.notifier.Publish(CommentEvent{CommentID: comment.ID, IdeaID: comment.IdeaID, ActorID: userID})
	return &comment, nil
}

// Delete 删除评论，只允许评论作者本人
func (s *CommentService) Delete(commentID, userID uint) error {
	var comment models.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if comment.UserID != userID {
		return ErrForbidden
	}
	return s.db.Delete(&comment).Error
}

// ListByIdea 某个 idea 下的全部评论，最新修改的在前
func (s *CommentService) ListByIdea(ideaID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.db.Preload("User").
		Where("idea_id = ?", ideaID).
		Order("modified DESC").
		Find(&comments).Error
	return comments, err
}
