package services

import (
	"fmt"
	"log"
	"os"

	"lightbulb/internal/models"

	"gorm.io/gorm"
)

// CommentEvent 评论创建/更新后发出的事件，由通知 worker 异步消费
type CommentEvent struct {
	CommentID uint
	IdeaID    uint
	ActorID   uint // 发评论的人
}

// Notifier 把评论通知从写事务里解耦出来：
// 写路径只负责非阻塞入队，投递由单独的 worker 完成，队列满了丢弃。
type Notifier struct {
	db    *gorm.DB
	mail  *MailService
	queue chan CommentEvent
}

func NewNotifier(conn *gorm.DB, mail *MailService) *Notifier {
	n := &Notifier{
		db:    conn,
		mail:  mail,
		queue: make(chan CommentEvent, 1000), // 缓冲队列，防止阻塞写路径
	}
	go n.worker()
	return n
}

// Publish 非阻塞入队
func (n *Notifier) Publish(ev CommentEvent) {
	select {
	case n.queue <- ev:
	default:
		log.Printf("通知队列已满，丢弃评论 %d 的通知", ev.CommentID)
	}
}

func (n *Notifier) worker() {
	for ev := range n.queue {
		n.deliver(ev)
	}
}

func (n *Notifier) deliver(ev CommentEvent) {
	var comment models.Comment
	if err := n.db.Preload("User").Preload("Idea").Preload("Idea.User").
		First(&comment, ev.CommentID).Error; err != nil {
		log.Printf("跳过通知，评论 %d 读取失败: %v", ev.CommentID, err)
		return
	}

	// 评论自己的 idea 不发通知
	if comment.Idea.UserID == ev.ActorID {
		return
	}

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:8080"
	}
	ideaLink := fmt.Sprintf("%s/ideas/%d", siteURL, comment.IdeaID)

	n.mail.SendCommentNotification(
		comment.Idea.User.Email,
		comment.User.Username,
		comment.Idea.Title,
		comment.Description,
		ideaLink,
	)
}

// Close 关闭队列并结束 worker（测试用）
func (n *Notifier) Close() {
	close(n.queue)
}
