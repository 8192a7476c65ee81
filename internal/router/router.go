package router

import (
	"lightbulb/internal/handlers"
	"lightbulb/internal/middleware"
	"lightbulb/internal/search"
	"lightbulb/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func RegisterRoutes(r *gin.Engine, conn *gorm.DB, index *search.Index) {
	// Services
	mailService := services.NewMailService()
	notifier := services.NewNotifier(conn, mailService)
	ideaService := services.NewIdeaService(conn, index)
	voteService := services.NewVoteService(conn)
	commentService := services.NewCommentService(conn, notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(conn)
	ideaHandler := handlers.NewIdeaHandler(ideaService, commentService)
	voteHandler := handlers.NewVoteHandler(voteService)
	commentHandler := handlers.NewCommentHandler(commentService)

	// 公共路由 (Public Routes)
	r.POST("/signup", authHandler.Register) // 注册
	r.POST("/login", authHandler.Login)     // 登录
	r.GET("/logout", authHandler.Logout)    // 退出登录

	r.GET("/ideas", ideaHandler.List)                   // 全站列表（搜索/排序/分页）
	r.GET("/ideas/:id", ideaHandler.Detail)             // 详情 + 评论
	r.GET("/users/:id/ideas", ideaHandler.ListByAuthor) // 某作者发布的 idea
	r.GET("/users/:id/votes", ideaHandler.ListVotedBy)  // 某用户投过票的 idea

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.POST("/ideas", ideaHandler.Create)                  // 发布 idea
		authorized.POST("/ideas/:id/edit", ideaHandler.Update)         // 编辑 idea（仅作者）
		authorized.POST("/ideas/:id/vote", voteHandler.Cast)           // 投票
		authorized.DELETE("/ideas/:id/vote", voteHandler.Retract)      // 撤票
		authorized.POST("/ideas/:id/comments", commentHandler.Create)  // 发表评论
		authorized.POST("/comments/:id/edit", commentHandler.Update)   // 修改评论（仅作者）
		authorized.DELETE("/comments/:id", commentHandler.Delete)      // 删除评论（仅作者）
	}
}
