package handlers

import (
	"html/template"
	"net/http"

	"lightbulb/internal/middleware"
	"lightbulb/internal/models"
	"lightbulb/internal/services"
	"lightbulb/internal/utils"

	"github.com/gin-gonic/gin"
)

type IdeaHandler struct {
	ideas    *services.IdeaService
	comments *services.CommentService
}

func NewIdeaHandler(ideas *services.IdeaService, comments *services.CommentService) *IdeaHandler {
	return &IdeaHandler{ideas: ideas, comments: comments}
}

// listQuery 从请求参数构造查询规格。解析是宽松的：
// 缺失/非法的 page、per_page、sort 回退默认值，不报错
func listQuery(c *gin.Context) services.IdeaQuery {
	return services.IdeaQuery{
		ViewerID: ViewerID(c),
		Search:   c.Query("q"),
		Sort:     c.DefaultQuery("sort", services.SortLatest),
		Page:     utils.IntOrDefault(c.Query("page"), 1),
		PerPage:  utils.IntOrDefault(c.Query("per_page"), services.DefaultPerPage),
	}
}

// List 全站列表，支持搜索/排序/分页
func (h *IdeaHandler) List(c *gin.Context) {
	page, err := h.ideas.List(listQuery(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListByAuthor 某作者发布的 idea
func (h *IdeaHandler) ListByAuthor(c *gin.Context) {
	authorID := uint(utils.StringToInt(c.Param("id")))
	q := listQuery(c)
	q.AuthorID = &authorID

	page, err := h.ideas.List(q)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ListVotedBy 某用户投过票的 idea。
// 成员资格本身就意味着投过票，viewer_voted 恒为 true。
func (h *IdeaHandler) ListVotedBy(c *gin.Context) {
	voterID := uint(utils.StringToInt(c.Param("id")))
	q := listQuery(c)
	q.ViewerID = nil
	q.VoterID = &voterID

	page, err := h.ideas.List(q)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

type commentView struct {
	models.Comment
	DescriptionHTML template.HTML `json:"description_html"`
}

// Detail 单个 idea 的详情、聚合值和全部评论
func (h *IdeaHandler) Detail(c *gin.Context) {
	ideaID := uint(utils.StringToInt(c.Param("id")))

	idea, err := h.ideas.Detail(ideaID, ViewerID(c))
	if err != nil {
		renderError(c, err)
		return
	}
	if idea == nil {
		// 不存在是空结果，不是服务错误
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	comments, err := h.comments.ListByIdea(ideaID)
	if err != nil {
		renderError(c, err)
		return
	}

	views := make([]commentView, len(comments))
	for i, com := range comments {
		views[i] = commentView{
			Comment:         com,
			DescriptionHTML: utils.RenderMarkdown(com.Description),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"idea":             idea,
		"description_html": utils.RenderMarkdown(idea.Description),
		"comments":         views,
	})
}

// Create 发布新 idea
func (h *IdeaHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := c.PostForm("title")
	description := c.PostForm("description")
	link := c.PostForm("link")

	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		return
	}

	idea, err := h.ideas.Create(user.ID, title, description, link)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, idea)
}

// Update 编辑 idea，仅限作者本人
func (h *IdeaHandler) Update(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	ideaID := uint(utils.StringToInt(c.Param("id")))

	idea, err := h.ideas.Get(ideaID)
	if err != nil {
		renderError(c, err)
		return
	}
	if idea.UserID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	title := c.PostForm("title")
	description := c.PostForm("description")
	link := c.PostForm("link")

	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		return
	}

	updated, err := h.ideas.Update(ideaID, title, description, link)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
