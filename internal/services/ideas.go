package services

import (
	"errors"
	"math"
	"time"

	"lightbulb/internal/models"
	"lightbulb/internal/search"

	"gorm.io/gorm"
)

const DefaultPerPage = 10

const (
	SortLatest = "latest"
	SortVotes  = "votes"
)

// IdeaQuery 一次列表查询的全部参数。
// 由调用方一次性构造好传入，查询过程中不再变化，
// 四种列表形态（全站/作者/投票人/搜索组合）都是它的参数化。
type IdeaQuery struct {
	ViewerID *uint  // 当前查看者，匿名时为 nil，只影响 viewer_voted
	AuthorID *uint  // 只看某作者发布的 idea，与 VoterID 互斥
	VoterID  *uint  // 只看某用户投过票的 idea，与 AuthorID 互斥
	Search   string // 空白串等价于不过滤
	Sort     string // latest | votes，其余取值不报错，按存储默认顺序返回
	Page     int    // 1 起始；<1 或越过末页返回空页而不是错误
	PerPage  int    // <=0 时取 DefaultPerPage
}

// RankedIdea 列表/详情中的一行：idea 概要加上同一快照下算出的聚合值
type RankedIdea struct {
	IdeaID      uint      `json:"idea_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Link        string    `json:"link"`
	Modified    time.Time `json:"modified"`
	UserID      uint      `json:"user_id"`
	Username    string    `json:"username"`
	TotalVotes  int64     `json:"total_votes"`
	ViewerVotes int64     `json:"-"` // 条件计数结果，0 或 1
	ViewerVoted bool      `json:"viewer_voted"`
}

type IdeaPage struct {
	Ideas      []RankedIdea `json:"ideas"`
	Total      int64        `json:"total"`
	TotalPages int          `json:"total_pages"`
	Page       int          `json:"page"`
	PerPage    int          `json:"per_page"`
}

type IdeaService struct {
	db    *gorm.DB
	index *search.Index
}

func NewIdeaService(conn *gorm.DB, index *search.Index) *IdeaService {
	return &IdeaService{db: conn, index: index}
}

// listColumns 聚合用 LEFT JOIN：没有任何投票的 idea 也要出现在结果里，
// 此时 COUNT(votes.id) 为 0
const listColumns = "ideas.id AS idea_id, ideas.title, ideas.description, ideas.link, " +
	"ideas.modified, ideas.user_id, users.username, COUNT(votes.id) AS total_votes"

// List 执行一次列表查询：搜索候选集 → 作者/投票人过滤 → 投票聚合 → 排序 → 分页。
// 候选集、总数、聚合值和排序键出自同一个事务快照。
func (s *IdeaService) List(q IdeaQuery) (*IdeaPage, error) {
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	candidates, filtered, err := s.index.Query(q.Search)
	if err != nil {
		return nil, err
	}

	page := &IdeaPage{Ideas: []RankedIdea{}, Page: q.Page, PerPage: perPage}

	// 有检索词但一个都没命中，不用进数据库
	if filtered && len(candidates) == 0 {
		return page, nil
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.narrowed(tx, q, filtered, candidates).Count(&page.Total).Error; err != nil {
			return err
		}
		page.TotalPages = int(math.Ceil(float64(page.Total) / float64(perPage)))

		// 越界翻页是合法的空结果，总数元数据照常返回
		if q.Page < 1 || int64(q.Page-1)*int64(perPage) >= page.Total {
			return nil
		}

		rows := aggregated(s.narrowed(tx, q, filtered, candidates), q.ViewerID).
			Limit(perPage).
			Offset((q.Page - 1) * perPage)

		switch q.Sort {
		case SortVotes:
			// 两级键：票数相同者最近修改的在前
			rows = rows.Order("total_votes DESC, ideas.modified DESC, ideas.id DESC")
		case SortLatest:
			// 时间相同者以 id 兜底，保证重复请求顺序稳定
			rows = rows.Order("ideas.modified DESC, ideas.id DESC")
		default:
			// 沿用历史行为：未识别的排序值不报错，按存储默认顺序返回
		}

		return rows.Scan(&page.Ideas).Error
	})
	if err != nil {
		return nil, err
	}

	for i := range page.Ideas {
		page.Ideas[i].ViewerVoted = page.Ideas[i].ViewerVotes > 0
	}
	if q.VoterID != nil {
		// 能出现在某人的投票列表里，就一定有他的票
		for i := range page.Ideas {
			page.Ideas[i].ViewerVoted = true
		}
	}
	return page, nil
}

// Detail 单个 idea 及其聚合值。idea 不存在时返回 (nil, nil)：
// 空结果不是错误，调用方以此区分"不存在"和"存在但零票"。
func (s *IdeaService) Detail(ideaID uint, viewerID *uint) (*RankedIdea, error) {
	var rows []RankedIdea
	query := aggregated(s.db.Model(&models.Idea{}).Where("ideas.id = ?", ideaID), viewerID)
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	row := rows[0]
	row.ViewerVoted = row.ViewerVotes > 0
	return &row, nil
}

// narrowed 搜索候选集加作者/投票人过滤后的基础查询。
// 这里不挂聚合的 LEFT JOIN，计数时不需要它。
func (s *IdeaService) narrowed(tx *gorm.DB, q IdeaQuery, filtered bool, candidates []uint) *gorm.DB {
	query := tx.Model(&models.Idea{})
	if filtered {
		query = query.Where("ideas.id IN ?", candidates)
	}
	if q.AuthorID != nil {
		query = query.Where("ideas.user_id = ?", *q.AuthorID)
	}
	if q.VoterID != nil {
		// 投票人过滤是内连接：没有该用户投票的 idea 直接排除。
		// 唯一索引保证每个 idea 至多匹配一行，不会放大聚合计数。
		query = query.Joins("JOIN votes AS voter_votes ON voter_votes.idea_id = ideas.id AND voter_votes.user_id = ?", *q.VoterID)
	}
	return query
}

// aggregated 在基础查询上挂投票聚合。有查看者时用条件计数取 viewer_votes，
// 避免再连一次 votes 表造成笛卡尔放大。
func aggregated(query *gorm.DB, viewerID *uint) *gorm.DB {
	if viewerID != nil {
		query = query.Select(listColumns+", COUNT(CASE WHEN votes.user_id = ? THEN 1 END) AS viewer_votes", *viewerID)
	} else {
		query = query.Select(listColumns)
	}
	return query.
		Joins("LEFT JOIN votes ON votes.idea_id = ideas.id").
		Joins("JOIN users ON users.id = ideas.user_id").
		Group("ideas.id, users.id, users.username")
}

// Get 取原始 idea 记录（编辑前的作者校验用）
func (s *IdeaService) Get(ideaID uint) (*models.Idea, error) {
	var idea models.Idea
	if err := s.db.First(&idea, ideaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &idea, nil
}

// Create 新建 idea 并同步写索引。索引失败整个事务回滚，
// 创建完成后的搜索必须立即能看到新内容。
func (s *IdeaService) Create(userID uint, title, description, link string) (*models.Idea, error) {
	idea := &models.Idea{
		UserID:      userID,
		Title:       title,
		Description: description,
		Link:        link,
		Modified:    time.Now(),
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(idea).Error; err != nil {
			return err
		}
		return s.index.Upsert(idea.ID, idea.Title, idea.Description)
	})
	if err != nil {
		return nil, err
	}
	return idea, nil
}

// Update 修改 idea 内容，刷新 modified 并同步重建索引文档
func (s *IdeaService) Update(ideaID uint, title, description, link string) (*models.Idea, error) {
	var idea models.Idea
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&idea, ideaID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		now := time.Now()
		if now.Before(idea.Modified) {
			now = idea.Modified // modified 只增不减
		}
		idea.Title = title
		idea.Description = description
		idea.Link = link
		idea.Modified = now
		if err := tx.Save(&idea).Error; err != nil {
			return err
		}
		return s.index.Upsert(idea.ID, idea.Title, idea.Description)
	})
	if err != nil {
		return nil, err
	}
	return &idea, nil
}

// ReindexAll 启动时全量回填索引（内存索引每次启动都是空的）
func (s *IdeaService) ReindexAll() error {
	var ideas []models.Idea
	if err := s.db.Find(&ideas).Error; err != nil {
		return err
	}
	for _, idea := range ideas {
		if err := s.index.Upsert(idea.ID, idea.Title, idea.Description); err != nil {
			return err
		}
	}
	return nil
}
