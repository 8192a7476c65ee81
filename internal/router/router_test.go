package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"lightbulb/internal/db"
	"lightbulb/internal/middleware"
	"lightbulb/internal/search"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestServer 按 main.go 的装配顺序搭一个完整的路由栈
func newTestServer(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Migrate(conn))

	index, err := search.Open("", false)
	require.NoError(t, err)
	t.Cleanup(func() { index.Close() })

	r := gin.New()
	store := cookie.NewStore([]byte("test_secret"))
	r.Use(sessions.Sessions("lightbulb_session", store))
	r.Use(middleware.LoadUser(conn))
	RegisterRoutes(r, conn, index)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// signupAndLogin 注册并登录，返回会话 cookie
func signupAndLogin(t *testing.T, r *gin.Engine, name string) []*http.Cookie {
	t.Helper()
	w := postForm(r, "/signup", url.Values{
		"username": {name},
		"email":    {name + "@example.com"},
		"password": {"hunter2"},
	}, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postForm(r, "/login", url.Values{
		"email":    {name + "@example.com"},
		"password": {"hunter2"},
	}, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestListIsPermissiveAboutParams(t *testing.T) {
	r := newTestServer(t)

	// 非法 page / 未识别 sort 都不报错
	w := get(r, "/ideas?page=abc&sort=banana&per_page=xyz", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var page struct {
		Total      int64 `json:"total"`
		TotalPages int   `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 0, page.Total)
}

func TestDetailNotFound(t *testing.T) {
	r := newTestServer(t)
	w := get(r, "/ideas/999", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateIdeaRequiresLogin(t *testing.T) {
	r := newTestServer(t)
	w := postForm(r, "/ideas", url.Values{
		"title":       {"no session"},
		"description": {"should bounce"},
	}, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIdeaLifecycleOverHTTP(t *testing.T) {
	r := newTestServer(t)
	author := signupAndLogin(t, r, "author")
	voter := signupAndLogin(t, r, "voter")

	// 发布
	w := postForm(r, "/ideas", url.Values{
		"title":       {"Solar charger"},
		"description": {"a portable panel"},
	}, author)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotZero(t, created.ID)

	// 缺字段
	w = postForm(r, "/ideas", url.Values{"title": {"only title"}}, author)
	require.Equal(t, http.StatusBadRequest, w.Code)

	// 列表带搜索命中
	w = get(r, "/ideas?q=solar", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Total int64 `json:"total"`
		Ideas []struct {
			IdeaID      uint   `json:"idea_id"`
			Title       string `json:"title"`
			TotalVotes  int64  `json:"total_votes"`
			ViewerVoted bool   `json:"viewer_voted"`
		} `json:"ideas"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, created.ID, page.Ideas[0].IdeaID)
	require.EqualValues(t, 0, page.Ideas[0].TotalVotes)

	// 投票、重复投票
	votePath := "/ideas/" + strconvUint(created.ID) + "/vote"
	w = postForm(r, votePath, nil, voter)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = postForm(r, votePath, nil, voter)
	require.Equal(t, http.StatusConflict, w.Code)

	// 投票人视角的列表带 viewer_voted
	w = get(r, "/ideas", voter)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.True(t, page.Ideas[0].ViewerVoted)
	require.EqualValues(t, 1, page.Ideas[0].TotalVotes)

	// 非作者编辑被拒
	editPath := "/ideas/" + strconvUint(created.ID) + "/edit"
	w = postForm(r, editPath, url.Values{
		"title":       {"hijacked"},
		"description": {"x"},
	}, voter)
	require.Equal(t, http.StatusForbidden, w.Code)

	// 作者编辑后搜索立即可见
	w = postForm(r, editPath, url.Values{
		"title":       {"Solar charger"},
		"description": {"now featuring a teleporter"},
	}, author)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = get(r, "/ideas?q=teleporter", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Total)

	// 评论
	w = postForm(r, "/ideas/"+strconvUint(created.ID)+"/comments", url.Values{
		"description": {"nice idea"},
	}, voter)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = get(r, "/ideas/"+strconvUint(created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Comments []struct {
			Description string `json:"description"`
		} `json:"comments"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	require.Len(t, detail.Comments, 1)
	require.Equal(t, "nice idea", detail.Comments[0].Description)

	// 投票列表（公开）
	w = get(r, "/users/2/votes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.EqualValues(t, 1, page.Total)
	require.True(t, page.Ideas[0].ViewerVoted)
}

func strconvUint(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
