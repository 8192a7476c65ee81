package services

import (
	"testing"
	"time"

	"lightbulb/internal/db"
	"lightbulb/internal/models"
	"lightbulb/internal/search"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// openTestDB 内存 sqlite，行为上等价于线上 Postgres 路径：
// TranslateError 下唯一冲突同样以 gorm.ErrDuplicatedKey 暴露
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// 内存库按连接隔离，收紧到单连接
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))
	return conn
}

func openTestIndex(t *testing.T) *search.Index {
	t.Helper()
	idx, err := search.Open("", false)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	return idx
}

func newTestIdeaService(t *testing.T) (*IdeaService, *gorm.DB) {
	t.Helper()
	conn := openTestDB(t)
	return NewIdeaService(conn, openTestIndex(t)), conn
}

func createUser(t *testing.T, conn *gorm.DB, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com", Password: "x"}
	require.NoError(t, conn.Create(user).Error)
	return user
}

// createIdea 通过服务创建（走索引写入），再按需要回填 modified
func createIdea(t *testing.T, svc *IdeaService, conn *gorm.DB, userID uint, title, description string, modified time.Time) *models.Idea {
	t.Helper()
	idea, err := svc.Create(userID, title, description, "")
	require.NoError(t, err)
	if !modified.IsZero() {
		require.NoError(t, conn.Model(idea).Update("modified", modified).Error)
		idea.Modified = modified
	}
	return idea
}

func castVote(t *testing.T, conn *gorm.DB, userID, ideaID uint) {
	t.Helper()
	require.NoError(t, conn.Create(&models.Vote{UserID: userID, IdeaID: ideaID, Modified: time.Now()}).Error)
}
