package db

import (
	"log"
	"os"

	"lightbulb/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Init 建立数据库连接并完成迁移，返回显式的 DB 句柄。
// 不使用包级单例，所有核心操作都通过参数拿到句柄，便于测试时注入内存库。
func Init() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=lightbulb port=5432 sslmode=disable"
	}

	// TranslateError 让唯一约束冲突以 gorm.ErrDuplicatedKey 暴露，
	// 投票的 (user_id, idea_id) 唯一性依赖这一点
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(conn); err != nil {
		return nil, err
	}
	log.Println("Database migration completed")

	return conn, nil
}

// Migrate 执行 AutoMigrate，测试里对内存库复用
func Migrate(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&models.User{},
		&models.Idea{},
		&models.Vote{},
		&models.Comment{},
	)
}
