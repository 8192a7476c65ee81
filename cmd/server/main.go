package main

import (
	"log"
	"os"

	"lightbulb/internal/db"
	"lightbulb/internal/middleware"
	"lightbulb/internal/router"
	"lightbulb/internal/search"
	"lightbulb/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading env vars from system")
	}

	// Initialize Database
	conn, err := db.Init()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// 打开搜索索引。路径为空时用内存索引，每次启动从库里回填
	degrade := os.Getenv("SEARCH_DEGRADE") == "1"
	index, err := search.Open(os.Getenv("SEARCH_INDEX_PATH"), degrade)
	if err != nil {
		log.Fatalf("Failed to open search index: %v", err)
	}
	defer index.Close()

	if err := services.NewIdeaService(conn, index).ReindexAll(); err != nil {
		log.Fatalf("Failed to rebuild search index: %v", err)
	}

	// Initialize Gin
	r := gin.Default()

	// Setup Sessions
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}
	store := cookie.NewStore([]byte(secret))
	r.Use(sessions.Sessions("lightbulb_session", store))

	// Middleware
	r.Use(middleware.LoadUser(conn))

	// Routes
	router.RegisterRoutes(r, conn, index)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("LightBulb server starting on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
