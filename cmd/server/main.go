package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/application/services"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/infrastructure/docstore"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/interfaces/middleware"
	"github.com/Prashanth-SKT/MUDUMBAI-BACKEND/internal/interfaces/rest"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	store, err := newStore()
	if err != nil {
		log.Fatalf("Failed to initialize document store: %v", err)
	}

	svcMgr := services.NewServiceManager(store)
	log.Println("Service manager initialized")

	router := gin.Default()
	router.Use(middleware.Cors())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	rest.RegisterRoutes(router, svcMgr)

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Server listening on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
	log.Println("Server stopped")
}

// newStore selects the document store from the environment: a MySQL-backed
// store when DB_HOST is set, the in-memory store otherwise.
func newStore() (docstore.Store, error) {
	host := os.Getenv("DB_HOST")
	if host == "" {
		log.Println("DB_HOST not set, using in-memory document store")
		return docstore.NewMemoryStore(), nil
	}

	port := os.Getenv("DB_PORT")
	if port == "" {
		port = "3306"
	}
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	database := os.Getenv("DB_NAME")
	if database == "" {
		database = "mudumbai"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4",
		user, password, host, port, database)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Printf("Connected to database %s on %s", database, host)

	return docstore.NewSQLStore(db)
}
