package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"contentvault/internal/api"
	"contentvault/internal/auth"
	"contentvault/internal/catalog"
	"contentvault/internal/config"
	"contentvault/internal/db"
	"contentvault/internal/storage"
)

func main() {
	cfg := config.Load()

	gdb, err := db.Connect(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	store, err := storage.NewMinioStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOSecure, cfg.MinIOBucket)
	if err != nil {
		log.Fatalf("minio connect failed: %v", err)
	}

	r := gin.Default()
	r.Use(corsMiddleware())

	srv := &api.Server{
		DB:      gdb,
		Catalog: catalog.NewService(gdb, cfg.ScanCap, cfg.ListPageSize),
		Store:   store,
		Tokens: auth.TokenService{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.JWTIssuer,
			Duration: cfg.JWTDuration,
		},
	}
	srv.RegisterRoutes(r)

	log.Printf("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
