package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr           string
	MySQLDSN       string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOSecure    bool
	MinIOBucket    string
	JWTSecret      string
	JWTIssuer      string
	JWTDuration    time.Duration
	ListPageSize   int
	ScanCap        int
}

func Load() Config {
	return Config{
		Addr:           getenv("ADDR", ":8080"),
		MySQLDSN:       getenv("MYSQL_DSN", "contentvault:contentvault@tcp(127.0.0.1:3306)/contentvault?charset=utf8mb4&parseTime=True&loc=Local"),
		MinIOEndpoint:  getenv("MINIO_ENDPOINT", "127.0.0.1:9000"),
		MinIOAccessKey: getenv("MINIO_ACCESS_KEY", "minioadmin"),
		MinIOSecretKey: getenv("MINIO_SECRET_KEY", "minioadmin"),
		MinIOSecure:    getenvBool("MINIO_SECURE", false),
		MinIOBucket:    getenv("MINIO_BUCKET", "contentvault"),
		JWTSecret:      getenv("JWT_SECRET", ""),
		JWTIssuer:      getenv("JWT_ISSUER", "contentvault"),
		JWTDuration:    time.Duration(getenvInt("JWT_TTL_HOURS", 24)) * time.Hour,
		ListPageSize:   getenvInt("LIST_PAGE_SIZE", 900),
		ScanCap:        getenvInt("AGGREGATE_SCAN_CAP", 5000),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}
