// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Store
	DataPath     string
	StoreLatency time.Duration
	ListCacheTTL time.Duration

	// Shift
	// ShiftPassphrase は全オペレーター共有の合言葉リテラル。
	// 認証ではなく身元選択のゲートであり、知っていれば誰でも
	// 任意の登録名で勤務を開始できる。
	ShiftPassphrase string

	// Rate Limit（req/min/operator）
	RateLimitGeneral  int
	RateLimitMutation int

	// Upload
	UploadMaxSize int64

	// Server
	ServerPort string
	BaseURL    string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（ローカル開発用、
// 既存の環境変数は上書きしない）。必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	// .envが無いのは通常運用なのでエラーは無視する
	_ = godotenv.Load()

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.ShiftPassphrase = os.Getenv("SHIFT_PASSPHRASE")
	if cfg.ShiftPassphrase == "" {
		missing = append(missing, "SHIFT_PASSPHRASE")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.DataPath = getEnvString("DATA_PATH", "data/gatehouse.json")
	cfg.StoreLatency = getEnvDuration("STORE_LATENCY", 300*time.Millisecond)
	cfg.ListCacheTTL = getEnvDuration("LIST_CACHE_TTL", 30*time.Second)
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 240)
	cfg.RateLimitMutation = getEnvInt("RATE_LIMIT_MUTATION", 60)
	cfg.UploadMaxSize = getEnvInt64("UPLOAD_MAX_SIZE", 5242880)
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
