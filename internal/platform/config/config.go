package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーション全体の設定を保持します
type Config struct {
	// 変換サーバ設定
	Server ServerConfig

	// ポーリング設定
	Poll PollConfig

	// 成果物の保存設定
	Download DownloadConfig

	// ログ設定
	Log LogConfig
}

// ServerConfig は変換サーバへの接続設定
type ServerConfig struct {
	URL string
	// HTTPTimeout はステータス取得と deps のタイムアウト。送信とダウンロードには適用しない
	HTTPTimeout time.Duration
}

// PollConfig はステータス監視の設定
type PollConfig struct {
	Interval     time.Duration
	WatchTimeout time.Duration // 0 は無制限
	MaxMalformed int           // 連続した不正応答の許容回数（0 は無制限）
}

// DownloadConfig は完了時の自動ダウンロード設定
type DownloadConfig struct {
	Dir  string
	Auto bool
}

// LogConfig はロガー設定
type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

// Load は環境変数または.envファイルから設定を読み込みます
func Load(envFilePath string) (*Config, error) {
	// .envファイルが存在する場合は読み込む
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			// ファイルが存在しない場合はエラーとしない（環境変数のみで動作可能）
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load .env file: %w", err)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			URL:         getEnv("U8G2_SERVER_URL", "http://localhost:5000"),
			HTTPTimeout: getEnvAsDuration("U8G2_HTTP_TIMEOUT", 30*time.Second),
		},
		Poll: PollConfig{
			Interval:     getEnvAsDuration("U8G2_POLL_INTERVAL", 1500*time.Millisecond),
			WatchTimeout: getEnvAsDuration("U8G2_WATCH_TIMEOUT", 0),
			MaxMalformed: getEnvAsInt("U8G2_MAX_MALFORMED_POLLS", 5),
		},
		Download: DownloadConfig{
			Dir:  getEnv("U8G2_DOWNLOAD_DIR", "."),
			Auto: getEnvAsBool("U8G2_AUTO_DOWNLOAD", true),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate は設定値の整合性を検証します
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("U8G2_SERVER_URL is empty")
	}
	if c.Poll.Interval <= 0 {
		return fmt.Errorf("U8G2_POLL_INTERVAL must be positive: %s", c.Poll.Interval)
	}
	if c.Poll.WatchTimeout < 0 {
		return fmt.Errorf("U8G2_WATCH_TIMEOUT must not be negative: %s", c.Poll.WatchTimeout)
	}
	if c.Poll.MaxMalformed < 0 {
		return fmt.Errorf("U8G2_MAX_MALFORMED_POLLS must not be negative: %d", c.Poll.MaxMalformed)
	}
	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt は環境変数を整数として取得します
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsBool は環境変数を真偽値として取得します
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します
// "1.5s" のような形式のほか、単位なしの数値は秒として扱います
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	if seconds, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return time.Duration(seconds * float64(time.Second))
	}
	return defaultValue
}
