package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	AccessTokenSecret  string // アクセストークン署名シークレット
	RefreshTokenSecret string // リフレッシュトークン署名シークレット

	AccessTokenExpiry  time.Duration // アクセストークン有効期限（デフォルト1h）
	RefreshTokenExpiry time.Duration // リフレッシュトークン有効期限（デフォルト7d）

	CORSOrigin string // フロントURL（CORSで使う）
}

const (
	defaultAccessTokenExpiry  = time.Hour
	defaultRefreshTokenExpiry = 7 * 24 * time.Hour
	defaultCORSOrigin         = "http://localhost:5174"
)

// Loadは環境変数から設定を読み込む。
// シークレット未設定は起動時エラー（デフォルト値で黙って動かさない）。
func Load() (Config, error) {
	cfg := Config{
		Port: getenv("PORT", "8080"),

		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),

		CORSOrigin: getenv("CORS_ORIGIN", defaultCORSOrigin),
	}

	//必須チェック
	if cfg.AccessTokenSecret == "" {
		return Config{}, fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}
	if cfg.RefreshTokenSecret == "" {
		return Config{}, fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}

	accessExp, err := expiryEnv("ACCESS_TOKEN_EXPIRY", defaultAccessTokenExpiry)
	if err != nil {
		return Config{}, err
	}
	cfg.AccessTokenExpiry = accessExp

	refreshExp, err := expiryEnv("REFRESH_TOKEN_EXPIRY", defaultRefreshTokenExpiry)
	if err != nil {
		return Config{}, err
	}
	cfg.RefreshTokenExpiry = refreshExp

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func expiryEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := parseExpiry(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 1h or 7d: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

// parseExpiryは"1h"のようなGo形式に加えて"7d"の日指定を受け付ける。
func parseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}
