// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// サーバー設定
	Port    string // APIサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// 外部APIキー
	GeminiAPIKey string // Gemini API キー（校正・翻訳）
	VisionAPIKey string // Google Vision API キー（OCR）
	GeminiModel  string // 使用する生成モデル名

	// ファイル設定
	UploadDir   string // アップロードファイルの保存先
	OutputDir   string // 成果物の保存先
	MaxFileSize int64  // 単一ファイルの最大サイズ（バイト）
	MaxPages    int    // 単一PDFの最大ページ数（超過は即時エラー）

	// 処理パイプライン設定
	PoolSize           int           // プロセス全体で共有するワーカースロット数
	MaxChunkSize       int           // テキストチャンクの最大文字数
	BatchSize          int           // OCRページ処理のバッチサイズ
	MinRequestInterval time.Duration // 外部API呼び出しの最小送信間隔
	TextTimeout        time.Duration // 生成テキスト呼び出しの試行あたりタイムアウト
	VisionTimeout      time.Duration // Vision呼び出しの試行あたりタイムアウト

	// クリーンアップ設定
	CleanupDelayMinutes int // 完了後にファイルと進捗を削除するまでの分数
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// 外部APIキー
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		VisionAPIKey: getEnv("GOOGLE_VISION_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-pro"),

		// ファイル設定
		UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
		OutputDir:   getEnv("OUTPUT_DIR", "outputs"),
		MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 700*1024*1024), // 700MB
		MaxPages:    getEnvAsInt("MAX_PAGES", 200),

		// 処理パイプライン設定
		PoolSize:           getEnvAsInt("POOL_SIZE", 40),
		MaxChunkSize:       getEnvAsInt("MAX_CHUNK_SIZE", 15000),
		BatchSize:          getEnvAsInt("OCR_BATCH_SIZE", 5),
		MinRequestInterval: getEnvAsDuration("MIN_REQUEST_INTERVAL", 50*time.Millisecond),
		TextTimeout:        getEnvAsDuration("TEXT_TIMEOUT", 300*time.Second),
		VisionTimeout:      getEnvAsDuration("VISION_TIMEOUT", 120*time.Second),

		// クリーンアップ設定
		CleanupDelayMinutes: getEnvAsInt("CLEANUP_DELAY_MINUTES", 30),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発ではAPIキーは任意（モックで代替できる）
	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required in release mode")
		}
		if c.VisionAPIKey == "" {
			return fmt.Errorf("GOOGLE_VISION_API_KEY is required in release mode")
		}
	}
	if c.PoolSize <= 0 {
		return fmt.Errorf("POOL_SIZE must be positive (got %d)", c.PoolSize)
	}
	if c.MaxChunkSize <= 0 {
		return fmt.Errorf("MAX_CHUNK_SIZE must be positive (got %d)", c.MaxChunkSize)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("OCR_BATCH_SIZE must be positive (got %d)", c.BatchSize)
	}
	if c.MaxPages <= 0 {
		return fmt.Errorf("MAX_PAGES must be positive (got %d)", c.MaxPages)
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
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

// getEnvAsInt64 は環境変数を64ビット整数として取得します。
func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration は環境変数を time.Duration として取得します（例: "50ms", "300s"）。
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
