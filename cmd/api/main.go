// Package main はAPIサーバーのエントリーポイントです。
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Aman-2203/ShabdSetu/internal/config"
	"github.com/Aman-2203/ShabdSetu/internal/gemini"
	"github.com/Aman-2203/ShabdSetu/internal/jobs"
	"github.com/Aman-2203/ShabdSetu/internal/pool"
	"github.com/Aman-2203/ShabdSetu/internal/progress"
	"github.com/Aman-2203/ShabdSetu/internal/vision"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := log.New(os.Stdout, "[shabdsetu] ", log.LstdFlags)

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	// 外部AIクライアントの初期化
	ctx := context.Background()
	geminiClient, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to create gemini client: %v", err)
	}
	defer geminiClient.Close()

	visionClient, err := vision.NewClient(ctx, cfg.VisionAPIKey)
	if err != nil {
		log.Fatalf("Failed to create vision client: %v", err)
	}

	// 全ジョブで共有するワーカープール
	workers := pool.New(cfg.PoolSize)
	defer workers.Shutdown()

	store := progress.NewStore()
	manager := jobs.NewManager(cfg, workers, store, jobs.Services{
		Detector:    visionClient,
		Proofreader: geminiClient,
		Translator:  geminiClient,
	}, logger)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()

	// CORSミドルウェアの設定
	corsConfig := cors.DefaultConfig()
	// CORS許可オリジンを設定（カンマ区切りの文字列を配列に変換）
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	router.GET("/health", handleHealth)
	jobs.RegisterRoutes(router, manager, store, cfg)

	// サーバーの起動
	addr := ":" + cfg.Port
	logger.Printf("Starting API server on %s (mode: %s, workers: %d)", addr, cfg.GinMode, cfg.PoolSize)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "shabdsetu-api",
		"version": "0.1.0",
	})
}
