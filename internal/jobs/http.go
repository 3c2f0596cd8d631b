package jobs

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Aman-2203/ShabdSetu/internal/config"
	"github.com/Aman-2203/ShabdSetu/internal/progress"
)

// RegisterRoutes は処理API一式をルーターに登録します。
func RegisterRoutes(r gin.IRouter, m *Manager, store *progress.Store, cfg *config.Config) {
	api := r.Group("/api")
	api.POST("/process", ProcessHandler(m, cfg))
	api.GET("/progress/:id", ProgressHandler(store))
	api.GET("/download/:filename", DownloadHandler(cfg))
}

// ProcessHandler は POST /api/process のハンドラーを返します。
// ファイルと処理パラメータを受け取り、ジョブIDを即座に返します。
func ProcessHandler(m *Manager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "multipart/form-data でファイルを送信してください。",
			})
			return
		}
		if file.Size > cfg.MaxFileSize {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"code":    "LIMIT_EXCEEDED",
				"message": fmt.Sprintf("ファイルサイズが上限（%dMB）を超えています。", cfg.MaxFileSize/(1024*1024)),
			})
			return
		}

		mode, err := strconv.Atoi(c.PostForm("mode"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "modeには1〜5の整数を指定してください。",
			})
			return
		}

		inputPath, err := storeUpload(file, cfg.UploadDir)
		if err != nil {
			respondWithError(c, err)
			return
		}

		job, err := m.Submit(Request{
			Mode:             Mode(mode),
			InputPath:        inputPath,
			OriginalFilename: file.Filename,
			Language:         c.PostForm("language"),
			SourceLang:       c.PostForm("source_lang"),
			TargetLang:       c.PostForm("target_lang"),
			UserEmail:        c.PostForm("user_email"),
		})
		if err != nil {
			// 開始できなかったジョブのアップロードは残さない。
			_ = os.Remove(inputPath)
			respondWithError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{"job_id": job.ID})
	}
}

// ProgressHandler は GET /api/progress/:id のハンドラーを返します。
func ProgressHandler(store *progress.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, ok := store.Get(c.Param("id"))
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "NOT_FOUND",
				"message": "指定されたジョブが見つかりません。",
			})
			return
		}
		c.JSON(http.StatusOK, state)
	}
}

// DownloadHandler は GET /api/download/:filename のハンドラーを返します。
// パス要素を含むファイル名は出力ディレクトリ外への参照として拒否します。
func DownloadHandler(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")
		if filename == "" || filename != filepath.Base(filename) {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "不正なファイル名です。",
			})
			return
		}

		path := filepath.Join(cfg.OutputDir, filename)
		if _, err := os.Stat(path); err != nil {
			c.JSON(http.StatusNotFound, gin.H{
				"code":    "NOT_FOUND",
				"message": "ファイルが見つかりません。既に削除された可能性があります。",
			})
			return
		}
		c.FileAttachment(path, filename)
	}
}

// storeUpload はアップロードされたファイルを衝突しない名前で保存します。
func storeUpload(file *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, uuid.New().String()+"_"+filepath.Base(file.Filename))
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("save upload: %w", err)
	}
	return path, nil
}

func respondWithError(c *gin.Context, err error) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		status := http.StatusBadRequest
		if apiErr.Code == "LIMIT_EXCEEDED" {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "INTERNAL_ERROR",
		"message": "サーバー内部でエラーが発生しました。",
	})
}
