package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Aman-2203/ShabdSetu/internal/chunk"
	"github.com/Aman-2203/ShabdSetu/internal/config"
	"github.com/Aman-2203/ShabdSetu/internal/dispatch"
	"github.com/Aman-2203/ShabdSetu/internal/document"
	"github.com/Aman-2203/ShabdSetu/internal/pool"
	"github.com/Aman-2203/ShabdSetu/internal/progress"
	"github.com/Aman-2203/ShabdSetu/internal/ratelimit"
	"github.com/Aman-2203/ShabdSetu/internal/transform"
)

// TextDetector は1ページ分の画像からテキストを抽出します。
type TextDetector interface {
	DetectText(ctx context.Context, image []byte) (string, error)
}

// Proofreader は1チャンク分のOCR校正を行います。
type Proofreader interface {
	Proofread(ctx context.Context, chunk, language string) (string, error)
}

// Translator は1チャンク分の翻訳を行います。
type Translator interface {
	Translate(ctx context.Context, chunk, targetLang string) (string, error)
}

// Notifier は完了した成果物を利用者へ届けます。配送の失敗はジョブを
// 失敗させません（ダウンロードは引き続き可能なため）。
type Notifier interface {
	SendDocument(ctx context.Context, email, outputPath, jobID string) error
}

// Services はジョブ実行に使う外部コラボレータ一式です。
// Notifier は nil でも構いません。
type Services struct {
	Detector    TextDetector
	Proofreader Proofreader
	Translator  Translator
	Notifier    Notifier
}

// Manager はジョブの受付・バックグラウンド実行・後片付けを担います。
type Manager struct {
	cfg          *config.Config
	store        *progress.Store
	svc          Services
	renderer     *document.BatchRenderer
	textDispatch *dispatch.Dispatcher
	logger       *log.Logger
	cleanupDelay time.Duration

	// openPDF はテストから合成PageSourceへ差し替えるためのフックです。
	openPDF func(path string, maxPages int) (document.PageSource, error)
}

// NewManager はManagerを初期化します。p は全ジョブで共有されるプールです。
func NewManager(cfg *config.Config, p *pool.Pool, store *progress.Store, svc Services, logger *log.Logger) *Manager {
	limiter := ratelimit.New(cfg.MinRequestInterval)

	textCaller := transform.NewCaller(cfg.TextTimeout, logger)

	ocrCaller := transform.NewCaller(cfg.VisionTimeout, logger)
	// 白紙ページの空文字列は正当な結果として受け入れる。
	ocrCaller.AllowEmpty = true

	ocrDispatch := dispatch.New(p, limiter, ocrCaller, logger)
	renderer := document.NewBatchRenderer(ocrDispatch, logger)
	renderer.BatchSize = cfg.BatchSize

	return &Manager{
		cfg:          cfg,
		store:        store,
		svc:          svc,
		renderer:     renderer,
		textDispatch: dispatch.New(p, limiter, textCaller, logger),
		logger:       logger,
		cleanupDelay: time.Duration(cfg.CleanupDelayMinutes) * time.Minute,
		openPDF:      document.OpenPDF,
	}
}

// Submit はリクエストを検証し、バックグラウンド処理を開始します。
// 入力の不備（未知のモード・非対応形式・ページ数超過）はここで同期的に
// 返り、ジョブは開始されません。
func (m *Manager) Submit(req Request) (*Job, error) {
	if !req.Mode.Valid() {
		return nil, newError("INVALID_INPUT", "不明な処理モードです。", nil)
	}

	kind, err := document.DetectKind(req.InputPath)
	if err != nil {
		return nil, newError("INVALID_INPUT", "対応していないファイル形式です。PDF・Word・テキストファイルを選択してください。", err)
	}

	if req.Mode.NeedsOCR() {
		if kind != document.KindPDF {
			return nil, newError("INVALID_INPUT", "OCRモードにはスキャンPDFが必要です。", nil)
		}
		if _, err := m.openPDF(req.InputPath, m.cfg.MaxPages); err != nil {
			if errors.Is(err, document.ErrTooManyPages) {
				return nil, newError("LIMIT_EXCEEDED",
					fmt.Sprintf("PDFのページ数が上限（%dページ）を超えています。", m.cfg.MaxPages), err)
			}
			return nil, newError("INVALID_INPUT", "PDFを開けませんでした。ファイルが破損していないか確認してください。", err)
		}
	} else if kind == document.KindPDF {
		return nil, newError("INVALID_INPUT", "校正・翻訳モードにはWord文書またはテキストファイルを選択してください。", nil)
	}

	if (req.Mode == ModeOCRTranslate || req.Mode == ModeTranslate) && req.TargetLang == "" {
		return nil, newError("INVALID_INPUT", "翻訳先の言語を指定してください。", nil)
	}
	if req.Language == "" {
		req.Language = "hindi"
	}

	job := &Job{
		ID:   uuid.New().String(),
		Mode: req.Mode,
		Done: make(chan struct{}),
	}
	m.store.Set(job.ID, progress.State{
		Current:   0,
		Total:     100,
		Status:    "Starting...",
		UserEmail: req.UserEmail,
	})

	go m.run(job, req)
	return job, nil
}

// run は1ジョブ分のパイプラインです。HTTPリクエストの寿命とは独立に
// 走るため、コンテキストはバックグラウンドのものを使います。
func (m *Manager) run(job *Job, req Request) {
	defer close(job.Done)

	ctx := context.Background()
	outputPath, err := m.process(ctx, job, req)
	if err != nil {
		job.Err = err
		m.logf("job %s failed: %v", job.ID, err)
		m.store.Update(job.ID, func(st *progress.State) {
			st.Current = 0
			st.Total = 100
			st.Status = "Error: " + userMessage(err)
			st.Error = true
		})
		m.scheduleCleanup(job.ID, req.InputPath, "")
		return
	}

	outputName := filepath.Base(outputPath)
	job.OutputFile = outputName
	m.store.Update(job.ID, func(st *progress.State) {
		st.Current = 100
		st.Total = 100
		st.Status = "Complete"
		st.OutputFile = outputName
	})
	m.logf("job %s complete: %s", job.ID, outputName)

	if m.svc.Notifier != nil && req.UserEmail != "" {
		if err := m.svc.Notifier.SendDocument(ctx, req.UserEmail, outputPath, job.ID); err != nil {
			m.logf("job %s: failed to send document to %s: %v", job.ID, req.UserEmail, err)
		}
	}

	m.scheduleCleanup(job.ID, req.InputPath, outputPath)
}

// process はモード別に本文を生成し、成果物ファイルのパスを返します。
func (m *Manager) process(ctx context.Context, job *Job, req Request) (string, error) {
	var (
		content  string
		language string
		err      error
	)

	switch req.Mode {
	case ModeOCR:
		content, err = m.ocrText(ctx, job, req)
	case ModeOCRProofread:
		content, err = m.ocrText(ctx, job, req)
		if err == nil {
			content, err = m.proofreadText(ctx, job, content, req.Language)
			language = req.Language
		}
	case ModeProofread:
		content, err = m.readText(req)
		if err == nil {
			content, err = m.proofreadText(ctx, job, content, req.Language)
			language = req.Language
		}
	case ModeOCRTranslate:
		content, err = m.ocrText(ctx, job, req)
		if err == nil {
			content, err = m.translateText(ctx, job, content, req.TargetLang)
			language = req.TargetLang
		}
	case ModeTranslate:
		content, err = m.readText(req)
		if err == nil {
			content, err = m.translateText(ctx, job, content, req.TargetLang)
			language = req.TargetLang
		}
	}
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(m.cfg.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	outputName := document.OutputName(req.OriginalFilename, job.ID, req.Mode.suffix(req.TargetLang))
	outputPath := filepath.Join(m.cfg.OutputDir, outputName)
	if err := document.WriteOutput(outputPath, req.Mode.docType(), language, content); err != nil {
		return "", err
	}
	return outputPath, nil
}

// ocrText はスキャンPDFの全ページをOCRして本文を返します。
func (m *Manager) ocrText(ctx context.Context, job *Job, req Request) (string, error) {
	src, err := m.openPDF(req.InputPath, m.cfg.MaxPages)
	if err != nil {
		return "", newError("INVALID_INPUT", "PDFを開けませんでした。ファイルが破損していないか確認してください。", err)
	}

	text, err := m.renderer.ExtractText(ctx, src, m.svc.Detector.DetectText,
		func(done, total int, status string) {
			m.store.Update(job.ID, func(st *progress.State) {
				st.Current = done
				st.Total = total
				st.Status = status
			})
		})
	if err != nil {
		return "", fmt.Errorf("ocr: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", newError("EMPTY_DOCUMENT", "PDFからテキストを抽出できませんでした。", nil)
	}
	return text, nil
}

// readText はWord文書・テキストファイルから本文を読み取ります。
func (m *Manager) readText(req Request) (string, error) {
	text, err := document.ReadText(req.InputPath)
	if err != nil {
		return "", newError("INVALID_INPUT", "ドキュメントを読み込めませんでした。", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", newError("EMPTY_DOCUMENT", "ドキュメントにテキストが含まれていません。", nil)
	}
	return text, nil
}

// proofreadText は本文をチャンクに割り、並列に校正して結合します。
func (m *Manager) proofreadText(ctx context.Context, job *Job, text, language string) (string, error) {
	chunks := chunk.Split(text, m.cfg.MaxChunkSize)
	m.logf("job %s: proofreading %d chunks", job.ID, len(chunks))

	results := m.textDispatch.ProcessChunks(ctx, "proofread", chunks,
		func(actx context.Context, c string) (string, error) {
			return m.svc.Proofreader.Proofread(actx, c, language)
		},
		m.chunkProgress(job.ID, "Proofreading"),
	)
	return strings.Join(results, "\n\n"), nil
}

// translateText は本文をチャンクに割り、並列に翻訳して結合します。
func (m *Manager) translateText(ctx context.Context, job *Job, text, targetLang string) (string, error) {
	chunks := chunk.Split(text, m.cfg.MaxChunkSize)
	m.logf("job %s: translating %d chunks", job.ID, len(chunks))

	results := m.textDispatch.ProcessChunks(ctx, "translate", chunks,
		func(actx context.Context, c string) (string, error) {
			return m.svc.Translator.Translate(actx, c, targetLang)
		},
		m.chunkProgress(job.ID, "Translation"),
	)
	return strings.Join(results, "\n\n"), nil
}

func (m *Manager) chunkProgress(jobID, operation string) dispatch.Progress {
	return func(done, total int) {
		m.store.Update(jobID, func(st *progress.State) {
			st.Current = done
			st.Total = total
			st.Status = fmt.Sprintf("%s: %d/%d", operation, done, total)
		})
	}
}

// scheduleCleanup は一定時間後に入力・成果物ファイルと進捗エントリを
// 削除します。
func (m *Manager) scheduleCleanup(jobID, inputPath, outputPath string) {
	time.AfterFunc(m.cleanupDelay, func() {
		if inputPath != "" {
			if err := os.Remove(inputPath); err != nil && !os.IsNotExist(err) {
				m.logf("job %s: failed to remove input file: %v", jobID, err)
			}
		}
		if outputPath != "" {
			if err := os.Remove(outputPath); err != nil && !os.IsNotExist(err) {
				m.logf("job %s: failed to remove output file: %v", jobID, err)
			}
		}
		m.store.Delete(jobID)
		m.logf("job %s: cleaned up", jobID)
	})
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// userMessage は進捗表示に載せる利用者向けメッセージを取り出します。
func userMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return "処理中にエラーが発生しました。"
}
