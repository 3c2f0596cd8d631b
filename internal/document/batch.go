package document

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/Aman-2203/ShabdSetu/internal/dispatch"
	"github.com/Aman-2203/ShabdSetu/internal/transform"
)

// errNoPageImage は画像化に失敗したページのOCRを再試行なしで打ち切るための
// 目印です。
var errNoPageImage = errors.New("page image unavailable")

// DefaultBatchSize は一度にメモリへ載せるページ数です。
// 巨大なスキャンPDFでもページ画像の常駐を一定量に抑えます。
const DefaultBatchSize = 5

// OCRFunc は1ページ分の画像からテキストを抽出します。
type OCRFunc func(ctx context.Context, image []byte) (string, error)

// Reporter はページ処理の進捗通知を受け取ります。
// 1ページにつき画像変換とOCRで2単位進みます。
type Reporter func(done, total int, status string)

// BatchRenderer はPDFページをバッチ単位で画像化し、OCRへ流し込みます。
type BatchRenderer struct {
	BatchSize  int
	Dispatcher *dispatch.Dispatcher
	Logger     *log.Logger
}

// NewBatchRenderer は既定バッチサイズのレンダラを返します。
func NewBatchRenderer(d *dispatch.Dispatcher, logger *log.Logger) *BatchRenderer {
	return &BatchRenderer{
		BatchSize:  DefaultBatchSize,
		Dispatcher: d,
		Logger:     logger,
	}
}

// ExtractText は全ページをバッチ処理してOCR結果を返します。
// ページごとの失敗は空文字列として扱い、残りのページの処理を続けます。
// 戻り値は非空ページのテキストを空行区切りで連結したものです。
func (r *BatchRenderer) ExtractText(ctx context.Context, src PageSource, ocr OCRFunc, report Reporter) (string, error) {
	batchSize := r.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	totalPages := src.PageCount()
	totalUnits := 2 * totalPages
	done := 0
	step := func(status string) {
		done++
		if report != nil {
			report(done, totalUnits, status)
		}
	}

	pageTexts := make([]string, totalPages)
	for start := 0; start < totalPages; start += batchSize {
		end := start + batchSize
		if end > totalPages {
			end = totalPages
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r.logf("processing batch: pages %d to %d of %d", start+1, end, totalPages)

		// バッチ分だけ画像化する。失敗ページは nil のままOCRを飛ばす。
		images := make([][]byte, end-start)
		for i := start; i < end; i++ {
			step(fmt.Sprintf("Converting page %d/%d", i+1, totalPages))
			img, err := src.PageImage(i + 1)
			if err != nil {
				r.logf("page %d: image extraction failed: %v", i+1, err)
				continue
			}
			images[i-start] = img
		}

		results := r.Dispatcher.Process(ctx, "ocr", end-start,
			func(actx context.Context, i int) (string, error) {
				if images[i] == nil {
					return "", transform.NewError(transform.KindFatal, "ocr", errNoPageImage)
				}
				return ocr(actx, images[i])
			},
			func(int) string { return "" },
			func(batchDone, _ int) {
				step(fmt.Sprintf("OCR processing page %d/%d", start+batchDone, totalPages))
			},
		)
		copy(pageTexts[start:end], results)
	}

	var nonEmpty []string
	for _, t := range pageTexts {
		if strings.TrimSpace(t) != "" {
			nonEmpty = append(nonEmpty, t)
		}
	}
	return strings.Join(nonEmpty, "\n\n"), nil
}

func (r *BatchRenderer) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}
