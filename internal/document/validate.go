package document

import (
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrTooManyPages はPDFのページ数が上限を超えたことを示します。
var ErrTooManyPages = errors.New("page count exceeds limit")

// Kind は入力ファイルの種別です。拡張子ではなく内容から判定します。
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDocx Kind = "docx"
	KindText Kind = "text"
)

const (
	mimePDF  = "application/pdf"
	mimeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// DetectKind はファイル内容のMIME判定で種別を返します。
// 対応外の形式はエラーです。
func DetectKind(path string) (Kind, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("detect file type: %w", err)
	}

	switch {
	case mt.Is(mimePDF):
		return KindPDF, nil
	case mt.Is(mimeDocx):
		return KindDocx, nil
	case mt.Is("text/plain"):
		return KindText, nil
	default:
		return "", fmt.Errorf("unsupported file type %s", mt.String())
	}
}

// ValidatePDF はPDFのページ数を数え、maxPages を超える場合はエラーを返します。
// 巨大なスキャンPDFが処理パイプラインを占有するのを防ぎます。
func ValidatePDF(path string, maxPages int) (int, error) {
	count, err := pdfapi.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("count pdf pages: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	if maxPages > 0 && count > maxPages {
		return count, fmt.Errorf("pdf has %d pages, limit is %d: %w", count, maxPages, ErrTooManyPages)
	}
	return count, nil
}
