package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	pdfapi "github.com/pdfcpu/pdfcpu/pkg/api"
)

// PageSource はページ単位で画像を取り出せる入力です。
// ページ番号は1始まりです。
type PageSource interface {
	// PageCount は総ページ数を返します。
	PageCount() int
	// PageImage は指定ページの画像バイト列を返します。
	PageImage(page int) ([]byte, error)
}

// pdfSource はスキャンPDFのPageSource実装です。各ページに埋め込まれた
// スキャン画像を抽出して返します。
type pdfSource struct {
	path  string
	count int
}

// OpenPDF はPDFを検証してPageSourceを返します。
func OpenPDF(path string, maxPages int) (PageSource, error) {
	count, err := ValidatePDF(path, maxPages)
	if err != nil {
		return nil, err
	}
	return &pdfSource{path: path, count: count}, nil
}

func (s *pdfSource) PageCount() int {
	return s.count
}

// PageImage は1ページ分の埋め込み画像を一時ディレクトリへ抽出して読み上げます。
// 抽出ファイル名はページ・オブジェクト番号に依存するため、ページごとに
// 専用ディレクトリを使い、現れたファイルをそのまま拾います。
func (s *pdfSource) PageImage(page int) ([]byte, error) {
	if page < 1 || page > s.count {
		return nil, fmt.Errorf("page %d out of range 1..%d", page, s.count)
	}

	dir, err := os.MkdirTemp("", "shabdsetu-page-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	selection := []string{strconv.Itoa(page)}
	if err := pdfapi.ExtractImagesFile(s.path, dir, selection, nil); err != nil {
		return nil, fmt.Errorf("extract image for page %d: %w", page, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list extracted images: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read extracted image: %w", err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("page %d contains no extractable image", page)
}
