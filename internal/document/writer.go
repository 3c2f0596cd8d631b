package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// OutputName は出力ファイル名を組み立てます。元ファイル名の拡張子を除いた
// 部分にジョブIDと処理種別サフィックスを付けます。
// 例: book.pdf + job abc + "ocr_proofread" → book_abc_ocr_proofread.txt
func OutputName(originalName, jobID, suffix string) string {
	base := filepath.Base(originalName)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s_%s.txt", base, jobID, suffix)
}

// WriteOutput は処理結果をプレーンテキストで書き出します。
// 先頭に処理種別・言語・処理日時のヘッダを付けます。
func WriteOutput(path, docType, language, content string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Version\n", docType)
	fmt.Fprintf(&b, "Processed on: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	if language != "" {
		fmt.Fprintf(&b, "Language: %s\n", titleCase(language))
	}
	b.WriteString("\n")
	b.WriteString(content)
	b.WriteString("\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
