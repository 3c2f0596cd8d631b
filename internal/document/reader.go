// Package document は入力ドキュメントの検証・読み取り・ページ展開・
// 出力書き出しを担当します。
package document

import (
	"fmt"
	"os"
	"strings"

	"code.sajari.com/docconv"
)

// ReadText は入力ファイルから本文テキストを取り出します。
// Word文書は段落単位で読み、空段落を除いて空行区切りで連結します。
// プレーンテキストはそのまま返します。
func ReadText(path string) (string, error) {
	kind, err := DetectKind(path)
	if err != nil {
		return "", err
	}

	switch kind {
	case KindText:
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return normalizeParagraphs(string(data)), nil
	case KindDocx:
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", fmt.Errorf("read docx: %w", err)
		}
		return normalizeParagraphs(res.Body), nil
	default:
		return "", fmt.Errorf("unsupported input for text extraction: %s", kind)
	}
}

// normalizeParagraphs は行単位で空白を整理し、非空行を空行区切りの
// 段落列として組み直します。
func normalizeParagraphs(raw string) string {
	var paragraphs []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}
