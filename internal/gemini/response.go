package gemini

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// correctedTextMarker は校正応答の本文開始マーカーです。
const correctedTextMarker = "CORRECTED_TEXT:"

// trailingSections は本文の後ろに付くことがある余計なセクションです。
var trailingSections = []string{"CHANGES_MADE:", "FORMATTING_APPLIED:"}

// stripPrefixes はマーカーなし応答の先頭から取り除く定型句です。
var stripPrefixes = []string{
	"TECHNICAL ERRORS FOUND:", "CHANGES_MADE:", "FORMATTING_APPLIED:",
	"No technical corrections needed", "No obvious technical errors found",
}

// minBareResponseLen はマーカーなし応答を本文とみなす最小文字数です。
// これより短い応答は定型句の残骸とみなして棄却します。
const minBareResponseLen = 50

// ExtractCorrectedText は校正応答から本文だけを取り出します。
// 取り出せない場合は空文字列を返します（呼び出し側で失敗扱いになります）。
func ExtractCorrectedText(response string) string {
	if _, after, found := strings.Cut(response, correctedTextMarker); found {
		for _, section := range trailingSections {
			if idx := strings.Index(after, section); idx >= 0 {
				after = after[:idx]
			}
		}
		if corrected := strings.TrimSpace(after); corrected != "" {
			return corrected
		}
	}

	cleaned := strings.TrimSpace(response)
	for _, prefix := range stripPrefixes {
		if strings.HasPrefix(cleaned, prefix) {
			cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, prefix))
		}
	}
	if utf8.RuneCountInString(cleaned) > minBareResponseLen {
		return cleaned
	}
	return ""
}

// sanskritMarkers はOCRや前処理で紛れ込む表記ゆれの一覧です。
// いずれも正規形 <...> へ揃えます。
var sanskritMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\*sanskrit\*(.*?)\*/sanskrit\*`),
	regexp.MustCompile(`(?is)\*\*sanskrit\*\*(.*?)\*\*/sanskrit\*\*`),
	regexp.MustCompile(`(?is)\[sanskrit\](.*?)\[/sanskrit\]`),
	regexp.MustCompile(`(?is)<sanskrit>(.*?)</sanskrit>`),
}

// CleanSanskritFormatting はサンスクリット書式マーカーの表記ゆれを
// <本文> 形式に正規化します。
func CleanSanskritFormatting(text string) string {
	for _, re := range sanskritMarkers {
		text = re.ReplaceAllString(text, "<$1>")
	}
	return text
}
