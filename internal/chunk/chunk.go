// Package chunk はテキストを上限サイズ以下の順序付きチャンクへ分割します。
//
// 分割は段階的に行います:
//  1. 段落（空行）単位で貪欲に詰め込む
//  2. 上限を超える段落は、テキスト中に実際に存在する最初のデリミタ
//     （ヒンディー語/グジャラート語の文末記号 → 一般的な句読点 → 空白文字）で分割する
//  3. デリミタが存在しない場合は上限位置で強制分割する（直前500文字以内の
//     改行・スペースを優先し、単語の途中で切らないようにする）
package chunk

import (
	"strings"
	"unicode/utf8"
)

// delimiters は優先順のデリミタ一覧です。前のデリミタで分割した断片に
// 同じデリミタが再出現することはないため、探索は常に前進します。
var delimiters = []string{"।", "॥", "। ", "? ", "! ", ". ", "\n", "\t", " "}

// paragraphSeparator は段落区切りと、校正・翻訳結果の結合に使うセパレータです。
const paragraphSeparator = "\n\n"

// forceSplitLookback は強制分割時に区切り候補を探す遡り文字数です。
const forceSplitLookback = 500

// Split は text を maxSize 文字以下のチャンク列に分割します。
// 空入力は空のスライスを返し、空のチャンクは決して生成されません。
func Split(text string, maxSize int) []string {
	if maxSize <= 0 {
		return nil
	}
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []string
	current := ""

	for _, paragraph := range strings.Split(text, paragraphSeparator) {
		if runeLen(paragraph) > maxSize {
			// 巨大段落はデリミタ分割へ。積み残しを先に確定させる。
			chunks = appendChunk(chunks, current)
			current = ""
			chunks = append(chunks, splitLarge(paragraph, maxSize)...)
			continue
		}

		if runeLen(current)+runeLen(paragraph)+len(paragraphSeparator) > maxSize {
			chunks = appendChunk(chunks, current)
			current = paragraph + paragraphSeparator
		} else {
			current += paragraph + paragraphSeparator
		}
	}
	chunks = appendChunk(chunks, current)

	// 最終チェック: どの経路を通っても上限超過のチャンクを残さない。
	final := make([]string, 0, len(chunks))
	for _, c := range chunks {
		if runeLen(c) > maxSize {
			final = append(final, forceSplit(c, maxSize)...)
		} else {
			final = append(final, c)
		}
	}
	return final
}

// piece はデリミタ分割の作業単位です。delimIdx は次に試すデリミタの添字で、
// 分割のたびに必ず進むため処理は有限回で終わります。
type piece struct {
	text     string
	delimIdx int
}

// splitLarge は上限を超えるテキストを、明示的なワークスタックを使って
// デリミタ優先順に分割します（巨大入力でも再帰深度に依存しません）。
func splitLarge(text string, maxSize int) []string {
	var chunks []string
	current := ""

	stack := []piece{{text: text, delimIdx: 0}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if runeLen(p.text) <= maxSize {
			// 収まる断片は貪欲に詰め込む。
			if runeLen(current)+runeLen(p.text) > maxSize {
				chunks = appendChunk(chunks, current)
				current = p.text
			} else {
				current += p.text
			}
			continue
		}

		chunks = appendChunk(chunks, current)
		current = ""

		delimIdx := -1
		for j := p.delimIdx; j < len(delimiters); j++ {
			if strings.Contains(p.text, delimiters[j]) {
				delimIdx = j
				break
			}
		}
		if delimIdx == -1 {
			// デリミタなし: 強制分割が最後の手段。
			chunks = append(chunks, forceSplit(p.text, maxSize)...)
			continue
		}

		delim := delimiters[delimIdx]
		segments := strings.Split(p.text, delim)
		// 元の順序で取り出せるよう逆順に積む。末尾以外はデリミタを復元する。
		for k := len(segments) - 1; k >= 0; k-- {
			segment := segments[k]
			if k < len(segments)-1 {
				segment += delim
			}
			if segment == "" {
				// デリミタ連続による空断片は捨てる。
				continue
			}
			stack = append(stack, piece{text: segment, delimIdx: delimIdx + 1})
		}
	}

	return appendChunk(chunks, current)
}

// forceSplit は maxSize 境界で強制的に分割します。境界直前
// forceSplitLookback 文字以内に改行またはスペースがあればそこで切り、
// 単語の途中で切断するのを避けます（改行をスペースより優先）。
func forceSplit(text string, maxSize int) []string {
	var chunks []string
	remaining := []rune(strings.TrimSpace(text))

	for len(remaining) > maxSize {
		splitPoint := maxSize
		searchStart := maxSize - forceSplitLookback
		if searchStart < 0 {
			searchStart = 0
		}

		lastSpace, lastNewline := -1, -1
		for i := searchStart; i < maxSize; i++ {
			switch remaining[i] {
			case ' ':
				lastSpace = i
			case '\n':
				lastNewline = i
			}
		}

		if lastNewline > searchStart {
			splitPoint = lastNewline + 1
		} else if lastSpace > searchStart {
			splitPoint = lastSpace + 1
		}

		chunks = appendChunk(chunks, string(remaining[:splitPoint]))
		remaining = []rune(strings.TrimSpace(string(remaining[splitPoint:])))
	}

	if len(remaining) > 0 {
		chunks = appendChunk(chunks, string(remaining))
	}
	return chunks
}

// appendChunk は前後の空白を除去した上でチャンクを追加します。
// 空になった断片は追加しません。
func appendChunk(chunks []string, s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return chunks
	}
	return append(chunks, s)
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
