// Package jobs はドキュメント処理ジョブの受付・実行・進捗公開を担います。
package jobs

import (
	"fmt"
)

// Mode は処理モードです。
type Mode int

const (
	// ModeOCR はスキャンPDFのOCRのみを行います。
	ModeOCR Mode = 1
	// ModeOCRProofread はOCR結果をAI校正します。
	ModeOCRProofread Mode = 2
	// ModeProofread はテキスト文書をAI校正します。
	ModeProofread Mode = 3
	// ModeOCRTranslate はOCR結果をAI翻訳します。
	ModeOCRTranslate Mode = 4
	// ModeTranslate はテキスト文書をAI翻訳します。
	ModeTranslate Mode = 5
)

// Valid は既知のモードかどうかを返します。
func (m Mode) Valid() bool {
	return m >= ModeOCR && m <= ModeTranslate
}

// NeedsOCR はスキャンPDF入力（OCR工程あり）のモードかを返します。
func (m Mode) NeedsOCR() bool {
	return m == ModeOCR || m == ModeOCRProofread || m == ModeOCRTranslate
}

// suffix は出力ファイル名の処理種別サフィックスを返します。
func (m Mode) suffix(targetLang string) string {
	switch m {
	case ModeOCR:
		return "ocr_raw"
	case ModeOCRProofread:
		return "ocr_proofread"
	case ModeProofread:
		return "proofread"
	case ModeOCRTranslate:
		return "ocr_translated_" + targetLang
	case ModeTranslate:
		return "translated_" + targetLang
	default:
		return "processed"
	}
}

// docType は出力ヘッダに載せる処理種別名を返します。
func (m Mode) docType() string {
	switch m {
	case ModeOCR:
		return "OCR"
	case ModeOCRProofread:
		return "OCR + Proofread"
	case ModeProofread:
		return "Proofread"
	case ModeOCRTranslate:
		return "OCR + Translated"
	case ModeTranslate:
		return "Translated"
	default:
		return "Processed"
	}
}

// Request はジョブ投入時の入力です。InputPath は保存済みアップロードの
// パスで、ジョブ完了後のクリーンアップ対象になります。
type Request struct {
	Mode             Mode
	InputPath        string
	OriginalFilename string
	Language         string
	SourceLang       string
	TargetLang       string
	UserEmail        string
}

// Job は投入済みジョブのハンドルです。Done はジョブ完了（成功・失敗とも）で
// クローズされ、その後 OutputFile / Err が読めます。
type Job struct {
	ID   string
	Mode Mode
	Done chan struct{}

	OutputFile string
	Err        error
}

// Error はAPI境界まで運ぶ分類済みエラーです。Message は利用者向けの文面で、
// Err は内部ログ用の原因です。
type Error struct {
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}
