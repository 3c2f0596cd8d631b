// Package transform は外部AIサービス呼び出しの再試行・フォールバック制御を
// 提供します。エラーは種別（Kind）で分類し、文字列照合には頼りません。
package transform

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// Kind は呼び出し失敗の分類です。再試行戦略の選択に使います。
type Kind int

const (
	// KindTransient は一時的とみなす一般エラーです（固定5秒待ちで再試行）。
	KindTransient Kind = iota
	// KindTimeout はタイムアウト系エラーです（指数バックオフで再試行）。
	KindTimeout
	// KindRateLimit はレート制限・クォータ超過です（上位層で追加再試行）。
	KindRateLimit
	// KindFatal は再試行しても無駄なエラーです。
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindTimeout:
		return "timeout"
	case KindRateLimit:
		return "rate_limit"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error は種別付きのエラーです。Unwrap で元エラーに辿れます。
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError は種別付きエラーを生成します。
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf はエラーの種別を返します。種別付きでないエラーは
// Classify による推定結果を返します。
func KindOf(err error) Kind {
	var te *Error
	if errors.As(err, &te) {
		return te.Kind
	}
	return Classify(err)
}

// Classify は下位レイヤの素のエラーを種別へ写像します。
// GoogleのAPIエラーはHTTPステータスで、コンテキスト起因は
// 標準のセンチネルで判定します。
func Classify(err error) Kind {
	if err == nil {
		return KindTransient
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests:
			return KindRateLimit
		case http.StatusGatewayTimeout, http.StatusRequestTimeout:
			return KindTimeout
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return KindFatal
		}
		return KindTransient
	}

	return KindTransient
}
