package transform

import (
	"context"
	"errors"
	"log"
	"time"
)

// DefaultAttempts は呼び出しの既定試行回数です。
const DefaultAttempts = 3

// timeoutBackoffBase はタイムアウト系エラー時のバックオフ基数です。
// n 回目の失敗後は timeoutBackoffBase × 2^n 待ちます（10秒, 20秒, ...）。
const timeoutBackoffBase = 10 * time.Second

// transientRetryDelay はタイムアウト以外の失敗後の固定待ち時間です。
const transientRetryDelay = 5 * time.Second

// ErrEmptyResult は呼び出しが成功したのに本文が空だった場合のエラーです。
var ErrEmptyResult = errors.New("empty result from service")

// Caller は単一チャンクの変換呼び出しを再試行付きで実行します。
// 全試行が失敗した場合はフォールバック文字列（通常は原文）と
// 最後のエラーを返し、パイプライン全体を止めません。
type Caller struct {
	Attempts       int
	AttemptTimeout time.Duration
	Logger         *log.Logger

	// AllowEmpty を立てると空文字列の結果を成功として扱います。
	// OCRの白紙ページのように空が正当な結果になる呼び出しで使います。
	AllowEmpty bool

	// Sleep は再試行間の待機に使います。nil なら time.Sleep。
	// テストでは待機を潰すために差し替えます。
	Sleep func(time.Duration)
}

// NewCaller は attemptTimeout を試行ごとの期限とするCallerを返します。
func NewCaller(attemptTimeout time.Duration, logger *log.Logger) *Caller {
	return &Caller{
		Attempts:       DefaultAttempts,
		AttemptTimeout: attemptTimeout,
		Logger:         logger,
	}
}

// Call は attempt を最大 Attempts 回試行します。成功すれば結果を返し、
// 全滅した場合は (fallback, 最後のエラー) を返します。呼び出し側は
// 返ったエラーの種別を見て追加の対処（レート制限の再試行など）を選べます。
func (c *Caller) Call(ctx context.Context, op string, attempt func(context.Context) (string, error), fallback string) (string, error) {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	sleep := c.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return fallback, NewError(KindFatal, op, err)
		}

		result, err := c.runAttempt(ctx, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		kind := KindOf(err)
		if kind == KindFatal {
			c.logf("%s: attempt %d/%d failed with fatal error: %v", op, i+1, attempts, err)
			return fallback, NewError(KindFatal, op, err)
		}

		c.logf("%s: attempt %d/%d failed (%s): %v", op, i+1, attempts, kind, err)
		if i == attempts-1 {
			break
		}

		if kind == KindTimeout {
			sleep(timeoutBackoffBase << uint(i))
		} else {
			sleep(transientRetryDelay)
		}
	}

	kind := KindOf(lastErr)
	c.logf("%s: all %d attempts failed, falling back to original text", op, attempts)
	return fallback, NewError(kind, op, lastErr)
}

// Once は再試行もフォールバックもせず、1回だけ試行を実行します。
// 上位層が独自の再試行判断（レート制限後のもう一押しなど）を行うための口です。
func (c *Caller) Once(ctx context.Context, attempt func(context.Context) (string, error)) (string, error) {
	return c.runAttempt(ctx, attempt)
}

// runAttempt は1回分の試行を期限付きコンテキストで実行します。
// 結果が空文字列の場合もエラー扱いにして再試行へ回します（AllowEmpty時を除く）。
func (c *Caller) runAttempt(ctx context.Context, attempt func(context.Context) (string, error)) (string, error) {
	actx := ctx
	if c.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.AttemptTimeout)
		defer cancel()
	}

	result, err := attempt(actx)
	if err != nil {
		// 期限超過は actx 側にしか現れないことがあるため補正する。
		if actx.Err() != nil && ctx.Err() == nil && !errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(err, context.DeadlineExceeded)
		}
		return "", err
	}
	if result == "" && !c.AllowEmpty {
		return "", ErrEmptyResult
	}
	return result, nil
}

func (c *Caller) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Printf(format, args...)
	}
}
