// Package dispatch はチャンク列・ページ列の並列処理を調停します。
//
// 各ユニットは共有ワーカープールで実行され、レートリミッタを通ってから
// 外部APIを呼びます。結果は投入時と同じ順序で返り、1ユニットの失敗が
// 全体を失敗させることはありません（フォールバック値で埋めます）。
package dispatch

import (
	"context"
	"log"
	"time"

	"github.com/Aman-2203/ShabdSetu/internal/pool"
	"github.com/Aman-2203/ShabdSetu/internal/ratelimit"
	"github.com/Aman-2203/ShabdSetu/internal/transform"
)

// rateLimitRetryDelay はレート制限で全滅したユニットへ追加の1回を
// 与えるまでの待ち時間です。
const rateLimitRetryDelay = 5 * time.Second

// Unit は i 番目の処理単位を実行する関数です。
type Unit func(ctx context.Context, i int) (string, error)

// Fallback は i 番目のユニットが全滅したときに埋める値を返します。
type Fallback func(i int) string

// Progress は完了数の通知を受け取ります。done は単調増加します。
type Progress func(done, total int)

// Dispatcher はプール・リミッタ・再試行呼び出しを束ねるファンアウト実行器です。
type Dispatcher struct {
	pool    *pool.Pool
	limiter *ratelimit.Limiter
	caller  *transform.Caller
	logger  *log.Logger

	// テストから差し替えるためのフック。
	sleep func(time.Duration)
}

// New はディスパッチャを生成します。
func New(p *pool.Pool, l *ratelimit.Limiter, c *transform.Caller, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		pool:    p,
		limiter: l,
		caller:  c,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

type indexedResult struct {
	index int
	text  string
}

// Process は total 個のユニットを並列実行し、投入順の結果スライスを返します。
// 個々のユニットは再試行の末に失敗してもフォールバック値で埋められるため、
// 戻り値の長さは常に total です。progress は nil でも構いません。
func (d *Dispatcher) Process(ctx context.Context, op string, total int, unit Unit, fallback Fallback, progress Progress) []string {
	results := make([]string, total)
	if total == 0 {
		return results
	}

	resultCh := make(chan indexedResult, total)
	for i := 0; i < total; i++ {
		d.pool.Submit(func() {
			resultCh <- indexedResult{index: i, text: d.runUnit(ctx, op, i, unit, fallback)}
		})
	}

	for done := 0; done < total; done++ {
		r := <-resultCh
		results[r.index] = r.text
		if progress != nil {
			progress(done+1, total)
		}
	}
	return results
}

// runUnit は1ユニット分の実行です。リミッタを通してから再試行付きで呼び、
// レート制限で全滅した場合に限り、待機後にもう1回だけ直接試みます。
func (d *Dispatcher) runUnit(ctx context.Context, op string, i int, unit Unit, fallback Fallback) string {
	d.limiter.Acquire()

	attempt := func(actx context.Context) (string, error) {
		return unit(actx, i)
	}

	text, err := d.caller.Call(ctx, op, attempt, fallback(i))
	if err == nil {
		return text
	}

	if transform.KindOf(err) == transform.KindRateLimit {
		d.logf("%s: unit %d exhausted on rate limit, retrying once after %v", op, i, rateLimitRetryDelay)
		d.sleep(rateLimitRetryDelay)
		d.limiter.Acquire()
		retried, rerr := d.caller.Once(ctx, attempt)
		if rerr == nil {
			return retried
		}
		d.logf("%s: unit %d rate-limit retry failed: %v", op, i, rerr)
	}

	d.logf("%s: unit %d falling back to original content: %v", op, i, err)
	return text
}

// ProcessChunks はテキストチャンク列向けの補助関数です。各チャンクを
// transformFn で変換し、失敗したチャンクは原文のまま返します。
func (d *Dispatcher) ProcessChunks(ctx context.Context, op string, chunks []string, transformFn func(ctx context.Context, chunk string) (string, error), progress Progress) []string {
	return d.Process(ctx, op, len(chunks),
		func(actx context.Context, i int) (string, error) {
			return transformFn(actx, chunks[i])
		},
		func(i int) string { return chunks[i] },
		progress,
	)
}

func (d *Dispatcher) logf(format string, args ...any) {
	if d.logger != nil {
		d.logger.Printf(format, args...)
	}
}
