// Package ratelimit は外部APIコールの最小間隔を保証する直列リミッタを提供します。
package ratelimit

import (
	"sync"
	"time"
)

// Limiter は呼び出し間隔を interval 以上に保ちます。
// ミューテックスを保持したまま待機するため、複数ゴルーチンが同時に
// Acquire を呼んでも許可は必ず一列に直列化されます。
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time

	// テストから差し替えるためのフック。
	sleep func(time.Duration)
	now   func() time.Time
}

// New は最小間隔 interval のリミッタを生成します。
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		sleep:    time.Sleep,
		now:      time.Now,
	}
}

// Acquire は直前の許可から interval 経過するまでブロックし、許可を与えます。
// 戻った時点で呼び出し側はただちに外部APIを呼んでよいことが保証されます。
func (l *Limiter) Acquire() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.last.IsZero() {
		if wait := l.interval - l.now().Sub(l.last); wait > 0 {
			l.sleep(wait)
		}
	}
	l.last = l.now()
}
