// Package pool はプロセス全体で共有する固定サイズのワーカープールを提供します。
//
// 全ジョブ・全パイプラインが同じプールにタスクを投入するため、
// 同時に実行される外部API呼び出しの総数はワーカー数を超えません。
package pool

import (
	"sync"
)

// taskQueueSize はタスクチャネルのバッファ長です。満杯時の Submit は
// ワーカーが空くまでブロックします（自然なバックプレッシャー）。
const taskQueueSize = 256

// Pool は固定数のワーカーゴルーチンでタスクを実行します。
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

// New は size 個のワーカーを起動したプールを返します。
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	p := &Pool{tasks: make(chan func(), taskQueueSize)}
	p.wg.Add(size)
	for i := 0; i < size; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit はタスクをキューに積みます。キューが満杯の場合は空きが出るまで
// ブロックします。Shutdown 後の Submit は panic します。
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Shutdown は新規タスクの受付を止め、投入済みタスクが全て完了するまで
// 待機します。複数回呼んでも安全です。
func (p *Pool) Shutdown() {
	p.once.Do(func() { close(p.tasks) })
	p.wg.Wait()
}
