// Package progress はジョブIDごとの進捗スナップショットをメモリ上に保持します。
package progress

import (
	"sync"
)

// State はある時点の進捗スナップショットです。Percentage は 0〜100 で、
// Current/Total から Store 側で計算されます。
type State struct {
	Current    int    `json:"current"`
	Total      int    `json:"total"`
	Percentage int    `json:"percentage"`
	Status     string `json:"status"`
	OutputFile string `json:"output_file,omitempty"`
	UserEmail  string `json:"user_email,omitempty"`
	Error      bool   `json:"error,omitempty"`
}

// Store は進捗スナップショットのスレッドセーフな置き場です。
// ポーリングAPIと処理ゴルーチンの双方から同時アクセスされます。
type Store struct {
	mu     sync.RWMutex
	states map[string]State
}

// NewStore は空のストアを返します。
func NewStore() *Store {
	return &Store{states: make(map[string]State)}
}

// Set はスナップショットを丸ごと置き換えます。Percentage は再計算されます。
func (s *Store) Set(id string, state State) {
	state.Percentage = percent(state.Current, state.Total)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[id] = state
}

// Update は既存スナップショットを部分更新します。エントリが無い場合は
// 何もしません（掃除済みジョブへの遅延更新を握り潰すため）。
func (s *Store) Update(id string, fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.states[id]
	if !ok {
		return
	}
	fn(&state)
	state.Percentage = percent(state.Current, state.Total)
	s.states[id] = state
}

// Get はスナップショットのコピーを返します。
func (s *Store) Get(id string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.states[id]
	return state, ok
}

// Delete はエントリを削除します。存在しないIDは無視します。
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, id)
}

func percent(current, total int) int {
	if total <= 0 {
		return 0
	}
	p := current * 100 / total
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
