// Package session keeps short-lived per-conversation state in memory: the
// rolling turn window, which response blocks were already presented, and the
// flow position the decision policy left the conversation in. The store is
// bounded on every axis so an abandoned channel can never grow it without
// limit.
package session

import (
	"sync"
	"sync/atomic"
	"time"
)

type Turn struct {
	Role    string
	Content string
	At      time.Time
}

// Facts carries partially collected payment facts across turns, e.g. when
// the customer named their financing in one message and the delay in the
// next. Nil duration fields mean the unit was never mentioned.
type Facts struct {
	Financing string
	Days      *int
	Weeks     *int
	Months    *int
}

// State is the mutable per-session record. It is only ever touched inside
// Memory.Update, which holds that session's lock for the whole callback.
type State struct {
	ID        string
	Flow      string
	FlowID    string
	Pending   Facts
	Presented []string
	Turns     []Turn
}

func (s *State) Append(role, content string, at time.Time) {
	s.Turns = append(s.Turns, Turn{Role: role, Content: content, At: at})
}

func (s *State) HasPresented(blockID string) bool {
	for _, id := range s.Presented {
		if id == blockID {
			return true
		}
	}
	return false
}

// MarkPresented records a block in chronological order. Re-presenting a
// block the history already holds is a no-op.
func (s *State) MarkPresented(blockID string) {
	if blockID == "" || s.HasPresented(blockID) {
		return
	}
	s.Presented = append(s.Presented, blockID)
}

func (s *State) SetFlow(flow, flowID string) {
	s.Flow = flow
	s.FlowID = flowID
}

type Options struct {
	Capacity    int
	TurnLimit   int
	HistorySize int
	TTL         time.Duration
}

type Stats struct {
	Sessions        int `json:"sessions"`
	Capacity        int `json:"capacity"`
	PresentedBlocks int `json:"presented_blocks"`
}

type entry struct {
	mu      sync.Mutex
	state   State
	touched atomic.Int64
}

// Memory is a bounded TTL session store. The map is guarded by a global
// mutex; each session additionally has its own lock so concurrent requests
// for the same session serialize while distinct sessions proceed in
// parallel.
type Memory struct {
	opts Options
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

func New(opts Options) *Memory {
	if opts.Capacity <= 0 {
		opts.Capacity = 1000
	}
	if opts.TurnLimit <= 0 {
		opts.TurnLimit = 10
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 5
	}
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	return &Memory{
		opts:     opts,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Update runs fn against the session's state under that session's lock,
// creating the session if needed, and returns a copy of the state after the
// callback and trimming ran. A session idle past the TTL is treated as
// absent and replaced with a fresh one.
func (m *Memory) Update(id string, fn func(s *State)) State {
	e := m.acquire(id)
	e.mu.Lock()
	defer e.mu.Unlock()

	fn(&e.state)

	if extra := len(e.state.Turns) - m.opts.TurnLimit; extra > 0 {
		e.state.Turns = append([]Turn(nil), e.state.Turns[extra:]...)
	}
	if extra := len(e.state.Presented) - m.opts.HistorySize; extra > 0 {
		e.state.Presented = append([]string(nil), e.state.Presented[extra:]...)
	}
	e.touched.Store(m.now().UnixNano())
	return cloneState(e.state)
}

// Snapshot returns a copy of the session's state without creating it.
func (m *Memory) Snapshot(id string) (State, bool) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	m.mu.Unlock()
	if !ok || m.expired(e) {
		return State{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return cloneState(e.state), true
}

func (m *Memory) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// EvictExpired drops every session idle past the TTL and reports how many
// went away.
func (m *Memory) EvictExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	evicted := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}

func (m *Memory) Stats() Stats {
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.sessions))
	for _, e := range m.sessions {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	stats := Stats{Sessions: len(entries), Capacity: m.opts.Capacity}
	for _, e := range entries {
		e.mu.Lock()
		stats.PresentedBlocks += len(e.state.Presented)
		e.mu.Unlock()
	}
	return stats
}

func (m *Memory) acquire(id string) *entry {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[id]; ok {
		if !m.expired(e) {
			return e
		}
		delete(m.sessions, id)
	}
	if len(m.sessions) >= m.opts.Capacity {
		m.evictOldestLocked()
	}
	e := &entry{state: State{ID: id}}
	e.touched.Store(m.now().UnixNano())
	m.sessions[id] = e
	return e
}

// evictOldestLocked removes the least recently touched session. Callers
// hold m.mu.
func (m *Memory) evictOldestLocked() {
	var oldestID string
	var oldest int64
	for id, e := range m.sessions {
		if t := e.touched.Load(); oldestID == "" || t < oldest {
			oldestID, oldest = id, t
		}
	}
	if oldestID != "" {
		delete(m.sessions, oldestID)
	}
}

func (m *Memory) expired(e *entry) bool {
	return m.now().Sub(time.Unix(0, e.touched.Load())) > m.opts.TTL
}

func cloneState(s State) State {
	out := s
	out.Presented = append([]string(nil), s.Presented...)
	out.Turns = append([]Turn(nil), s.Turns...)
	return out
}
