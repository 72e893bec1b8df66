package cheque

import "sync"

// chequeLock is a per-cheque mutex shared by every in-flight operation on that id.
type chequeLock struct {
	mu   sync.Mutex
	refs int // guarded by Manager.mapMu
}

// lockCheque blocks until the caller holds the exclusive lock for id and returns the
// function that releases it. Entries are dropped from the table once no caller holds
// or waits on them, so the table only grows with concurrency, not with cheque count.
func (m *Manager) lockCheque(id string) func() {
	m.mapMu.Lock()
	l, exists := m.muMap[id]
	if !exists {
		l = &chequeLock{}
		m.muMap[id] = l
	}
	l.refs++
	m.mapMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		m.mapMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(m.muMap, id)
		}
		m.mapMu.Unlock()
	}
}
