package services

import (
	"sync"

	"casinobot/domain/entities"
)

// blackjackTable is the per-scope slot. Its mutex serializes every command,
// timer callback and snapshot for the scope.
type blackjackTable struct {
	mu      sync.Mutex
	session *entities.BlackjackSession

	turnTimer    tableTimer
	lobbyTimer   tableTimer
	cleanupTimer tableTimer
}

// stopTimers cancels every pending callback on the table
func (t *blackjackTable) stopTimers() {
	t.turnTimer.stop()
	t.lobbyTimer.stop()
	t.cleanupTimer.stop()
}

// BlackjackRegistry maps table scopes to their slot. At most one live session
// exists per scope; ended sessions linger only until their results grace
// period expires or the next creation evicts them.
type BlackjackRegistry struct {
	mu     sync.Mutex
	tables map[entities.TableScope]*blackjackTable
}

// NewBlackjackRegistry creates an empty registry
func NewBlackjackRegistry() *BlackjackRegistry {
	return &BlackjackRegistry{
		tables: make(map[entities.TableScope]*blackjackTable),
	}
}

// table returns the slot for scope, creating it on first use. Only Create
// allocates slots. Slots are never removed so a goroutine waiting on a slot's
// mutex always holds a valid slot.
func (r *BlackjackRegistry) table(scope entities.TableScope) *blackjackTable {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[scope]
	if !ok {
		t = &blackjackTable{}
		r.tables[scope] = t
	}
	return t
}

// lookup returns the slot for scope without allocating one
func (r *BlackjackRegistry) lookup(scope entities.TableScope) (*blackjackTable, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tables[scope]
	return t, ok
}

// SlotCount returns how many scopes have ever held a table
func (r *BlackjackRegistry) SlotCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}

// LiveCount returns the number of sessions that have not ended
func (r *BlackjackRegistry) LiveCount() int {
	r.mu.Lock()
	tables := make([]*blackjackTable, 0, len(r.tables))
	for _, t := range r.tables {
		tables = append(tables, t)
	}
	r.mu.Unlock()

	count := 0
	for _, t := range tables {
		t.mu.Lock()
		if t.session != nil && t.session.IsLive() {
			count++
		}
		t.mu.Unlock()
	}
	return count
}

// Shutdown stops every timer. Sessions stay in memory; nothing fires afterwards.
func (r *BlackjackRegistry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.tables {
		t.mu.Lock()
		t.stopTimers()
		t.mu.Unlock()
	}
}
