package engine

import "sync"

// SessionTable maps live connection ids to authenticated usernames. A
// connection with no entry is an anonymous session. The table is mutated
// only by engine code; connection goroutines go through these methods.
type SessionTable struct {
	mu    sync.Mutex
	users map[string]string
}

func NewSessionTable() *SessionTable {
	return &SessionTable{users: make(map[string]string)}
}

// Bind associates the connection with an authenticated username,
// replacing any previous association.
func (t *SessionTable) Bind(connID, username string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.users[connID] = username
}

// Clear reverts the connection to an anonymous session. Clearing an
// already-anonymous session is a no-op.
func (t *SessionTable) Clear(connID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.users, connID)
}

// Lookup returns the username bound to the connection, if any.
func (t *SessionTable) Lookup(connID string) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	username, ok := t.users[connID]
	return username, ok
}

// Len reports how many connections currently hold an authenticated session.
func (t *SessionTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.users)
}
