package guard

import (
	"sync"

	"github.com/MrEthical07/techhatch/session"
)

// History is the current location and its mutations.
type History interface {
	Location() string
	Push(path string)
	Replace(path string)
}

// MemoryHistory is an in-process History.
type MemoryHistory struct {
	mu      sync.Mutex
	entries []string
}

// NewMemoryHistory starts at start, or "/" when empty.
func NewMemoryHistory(start string) *MemoryHistory {
	if start == "" {
		start = PathHome
	}
	return &MemoryHistory{entries: []string{start}}
}

func (h *MemoryHistory) Location() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[len(h.entries)-1]
}

func (h *MemoryHistory) Push(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, path)
}

func (h *MemoryHistory) Replace(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries[len(h.entries)-1] = path
}

// Entries returns a copy of the stack, oldest first.
func (h *MemoryHistory) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// SessionSource is what the Navigator reads the session from. *session.Store
// satisfies it.
type SessionSource interface {
	Current() (*session.Session, bool)
	Loading() bool
}

// Navigator moves a History through the guard.
type Navigator struct {
	mu       sync.Mutex
	history  History
	table    *Table
	sessions SessionSource
}

// NewNavigator returns a Navigator. A nil table uses DefaultTable; a nil history
// starts at "/".
func NewNavigator(history History, table *Table, sessions SessionSource) *Navigator {
	if history == nil {
		history = NewMemoryHistory(PathHome)
	}
	if table == nil {
		table = DefaultTable()
	}
	return &Navigator{history: history, table: table, sessions: sessions}
}

// Location returns the current location.
func (n *Navigator) Location() string {
	return n.history.Location()
}

// Navigate resolves path and pushes where the guard lands: path itself, the
// redirect target, or nothing on Wait and NotFound.
func (n *Navigator) Navigate(path string) Decision {
	n.mu.Lock()
	defer n.mu.Unlock()

	var sess *session.Session
	loading := false
	if n.sessions != nil {
		if s, ok := n.sessions.Current(); ok {
			sess = s
		}
		loading = n.sessions.Loading()
	}

	d := n.table.Resolve(path, sess, loading)
	switch d.Outcome {
	case Allow:
		n.history.Push(path)
	case Redirect:
		if n.history.Location() != d.Location {
			n.history.Replace(d.Location)
		}
	}
	return d
}

// RedirectToLogin replaces the current location with the login page. It is a
// no-op when already there and reports whether it moved.
func (n *Navigator) RedirectToLogin() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if stripQuery(n.history.Location()) == PathLogin {
		return false
	}
	n.history.Replace(PathLogin)
	return true
}
