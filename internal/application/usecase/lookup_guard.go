package usecase

import (
	"sync"

	"github.com/google/uuid"
)

// Lookup kinds guarded per session.
const (
	LookupAddress = "address"
	LookupValue   = "value"
)

type guardKey struct {
	sessionID string
	kind      string
}

// LookupGuard discards superseded lookup responses. Each lookup takes a
// token from Begin; Accept reports whether that token is still the newest
// one for its session and kind. Lookups without a session are never stale.
type LookupGuard struct {
	mu     sync.Mutex
	latest map[guardKey]string
}

func NewLookupGuard() *LookupGuard {
	return &LookupGuard{latest: make(map[guardKey]string)}
}

// Begin registers a new lookup and supersedes any in flight for the same
// session and kind.
func (g *LookupGuard) Begin(sessionID, kind string) string {
	if sessionID == "" {
		return ""
	}
	token := uuid.NewString()
	g.mu.Lock()
	g.latest[guardKey{sessionID, kind}] = token
	g.mu.Unlock()
	return token
}

// Accept reports whether token is current. The newest lookup clears its
// entry, so any older lookup finishing afterwards is reported stale.
func (g *LookupGuard) Accept(sessionID, kind, token string) bool {
	if sessionID == "" {
		return true
	}
	key := guardKey{sessionID, kind}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.latest[key] != token {
		return false
	}
	delete(g.latest, key)
	return true
}
