package judge

import (
	"sync"
	"time"
)

// Result settles a pending judgment query. Granted carries the per-kind
// meaning: draw permitted, win recognized, or declaration eligible.
type Result struct {
	Granted  bool
	TimedOut bool
}

// FallbackResult - the documented fail-safe default applied when a query
// expires unsettled. The asymmetry is deliberate: auto-draw favors game
// progress, win and waiting queries favor conservatism.
func FallbackResult(kind QueryKind) Result {
	switch kind {
	case QueryAutoDraw:
		return Result{Granted: true, TimedOut: true}
	case QuerySelfDrawWin, QueryDiscardClaim, QueryDeclareWaiting:
		return Result{Granted: false, TimedOut: true}
	default:
		return Result{Granted: false, TimedOut: true}
	}
}

// Query is an in-flight judgment round-trip awaiting settlement from a
// client prompt, removed on settlement or deadline expiry.
type Query struct {
	ID       string
	PlayerID string
	Kind     QueryKind
	Deadline time.Time

	expire func(Result)
}

// Registry holds pending queries keyed by their generated identifiers.
type Registry struct {
	mu      sync.Mutex
	queries map[string]*Query
}

func NewRegistry() *Registry {
	return &Registry{queries: make(map[string]*Query)}
}

// Add - registers an in-flight query. The expire callback runs only when
// the deadline passes unsettled; explicit settlement goes through
// TakeByPlayer so the caller stays in control of locking.
func (that *Registry) Add(id, playerID string, kind QueryKind, deadline time.Time, expire func(Result)) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.queries[id] = &Query{
		ID:       id,
		PlayerID: playerID,
		Kind:     kind,
		Deadline: deadline,
		expire:   expire,
	}
}

// TakeByPlayer - removes and returns the pending query of the given kind
// for the given identity. ok=false means no such round-trip is in flight,
// typically because it already expired.
func (that *Registry) TakeByPlayer(playerID string, kind QueryKind) (*Query, bool) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, query := range that.queries {
		if query.PlayerID == playerID && query.Kind == kind {
			delete(that.queries, id)
			return query, true
		}
	}

	return nil, false
}

// Expire - removes every query past its deadline and settles it with the
// per-kind fallback result.
func (that *Registry) Expire(now time.Time) {
	that.mu.Lock()
	var expired []*Query
	for id, query := range that.queries {
		if !query.Deadline.After(now) {
			expired = append(expired, query)
			delete(that.queries, id)
		}
	}
	that.mu.Unlock()

	for _, query := range expired {
		query.expire(FallbackResult(query.Kind))
	}
}

// DropByPlayer - discards every pending query for an identity without
// settlement, used when the session the queries belong to has ended.
func (that *Registry) DropByPlayer(playerID string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for id, query := range that.queries {
		if query.PlayerID == playerID {
			delete(that.queries, id)
		}
	}
}
