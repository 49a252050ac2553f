package controllers

import (
	"fmt"
	"sync"

	"github.com/aciforge/portal/internal/session"
	"github.com/aciforge/portal/internal/viewmodel"
)

// ViewRegistry keeps one list view-model per session and scope, so filter,
// sort and pagination state survive between requests without refetching.
type ViewRegistry struct {
	mu    sync.Mutex
	gw    viewmodel.Gateway
	views map[string]*viewmodel.RequestList
}

func NewViewRegistry(gw viewmodel.Gateway) *ViewRegistry {
	return &ViewRegistry{
		gw:    gw,
		views: make(map[string]*viewmodel.RequestList),
	}
}

// For returns the session's view-model for a scope, creating it on first use.
func (r *ViewRegistry) For(sess *session.Session, scope viewmodel.Scope) *viewmodel.RequestList {
	key := fmt.Sprintf("%s|%s", sess.AccessToken, scope)

	r.mu.Lock()
	defer r.mu.Unlock()
	vm, ok := r.views[key]
	if !ok {
		vm = viewmodel.New(r.gw, sess, scope)
		r.views[key] = vm
	}
	return vm
}

// Drop discards all view state for a token. Used on logout, on a 401 from
// the remote API, on session eviction, and after a creation so the next
// list call reloads.
func (r *ViewRegistry) Drop(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, scope := range []viewmodel.Scope{viewmodel.ScopeAll, viewmodel.ScopeMine} {
		delete(r.views, fmt.Sprintf("%s|%s", token, scope))
	}
}

// DropScope discards one scope's view state for a token. Mutations applied
// through the all-requests view use this to keep the my-requests view from
// serving deleted or stale records.
func (r *ViewRegistry) DropScope(token string, scope viewmodel.Scope) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.views, fmt.Sprintf("%s|%s", token, scope))
}

func (r *ViewRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.views)
}
