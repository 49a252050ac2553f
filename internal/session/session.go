package session

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aciforge/portal/internal/models"
)

// Capabilities is the typed permission set computed once at login instead
// of re-scanning role name strings on every check.
type Capabilities struct {
	CanManageMaintenance bool `json:"can_manage_maintenance"`
	CanManageUsers       bool `json:"can_manage_users"`
}

// CapabilitiesFor derives the capability set from role membership:
// superuser or maintenance grants the maintenance domain, superuser alone
// grants user management.
func CapabilitiesFor(u models.User) Capabilities {
	super := u.HasRole(models.RoleSuperuser)
	return Capabilities{
		CanManageMaintenance: super || u.HasRole(models.RoleMaintenance),
		CanManageUsers:       super,
	}
}

// Session is an authenticated identity plus its grants.
type Session struct {
	User         models.User
	AccessToken  string
	RefreshToken string
	Capabilities Capabilities
	CreatedAt    time.Time
}

// Store keeps live sessions keyed by access token.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	onEvict  func(token string)
}

// NewStore builds a store; sessions older than ttl are dropped on lookup.
// ttl <= 0 disables the local age check (the token expiry still applies).
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

func (s *Store) Put(sess *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.AccessToken] = sess
}

// Get returns the session for a token. Expired or unparseable tokens clear
// the session and report a miss; the caller redirects to login.
func (s *Store) Get(token string) (*Session, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	if s.ttl > 0 && time.Since(sess.CreatedAt) > s.ttl {
		s.evict(token)
		return nil, false
	}
	if tokenExpired(token) {
		s.evict(token)
		return nil, false
	}
	return sess, true
}

// OnEvict registers a hook fired whenever the store drops a session on its
// own (TTL or token expiry). Explicit Clear calls do not fire it; logout
// already tears its own state down.
func (s *Store) OnEvict(fn func(token string)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onEvict = fn
}

func (s *Store) evict(token string) {
	s.Clear(token)
	s.mu.RLock()
	fn := s.onEvict
	s.mu.RUnlock()
	if fn != nil {
		fn(token)
	}
}

func (s *Store) Clear(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

func (s *Store) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*Session)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// tokenExpired inspects the JWT exp claim. The remote API holds the signing
// secret, so the signature is its problem; a malformed token counts as
// expired here.
func tokenExpired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return true
	}
	if exp == nil {
		return false
	}
	return time.Now().After(exp.Time)
}
