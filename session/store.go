// Package session owns the authentication token and decoded identity.
// Exactly one Store exists per running client; every state transition is
// broadcast to all subscribers.
package session

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"github.com/kvisli/glyptodon/domain"
)

// TokenFileName is the well-known storage location, resolved relative to
// the config dir. Absence means unauthenticated.
const TokenFileName = "token"

// State is a snapshot of the session published on every transition.
type State struct {
	Authenticated bool
	Identity      domain.Identity
}

// AuthAPI is the slice of the repository client the store needs.
type AuthAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (string, error)
	Register(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
}

type Store struct {
	tokenPath string
	auth      AuthAPI

	mu        sync.Mutex
	token     string
	identity  domain.Identity
	expiresAt time.Time
	nextSub   int
	subs      map[int]chan State

	// for tests
	now func() time.Time
}

func NewStore(tokenPath string, auth AuthAPI) *Store {
	return &Store{
		tokenPath: tokenPath,
		auth:      auth,
		subs:      make(map[int]chan State),
		now:       time.Now,
	}
}

// Restore reads the persisted token at startup. A missing, malformed or
// expired token is a recoverable "no session" outcome, never an error.
func (s *Store) Restore() State {
	buf, err := os.ReadFile(s.tokenPath)
	if err != nil {
		return State{}
	}

	claims, err := DecodeClaims(string(buf))
	if err != nil || claims.Expired(s.now()) {
		if err != nil {
			log.Printf("Discarding unreadable persisted token: %v", err)
		}
		os.Remove(s.tokenPath)
		return State{}
	}

	s.mu.Lock()
	s.token = string(buf)
	s.identity = claims.Identity
	s.expiresAt = claims.ExpiresAt
	state := s.stateLocked()
	s.broadcastLocked(state)
	s.mu.Unlock()
	return state
}

// Login authenticates against the server, persists the token and publishes
// the authenticated state. Fails with *domain.AuthError.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) error {
	// Network call happens outside the lock; a 401 on the way can re-enter
	// the store through Logout.
	token, err := s.auth.Login(ctx, creds)
	if err != nil {
		return asAuthError(err, "login failed")
	}

	claims, err := DecodeClaims(token)
	if err != nil {
		return &domain.AuthError{Message: "server returned an unreadable token", Err: err}
	}

	if err := os.WriteFile(s.tokenPath, []byte(token), 0600); err != nil {
		log.Printf("Warning: could not persist token to %s: %v", s.tokenPath, err)
	}

	s.mu.Lock()
	s.token = token
	s.identity = claims.Identity
	s.expiresAt = claims.ExpiresAt
	s.broadcastLocked(s.stateLocked())
	s.mu.Unlock()
	return nil
}

// Register creates the account, then logs in with the same credentials.
// A registration failure never attempts the login step.
func (s *Store) Register(ctx context.Context, creds domain.Credentials) error {
	if _, err := s.auth.Register(ctx, creds); err != nil {
		return asAuthError(err, "registration failed")
	}
	return s.Login(ctx, creds)
}

// Logout clears the persisted token and publishes the unauthenticated state.
// It is idempotent and safe to call from the repository client's 401 hook.
func (s *Store) Logout() {
	os.Remove(s.tokenPath)

	s.mu.Lock()
	wasAuthenticated := s.token != ""
	s.token = ""
	s.identity = domain.Identity{}
	s.expiresAt = time.Time{}
	if wasAuthenticated {
		s.broadcastLocked(State{})
	}
	s.mu.Unlock()
}

// Token returns the current bearer token, or "" when there is no live
// session. Expiry is detected at read and tears the session down.
func (s *Store) Token() string {
	s.mu.Lock()
	token := s.token
	expired := token != "" && !s.now().Before(s.expiresAt)
	s.mu.Unlock()

	if expired {
		s.Logout()
		return ""
	}
	return token
}

func (s *Store) IsAuthenticated() bool {
	return s.Token() != ""
}

// Identity returns the decoded identity of the live session.
func (s *Store) Identity() (domain.Identity, bool) {
	if s.Token() == "" {
		return domain.Identity{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity, true
}

// Subscribe registers a consumer for session transitions. The returned
// cancel func must be called at teardown.
func (s *Store) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 16)

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Store) stateLocked() State {
	return State{Authenticated: s.token != "", Identity: s.identity}
}

func (s *Store) broadcastLocked(state State) {
	for _, ch := range s.subs {
		select {
		case ch <- state:
		default:
			// A subscriber that stopped draining only loses its own updates.
		}
	}
}

// asAuthError maps repository failures onto the auth taxonomy, surfacing
// the server's message for rejected credentials and a generic connection
// message for transport failures.
func asAuthError(err error, fallback string) error {
	var re *domain.RepositoryError
	if errors.As(err, &re) {
		if re.Kind == domain.KindNetwork {
			return &domain.AuthError{Message: "could not reach the server", Err: err}
		}
		return &domain.AuthError{Message: re.Message, Err: err}
	}
	return &domain.AuthError{Message: fallback, Err: err}
}
