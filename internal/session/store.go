package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veterimap/veterimap/pkg/client"
	"github.com/veterimap/veterimap/pkg/domain"
)

// State is where the store is in resolving the current identity.
type State int

const (
	StateUninitialized State = iota
	StateLoading
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateResolved:
		return "resolved"
	default:
		return "uninitialized"
	}
}

// ProfileFetcher returns the authoritative identity for the current token.
type ProfileFetcher interface {
	GetMe(ctx context.Context) (*client.MeResponse, error)
}

// Store owns the session token and the identity derived from it.
// It is safe for concurrent use.
type Store struct {
	storage  Storage
	profiles ProfileFetcher
	logger   *zap.Logger
	now      func() time.Time

	initOnce sync.Once

	// persistMu orders writes of the stored token. Storage I/O never runs
	// under mu, so readers are not held up by a slow backend.
	persistMu sync.Mutex

	mu       sync.RWMutex
	token    string
	identity *Identity
	state    State
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for swallowed refinement failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the time source used for token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates a Store. profiles may be nil, in which case identities are
// never refined past the token claims.
func New(storage Storage, profiles ProfileFetcher, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		profiles: profiles,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetProfileFetcher replaces the profile source. It exists for callers whose
// API client needs the store to be built first.
func (s *Store) SetProfileFetcher(p ProfileFetcher) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles = p
}

// Token returns the current session token, or "" when logged out.
// It satisfies client.TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Identity returns a copy of the current identity, or nil when anonymous.
func (s *Store) Identity() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return nil
	}
	id := *s.identity
	return &id
}

// State returns the resolution state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Loading reports whether the identity is not yet resolved.
func (s *Store) Loading() bool {
	return s.State() != StateResolved
}

// Restore reads the persisted token and decodes it into a provisional identity
// without touching the network. A token that does not decode is discarded.
func (s *Store) Restore() *Identity {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	tok, err := s.storage.Get(KeyToken)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn("read session token", zap.Error(err))
	}
	if tok == "" {
		s.clear()
		return nil
	}
	claims, err := DecodeToken(tok, s.now())
	if err != nil {
		s.logger.Info("discarding stored session token", zap.Error(err))
		s.deleteToken()
		s.clear()
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = tok
	s.identity = identityFromClaims(claims)
	s.state = StateLoading
	id := *s.identity
	return &id
}

// Init restores the session and refines it once against the API.
// Later calls return the current identity without refetching.
func (s *Store) Init(ctx context.Context) *Identity {
	s.initOnce.Do(func() {
		if s.Restore() != nil {
			s.Refine(ctx)
		}
	})
	return s.Identity()
}

// Login decodes tok, persists it and refines the identity against the API.
// A token that does not decode is rejected and nothing is persisted.
func (s *Store) Login(ctx context.Context, tok string) (*Identity, error) {
	claims, err := DecodeToken(tok, s.now())
	if err != nil {
		return nil, err
	}

	s.persistMu.Lock()
	if err := s.storage.Set(KeyToken, tok); err != nil {
		s.persistMu.Unlock()
		return nil, fmt.Errorf("persist session token: %w", err)
	}
	s.mu.Lock()
	s.token = tok
	s.identity = identityFromClaims(claims)
	s.state = StateLoading
	s.mu.Unlock()
	s.persistMu.Unlock()

	s.Refine(ctx)

	id := s.Identity()
	if id == nil {
		return nil, errors.New("session rejected by server")
	}
	return id, nil
}

// Logout clears the persisted token and the identity. It does not call the API.
func (s *Store) Logout() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.deleteToken()
	s.clear()
}

// LogoutIf logs out only while tok is still the session token, so a rejection
// answering an older token leaves a newer session alone. It reports whether
// the session was cleared.
func (s *Store) LogoutIf(tok string) bool {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if tok == "" || s.Token() != tok {
		return false
	}
	s.logger.Info("session rejected by server, logging out")
	s.deleteToken()
	s.clear()
	return true
}

// Refresh refetches the profile so recently saved changes show up in the identity.
func (s *Store) Refresh(ctx context.Context) *Identity {
	s.Refine(ctx)
	return s.Identity()
}

// Refine fetches /me and merges it into the identity. Failures other than 401
// keep the provisional identity. A result for a token that has since been
// replaced is dropped.
func (s *Store) Refine(ctx context.Context) {
	s.mu.RLock()
	tok := s.token
	profiles := s.profiles
	s.mu.RUnlock()

	if tok == "" || profiles == nil {
		s.settle(tok)
		return
	}

	me, err := profiles.GetMe(ctx)
	if client.IsStatus(err, http.StatusUnauthorized) {
		s.LogoutIf(tok)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != tok {
		return
	}
	s.state = StateResolved
	if err != nil {
		s.logger.Warn("profile refinement failed", zap.Error(err))
		return
	}
	mergeProfile(s.identity, me)
}

func (s *Store) settle(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == tok {
		s.state = StateResolved
	}
}

func (s *Store) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.identity = nil
	s.state = StateResolved
}

func (s *Store) deleteToken() {
	if err := s.storage.Delete(KeyToken); err != nil {
		s.logger.Warn("delete session token", zap.Error(err))
	}
}

func mergeProfile(id *Identity, me *client.MeResponse) {
	if id == nil || me == nil {
		return
	}
	if me.User.ID != uuid.Nil {
		id.UserID = me.User.ID.String()
	}
	if role, ok := domain.ParseRole(string(me.User.Role)); ok {
		id.Role = role
	}
	switch {
	case me.AccessLevel != nil:
		id.AccessLevel = *me.AccessLevel
	case me.User.AccessLevel != nil:
		id.AccessLevel = *me.User.AccessLevel
	}
	id.HasProfile = me.HasProfile
	if me.User.Email != "" {
		id.Email = me.User.Email
	}
	if me.User.Name != "" {
		id.Name = me.User.Name
	}
}

// SetPending remembers the email and role of an account awaiting verification.
func (s *Store) SetPending(email string, role domain.Role) error {
	if err := s.storage.Set(KeyPendingEmail, email); err != nil {
		return err
	}
	return s.storage.Set(KeyPendingRole, string(role))
}

// Pending returns the account awaiting verification, if any.
func (s *Store) Pending() (string, domain.Role) {
	email, _ := s.storage.Get(KeyPendingEmail) //nolint:errcheck // missing means none pending
	role, _ := s.storage.Get(KeyPendingRole)   //nolint:errcheck
	r, _ := domain.ParseRole(role)
	return email, r
}

// ClearPending forgets the account awaiting verification.
func (s *Store) ClearPending() {
	for _, k := range []string{KeyPendingEmail, KeyPendingRole} {
		if err := s.storage.Delete(k); err != nil {
			s.logger.Warn("delete pending key", zap.String("key", k), zap.Error(err))
		}
	}
}
