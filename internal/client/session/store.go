// Package session owns the signed-in identity of the ShopSage client: the
// durable account registry, the active session, and change notification for
// components whose view depends on who is signed in.
//
// A Store is built once at startup with New, which hydrates the session from
// storage. Register and Login model a network round-trip with a fixed
// latency; nothing is written to storage until that wait is over, and the
// wait cannot be cancelled once started.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/shopsage/internal/client/models"
	"github.com/dmitrijs2005/shopsage/internal/client/storage"
	"github.com/dmitrijs2005/shopsage/internal/common"
	"github.com/dmitrijs2005/shopsage/internal/cryptox"
	"github.com/dmitrijs2005/shopsage/internal/logging"
)

const DefaultLatency = time.Second

// Options tunes a Store. Zero values pick the defaults; a zero Latency
// means no delay.
type Options struct {
	Keys    storage.Keys
	Latency time.Duration
	Codec   cryptox.SecretCodec
	// Sleep and NewID are seams for tests.
	Sleep func(time.Duration)
	NewID func() (string, error)
}

// Store manages the account registry and the active session.
// It is safe for concurrent use; mutations are serialized.
type Store struct {
	kv      storage.Store
	keys    storage.Keys
	log     logging.Logger
	codec   cryptox.SecretCodec
	latency time.Duration
	sleep   func(time.Duration)
	newID   func() (string, error)

	opMu    sync.Mutex // serializes register/login/logout
	mu      sync.RWMutex
	current *models.Session

	pending   atomic.Int32
	observers observers
}

// New builds a Store over kv and hydrates the active session. A stored
// session that does not decode is deleted and treated as signed out.
func New(ctx context.Context, kv storage.Store, log logging.Logger, opts Options) (*Store, error) {
	if opts.Keys == (storage.Keys{}) {
		opts.Keys = storage.NewKeys(storage.DefaultKeyPrefix)
	}
	if opts.Codec == nil {
		opts.Codec = cryptox.PlainCodec{}
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.NewID == nil {
		opts.NewID = newID
	}

	s := &Store{
		kv:      kv,
		keys:    opts.Keys,
		log:     log.With("component", "session"),
		codec:   opts.Codec,
		latency: opts.Latency,
		sleep:   opts.Sleep,
		newID:   opts.NewID,
	}

	if err := s.hydrate(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) hydrate(ctx context.Context) error {
	var sess *models.Session
	found, err := storage.GetJSON(ctx, s.kv, s.keys.Session, &sess)
	switch {
	case errors.Is(err, common.ErrMalformedState):
		s.log.Warn(ctx, "stored session is unreadable, signing out", "error", err)
		return s.dropStoredSession(ctx)
	case err != nil:
		return fmt.Errorf("failed to load session: %w", err)
	case !found:
		return nil
	case sess == nil || sess.ID == "":
		// null or an identity without id means signed out
		s.log.Warn(ctx, "stored session is empty, signing out")
		return s.dropStoredSession(ctx)
	}

	s.current = sess
	s.log.Debug(ctx, "session restored", "user_id", sess.ID)
	return nil
}

func (s *Store) dropStoredSession(ctx context.Context) error {
	if err := s.kv.Delete(ctx, s.keys.Session); err != nil {
		return fmt.Errorf("failed to drop stored session: %w", err)
	}
	return nil
}

// Current returns a copy of the active session, or nil when signed out.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

// Pending reports whether a Register or Login call is in flight.
func (s *Store) Pending() bool {
	return s.pending.Load() > 0
}

// Subscribe registers fn for session changes and returns a function that
// removes it again.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	return s.observers.add(fn)
}

// Register creates an account and signs it in. It fails with
// common.ErrDuplicateAccount when the email is already registered; nothing
// is written in that case. The new account and the session are persisted
// in one batch.
func (s *Store) Register(ctx context.Context, email, secret, name string) (*models.Session, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)
	s.sleep(s.latency)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email == email {
			s.log.Info(ctx, "registration rejected, email taken", "email", email)
			return nil, common.ErrDuplicateAccount
		}
	}

	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate account id: %w", err)
	}
	stored, err := s.codec.Encode(secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encode secret: %w", err)
	}

	account := models.Account{ID: id, Email: email, Password: stored, Name: name}
	accounts = append(accounts, account)
	sess := account.Session()

	accountsOp, err := storage.PutJSON(s.keys.Accounts, accounts)
	if err != nil {
		return nil, err
	}
	sessionOp, err := storage.PutJSON(s.keys.Session, sess)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Apply(ctx, accountsOp, sessionOp); err != nil {
		s.log.Error(ctx, "failed to persist registration", "email", email, "error", err)
		return nil, fmt.Errorf("failed to persist registration: %w", err)
	}

	s.log.Info(ctx, "account registered", "user_id", id, "email", email)
	s.switchTo(ctx, &sess)
	return clone(&sess), nil
}

// Login signs in with email and secret. The demo credentials always
// succeed, whatever the registry holds. Otherwise an account with exactly
// this email and secret must exist, or common.ErrInvalidCredentials is
// returned and the current session is left alone.
func (s *Store) Login(ctx context.Context, email, secret string) (*models.Session, error) {
	s.pending.Add(1)
	defer s.pending.Add(-1)
	s.sleep(s.latency)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	sess, err := s.authenticate(ctx, email, secret)
	if err != nil {
		return nil, err
	}

	op, err := storage.PutJSON(s.keys.Session, sess)
	if err != nil {
		return nil, err
	}
	if err := s.kv.Apply(ctx, op); err != nil {
		s.log.Error(ctx, "failed to persist session", "user_id", sess.ID, "error", err)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	s.log.Info(ctx, "signed in", "user_id", sess.ID, "email", sess.Email)
	s.switchTo(ctx, sess)
	return clone(sess), nil
}

func (s *Store) authenticate(ctx context.Context, email, secret string) (*models.Session, error) {
	if email == models.DemoEmail && secret == models.DemoPassword {
		demo := models.DemoSession()
		return &demo, nil
	}

	accounts, err := s.loadAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if a.Email == email && s.codec.Matches(a.Password, secret) {
			sess := a.Session()
			return &sess, nil
		}
	}

	s.log.Info(ctx, "sign-in rejected", "email", email)
	return nil, common.ErrInvalidCredentials
}

// Logout clears the active session. Calling it while signed out is fine;
// observers are still notified.
func (s *Store) Logout(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.kv.Delete(ctx, s.keys.Session); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if prev := s.Current(); prev != nil {
		s.log.Info(ctx, "signed out", "user_id", prev.ID)
	}
	s.switchTo(ctx, nil)
	return nil
}

// switchTo replaces the in-memory session and notifies observers.
// The caller holds opMu.
func (s *Store) switchTo(ctx context.Context, sess *models.Session) {
	s.mu.Lock()
	s.current = clone(sess)
	s.mu.Unlock()

	s.observers.notify(ctx, sess)
}

// loadAccounts reads the registry. An unreadable registry is logged and
// treated as empty; the next registration overwrites it.
func (s *Store) loadAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	_, err := storage.GetJSON(ctx, s.kv, s.keys.Accounts, &accounts)
	if errors.Is(err, common.ErrMalformedState) {
		s.log.Warn(ctx, "account registry is unreadable, treating as empty", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	return accounts, nil
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
