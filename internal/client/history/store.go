// Package history keeps the search history of the ShopSage client.
//
// All users' records live in one durable list, newest first. A Store shows
// only the records of whoever is signed in (the visible subset) and
// recomputes that subset whenever the session store reports a change.
package history

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/shopsage/internal/client/models"
	"github.com/dmitrijs2005/shopsage/internal/client/session"
	"github.com/dmitrijs2005/shopsage/internal/client/storage"
	"github.com/dmitrijs2005/shopsage/internal/common"
	"github.com/dmitrijs2005/shopsage/internal/logging"
)

// TimestampLayout formats HistoryRecord.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// SessionSource is the part of session.Store the history depends on.
type SessionSource interface {
	Current() *models.Session
	Subscribe(fn session.Observer) (unsubscribe func())
}

// Options tunes a Store. Zero values pick the defaults.
type Options struct {
	Keys  storage.Keys
	Now   func() time.Time
	NewID func() (string, error)
}

// Store holds the visible history of the signed-in user over the durable list.
type Store struct {
	kv       storage.Store
	sessions SessionSource
	keys     storage.Keys
	log      logging.Logger
	now      func() time.Time
	newID    func() (string, error)

	opMu    sync.Mutex
	mu      sync.RWMutex
	visible []models.HistoryRecord

	unsubscribe func()
}

// New builds a Store, loads the visible subset for the current session and
// subscribes to session changes. Call Close to unsubscribe.
func New(ctx context.Context, kv storage.Store, sessions SessionSource, log logging.Logger, opts Options) (*Store, error) {
	if opts.Keys == (storage.Keys{}) {
		opts.Keys = storage.NewKeys(storage.DefaultKeyPrefix)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = newID
	}

	h := &Store{
		kv:       kv,
		sessions: sessions,
		keys:     opts.Keys,
		log:      log.With("component", "history"),
		now:      opts.Now,
		newID:    opts.NewID,
	}

	if err := h.reload(ctx, sessions.Current()); err != nil {
		return nil, err
	}
	h.unsubscribe = sessions.Subscribe(h.onSessionChange)
	return h, nil
}

// Close detaches the store from session notifications.
func (h *Store) Close() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
}

func (h *Store) onSessionChange(ctx context.Context, s *models.Session) {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	if err := h.reload(ctx, s); err != nil {
		// keep the view consistent with the new identity even if storage failed
		h.setVisible(nil)
		h.log.Error(ctx, "failed to reload history after session change", "error", err)
	}
}

// reload recomputes the visible subset for s from the durable list.
func (h *Store) reload(ctx context.Context, s *models.Session) error {
	if s == nil {
		h.setVisible(nil)
		return nil
	}

	all, err := h.loadAll(ctx)
	if err != nil {
		return err
	}
	visible := ownedBy(all, s.ID)
	h.setVisible(visible)
	h.log.Debug(ctx, "history loaded", "user_id", s.ID, "records", len(visible))
	return nil
}

// ListVisible returns the current user's records, newest first. It is
// empty when nobody is signed in.
func (h *Store) ListVisible() []models.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return cloneRecords(h.visible)
}

// RecordSearch stores a search made by the current user. results should
// already be cut to the snapshot size. When signed out it does nothing and
// returns (nil, nil).
func (h *Store) RecordSearch(ctx context.Context, query string, results []models.ResultSnapshot) (*models.HistoryRecord, error) {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	cur := h.sessions.Current()
	if cur == nil {
		return nil, nil
	}

	id, err := h.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate record id: %w", err)
	}
	record := models.HistoryRecord{
		ID:        id,
		Query:     query,
		Timestamp: h.now().Format(TimestampLayout),
		Results:   slices.Clone(results),
		UserID:    cur.ID,
	}

	all, err := h.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	all = append([]models.HistoryRecord{record}, all...)
	if err := h.save(ctx, all); err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.visible = append([]models.HistoryRecord{record}, h.visible...)
	h.mu.Unlock()

	h.log.Info(ctx, "search recorded", "user_id", cur.ID, "record_id", id, "results", len(results))
	out := cloneRecord(record)
	return &out, nil
}

// RemoveRecord deletes the record with id from the durable list and from
// the visible subset. The owner is not checked. Does nothing when signed out.
func (h *Store) RemoveRecord(ctx context.Context, id string) error {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	cur := h.sessions.Current()
	if cur == nil {
		return nil
	}

	all, err := h.loadAll(ctx)
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(all, func(r models.HistoryRecord) bool { return r.ID == id })
	if err := h.save(ctx, kept); err != nil {
		return err
	}

	h.mu.Lock()
	h.visible = slices.DeleteFunc(h.visible, func(r models.HistoryRecord) bool { return r.ID == id })
	h.mu.Unlock()

	h.log.Info(ctx, "history record removed", "user_id", cur.ID, "record_id", id)
	return nil
}

// ClearAll deletes every record owned by the current user and keeps other
// users' records. Does nothing when signed out.
func (h *Store) ClearAll(ctx context.Context) error {
	h.opMu.Lock()
	defer h.opMu.Unlock()

	cur := h.sessions.Current()
	if cur == nil {
		return nil
	}

	all, err := h.loadAll(ctx)
	if err != nil {
		return err
	}
	before := len(all)
	others := slices.DeleteFunc(all, func(r models.HistoryRecord) bool { return r.UserID == cur.ID })
	if err := h.save(ctx, others); err != nil {
		return err
	}

	h.setVisible(nil)
	h.log.Info(ctx, "history cleared", "user_id", cur.ID, "removed", before-len(others))
	return nil
}

// loadAll reads the global list. A list that does not decode is logged and
// treated as empty; the next save replaces it.
func (h *Store) loadAll(ctx context.Context) ([]models.HistoryRecord, error) {
	var all []models.HistoryRecord
	_, err := storage.GetJSON(ctx, h.kv, h.keys.History, &all)
	if errors.Is(err, common.ErrMalformedState) {
		h.log.Warn(ctx, "search history is unreadable, treating as empty", "error", err)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load search history: %w", err)
	}
	return all, nil
}

func (h *Store) save(ctx context.Context, all []models.HistoryRecord) error {
	if all == nil {
		all = []models.HistoryRecord{}
	}
	op, err := storage.PutJSON(h.keys.History, all)
	if err != nil {
		return err
	}
	if err := h.kv.Apply(ctx, op); err != nil {
		h.log.Error(ctx, "failed to persist search history", "error", err)
		return fmt.Errorf("failed to persist search history: %w", err)
	}
	return nil
}

func (h *Store) setVisible(records []models.HistoryRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.visible = records
}

func ownedBy(all []models.HistoryRecord, owner string) []models.HistoryRecord {
	var out []models.HistoryRecord
	for _, r := range all {
		if r.UserID == owner {
			out = append(out, r)
		}
	}
	return out
}

func cloneRecord(r models.HistoryRecord) models.HistoryRecord {
	r.Results = slices.Clone(r.Results)
	return r
}

func cloneRecords(rs []models.HistoryRecord) []models.HistoryRecord {
	out := make([]models.HistoryRecord, len(rs))
	for i, r := range rs {
		out[i] = cloneRecord(r)
	}
	return out
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
