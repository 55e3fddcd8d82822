package history

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/shopsage/internal/client/models"
	"github.com/dmitrijs2005/shopsage/internal/client/session"
	"github.com/dmitrijs2005/shopsage/internal/client/storage"
	"github.com/dmitrijs2005/shopsage/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var keys = storage.NewKeys(storage.DefaultKeyPrefix)

type fixture struct {
	kv       storage.Store
	sessions *session.Store
	history  *Store
}

func counter(prefix string) func() (string, error) {
	n := 0
	return func() (string, error) {
		n++
		return fmt.Sprintf("%s-%d", prefix, n), nil
	}
}

func fixedClock() func() time.Time {
	t0 := time.Date(2024, 6, 10, 9, 13, 20, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return t0.Add(time.Duration(n) * time.Minute)
	}
}

func newFixture(t *testing.T, kv storage.Store) *fixture {
	t.Helper()
	ctx := context.Background()

	sessions, err := session.New(ctx, kv, logging.Nop{}, session.Options{
		Sleep: func(time.Duration) {},
		NewID: counter("user"),
	})
	require.NoError(t, err)

	h, err := New(ctx, kv, sessions, logging.Nop{}, Options{
		Now:   fixedClock(),
		NewID: counter("rec"),
	})
	require.NoError(t, err)
	t.Cleanup(h.Close)

	return &fixture{kv: kv, sessions: sessions, history: h}
}

func snap(name string) models.ResultSnapshot {
	return models.ResultSnapshot{Name: name, Price: "$70.00", Store: "Amazon", URL: "https://example.com/product/0", Verified: true}
}

func readAll(t *testing.T, kv storage.Store) []models.HistoryRecord {
	t.Helper()
	var all []models.HistoryRecord
	_, err := storage.GetJSON(context.Background(), kv, keys.History, &all)
	require.NoError(t, err)
	return all
}

func queries(rs []models.HistoryRecord) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Query)
	}
	return out
}

// ---- record / list ----

func TestRecordSearch_SignedOut_NoOp(t *testing.T) {
	f := newFixture(t, storage.NewMemoryStore())

	rec, err := f.history.RecordSearch(context.Background(), "shoes", []models.ResultSnapshot{snap("r1")})
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Empty(t, f.history.ListVisible())

	raw, err := f.kv.Get(context.Background(), keys.History)
	require.NoError(t, err)
	assert.Nil(t, raw, "nothing may be written while signed out")
}

func TestRecordSearch_StampsOwnerAndTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())
	alice, err := f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)

	rec, err := f.history.RecordSearch(ctx, "shoes", []models.ResultSnapshot{snap("r1"), snap("r2")})
	require.NoError(t, err)

	want := &models.HistoryRecord{
		ID:        "rec-1",
		Query:     "shoes",
		Timestamp: "2024-06-10 09:14:20",
		Results:   []models.ResultSnapshot{snap("r1"), snap("r2")},
		UserID:    alice.ID,
	}
	assert.Empty(t, cmp.Diff(want, rec))
	assert.Empty(t, cmp.Diff([]models.HistoryRecord{*want}, f.history.ListVisible()))
	assert.Empty(t, cmp.Diff([]models.HistoryRecord{*want}, readAll(t, f.kv)))
}

func TestRecordSearch_MostRecentFirst_OwnerIsolated(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())

	_, err := f.sessions.Register(ctx, "b@x.com", "pw", "Bob")
	require.NoError(t, err)
	for _, q := range []string{"bob-1", "bob-2"} {
		_, err := f.history.RecordSearch(ctx, q, nil)
		require.NoError(t, err)
	}

	_, err = f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	assert.Empty(t, f.history.ListVisible(), "switching user must re-derive the view")

	for _, q := range []string{"a-1", "a-2", "a-3"} {
		_, err := f.history.RecordSearch(ctx, q, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{"a-3", "a-2", "a-1"}, queries(f.history.ListVisible()))
	assert.Equal(t, []string{"a-3", "a-2", "a-1", "bob-2", "bob-1"}, queries(readAll(t, f.kv)))

	require.NoError(t, f.sessions.Logout(ctx))
	_, err = f.sessions.Login(ctx, "b@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob-2", "bob-1"}, queries(f.history.ListVisible()))
}

func TestListVisible_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())
	_, err := f.sessions.Login(ctx, models.DemoEmail, models.DemoPassword)
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "tv", []models.ResultSnapshot{snap("r1")})
	require.NoError(t, err)

	got := f.history.ListVisible()
	got[0].Query = "mutated"
	got[0].Results[0].Name = "mutated"

	again := f.history.ListVisible()
	assert.Equal(t, "tv", again[0].Query)
	assert.Equal(t, "r1", again[0].Results[0].Name)
}

// ---- logout ----

func TestLogout_EmptiesVisibleSubset(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())
	_, err := f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "shoes", nil)
	require.NoError(t, err)

	require.NoError(t, f.sessions.Logout(ctx))
	assert.Nil(t, f.sessions.Current())
	assert.Empty(t, f.history.ListVisible())
	assert.Len(t, readAll(t, f.kv), 1, "logout keeps durable history")
}

// ---- remove ----

func TestRemoveRecord(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())
	_, err := f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)

	first, err := f.history.RecordSearch(ctx, "first", nil)
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "second", nil)
	require.NoError(t, err)

	require.NoError(t, f.history.RemoveRecord(ctx, first.ID))
	assert.Equal(t, []string{"second"}, queries(f.history.ListVisible()))
	assert.Equal(t, []string{"second"}, queries(readAll(t, f.kv)))

	// неизвестный id: ничего не меняется
	require.NoError(t, f.history.RemoveRecord(ctx, "nope"))
	assert.Equal(t, []string{"second"}, queries(f.history.ListVisible()))
}

func TestRemoveRecord_OtherUsersRecordIsRemovedToo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())

	_, err := f.sessions.Register(ctx, "b@x.com", "pw", "Bob")
	require.NoError(t, err)
	bobs, err := f.history.RecordSearch(ctx, "bob", nil)
	require.NoError(t, err)

	_, err = f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	require.NoError(t, f.history.RemoveRecord(ctx, bobs.ID))

	assert.Empty(t, readAll(t, f.kv))
}

func TestRemoveRecord_SignedOut_NoOp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())
	_, err := f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	rec, err := f.history.RecordSearch(ctx, "shoes", nil)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Logout(ctx))

	require.NoError(t, f.history.RemoveRecord(ctx, rec.ID))
	assert.Len(t, readAll(t, f.kv), 1)
}

// ---- clear ----

func TestClearAll_KeepsOtherUsersRecords(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())

	_, err := f.sessions.Register(ctx, "b@x.com", "pw", "Bob")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "bob-1", nil)
	require.NoError(t, err)

	_, err = f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "a-1", nil)
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "a-2", nil)
	require.NoError(t, err)

	require.NoError(t, f.history.ClearAll(ctx))
	assert.Empty(t, f.history.ListVisible())
	assert.Equal(t, []string{"bob-1"}, queries(readAll(t, f.kv)))

	require.NoError(t, f.sessions.Logout(ctx))
	_, err = f.sessions.Login(ctx, "b@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, []string{"bob-1"}, queries(f.history.ListVisible()))
}

func TestClearAll_SignedOut_NoOp(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	f := newFixture(t, kv)
	_, err := f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "shoes", nil)
	require.NoError(t, err)
	require.NoError(t, f.sessions.Logout(ctx))

	require.NoError(t, f.history.ClearAll(ctx))
	assert.Len(t, readAll(t, kv), 1)
}

// ---- corruption / failures ----

func TestMalformedHistory_TreatedAsEmptyAndOverwritten(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(ctx, keys.History, []byte(`{"oops":`)))
	f := newFixture(t, kv)

	_, err := f.sessions.Login(ctx, models.DemoEmail, models.DemoPassword)
	require.NoError(t, err)
	assert.Empty(t, f.history.ListVisible())

	_, err = f.history.RecordSearch(ctx, "laptop", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"laptop"}, queries(readAll(t, kv)))
}

type failingApplyStore struct {
	storage.Store
	fail bool
}

func (s *failingApplyStore) Apply(ctx context.Context, ops ...storage.Op) error {
	for _, op := range ops {
		if s.fail && op.Key == keys.History {
			return errors.New("read-only")
		}
	}
	return s.Store.Apply(ctx, ops...)
}

func TestRecordSearch_PersistFailure_VisibleUnchanged(t *testing.T) {
	ctx := context.Background()
	kv := &failingApplyStore{Store: storage.NewMemoryStore()}
	f := newFixture(t, kv)
	_, err := f.sessions.Login(ctx, models.DemoEmail, models.DemoPassword)
	require.NoError(t, err)

	kv.fail = true
	_, err = f.history.RecordSearch(ctx, "shoes", nil)
	require.ErrorContains(t, err, "read-only")
	assert.Empty(t, f.history.ListVisible())
}

func TestClose_StopsFollowingSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())
	_, err := f.sessions.Login(ctx, models.DemoEmail, models.DemoPassword)
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "shoes", nil)
	require.NoError(t, err)

	f.history.Close()
	require.NoError(t, f.sessions.Logout(ctx))
	assert.Len(t, f.history.ListVisible(), 1, "a closed store no longer re-derives")
}

// ---- scenarios ----

func TestScenario_AliceThenDemo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, storage.NewMemoryStore())

	_, err := f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "shoes", []models.ResultSnapshot{snap("r1"), snap("r2")})
	require.NoError(t, err)
	require.NoError(t, f.sessions.Logout(ctx))

	_, err = f.sessions.Login(ctx, "demo@shopsage.ai", "demo123")
	require.NoError(t, err)
	assert.Empty(t, f.history.ListVisible())
}

func TestScenario_RestartReproducesVisibleState(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "shopsage.db")

	kv, err := storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	f := newFixture(t, kv)
	_, err = f.sessions.Register(ctx, "b@x.com", "pw", "Bob")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "bob", nil)
	require.NoError(t, err)
	_, err = f.sessions.Register(ctx, "a@x.com", "pw", "Alice")
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "shoes", []models.ResultSnapshot{snap("r1")})
	require.NoError(t, err)
	_, err = f.history.RecordSearch(ctx, "socks", nil)
	require.NoError(t, err)

	wantSession := f.sessions.Current()
	wantVisible := f.history.ListVisible()
	f.history.Close()
	require.NoError(t, kv.Close())

	kv, err = storage.OpenSQLite(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	restarted := newFixture(t, kv)
	assert.Empty(t, cmp.Diff(wantSession, restarted.sessions.Current()))
	assert.Empty(t, cmp.Diff(wantVisible, restarted.history.ListVisible()))
}

func TestNew_DefaultIDsAreUUIDv7(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStore()
	sessions, err := session.New(ctx, kv, logging.Nop{}, session.Options{Sleep: func(time.Duration) {}})
	require.NoError(t, err)
	h, err := New(ctx, kv, sessions, logging.Nop{}, Options{})
	require.NoError(t, err)
	t.Cleanup(h.Close)

	_, err = sessions.Login(ctx, models.DemoEmail, models.DemoPassword)
	require.NoError(t, err)
	rec, err := h.RecordSearch(ctx, "shoes", nil)
	require.NoError(t, err)

	id, err := uuid.Parse(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
}
