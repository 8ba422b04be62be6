package persistence_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/skilltree/pkg/domain"
	"github.com/aretw0/skilltree/pkg/dsl"
	"github.com/aretw0/skilltree/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	mu    sync.Mutex
	saves []domain.Selection
}

func (r *recordingSaver) Save(_ context.Context, s domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, s.Selection)
	return nil
}

func (r *recordingSaver) snapshot() []domain.Selection {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Selection(nil), r.saves...)
}

func stateWith(ids ...string) domain.State {
	return domain.NewState(dsl.Seed(), domain.NewSelection(ids...))
}

func TestDebouncer_LaterWins(t *testing.T) {
	saver := &recordingSaver{}
	d := persistence.NewDebouncer(saver, 20*time.Millisecond)

	d.Trigger(stateWith("node-1"))
	d.Trigger(stateWith("node-1", "node-2"))
	d.Trigger(stateWith("node-3"))

	require.Eventually(t, func() bool { return len(saver.snapshot()) > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	saves := saver.snapshot()
	require.Len(t, saves, 1, "a burst is coalesced into one save")
	assert.Equal(t, []string{"node-3"}, saves[0].IDs())
	assert.False(t, d.Pending())
}

func TestDebouncer_Flush(t *testing.T) {
	saver := &recordingSaver{}
	d := persistence.NewDebouncer(saver, time.Hour)

	require.NoError(t, d.Flush(context.Background()), "nothing pending is not an error")
	assert.Empty(t, saver.snapshot())

	d.Trigger(stateWith("node-1"))
	d.Trigger(stateWith("node-3"))
	assert.True(t, d.Pending())

	require.NoError(t, d.Flush(context.Background()))
	saves := saver.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, []string{"node-3"}, saves[0].IDs())
	assert.False(t, d.Pending())
}

func TestDebouncer_Stop(t *testing.T) {
	saver := &recordingSaver{}
	d := persistence.NewDebouncer(saver, 10*time.Millisecond)

	d.Trigger(stateWith("node-1"))
	d.Stop()
	time.Sleep(40 * time.Millisecond)

	assert.Empty(t, saver.snapshot())
	require.NoError(t, d.Flush(context.Background()))
	assert.Empty(t, saver.snapshot())
}

func TestDebouncer_SnapshotsTriggeredState(t *testing.T) {
	saver := &recordingSaver{}
	d := persistence.NewDebouncer(saver, time.Hour)

	sel := domain.NewSelection("node-1")
	d.Trigger(domain.NewState(dsl.Seed(), sel))
	sel["node-3"] = struct{}{}

	require.NoError(t, d.Flush(context.Background()))
	assert.Equal(t, []string{"node-1"}, saver.snapshot()[0].IDs())
}

func TestDebouncer_SavesThroughAdapter(t *testing.T) {
	store := &countingStore{data: map[string]string{}}
	a := persistence.New(store)
	d := persistence.NewDebouncer(a, 0)

	for i := 0; i < 10; i++ {
		d.Trigger(stateWith("node-1"))
	}
	require.NoError(t, d.Flush(context.Background()))

	assert.Equal(t, 2, store.sets, "one save writes both keys once")
	restored := a.Restore(context.Background())
	assert.Equal(t, []string{"node-1"}, restored.Selection.IDs())
}

type countingStore struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func (s *countingStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (s *countingStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets++
	s.data[key] = value
	return nil
}
