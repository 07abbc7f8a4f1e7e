package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluo-state/fluo/pkg/store"
)

func TestSubscribeNotifiedInRegistrationOrder(t *testing.T) {
	s := store.New(0)
	var order []string
	s.Subscribe(func(prev, next int) { order = append(order, "A") })
	s.Subscribe(func(prev, next int) { order = append(order, "B") })
	s.Set(1)
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	s := store.New(0)
	calls := 0
	sub := s.Subscribe(func(prev, next int) { calls++ })
	s.Set(1)
	sub.Unsubscribe()
	s.Set(2)
	assert.Equal(t, 1, calls)
}

func TestMiddlewareCanReject(t *testing.T) {
	s := store.New(10)
	s.Use(store.ValidatingMiddleware(func(n int) error {
		if n < 0 {
			return assert.AnError
		}
		return nil
	}, nil))
	s.Set(-5)
	assert.Equal(t, 10, s.Get())
	s.Set(20)
	assert.Equal(t, 20, s.Get())
}

func TestBatchCollapsesNotifications(t *testing.T) {
	s := store.New(0)
	calls := 0
	s.Subscribe(func(prev, next int) { calls++ })
	s.Batch(func() {
		s.Set(1)
		s.Set(2)
		s.Set(3)
	})
	assert.Equal(t, 1, calls)
	assert.Equal(t, 3, s.Get())
}

func TestReentrantWriteDuringNotificationIsQueued(t *testing.T) {
	s := store.New(0)
	var seen []int
	s.Subscribe(func(prev, next int) {
		seen = append(seen, next)
		if next == 1 {
			s.Set(2)
		}
	})
	s.Set(1)
	assert.Equal(t, []int{1, 2}, seen)
}

func TestSliceMemoizesAndDedupes(t *testing.T) {
	type person struct {
		Name string
		Age  int
	}
	s := store.New(person{Name: "a", Age: 1})
	names := store.NewSlice(s, func(p person) string { return p.Name }, func(a, b string) bool { return a == b })

	notified := 0
	names.Subscribe(func(prev, next string) { notified++ })

	s.Set(person{Name: "a", Age: 2}) // name unchanged
	assert.Equal(t, 0, notified)

	s.Set(person{Name: "b", Age: 2})
	assert.Equal(t, 1, notified)
	assert.Equal(t, "b", names.Get())
}

func TestHistoryUndoRedo(t *testing.T) {
	s := store.New(0)
	h := store.NewHistory(s, 0)
	s.Set(1)
	s.Set(2)
	s.Set(3)
	require.Equal(t, 3, s.Get())

	require.NoError(t, h.Undo())
	assert.Equal(t, 2, s.Get())
	require.NoError(t, h.Undo())
	assert.Equal(t, 1, s.Get())

	require.NoError(t, h.Redo())
	assert.Equal(t, 2, s.Get())

	// committing a new value after undo drops the redo-able future
	s.Set(99)
	assert.Error(t, h.Redo())
}

func TestHistoryUndoAtOldestErrors(t *testing.T) {
	s := store.New(5)
	h := store.NewHistory(s, 0)
	assert.Error(t, h.Undo())
}

func TestHistoryBoundedRing(t *testing.T) {
	s := store.New(0)
	h := store.NewHistory(s, 2)
	s.Set(1)
	s.Set(2)
	s.Set(3)
	assert.Equal(t, 2, h.Len())
}
