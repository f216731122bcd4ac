package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/couriersim/core/model"
)

func TestQueuePopFirstMatchingIsStable(t *testing.T) {
	q := NewQueue(4)
	for _, id := range []CourierID{3, 1, 4, 2} {
		q.PushBack(id)
	}
	id, ok := q.PopFirstMatching(func(id CourierID) bool { return id%2 == 0 })
	require.True(t, ok)
	assert.Equal(t, CourierID(4), id)
	assert.Equal(t, []CourierID{3, 1, 2}, q.Snapshot())
	assert.False(t, q.Contains(4))
}

func TestQueuePopFirstMatchingNone(t *testing.T) {
	q := NewQueue(2)
	q.PushBack(0)
	q.PushBack(1)
	_, ok := q.PopFirstMatching(func(CourierID) bool { return false })
	assert.False(t, ok)
	assert.Equal(t, 2, q.Len())
}

func TestQueueClear(t *testing.T) {
	q := NewQueue(1)
	q.PushBack(7)
	q.Clear()
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Snapshot())
}

func TestRegistryDrainDue(t *testing.T) {
	r := NewRegistry()
	r.Add(0, model.Clock(12, 40))
	r.Add(1, model.Clock(12, 10))
	r.Add(2, model.Clock(12, 10))
	r.Add(3, model.Clock(13, 0))

	assert.Nil(t, r.DrainDue(model.Clock(12, 9)))

	due := r.DrainDue(model.Clock(12, 40))
	assert.Equal(t, []CourierID{1, 2, 0}, due)
	assert.Equal(t, 1, r.Len())
	for _, id := range due {
		assert.False(t, r.Contains(id))
	}
	at, ok := r.ReturnAt(3)
	require.True(t, ok)
	assert.Equal(t, model.Clock(13, 0), at)

	next, ok := r.NextReturn()
	require.True(t, ok)
	assert.Equal(t, model.Clock(13, 0), next)
}

func TestRegistryDrainIsInclusive(t *testing.T) {
	r := NewRegistry()
	r.Add(5, 100)
	assert.Equal(t, []CourierID{5}, r.DrainDue(100))
	assert.Zero(t, r.Len())
	_, ok := r.NextReturn()
	assert.False(t, ok)
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	r.Add(0, 10)
	r.Add(1, 20)
	r.Clear()
	assert.Zero(t, r.Len())
	_, ok := r.ReturnAt(0)
	assert.False(t, ok)
}
