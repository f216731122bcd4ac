package dispatch

// CourierID is a stable handle into the engine's courier pool.
type CourierID int

// Queue is the FIFO of idle couriers. Assignment scans it front to back, so the
// courier that has waited longest wins among eligible ones.
type Queue struct {
	items []CourierID
}

// NewQueue returns an empty queue sized for capacity couriers.
func NewQueue(capacity int) *Queue {
	return &Queue{items: make([]CourierID, 0, capacity)}
}

// PushBack appends a courier at the tail.
func (q *Queue) PushBack(id CourierID) {
	q.items = append(q.items, id)
}

// PopFirstMatching removes and returns the first courier accepted by match.
// The relative order of the remaining couriers is preserved.
func (q *Queue) PopFirstMatching(match func(CourierID) bool) (CourierID, bool) {
	for i, id := range q.items {
		if match(id) {
			copy(q.items[i:], q.items[i+1:])
			q.items = q.items[:len(q.items)-1]
			return id, true
		}
	}
	return 0, false
}

// Len returns the number of idle couriers.
func (q *Queue) Len() int { return len(q.items) }

// Contains reports whether the courier is queued.
func (q *Queue) Contains(id CourierID) bool {
	for _, it := range q.items {
		if it == id {
			return true
		}
	}
	return false
}

// Snapshot returns the queued couriers front to back.
func (q *Queue) Snapshot() []CourierID {
	return append([]CourierID(nil), q.items...)
}

// Clear empties the queue.
func (q *Queue) Clear() { q.items = q.items[:0] }
