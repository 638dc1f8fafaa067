package pending

import (
	"sync"

	"kudos/internal/achievement"
)

// Queue is a mutex-guarded FIFO of unread notifications. Replace swaps the
// full contents; there is no append path, so the store snapshot always wins.
type Queue struct {
	mu    sync.Mutex
	items []achievement.Notification
}

func NewQueue() *Queue {
	return &Queue{}
}

// Replace swaps the queue contents with the given snapshot. Items are sorted
// created_at ascending (stable) and duplicate IDs keep their first
// occurrence.
func (q *Queue) Replace(items []achievement.Notification) {
	next := make([]achievement.Notification, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		next = append(next, item)
	}
	achievement.SortByCreatedAt(next)

	q.mu.Lock()
	q.items = next
	q.mu.Unlock()
}

// RemoveByID removes the notification with the given ID if present and
// reports whether anything was removed.
func (q *Queue) RemoveByID(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, item := range q.items {
		if item.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return true
		}
	}
	return false
}

// Head returns the oldest pending notification without removing it.
func (q *Queue) Head() (achievement.Notification, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return achievement.Notification{}, false
	}
	return q.items[0], true
}

// Len returns the number of pending notifications.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queue contents in presentation order.
func (q *Queue) Items() []achievement.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]achievement.Notification, len(q.items))
	copy(out, q.items)
	return out
}
