package wavefront

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/df07/go-wavefront-tracer/pkg/kernel"
)

// QueueEntry is a path waiting for its next stage
type QueueEntry struct {
	Path int              // Index of the path state in the batch
	Next kernel.NextStage // Stage and sort key
}

// Queue collects scheduling decisions from many workers. Appends are
// lock-free until the buffer has to grow.
type Queue struct {
	entries []QueueEntry // Pre-allocated buffer for lock-free appends
	length  int64        // Atomic counter for current length
	mu      sync.RWMutex // Exclusive only while growing the buffer
}

// NewQueue creates a queue with room for capacity entries
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Queue{entries: make([]QueueEntry, capacity)}
}

// Push adds a decision to the queue
func (q *Queue) Push(path int, next kernel.NextStage) {
	index := atomic.AddInt64(&q.length, 1) - 1
	entry := QueueEntry{Path: path, Next: next}

	q.mu.RLock()
	if int(index) < len(q.entries) {
		q.entries[index] = entry
		q.mu.RUnlock()
		return
	}
	q.mu.RUnlock()

	// Slow path: buffer is full, need to grow
	q.mu.Lock()
	defer q.mu.Unlock()

	// Another goroutine might have grown it already
	if int(index) >= len(q.entries) {
		newSize := max(len(q.entries)*2, int(index)+1)
		grown := make([]QueueEntry, newSize)
		copy(grown, q.entries)
		q.entries = grown
	}
	q.entries[index] = entry
}

// Len returns the number of queued entries
func (q *Queue) Len() int {
	return int(atomic.LoadInt64(&q.length))
}

// Entries returns a copy of all queued entries in push order
func (q *Queue) Entries() []QueueEntry {
	q.mu.Lock()
	defer q.mu.Unlock()

	n := atomic.LoadInt64(&q.length)
	result := make([]QueueEntry, n)
	copy(result, q.entries[:n])
	return result
}

// Sorted returns the entries scheduled for kernel k, grouped by shader so
// paths running the same shader execute together. Ties keep path order.
func (q *Queue) Sorted(k kernel.DeviceKernel) []QueueEntry {
	var result []QueueEntry
	for _, e := range q.Entries() {
		if e.Next.Kernel == k {
			result = append(result, e)
		}
	}
	slices.SortStableFunc(result, func(a, b QueueEntry) int {
		if a.Next.Shader != b.Next.Shader {
			return int(a.Next.Shader) - int(b.Next.Shader)
		}
		return a.Path - b.Path
	})
	return result
}

// Counts returns how many entries are queued per kernel
func (q *Queue) Counts() [kernel.NumDeviceKernels]int {
	var counts [kernel.NumDeviceKernels]int
	for _, e := range q.Entries() {
		if int(e.Next.Kernel) >= 0 && int(e.Next.Kernel) < kernel.NumDeviceKernels {
			counts[e.Next.Kernel]++
		}
	}
	return counts
}
