package detect

import (
	"log/slog"
	"sync"

	"github.com/appengine-ltd/warpctx/internal/metrics"
)

// Sink accepts host events from any goroutine.
type Sink interface {
	Enqueue(Event) bool
}

// backlogWarning is the queue length at which a slow consumer is reported.
const backlogWarning = 4096

// Queue hands host events to the engine goroutine in arrival order. It never
// drops: a container fill alone posts two notifications per slot, and the
// settle gate needs every one of them.
type Queue struct {
	mu     sync.Mutex
	events []Event
	warned bool
	wake   chan struct{}

	logger  *slog.Logger
	metrics *metrics.Metrics
}

// NewQueue returns an empty queue. size is the initial capacity; the queue
// grows as needed.
func NewQueue(size int, logger *slog.Logger, m *metrics.Metrics) *Queue {
	if size < 1 {
		size = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Queue{
		events:  make([]Event, 0, size),
		wake:    make(chan struct{}, 1),
		logger:  logger,
		metrics: m,
	}
}

// Enqueue appends ev. It reports false only for a nil queue.
func (q *Queue) Enqueue(ev Event) bool {
	if q == nil {
		return false
	}
	q.mu.Lock()
	q.events = append(q.events, ev)
	n := len(q.events)
	if n >= backlogWarning && !q.warned {
		q.warned = true
		q.logger.Warn("Event queue backlog growing", "queued", n)
	}
	q.mu.Unlock()

	q.metrics.SetQueued(n)
	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

// Ready is signalled after Enqueue. One signal may cover many events, so
// receivers drain until Dequeue reports false.
func (q *Queue) Ready() <-chan struct{} { return q.wake }

func (q *Queue) Dequeue() (Event, bool) {
	if q == nil {
		return Event{}, false
	}
	q.mu.Lock()
	if len(q.events) == 0 {
		q.mu.Unlock()
		return Event{}, false
	}
	ev := q.events[0]
	q.events[0] = Event{}
	q.events = q.events[1:]
	n := len(q.events)
	if n == 0 {
		q.events = q.events[:0:0]
		q.warned = false
	}
	q.mu.Unlock()

	q.metrics.SetQueued(n)
	return ev, true
}

func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
