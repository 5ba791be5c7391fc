package toast

import (
	"sync"
	"time"
)

type Color string

const (
	ColorSuccess Color = "success"
	ColorDanger  Color = "danger"
	ColorWarning Color = "warning"
	ColorMedium  Color = "medium"
)

type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionMiddle Position = "middle"
)

const (
	DefaultDuration = 3000 * time.Millisecond
	ShortDuration   = 2000 * time.Millisecond
)

type Toast struct {
	Message  string
	Color    Color
	Duration time.Duration
	Position Position
}

// DurationMS is what the page script reads to dismiss the toast.
func (t Toast) DurationMS() int64 {
	return t.Duration.Milliseconds()
}

type Option func(*Toast)

func WithColor(c Color) Option {
	return func(t *Toast) { t.Color = c }
}

func WithDuration(d time.Duration) Option {
	return func(t *Toast) { t.Duration = d }
}

func WithPosition(p Position) Option {
	return func(t *Toast) { t.Position = p }
}

func New(message string, opts ...Option) Toast {
	t := Toast{
		Message:  message,
		Color:    ColorMedium,
		Duration: DefaultDuration,
		Position: PositionTop,
	}
	for _, opt := range opts {
		opt(&t)
	}

	if t.Duration <= 0 {
		t.Duration = DefaultDuration
	}
	return t
}

// Queue holds toasts for one browser session until the next page render.
type Queue struct {
	mu    sync.Mutex
	items []Toast
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(t Toast) {
	q.mu.Lock()
	q.items = append(q.items, t)
	q.mu.Unlock()
}

// Drain returns the queued toasts in order and empties the queue.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	return out
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Show queues a toast. It never fails and never blocks the caller.
func Show(q *Queue, message string, opts ...Option) {
	if q == nil {
		return
	}
	q.Push(New(message, opts...))
}

func Success(q *Queue, message string, opts ...Option) {
	Show(q, message, append([]Option{WithColor(ColorSuccess)}, opts...)...)
}

func Danger(q *Queue, message string, opts ...Option) {
	Show(q, message, append([]Option{WithColor(ColorDanger)}, opts...)...)
}
