package audit

import (
	"context"
	"sync"
	"sync/atomic"
)

// Config controls dispatcher buffering behavior.
type Config struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// OnDrop runs synchronously for every event discarded on a full buffer.
	OnDrop func(Event)
}

// Dispatcher hands events to a single delivery goroutine.
type Dispatcher struct {
	sink   Sink
	drop   bool
	onDrop func(Event)

	queue chan Event
	stop  chan struct{}
	idle  chan struct{}

	mu       sync.RWMutex
	shutdown bool
	once     sync.Once

	dropped   atomic.Uint64
	delivered atomic.Uint64
}

// NewDispatcher starts the delivery goroutine. It returns nil when auditing is
// disabled; every method is safe on a nil Dispatcher.
func NewDispatcher(cfg Config, sink Sink) *Dispatcher {
	if !cfg.Enabled {
		return nil
	}
	size := cfg.BufferSize
	if size < 1 {
		size = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &Dispatcher{
		sink:   sink,
		drop:   cfg.DropIfFull,
		onDrop: cfg.OnDrop,
		queue:  make(chan Event, size),
		stop:   make(chan struct{}),
		idle:   make(chan struct{}),
	}
	go d.deliver()
	return d
}

// deliver exits once the queue is closed and empty, so buffered events always
// reach the sink before Close returns.
func (d *Dispatcher) deliver() {
	defer close(d.idle)
	for ev := range d.queue {
		d.sink.Emit(context.Background(), ev)
		d.delivered.Add(1)
	}
}

// Emit queues event. With DropIfFull a full buffer discards the event, otherwise
// Emit blocks until there is room, ctx is done or the dispatcher closes.
func (d *Dispatcher) Emit(ctx context.Context, event Event) {
	if d == nil {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.shutdown {
		return
	}

	if d.drop {
		select {
		case d.queue <- event:
		default:
			d.discard(event)
		}
		return
	}

	select {
	case d.queue <- event:
	case <-ctx.Done():
	case <-d.stop:
	}
}

func (d *Dispatcher) discard(event Event) {
	d.dropped.Add(1)
	if d.onDrop != nil {
		d.onDrop(event)
	}
}

// Close stops accepting events and drains the buffer into the sink.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.once.Do(func() {
		// Release blocked emitters before taking the write lock.
		close(d.stop)

		d.mu.Lock()
		d.shutdown = true
		close(d.queue)
		d.mu.Unlock()

		<-d.idle
	})
}

// Dropped reports how many events were discarded on a full buffer.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Delivered reports how many events reached the sink.
func (d *Dispatcher) Delivered() uint64 {
	if d == nil {
		return 0
	}
	return d.delivered.Load()
}
