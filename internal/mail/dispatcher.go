package mail

import (
	"context"
	"log"
	"sync"
	"time"
)

const (
	defaultQueueSize   = 64
	defaultWorkerCount = 2
	sendTimeout        = 30 * time.Second
)

// Dispatcher runs a bounded worker pool for fire-and-forget sends.
// Callers observe no result: a failed or dropped message is logged and
// otherwise lost. That contract keeps request handlers independent of
// mail transport latency.
type Dispatcher struct {
	sender Sender
	jobs   chan Message
	wg     sync.WaitGroup
	once   sync.Once

	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts workers goroutines consuming a queue of queueSize
// messages. Non-positive arguments fall back to defaults.
func NewDispatcher(sender Sender, workers, queueSize int) *Dispatcher {
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	d := &Dispatcher{
		sender: sender,
		jobs:   make(chan Message, queueSize),
	}

	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

// Enqueue submits a message for background delivery. It never blocks:
// when the queue is full, or the dispatcher is already closed, the
// message is dropped and logged.
func (d *Dispatcher) Enqueue(msg Message) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		log.Printf("mail dispatcher: closed, dropped message to %s", msg.To)
		return
	}

	select {
	case d.jobs <- msg:
	default:
		log.Printf("mail dispatcher: queue full, dropped message to %s", msg.To)
	}
}

// Close stops intake and waits for queued messages to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
	})
	d.wg.Wait()
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for msg := range d.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := d.sender.Send(ctx, msg); err != nil {
			log.Printf("mail dispatcher: failed to send to %s: %v", msg.To, err)
		}
		cancel()
	}
}
