package log

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
)

// Buffer delivers entries to transporters from a single background
// goroutine. When the queue is full the oldest queued entry is dropped.
type Buffer struct {
	queue        chan Entry
	transporters []Transporter
	fallback     io.Writer

	dropped atomic.Int64
	closed  atomic.Bool
	stop    chan struct{}
	done    sync.WaitGroup
}

// NewBuffer starts a buffer holding up to capacity pending entries.
func NewBuffer(capacity int, transporters ...Transporter) *Buffer {
	if capacity < 1 {
		capacity = 1
	}
	b := &Buffer{
		queue:        make(chan Entry, capacity),
		transporters: transporters,
		fallback:     os.Stderr,
		stop:         make(chan struct{}),
	}
	b.done.Add(1)
	go b.run()
	return b
}

// Send enqueues an entry without blocking.
func (b *Buffer) Send(entry Entry) {
	if b.closed.Load() {
		return
	}
	for attempt := 0; attempt < 2; attempt++ {
		select {
		case b.queue <- entry:
			return
		default:
		}
		select {
		case <-b.queue:
			b.dropped.Add(1)
		default:
		}
	}
	b.dropped.Add(1)
}

// DroppedCount returns how many entries were discarded on overflow.
func (b *Buffer) DroppedCount() int64 {
	return b.dropped.Load()
}

// Close drains pending entries, closes every transporter and stops the
// worker. Calling it more than once is a no-op.
func (b *Buffer) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	close(b.stop)
	b.done.Wait()

	for {
		select {
		case entry := <-b.queue:
			b.deliver(entry)
		default:
			for _, t := range b.transporters {
				_ = t.Close()
			}
			return
		}
	}
}

func (b *Buffer) run() {
	defer b.done.Done()
	for {
		select {
		case entry := <-b.queue:
			b.deliver(entry)
		case <-b.stop:
			return
		}
	}
}

func (b *Buffer) deliver(entry Entry) {
	for _, t := range b.transporters {
		if err := t.Write(entry); err != nil {
			fmt.Fprintf(b.fallback, "log transporter %q failed: %v\n", t.Name(), err)
		}
	}
}
