package kgo

import (
	"sync"
	"time"

	"github.com/lishaohua403/ktopics/pkg/kgo/kerr"
)

// Partition is the Toppar collaborator (§6): message queues, the
// leader relationship, error enqueueing, and purge operations. The
// core treats it as a black box and only ever calls through this
// interface; the queue representation is entirely the collaborator's
// business.
type Partition interface {
	// ID is the partition's index, or PartitionUA for the unassigned
	// staging slot.
	ID() int32

	// DelegateToBroker rebinds the partition to b, or clears the
	// delegation if b is nil. Implementations must detach from any
	// prior broker's per-partition queue before attaching to the new
	// one.
	DelegateToBroker(b Broker)

	// Leader returns the currently delegated broker, if any.
	Leader() (Broker, bool)

	// Enqueue appends a message to the partition's internal queue.
	// Used by partitioner implementations and by the UA flusher.
	Enqueue(m Message)

	// MoveMsgsTo moves every message currently queued on this
	// partition onto dest, preserving order, and returns how many
	// messages moved (§4.3 step 5, "move_msgs").
	MoveMsgsTo(dest Partition) int

	// Drain removes and returns every message queued on this
	// partition (both the internal and in-flight queues), in order
	// (§4.3/§4.5 "move_queues" into a local working queue).
	Drain() []Message

	// PurgeQueues discards any residual internal queue state after a
	// drain, e.g. pending acks that do not carry Messages directly.
	PurgeQueues()

	// EnqError pushes an error notification onto the partition's
	// consumer-facing notification queue (§4.2 C3a, §4.3 step 4/5).
	EnqError(code kerr.Code)

	// Errors returns and clears the notifications queued by EnqError,
	// for tests and for consumer-facing delegation machinery.
	Errors() []kerr.Code

	// Desired and Unknown report the two flags §6 calls out
	// (RD_KAFKA_TOPPAR_F_DESIRED / F_UNKNOWN in the original).
	Desired() bool
	Unknown() bool
	SetDesired(v bool)
	SetUnknown(v bool)

	// ScanTimeouts removes and returns every message whose Timeout
	// has elapsed as of now (§4.7).
	ScanTimeouts(now time.Time) []Message

	// Len reports the number of messages currently queued, for
	// logging and metrics.
	Len() int
}

// memPartition is the in-memory reference Toppar used by tests and by
// runnable examples. It is intentionally simple: one mutex, one slice
// queue, no batching or in-flight/xmit queue split — the scanner still
// treats it as a single queue to scan, which is a strict subset of the
// original's two-queue scan (§4.7) and therefore still satisfies it.
type memPartition struct {
	id int32

	mu      sync.Mutex
	leader  Broker
	queue   []Message
	errs    []kerr.Code
	desired bool
	unknown bool
}

// NewPartition constructs a fresh Partition handle for id (§6,
// "new_partition").
func NewPartition(id int32) Partition {
	return &memPartition{id: id}
}

func (p *memPartition) ID() int32 { return p.id }

func (p *memPartition) DelegateToBroker(b Broker) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.leader = b
}

func (p *memPartition) Leader() (Broker, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.leader, p.leader != nil
}

func (p *memPartition) Enqueue(m Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, m)
}

func (p *memPartition) MoveMsgsTo(dest Partition) int {
	p.mu.Lock()
	moved := p.queue
	p.queue = nil
	p.mu.Unlock()

	if len(moved) == 0 {
		return 0
	}
	if d, ok := dest.(*memPartition); ok {
		d.mu.Lock()
		d.queue = append(d.queue, moved...)
		d.mu.Unlock()
		return len(moved)
	}
	for _, m := range moved {
		dest.Enqueue(m)
	}
	return len(moved)
}

func (p *memPartition) Drain() []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.queue
	p.queue = nil
	return out
}

func (p *memPartition) PurgeQueues() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = nil
}

func (p *memPartition) EnqError(code kerr.Code) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs = append(p.errs, code)
}

func (p *memPartition) Errors() []kerr.Code {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.errs
	p.errs = nil
	return out
}

func (p *memPartition) Desired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.desired
}

func (p *memPartition) Unknown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.unknown
}

func (p *memPartition) SetDesired(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.desired = v
}

func (p *memPartition) SetUnknown(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unknown = v
}

func (p *memPartition) ScanTimeouts(now time.Time) []Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.queue) == 0 {
		return nil
	}
	kept := p.queue[:0:0]
	var timedout []Message
	for _, m := range p.queue {
		if m.Expired(now) {
			timedout = append(timedout, m)
		} else {
			kept = append(kept, m)
		}
	}
	p.queue = kept
	return timedout
}

func (p *memPartition) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}
