package kgo

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/lishaohua403/ktopics/pkg/kgo/kerr"
)

// maxTopicNameLen is the bound from §3: "bounded UTF-8 byte string,
// <=512 bytes", chosen in the original so that topic name plus headers
// never exceeds the minimum-capped message.max.bytes.
const maxTopicNameLen = 512

// State is the topic state machine of §4.2: Unknown, Exists,
// NotExists.
type State uint8

const (
	StateUnknown State = iota
	StateExists
	StateNotExists
)

func (s State) String() string {
	switch s {
	case StateExists:
		return "exists"
	case StateNotExists:
		return "notexists"
	default:
		return "unknown"
	}
}

// Topic is the per-topic entity of §3 (C2): name, state, partition
// array, UA staging slot, desired set, metadata timestamp, and
// configuration, all guarded by a single reader/writer lock that sits
// below the client lock and above any partition lock (§5).
type Topic struct {
	cl   *Client
	name string
	conf TopicConfig

	mu         sync.RWMutex
	state      State
	partitions []Partition
	ua         Partition
	desired    map[int32]Partition
	tsMetadata int64 // UnixNano; 0 means never

	refcount int64 // atomic
}

func (t *Topic) keep() *Topic {
	atomic.AddInt64(&t.refcount, 1)
	return t
}

func (t *Topic) refs() int64 { return atomic.LoadInt64(&t.refcount) }

// Name returns the topic's name (§4.8).
func (t *Topic) Name() string { return t.name }

// Opaque returns the application's opaque pointer from config (§4.8).
func (t *Topic) Opaque() any { return t.conf.Opaque }

// State returns the topic's current state under a read lock.
func (t *Topic) State() State {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state
}

// PartitionCount returns the number of known partitions.
func (t *Topic) PartitionCount() int32 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return int32(len(t.partitions))
}

func validateTopicName(name string) error {
	if len(name) == 0 || len(name) > maxTopicNameLen {
		return kerr.InvalidArgument
	}
	return nil
}

// FindTopic looks up a topic by name, incrementing its refcount on a
// hit (§4.1 "find"). The registry is a map keyed by name, so the
// lookup is a single map access.
func (c *Client) FindTopic(name string) (*Topic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.topics[name]
	if !ok {
		return nil, false
	}
	return t.keep(), true
}

// FindOrCreateTopic returns the named topic, creating it with conf if
// absent (§4.1 "find_or_create"). existing reports whether the topic
// was already present. A nil conf gets DefaultTopicConfig.
func (c *Client) FindOrCreateTopic(name string, conf *TopicConfig) (topic *Topic, existing bool, err error) {
	if err := validateTopicName(name); err != nil {
		return nil, false, err
	}

	c.mu.Lock()
	if t, ok := c.topics[name]; ok {
		c.mu.Unlock()
		return t.keep(), true, nil
	}

	cfg := DefaultTopicConfig()
	if conf != nil {
		cfg = conf.withDefaults()
	}

	t := &Topic{
		cl:      c,
		name:    name,
		conf:    cfg,
		desired: make(map[int32]Partition),
		ua:      NewPartition(PartitionUA),
	}
	t.keep()
	c.topics[name] = t
	c.mu.Unlock()

	c.log(LogLevelDebug, "new local topic", "topic", name)

	// Side effect of first creation: schedule an async leader query,
	// never while holding a lock (§4.1).
	c.triggerLeaderQuery(name)

	return t, false, nil
}

// Release decrements topic's refcount; at zero it tears the topic
// down and removes it from the registry (§4.1 "release", §3 invariant
// 1, and the supplemented teardown behavior of SPEC_FULL §D.1 grounded
// in rd_kafka_topic_partitions_remove).
func (c *Client) Release(t *Topic) {
	if atomic.AddInt64(&t.refcount, -1) > 0 {
		return
	}

	c.mu.Lock()
	delete(c.topics, t.name)
	c.mu.Unlock()

	t.teardown()
}

// teardown drains every partition (including UA) and purges the
// result, mirroring rd_kafka_topic_partitions_remove: messages are not
// guaranteed delivery during teardown, only accounted for.
func (t *Topic) teardown() {
	t.mu.Lock()
	var drained []Message
	for _, p := range t.partitions {
		drained = append(drained, p.Drain()...)
		p.PurgeQueues()
	}
	for _, p := range t.desired {
		drained = append(drained, p.Drain()...)
	}
	drained = append(drained, t.ua.Drain()...)
	t.partitions = nil
	t.desired = nil
	name := t.name
	cl := t.cl
	t.mu.Unlock()

	if len(drained) > 0 && cl != nil && !cl.terminating.Load() {
		cl.cfg.delivery.Deliver(name, drained, kerr.UnknownTopic)
	}
}

func (t *Topic) setTSMetadata(now time.Time) {
	atomic.StoreInt64(&t.tsMetadata, now.UnixNano())
}

func (t *Topic) tsMetadataTime() time.Time {
	ns := atomic.LoadInt64(&t.tsMetadata)
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns)
}
