package kgo

import "sync"

// Broker is a handle to a broker-client collaborator, resolved by
// numeric node id. The core treats brokers as opaque, refcounted
// handles; connection handling and request/response machinery live
// entirely outside this package (§1, §6).
type Broker interface {
	// NodeID is the broker's numeric identity, used in log lines. The
	// leader updater (§4.4) compares handles by identity, not by NodeID.
	NodeID() int32

	// Usable reports whether the broker is in a state fit to be
	// delegated partitions (the "proper broker" flag of §4.8).
	Usable() bool
}

// BrokerFinder is the external broker-client collaborator consumed by
// the leader updater and the availability probe (§6).
type BrokerFinder interface {
	// FindBrokerByNodeID resolves a broker handle, incrementing its
	// refcount on success. Callable under the client read lock.
	FindBrokerByNodeID(id int32) (Broker, bool)

	// ReleaseBroker decrements the refcount taken by FindBrokerByNodeID.
	ReleaseBroker(Broker)
}

// simpleBroker is a minimal Broker used by the in-memory reference
// BrokerFinder below and by tests.
type simpleBroker struct {
	id     int32
	usable bool
}

func (b *simpleBroker) NodeID() int32 { return b.id }
func (b *simpleBroker) Usable() bool  { return b.usable }

// NewBroker constructs a Broker handle for use with MemoryBrokers. It
// has no connection of its own; "usable" is whatever the caller says
// it is, which is all the core ever inspects.
func NewBroker(id int32, usable bool) Broker {
	return &simpleBroker{id: id, usable: usable}
}

// MemoryBrokers is a trivial in-memory BrokerFinder: a node-id→handle
// directory with no network behavior, refcounting, or eviction. It
// exists so the core can be exercised end-to-end in tests and
// runnable examples without a real broker-client collaborator.
type MemoryBrokers struct {
	mu sync.RWMutex
	bs map[int32]Broker
}

func NewMemoryBrokers() *MemoryBrokers {
	return &MemoryBrokers{bs: make(map[int32]Broker)}
}

// Set installs or replaces the broker registered under id.
func (m *MemoryBrokers) Set(id int32, usable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bs[id] = NewBroker(id, usable)
}

// SetUsable flips the usability of an already-registered broker.
func (m *MemoryBrokers) SetUsable(id int32, usable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.bs[id].(*simpleBroker); ok {
		b.usable = usable
	}
}

func (m *MemoryBrokers) FindBrokerByNodeID(id int32) (Broker, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bs[id]
	return b, ok
}

func (m *MemoryBrokers) ReleaseBroker(Broker) {
	// No refcounting in the in-memory reference collaborator: brokers
	// live for the lifetime of the registry.
}
