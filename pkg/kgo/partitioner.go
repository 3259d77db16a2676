package kgo

import (
	"hash/crc32"
	"sync/atomic"
)

// Partitioner routes a message onto one of a topic's partitions (§6,
// consumed). Partitioner implementations are themselves out of scope
// per §1 — applications are expected to supply their own the way they
// supply a broker-client collaborator — but the core still ships a
// usable default, the same way the original client defaults to
// consistent_random (original_source/src/rdkafka_topic.c:199-201).
type Partitioner interface {
	// Partition returns the partition index to route m to, given
	// partitionCount currently-known partitions. It returns false if
	// no partition could be chosen.
	Partition(m Message, partitionCount int32) (int32, bool)
}

// PartitionerFunc adapts a function to a Partitioner.
type PartitionerFunc func(m Message, partitionCount int32) (int32, bool)

func (f PartitionerFunc) Partition(m Message, partitionCount int32) (int32, bool) {
	return f(m, partitionCount)
}

// consistentRandomPartitioner hashes keyed messages with CRC32 (the
// same checksum family the wire message format itself uses — see
// Stars1233-sarama's emptyMessage fixtures) and otherwise round-robins
// via an atomic counter. Keyed messages map consistently, as in
// rd_kafka_msg_partitioner_consistent_random; unkeyed messages are
// spread in turn by the counter, not chosen at random.
type consistentRandomPartitioner struct {
	rr uint64
}

// NewConsistentRandomPartitioner returns the core's default
// partitioner.
func NewConsistentRandomPartitioner() Partitioner {
	return &consistentRandomPartitioner{}
}

func (p *consistentRandomPartitioner) Partition(m Message, partitionCount int32) (int32, bool) {
	if partitionCount <= 0 {
		return 0, false
	}
	if len(m.Key) > 0 {
		sum := crc32.ChecksumIEEE(m.Key)
		return int32(sum % uint32(partitionCount)), true
	}
	n := atomic.AddUint64(&p.rr, 1)
	return int32(n % uint64(partitionCount)), true
}

// roundRobinPartitioner ignores keys entirely and cycles through
// partitions in order; useful for tests wanting deterministic
// placement.
type roundRobinPartitioner struct {
	next uint64
}

func NewRoundRobinPartitioner() Partitioner {
	return &roundRobinPartitioner{}
}

func (p *roundRobinPartitioner) Partition(_ Message, partitionCount int32) (int32, bool) {
	if partitionCount <= 0 {
		return 0, false
	}
	n := atomic.AddUint64(&p.next, 1) - 1
	return int32(n % uint64(partitionCount)), true
}
