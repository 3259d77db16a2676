package kgo

import "github.com/lishaohua403/ktopics/pkg/kgo/kerr"

// updatePartitionCount is the partition-count reconciler (C4, §4.3):
// diff desired vs. reported partition count, migrating partitions
// on/off the desired list and redirecting messages. The caller must
// already hold t.mu for writing.
func (t *Topic) updatePartitionCount(n int32) (changed bool) {
	current := int32(len(t.partitions))
	if current == n {
		return false // fast path, §4.3
	}

	// §D.2: downgrade to debug on first population of a brand new
	// topic, or while terminating, matching the original's NOTICE vs
	// DEBUG split (rdkafka_topic.c:374-387).
	level := LogLevelInfo
	if current == 0 || (t.cl != nil && t.cl.terminating.Load()) {
		level = LogLevelDebug
	}
	if t.cl != nil {
		t.cl.log(level, "topic partition count changed", "topic", t.name, "from", current, "to", n)
	}

	next := make([]Partition, n)

	// Step 2: slots [0, min) are moved in place so racing readers
	// under the topic read lock always see a consistent handle.
	min := current
	if n < min {
		min = n
	}
	for i := int32(0); i < min; i++ {
		next[i] = t.partitions[i]
	}

	// Step 3: new slots are populated from desired before any old
	// slot is torn down, so a partition returning from desired is
	// never simultaneously in two containers (§4.3 rationale).
	for i := current; i < n; i++ {
		if p, ok := t.desired[i]; ok {
			p.SetUnknown(false)
			delete(t.desired, i)
			next[i] = p
		} else {
			next[i] = t.newPartition(i)
		}
	}

	// Step 4: every partition still in desired gets an
	// UnknownPartition notification, whether or not its id lies
	// beyond the new count (§4.3 step 4).
	for _, p := range t.desired {
		p.EnqError(kerr.UnknownPartition)
	}

	// Step 5: partitions being removed.
	for i := n; i < current; i++ {
		p := t.partitions[i]

		p.DelegateToBroker(nil)

		if t.ua != nil {
			p.MoveMsgsTo(t.ua)
		} else if t.cl != nil {
			if drained := p.Drain(); len(drained) > 0 {
				t.cl.cfg.delivery.Deliver(t.name, drained, kerr.UnknownPartition)
			}
		}
		p.PurgeQueues()

		if p.Desired() {
			p.SetUnknown(true)
			t.desired[i] = p
			if !(t.cl != nil && t.cl.terminating.Load()) {
				p.EnqError(kerr.UnknownPartition)
			}
		}
	}

	t.partitions = next
	return true
}

// newPartition constructs partition id via the client's partition
// factory collaborator (§6 "new_partition"), defaulting to the
// in-memory reference Partition.
func (t *Topic) newPartition(id int32) Partition {
	if t.cl != nil && t.cl.cfg.newPartition != nil {
		return t.cl.cfg.newPartition(id)
	}
	return NewPartition(id)
}
