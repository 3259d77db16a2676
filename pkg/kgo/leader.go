package kgo

// LeaderResult is the three-way outcome of the leader updater (C5,
// §4.4).
type LeaderResult int8

const (
	// LeaderNoChange means the delegated broker was already correct.
	LeaderNoChange LeaderResult = iota
	// LeaderChanged means the partition was (re)delegated to a broker.
	LeaderChanged
	// LeaderUnknown means the partition has no known leader, either
	// because the partition id itself is not recognized or because
	// the metadata reply carried no leader for a partition that had
	// one. A partition with no leader before or after is NoChange.
	LeaderUnknown
)

// updateLeader resolves the leader for partition id to broker (nil
// meaning "leader unknown") and re-delegates as needed (§4.4). The
// caller must hold t.mu for writing.
func (t *Topic) updateLeader(id int32, broker Broker) LeaderResult {
	p := t.partitionByID(id)
	if p == nil {
		if t.cl != nil {
			t.cl.log(LogLevelWarn, "partition is unknown", "topic", t.name, "partition", id, "partition_cnt", len(t.partitions))
		}
		return LeaderUnknown
	}

	if broker == nil {
		_, hadLeader := p.Leader()
		p.DelegateToBroker(nil)
		if hadLeader {
			return LeaderUnknown
		}
		return LeaderNoChange
	}

	if cur, ok := p.Leader(); ok {
		if cur == broker {
			return LeaderNoChange
		}
		if t.cl != nil {
			t.cl.log(LogLevelDebug, "partition migrated leader", "topic", t.name, "partition", id,
				"from", cur.NodeID(), "to", broker.NodeID())
		}
	}

	p.DelegateToBroker(broker)
	return LeaderChanged
}

// partitionByID returns the partition handle for id, or nil if id is
// out of the current [0, partition_cnt) range. The caller must hold
// t.mu (read or write).
func (t *Topic) partitionByID(id int32) Partition {
	if id < 0 || id >= int32(len(t.partitions)) {
		return nil
	}
	return t.partitions[id]
}

// resolvedLeader pairs a partition id with its pre-resolved broker
// handle (or nil if the metadata reply carried no leader for it).
type resolvedLeader struct {
	partition int32
	broker    Broker
}

// resolveLeaders resolves every partition leader's broker handle under
// the client read lock, before any topic lock is taken, preserving the
// client-before-topic lock order (§4.4 "Broker-lookup ordering rule").
// The returned release func must be called after the per-partition
// updates have been applied, dropping the refcount taken here.
func (c *Client) resolveLeaders(leaderNodeIDs map[int32]int32) (map[int32]resolvedLeader, func()) {
	resolved := make(map[int32]resolvedLeader, len(leaderNodeIDs))

	c.mu.RLock()
	for partition, nodeID := range leaderNodeIDs {
		if nodeID < 0 {
			resolved[partition] = resolvedLeader{partition: partition}
			continue
		}
		b, ok := c.cfg.brokers.FindBrokerByNodeID(nodeID)
		if !ok {
			resolved[partition] = resolvedLeader{partition: partition}
			continue
		}
		resolved[partition] = resolvedLeader{partition: partition, broker: b}
	}
	c.mu.RUnlock()

	release := func() {
		for _, r := range resolved {
			if r.broker != nil {
				c.releaseBroker(r.broker)
			}
		}
	}
	return resolved, release
}
