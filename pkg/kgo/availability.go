package kgo

// PartitionAvailable is the availability probe (C8, §4.8:
// "partition_available"): true only if the partition exists and is
// currently delegated to a usable broker. It must never fall back to
// the UA slot and must never create anything — a pure read.
func (t *Topic) PartitionAvailable(id int32) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if id < 0 || id >= int32(len(t.partitions)) {
		return false
	}
	p := t.partitions[id]
	if p == nil {
		return false
	}
	b, ok := p.Leader()
	return ok && b.Usable()
}

// PartitionAvailable is the client-level convenience form (§4.8),
// looking the topic up by name first. Returns false for an untracked
// topic without creating one.
func (c *Client) PartitionAvailable(topic string, id int32) bool {
	t, ok := c.FindTopic(topic)
	if !ok {
		return false
	}
	defer c.Release(t)
	return t.PartitionAvailable(id)
}
