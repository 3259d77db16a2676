package kgo

import "github.com/lishaohua403/ktopics/pkg/kgo/kerr"

// flushUA is the UA flusher (C6, §4.5): re-partitions messages held on
// the UA staging slot after a topology change. It runs only on
// producer-role clients and only when called by the metadata-apply
// orchestration after a partition-count change or a transition into
// NotExists (§4.6 step 7). The caller must hold t.mu for writing.
func (t *Topic) flushUA() {
	if t.cl == nil || t.cl.cfg.role != RoleProducer || t.ua == nil {
		return
	}

	msgs := t.ua.Drain()
	if len(msgs) == 0 {
		return
	}

	partCnt := int32(len(t.partitions))
	var failed []Message

	for _, m := range msgs {
		if m.Partition != PartitionUA {
			// Fast path for a forced target partition (§4.5 step 2,
			// first bullet): out of range and the topic state is not
			// Unknown means it can never land.
			if m.Partition >= partCnt && t.state != StateUnknown {
				failed = append(failed, m)
				continue
			}
			if m.Partition < partCnt {
				t.partitions[m.Partition].Enqueue(m)
				continue
			}
		}

		pid, ok := t.conf.Partitioner.Partition(m, partCnt)
		if !ok || pid < 0 || pid >= partCnt {
			failed = append(failed, m)
			continue
		}
		t.partitions[pid].Enqueue(m)
	}

	if len(failed) == 0 {
		return
	}

	code := kerr.UnknownPartition
	if t.state == StateNotExists {
		code = kerr.UnknownTopic
	}
	if t.cl != nil {
		t.cl.cfg.delivery.Deliver(t.name, failed, code)
	}
}
