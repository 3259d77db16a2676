package kgo

import "github.com/lishaohua403/ktopics/pkg/kgo/kerr"

// setState transitions the topic to state, logging old->new the way
// the original's rd_kafka_topic_set_state does, and is a no-op if
// state is unchanged (§4.2). Callers must hold t.mu for writing.
func (t *Topic) setState(state State) {
	if t.state == state {
		return
	}
	old := t.state
	t.state = state
	level := LogLevelInfo
	if t.cl != nil && t.cl.terminating.Load() {
		level = LogLevelDebug
	}
	if t.cl != nil {
		t.cl.log(level, "topic state changed", "topic", t.name, "from", old.String(), "to", state.String())
	}
}

// propagateNotExists runs C3a: for every desired partition, enqueue an
// UnknownTopic error. It only runs for consumer-role clients;
// producer-role clients rely on the UA flusher instead (§4.2, §8 P5).
// Callers must hold t.mu for writing and must have already transitioned
// the topic to StateNotExists.
func (t *Topic) propagateNotExists() {
	if t.cl == nil || t.cl.cfg.role != RoleConsumer {
		return
	}
	if t.cl.terminating.Load() {
		// §5: suppress error enqueues to desired partitions during
		// teardown so as not to wake consumers mid-shutdown.
		return
	}
	for _, p := range t.desired {
		p.EnqError(kerr.UnknownTopic)
	}
}
