package kgo

import (
	"context"
	"time"

	"github.com/hashicorp/go-uuid"
	"github.com/twmb/franz-go/pkg/kmsg"

	"github.com/lishaohua403/ktopics/pkg/kgo/kerr"
)

// codeFromKafka translates a raw Kafka protocol error code (as carried
// by kmsg.MetadataResponseTopic/Partition) into the core's own closed
// error-kind taxonomy (§7). The numeric codes this core distinguishes
// are stable across the Kafka and librdkafka projects, so the mapping
// is a direct table rather than an import of the wire decoder itself
// (which stays out of scope, §1).
func codeFromKafka(code int16) kerr.Code {
	switch code {
	case 0:
		return kerr.NoError
	case 3:
		return kerr.UnknownTopicOrPart
	case 5:
		return kerr.LeaderNotAvailable
	case -1:
		return kerr.Unknown
	default:
		return kerr.OtherError
	}
}

// ApplyMetadata is the entry point of §4.6: given an arriving metadata
// record for one topic, it orchestrates the state machine (C3), the
// partition-count reconciler (C4), the leader updater (C5), and the UA
// flusher (C6). It returns the number of changes applied, and does
// nothing if the topic is not locally tracked or is blacklisted.
func (c *Client) ApplyMetadata(_ context.Context, topicMeta kmsg.MetadataResponseTopic) int {
	name := topicMeta.Topic
	if name == nil {
		return 0
	}
	topicName := *name

	if c.cfg.metrics != nil {
		c.cfg.metrics.MetadataApplies.Inc()
	}

	corrID, _ := uuid.GenerateUUID()

	if c.cfg.filter.Blacklisted(topicName) {
		c.log(LogLevelDebug, "ignoring blacklisted topic in metadata", "topic", topicName, "corr_id", corrID)
		return 0
	}

	topErr := codeFromKafka(topicMeta.ErrorCode)

	// §4.6: LEADER_NOT_AVAILABLE with zero partitions is transient;
	// ignore without any state change.
	if topErr == kerr.LeaderNotAvailable && len(topicMeta.Partitions) == 0 {
		c.log(LogLevelDebug, "temporary error in metadata reply", "topic", topicName, "err", topErr, "corr_id", corrID)
		return 0
	}

	t, ok := c.FindTopic(topicName)
	if !ok {
		return 0 // topic not tracked locally; nothing to apply
	}
	defer c.Release(t)

	if topErr != kerr.NoError {
		c.log(LogLevelDebug, "error in metadata reply", "topic", topicName, "err", topErr, "corr_id", corrID)
	}

	// §4.4 ordering rule: resolve every partition's broker handle
	// under the client read lock before acquiring the topic write
	// lock.
	leaderNodeIDs := make(map[int32]int32, len(topicMeta.Partitions))
	for _, part := range topicMeta.Partitions {
		leaderNodeIDs[part.Partition] = part.Leader
	}
	resolved, releaseBrokers := c.resolveLeaders(leaderNodeIDs)
	defer releaseBrokers()

	changes := 0
	var queryLeader bool

	t.mu.Lock()
	oldState := t.state
	t.setTSMetadata(time.Now())

	switch {
	case topErr.IsNotExists():
		t.setState(StateNotExists)
	case len(topicMeta.Partitions) > 0:
		t.setState(StateExists)
	}

	partCntChanged := topErr == kerr.NoError && t.updatePartitionCount(int32(len(topicMeta.Partitions)))
	if partCntChanged {
		changes++
	}

	for _, part := range topicMeta.Partitions {
		r := resolved[part.Partition]
		switch t.updateLeader(part.Partition, r.broker) {
		case LeaderUnknown:
			queryLeader = true
			if c.cfg.metrics != nil {
				c.cfg.metrics.LeaderUnknownTotal.Inc()
			}
		case LeaderChanged:
			changes++
		}
	}

	// §4.6 step 6: a topic-wide (possibly intermittent) error clears
	// every partition's delegation.
	if topErr != kerr.NoError {
		for _, p := range t.partitions {
			p.DelegateToBroker(nil)
		}
	}

	if partCntChanged || t.state == StateNotExists {
		t.flushUA()
	}

	if oldState != StateNotExists && t.state == StateNotExists {
		t.propagateNotExists()
	}
	t.mu.Unlock()

	if queryLeader {
		c.triggerLeaderQuery(topicName)
	}

	c.log(LogLevelDebug, "applied metadata", "topic", topicName, "changes", changes, "corr_id", corrID)

	return changes
}

// metadataNone handles the case where a cluster-wide metadata refresh
// contained no information about this topic at all (the original's
// rd_kafka_topic_metadata_none): treated the same as an authoritative
// UnknownTopicOrPart, since the cluster had the opportunity to mention
// the topic and did not.
func (c *Client) metadataNone(topicName string) {
	t, ok := c.FindTopic(topicName)
	if !ok {
		return
	}
	defer c.Release(t)

	t.mu.Lock()
	if c.terminating.Load() {
		t.mu.Unlock()
		return
	}

	t.setTSMetadata(time.Now())
	oldState := t.state
	t.setState(StateNotExists)
	t.updatePartitionCount(0)
	t.flushUA()
	if oldState != StateNotExists {
		t.propagateNotExists()
	}
	t.mu.Unlock()
}
