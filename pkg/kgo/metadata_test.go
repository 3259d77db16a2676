package kgo

import (
	"context"
	"testing"

	"github.com/twmb/franz-go/pkg/kmsg"
)

func strPtr(s string) *string { return &s }

func TestApplyMetadataCreatesStateAndPartitions(t *testing.T) {
	brokers := NewMemoryBrokers()
	brokers.Set(1, true)
	brokers.Set(2, true)
	c := NewClient(WithBrokerFinder(brokers))
	defer c.Close()

	tp, _, err := c.FindOrCreateTopic("orders", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Release(tp)

	changes := c.ApplyMetadata(context.Background(), kmsg.MetadataResponseTopic{
		Topic: strPtr("orders"),
		Partitions: []kmsg.MetadataResponseTopicPartition{
			{Partition: 0, Leader: 1},
			{Partition: 1, Leader: 2},
		},
	})
	if changes == 0 {
		t.Fatal("expected at least one change applying fresh metadata")
	}
	if tp.State() != StateExists {
		t.Fatalf("state = %v, want Exists", tp.State())
	}
	if tp.PartitionCount() != 2 {
		t.Fatalf("partition count = %d, want 2", tp.PartitionCount())
	}
}

func TestApplyMetadataUnknownTopicOrPartMarksNotExists(t *testing.T) {
	c := NewClient()
	defer c.Close()
	tp, _, _ := c.FindOrCreateTopic("orders", nil)
	defer c.Release(tp)
	tp.mu.Lock()
	tp.updatePartitionCount(1)
	tp.mu.Unlock()

	c.ApplyMetadata(context.Background(), kmsg.MetadataResponseTopic{
		Topic:     strPtr("orders"),
		ErrorCode: 3, // UNKNOWN_TOPIC_OR_PARTITION
	})

	if tp.State() != StateNotExists {
		t.Fatalf("state = %v, want NotExists", tp.State())
	}
}

func TestApplyMetadataTransientLeaderNotAvailableIgnored(t *testing.T) {
	c := NewClient()
	defer c.Close()
	tp, _, _ := c.FindOrCreateTopic("orders", nil)
	defer c.Release(tp)

	before := tp.State()
	changes := c.ApplyMetadata(context.Background(), kmsg.MetadataResponseTopic{
		Topic:     strPtr("orders"),
		ErrorCode: 5, // LEADER_NOT_AVAILABLE, zero partitions: transient
	})
	if changes != 0 {
		t.Fatalf("transient error should report zero changes, got %d", changes)
	}
	if tp.State() != before {
		t.Fatalf("transient error should not change state: got %v, want %v", tp.State(), before)
	}
}

func TestApplyMetadataIgnoresBlacklistedTopic(t *testing.T) {
	c := NewClient(WithTopicFilter(TopicFilterFunc(func(name string) bool { return name == "orders" })))
	defer c.Close()
	tp, _, _ := c.FindOrCreateTopic("orders", nil)
	defer c.Release(tp)

	changes := c.ApplyMetadata(context.Background(), kmsg.MetadataResponseTopic{
		Topic:      strPtr("orders"),
		Partitions: []kmsg.MetadataResponseTopicPartition{{Partition: 0, Leader: 1}},
	})
	if changes != 0 {
		t.Fatalf("blacklisted topic should report zero changes, got %d", changes)
	}
	if tp.PartitionCount() != 0 {
		t.Fatal("blacklisted topic's metadata must not be applied")
	}
}

func TestApplyMetadataIgnoresUntrackedTopic(t *testing.T) {
	c := NewClient()
	defer c.Close()
	changes := c.ApplyMetadata(context.Background(), kmsg.MetadataResponseTopic{
		Topic:      strPtr("never-requested"),
		Partitions: []kmsg.MetadataResponseTopicPartition{{Partition: 0, Leader: 1}},
	})
	if changes != 0 {
		t.Fatalf("untracked topic should report zero changes, got %d", changes)
	}
}
