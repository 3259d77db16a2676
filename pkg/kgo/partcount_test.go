package kgo

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestTopic(c *Client, name string) *Topic {
	t := &Topic{
		cl:      c,
		name:    name,
		conf:    DefaultTopicConfig(),
		desired: make(map[int32]Partition),
		ua:      NewPartition(PartitionUA),
	}
	return t
}

// partitionIDs extracts the ID() of every partition in order, for
// structural comparison against the expected layout.
func partitionIDs(ps []Partition) []int32 {
	ids := make([]int32, len(ps))
	for i, p := range ps {
		ids[i] = p.ID()
	}
	return ids
}

// desiredIDs extracts the sorted key set of a desired map.
func desiredIDs(d map[int32]Partition) []int32 {
	ids := make([]int32, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func TestUpdatePartitionCountGrows(t *testing.T) {
	c := NewClient()
	defer c.Close()
	tp := newTestTopic(c, "orders")

	if changed := tp.updatePartitionCount(3); !changed {
		t.Fatal("expected a change growing from 0 to 3")
	}
	if diff := cmp.Diff([]int32{0, 1, 2}, partitionIDs(tp.partitions)); diff != "" {
		t.Errorf("partition layout mismatch (-want +got):\n%s", diff)
	}

	if changed := tp.updatePartitionCount(3); changed {
		t.Fatal("re-applying the same count should be a no-op (fast path)")
	}
}

func TestUpdatePartitionCountShrinkMovesToUA(t *testing.T) {
	c := NewClient()
	defer c.Close()
	tp := newTestTopic(c, "orders")
	tp.updatePartitionCount(3)

	tp.partitions[2].Enqueue(Message{Partition: 2})
	tp.updatePartitionCount(2)

	if diff := cmp.Diff([]int32{0, 1}, partitionIDs(tp.partitions)); diff != "" {
		t.Errorf("partition layout mismatch (-want +got):\n%s", diff)
	}
	ua := tp.ua.Drain()
	if len(ua) != 1 {
		t.Fatalf("UA queue has %d messages, want 1 (moved from removed partition)", len(ua))
	}
}

func TestUpdatePartitionCountReattachesDesired(t *testing.T) {
	c := NewClient()
	defer c.Close()
	tp := newTestTopic(c, "orders")
	tp.updatePartitionCount(2)

	// Shrink to 0: partition 1 is marked desired so it should survive
	// in t.desired and be re-attached when the count grows back.
	tp.partitions[1].SetDesired(true)
	tp.updatePartitionCount(0)

	if diff := cmp.Diff([]int32{1}, desiredIDs(tp.desired)); diff != "" {
		t.Errorf("desired set mismatch after shrink (-want +got):\n%s", diff)
	}
	if !tp.desired[1].Unknown() {
		t.Fatal("desired partition should be marked Unknown after shrink")
	}

	tp.updatePartitionCount(2)
	if diff := cmp.Diff([]int32{}, desiredIDs(tp.desired)); diff != "" {
		t.Errorf("desired set should be empty once reattached (-want +got):\n%s", diff)
	}
	if tp.partitions[1].Unknown() {
		t.Fatal("reattached partition should have Unknown cleared")
	}
}

func TestUpdatePartitionCountNotifiesUnreattachedDesired(t *testing.T) {
	c := NewClient()
	defer c.Close()
	tp := newTestTopic(c, "orders")
	tp.updatePartitionCount(3)
	tp.partitions[2].SetDesired(true)
	tp.updatePartitionCount(1) // partition 2 falls outside [0,1)

	if diff := cmp.Diff([]int32{2}, desiredIDs(tp.desired)); diff != "" {
		t.Errorf("desired set mismatch (-want +got):\n%s", diff)
	}
	errs := tp.desired[2].Errors()
	if len(errs) == 0 {
		t.Fatal("expected an UnknownPartition notification queued on the desired partition")
	}
}
