package kgo

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/lishaohua403/ktopics/pkg/kgo/kerr"
)

func TestValidateTopicName(t *testing.T) {
	if err := validateTopicName(""); err != kerr.InvalidArgument {
		t.Errorf("empty name: got %v, want InvalidArgument", err)
	}
	if err := validateTopicName(strings.Repeat("a", maxTopicNameLen+1)); err != kerr.InvalidArgument {
		t.Errorf("overlong name: got %v, want InvalidArgument", err)
	}
	if err := validateTopicName("orders"); err != nil {
		t.Errorf("valid name: got %v, want nil", err)
	}
}

func TestFindOrCreateTopicCreatesOnce(t *testing.T) {
	c := NewClient()
	defer c.Close()

	t1, existing, err := c.FindOrCreateTopic("orders", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if existing {
		t.Fatal("first call reported existing=true")
	}

	t2, existing, err := c.FindOrCreateTopic("orders", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !existing {
		t.Fatal("second call reported existing=false")
	}
	if t1 != t2 {
		t.Fatal("second call returned a different *Topic")
	}
	if t1.refs() != 2 {
		t.Fatalf("refcount = %d, want 2", t1.refs())
	}

	c.Release(t1)
	c.Release(t2)
	if _, ok := c.FindTopic("orders"); ok {
		t.Fatal("topic still tracked after refcount reached zero")
	}
}

func TestFindOrCreateTopicRejectsBadName(t *testing.T) {
	c := NewClient()
	defer c.Close()
	if _, _, err := c.FindOrCreateTopic("", nil); err == nil {
		t.Fatal("expected error for empty topic name")
	}
}

func TestReleaseTeardownDeliversDrainedMessages(t *testing.T) {
	var delivered []Message
	var deliveredCode kerr.Code
	c := NewClient(WithDeliveryReport(DeliveryReportFunc(func(_ string, msgs []Message, code kerr.Code) {
		delivered = append(delivered, msgs...)
		deliveredCode = code
	})))
	defer c.Close()

	tp, _, err := c.FindOrCreateTopic("orders", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tp.mu.Lock()
	tp.updatePartitionCount(2)
	tp.partitions[0].Enqueue(Message{Partition: 0, Key: []byte("k")})
	tp.mu.Unlock()

	c.Release(tp)

	want := []Message{{Partition: 0, Key: []byte("k")}}
	if diff := cmp.Diff(want, delivered); diff != "" {
		t.Errorf("drained messages mismatch (-want +got):\n%s", diff)
	}
	if deliveredCode != kerr.UnknownTopic {
		t.Fatalf("delivered code = %v, want UnknownTopic", deliveredCode)
	}
}

func TestTopicNameAndOpaque(t *testing.T) {
	c := NewClient()
	defer c.Close()
	opaque := struct{ n int }{n: 7}
	tp, _, err := c.FindOrCreateTopic("orders", &TopicConfig{Opaque: opaque})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer c.Release(tp)
	if tp.Name() != "orders" {
		t.Errorf("Name() = %q, want orders", tp.Name())
	}
	if tp.Opaque() != opaque {
		t.Errorf("Opaque() = %v, want %v", tp.Opaque(), opaque)
	}
}
