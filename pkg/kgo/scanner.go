package kgo

import (
	"context"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/lishaohua403/ktopics/pkg/kgo/kerr"
)

// ScanConfig controls the periodic scanner (C7, §4.7): how often it
// runs and the staleness multiple applied to a topic's metadata age.
type ScanConfig struct {
	// Interval is how often ScanAll runs when driven by RunScanner.
	Interval time.Duration

	// StaleAfter multiplies metadataMaxAge (the refresh_interval
	// config) to decide when a topic's last metadata timestamp is
	// stale enough to force the state back to Unknown (§4.7: "if
	// now - ts_metadata > 3 * refresh_interval").
	StaleAfter int
}

// DefaultScanConfig matches the original's hardcoded multiple of 3.
func DefaultScanConfig() ScanConfig {
	return ScanConfig{Interval: time.Second, StaleAfter: 3}
}

// RunScanner runs ScanAll on a ticker until ctx is done. Callers that
// want scanning at all must start this themselves; the Client does not
// start it implicitly, matching the original's separate scan thread
// (§4.7: "runs on a dedicated timer, decoupled from the metadata-apply
// call path").
func (c *Client) RunScanner(ctx context.Context, cfg ScanConfig) {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 3
	}
	t := time.NewTicker(cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			c.ScanAll(cfg)
		}
	}
}

// ScanAll is C7 (§4.7): for every tracked topic, age out timed-out
// messages, mark stale metadata back to Unknown, and (re)trigger a
// leader query for topics with zero known partitions.
func (c *Client) ScanAll(cfg ScanConfig) {
	now := time.Now()

	c.mu.RLock()
	topics := make([]*Topic, 0, len(c.topics))
	for _, t := range c.topics {
		topics = append(topics, t.keep())
	}
	c.mu.RUnlock()

	var toQuery []string
	var partitionsTracked, desiredTracked int

	for _, t := range topics {
		t.mu.Lock()

		var timedOut []Message
		for _, p := range t.partitions {
			timedOut = append(timedOut, p.ScanTimeouts(now)...)
		}
		for _, p := range t.desired {
			timedOut = append(timedOut, p.ScanTimeouts(now)...)
		}
		if len(timedOut) > 0 && c.cfg.metrics != nil {
			c.cfg.metrics.MessagesTimedOut.Add(float64(len(timedOut)))
		}

		if cfg.StaleAfter > 0 && c.cfg.metadataMaxAge >= 0 {
			age := now.Sub(t.tsMetadataTime())
			if !t.tsMetadataTime().IsZero() && age > time.Duration(cfg.StaleAfter)*c.cfg.metadataMaxAge {
				c.log(LogLevelDebug, "topic metadata stale, forcing refresh", "topic", t.name, "age", age)
				t.setState(StateUnknown)
				toQuery = append(toQuery, t.name)
			}
		}

		// §4.7: "if partition_cnt = 0, request a fresh leader query",
		// unconditional on topic state (rdkafka_topic.c:899) — a
		// NotExists topic must stay eligible for rediscovery here,
		// not just via an externally-triggered metadata push.
		if len(t.partitions) == 0 {
			toQuery = append(toQuery, t.name)
		}

		partitionsTracked += len(t.partitions)
		desiredTracked += len(t.desired)

		name := t.name
		t.mu.Unlock()

		if len(timedOut) > 0 {
			c.log(LogLevelDebug, "messages timed out", "topic", name, "count", len(timedOut), "sample", spew.Sdump(timedOut[0]))
			c.cfg.delivery.Deliver(name, timedOut, kerr.MessageTimedOut)
		}

		c.Release(t)
	}

	if c.cfg.metrics != nil {
		c.cfg.metrics.TopicsTracked.Set(float64(len(topics)))
		c.cfg.metrics.PartitionsTracked.Set(float64(partitionsTracked))
		c.cfg.metrics.DesiredPartitions.Set(float64(desiredTracked))
	}

	for _, name := range toQuery {
		c.triggerLeaderQuery(name)
	}
}
