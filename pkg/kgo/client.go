package kgo

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Role distinguishes producer-role clients (which run the UA flusher,
// C6) from consumer-role clients (which run NotExists propagation,
// C3a). A single process-wide client plays exactly one role (§4.2,
// §4.5).
type Role uint8

const (
	RoleProducer Role = iota
	RoleConsumer
)

func (r Role) String() string {
	if r == RoleConsumer {
		return "consumer"
	}
	return "producer"
}

type clientCfg struct {
	role           Role
	logger         Logger
	delivery       DeliveryReport
	filter         TopicFilter
	brokers        BrokerFinder
	metadataMaxAge time.Duration // refresh_interval, §4.7
	queryLeader    func(ctx context.Context, topic string)
	metrics        *Metrics
	newPartition   func(id int32) Partition
}

// Opt configures a Client at construction time (functional-options
// idiom, matching the teacher's NewClient(opts ...Opt)).
type Opt func(*clientCfg)

func WithRole(r Role) Opt                     { return func(c *clientCfg) { c.role = r } }
func WithLogger(l Logger) Opt                 { return func(c *clientCfg) { c.logger = l } }
func WithDeliveryReport(d DeliveryReport) Opt { return func(c *clientCfg) { c.delivery = d } }
func WithTopicFilter(f TopicFilter) Opt       { return func(c *clientCfg) { c.filter = f } }
func WithBrokerFinder(b BrokerFinder) Opt     { return func(c *clientCfg) { c.brokers = b } }
func WithMetrics(m *Metrics) Opt              { return func(c *clientCfg) { c.metrics = m } }

// WithMetadataMaxAge sets the refresh interval used by the periodic
// scanner to decide when metadata has gone stale (§4.7). A negative
// value disables the staleness check entirely, matching
// "refresh_interval >= 0" in §4.7.
func WithMetadataMaxAge(d time.Duration) Opt {
	return func(c *clientCfg) { c.metadataMaxAge = d }
}

// WithPartitionFactory overrides how new partitions are constructed
// (§6 "new_partition"), for tests that want to observe construction.
func WithPartitionFactory(f func(id int32) Partition) Opt {
	return func(c *clientCfg) { c.newPartition = f }
}

// WithLeaderQueryFunc installs the async metadata refresher collaborator
// (§6: "query_leader(client, topic, hold_client_lock_flag)"). It is
// always invoked off the calling goroutine, never while any lock is
// held.
func WithLeaderQueryFunc(f func(ctx context.Context, topic string)) Opt {
	return func(c *clientCfg) { c.queryLeader = f }
}

// Client is the process-wide mutable object described in §9: a
// name-keyed topic registry (C1) plus the broker directory, guarded by
// a single reader/writer lock that sits above every topic lock in the
// hierarchy (§5).
type Client struct {
	cfg clientCfg

	mu     sync.RWMutex // client lock: guards topics
	topics map[string]*Topic

	terminating atomic.Bool

	leaderQueryCh chan string
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}

// NewClient constructs a Client. When a leader-query func is configured
// (WithLeaderQueryFunc), the returned client owns a background
// goroutine dispatching async leader queries; call Close to stop it.
func NewClient(opts ...Opt) *Client {
	cfg := clientCfg{
		role:           RoleProducer,
		logger:         nopLogger{},
		delivery:       discardReports{},
		filter:         AllowAllFilter{},
		brokers:        NewMemoryBrokers(),
		metadataMaxAge: 5 * time.Minute,
	}
	for _, o := range opts {
		o(&cfg)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		cfg:           cfg,
		topics:        make(map[string]*Topic),
		leaderQueryCh: make(chan string, 64),
		ctx:           ctx,
		cancel:        cancel,
	}

	if cfg.queryLeader != nil {
		c.wg.Add(1)
		go c.leaderQueryLoop()
	}

	return c
}

// Close stops the background leader-query dispatcher and marks the
// client as terminating, suppressing the teardown-sensitive behaviors
// listed in §5 (no state reshuffling, no desired-partition error
// enqueues, downgraded log level).
func (c *Client) Close() {
	c.terminating.Store(true)
	c.cancel()
	c.wg.Wait()
}

// Terminating reports the process-wide terminating flag (§5, §9).
func (c *Client) Terminating() bool { return c.terminating.Load() }

func (c *Client) log(level LogLevel, msg string, keyvals ...any) {
	if c.terminating.Load() && level != LogLevelNone && level < LogLevelDebug {
		level = LogLevelDebug
	}
	c.cfg.logger.Log(level, msg, keyvals...)
}

// triggerLeaderQuery schedules an async leader query for topic,
// non-blocking (§4.1, §4.6, §9: "Never issued while holding a lock").
func (c *Client) triggerLeaderQuery(topic string) {
	select {
	case c.leaderQueryCh <- topic:
	default:
		// Coalesce: a query is already pending: dropping this one is
		// fine, the next metadata round will still see the topic.
	}
}

func (c *Client) leaderQueryLoop() {
	defer c.wg.Done()
	for {
		select {
		case <-c.ctx.Done():
			return
		case topic := <-c.leaderQueryCh:
			c.cfg.queryLeader(c.ctx, topic)
		}
	}
}

// findBroker resolves a node id to a Broker handle under the client
// read lock, per the ordering rule in §4.4: callers must do this
// before acquiring any topic lock.
func (c *Client) findBroker(nodeID int32) (Broker, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if nodeID < 0 {
		return nil, false
	}
	return c.cfg.brokers.FindBrokerByNodeID(nodeID)
}

func (c *Client) releaseBroker(b Broker) {
	if b == nil {
		return
	}
	c.cfg.brokers.ReleaseBroker(b)
}

// String implements fmt.Stringer for diagnostics.
func (c *Client) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return fmt.Sprintf("Client{role=%s topics=%d}", c.cfg.role, len(c.topics))
}
