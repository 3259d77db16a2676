package kgo

import (
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec a topic's messages are encoded
// with. The routing core never compresses anything itself — actual
// message encoding belongs to the out-of-scope message/producer layer
// — but the topic's configuration carries the choice (§3: "config:
// immutable per-topic configuration (partitioner function, compression
// codec, opaque user pointer, etc.)"), and SPEC_FULL gives that field a
// concrete, exercised home.
type Compression int8

const (
	CompressionNone Compression = iota
	CompressionGZIP
	CompressionLZ4
	CompressionZSTD
	CompressionSnappy
)

// Writer wraps w with this codec's compressing writer.
func (c Compression) Writer(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CompressionGZIP:
		return gzip.NewWriter(w), nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	case CompressionZSTD:
		return zstd.NewWriter(w)
	case CompressionSnappy:
		return snappy.NewBufferedWriter(w), nil
	default:
		return nopWriteCloser{w}, nil
	}
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// TopicFilter decides whether metadata for a topic should be ignored
// outright (§4.6: "If the topic name is blacklisted by configuration,
// log and return"). Blacklist pattern matching itself is an external
// collaborator concern (§1); the core only consumes the yes/no
// verdict.
type TopicFilter interface {
	Blacklisted(topic string) bool
}

// AllowAllFilter is the default TopicFilter: nothing is blacklisted.
type AllowAllFilter struct{}

func (AllowAllFilter) Blacklisted(string) bool { return false }

// TopicFilterFunc adapts a plain function to a TopicFilter.
type TopicFilterFunc func(topic string) bool

func (f TopicFilterFunc) Blacklisted(topic string) bool { return f(topic) }

// TopicConfig is a topic's immutable per-topic configuration (§3).
type TopicConfig struct {
	Partitioner Partitioner
	Codec       Compression
	Opaque      any
}

// DefaultTopicConfig returns the configuration a topic gets when the
// application does not supply one (original_source: "Default
// partitioner: consistent_random").
func DefaultTopicConfig() TopicConfig {
	return TopicConfig{
		Partitioner: NewConsistentRandomPartitioner(),
		Codec:       CompressionNone,
	}
}

func (c TopicConfig) withDefaults() TopicConfig {
	if c.Partitioner == nil {
		c.Partitioner = NewConsistentRandomPartitioner()
	}
	return c
}
