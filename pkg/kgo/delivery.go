package kgo

import "github.com/lishaohua403/ktopics/pkg/kgo/kerr"

// DeliveryReport is the sink that surfaces per-message success/failure
// to the application (§6, exposed). Deliver consumes ownership of
// msgs: callers must not touch the slice again afterward.
type DeliveryReport interface {
	Deliver(topic string, msgs []Message, code kerr.Code)
}

// DeliveryReportFunc adapts a plain function to a DeliveryReport, the
// same convenience shape http.HandlerFunc offers for http.Handler.
type DeliveryReportFunc func(topic string, msgs []Message, code kerr.Code)

func (f DeliveryReportFunc) Deliver(topic string, msgs []Message, code kerr.Code) {
	f(topic, msgs, code)
}

// discardReports is the default sink when none is configured: reports
// are dropped. Real applications are expected to supply their own.
type discardReports struct{}

func (discardReports) Deliver(string, []Message, kerr.Code) {}
