package events

import (
	"context"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
)

type instrumentedPublisher struct {
	next    Publisher
	driver  string
	metrics *metrics.MessagingMetrics
}

// Instrument records publish counts, failures and latency for every event
// that goes through next.
func Instrument(next Publisher, driver string, m *metrics.MessagingMetrics) Publisher {
	return &instrumentedPublisher{next: next, driver: driver, metrics: m}
}

func (p *instrumentedPublisher) Publish(ctx context.Context, event Event) error {
	start := time.Now()
	err := p.next.Publish(ctx, event)
	p.metrics.RecordPublish(ctx, p.driver, event.Type, time.Since(start), err)
	return err
}

func (p *instrumentedPublisher) Close() error {
	return p.next.Close()
}
