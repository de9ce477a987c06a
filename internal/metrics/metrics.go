package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	Database  *DatabaseMetrics
	Messaging *MessagingMetrics

	loginsSucceeded metric.Int64Counter
	loginsFailed    metric.Int64Counter
	sessionsCreated metric.Int64Counter
	sessionsEnded   metric.Int64Counter
	personsCreated  metric.Int64Counter
	accessDenied    metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.Database, err = NewDatabaseMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.Messaging, err = NewMessagingMetrics(meter)
	if err != nil {
		return nil, err
	}

	m.loginsSucceeded, err = meter.Int64Counter(
		"academico.logins.succeeded",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.loginsFailed, err = meter.Int64Counter(
		"academico.logins.failed",
		metric.WithDescription("Total number of rejected logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.sessionsCreated, err = meter.Int64Counter(
		"academico.sessions.created",
		metric.WithDescription("Total number of sessions created"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	m.sessionsEnded, err = meter.Int64Counter(
		"academico.sessions.destroyed",
		metric.WithDescription("Total number of sessions destroyed by logout"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, err
	}

	m.personsCreated, err = meter.Int64Counter(
		"academico.persons.created",
		metric.WithDescription("Total number of student and teacher records created"),
		metric.WithUnit("{person}"),
	)
	if err != nil {
		return nil, err
	}

	m.accessDenied, err = meter.Int64Counter(
		"academico.access.denied",
		metric.WithDescription("Requests rejected by the role gate"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordLogin(ctx context.Context, role string, succeeded bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("role", role))
	if succeeded {
		if m.loginsSucceeded != nil {
			m.loginsSucceeded.Add(ctx, 1, attrs)
		}
		return
	}
	if m.loginsFailed != nil {
		m.loginsFailed.Add(ctx, 1, attrs)
	}
}

func (m *Metrics) RecordSessionCreated(ctx context.Context) {
	if m != nil && m.sessionsCreated != nil {
		m.sessionsCreated.Add(ctx, 1)
	}
}

func (m *Metrics) RecordSessionDestroyed(ctx context.Context) {
	if m != nil && m.sessionsEnded != nil {
		m.sessionsEnded.Add(ctx, 1)
	}
}

func (m *Metrics) RecordPersonCreated(ctx context.Context, kind string) {
	if m != nil && m.personsCreated != nil {
		m.personsCreated.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
	}
}

func (m *Metrics) RecordAccessDenied(ctx context.Context, requirement string, status int) {
	if m != nil && m.accessDenied != nil {
		m.accessDenied.Add(ctx, 1, metric.WithAttributes(
			attribute.String("requirement", requirement),
			attribute.Int("status", status),
		))
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{Database: &DatabaseMetrics{}, Messaging: &MessagingMetrics{}}
}
