package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/config"
	"github.com/Natalia-54/sistema-academico-jfk/internal/events"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/testing/testnats"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewPublisher(t *testing.T) {
	t.Run("NoneDriver", func(t *testing.T) {
		p, err := events.NewPublisher(config.EventsConfig{Driver: "none"}, discardLogger())
		require.NoError(t, err)
		assert.IsType(t, events.NoopPublisher{}, p)
		assert.NoError(t, p.Publish(context.Background(), events.New(events.TypeUserLoggedIn, nil)))
		assert.NoError(t, p.Close())
	})

	t.Run("UnknownDriver", func(t *testing.T) {
		_, err := events.NewPublisher(config.EventsConfig{Driver: "sqs"}, discardLogger())
		assert.Error(t, err)
	})
}

func TestKafkaPublisher(t *testing.T) {
	t.Run("KeyedByType", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.ProducerConfig())
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			key, err := msg.Key.Encode()
			if err != nil {
				return err
			}
			if string(key) != events.TypePersonCreated {
				return errors.New("unexpected key " + string(key))
			}
			if msg.Topic != "academico.events" {
				return errors.New("unexpected topic " + msg.Topic)
			}
			return nil
		})

		p := events.NewKafkaPublisherWithProducer(producer, "academico.events", discardLogger())
		err := p.Publish(context.Background(), events.New(events.TypePersonCreated, map[string]any{
			"kind":           "estudiante",
			"codigo_usuario": "S100",
		}))
		require.NoError(t, err)
		require.NoError(t, p.Close())
	})

	t.Run("PayloadIsJSON", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.ProducerConfig())
		producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
			var event events.Event
			if err := json.Unmarshal(val, &event); err != nil {
				return err
			}
			if event.Payload["role"] != "profesor" {
				return errors.New("role missing from payload")
			}
			return nil
		})

		p := events.NewKafkaPublisherWithProducer(producer, "academico.events", discardLogger())
		require.NoError(t, p.Publish(context.Background(), events.New(events.TypeUserLoggedIn, map[string]any{"role": "profesor"})))
		require.NoError(t, p.Close())
	})

	t.Run("BrokerFailure", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.ProducerConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		p := events.NewKafkaPublisherWithProducer(producer, "academico.events", discardLogger())
		err := p.Publish(context.Background(), events.New(events.TypeUserLoggedIn, nil))
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, p.Close())
	})

	t.Run("UnreachableBrokerHonorsDeadline", func(t *testing.T) {
		producer := newStalledProducer()
		defer producer.release()

		p := events.NewKafkaPublisherWithProducer(producer, "academico.events", discardLogger())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := p.Publish(ctx, events.New(events.TypeUserLoggedIn, nil))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("CanceledContextSkipsSend", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, events.ProducerConfig())

		p := events.NewKafkaPublisherWithProducer(producer, "academico.events", discardLogger())

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.ErrorIs(t, p.Publish(ctx, events.New(events.TypeUserLoggedIn, nil)), context.Canceled)
		require.NoError(t, p.Close())
	})
}

// stalledProducer never acknowledges until released, like a producer whose
// brokers are down.
type stalledProducer struct {
	sarama.SyncProducer
	unblock chan struct{}
}

func newStalledProducer() *stalledProducer {
	return &stalledProducer{unblock: make(chan struct{})}
}

func (p *stalledProducer) SendMessage(*sarama.ProducerMessage) (int32, int64, error) {
	<-p.unblock
	return 0, 0, sarama.ErrOutOfBrokers
}

func (p *stalledProducer) release() {
	close(p.unblock)
}

func TestNATSPublisher(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping NATS container test in short mode")
	}

	natsContainer := testnats.SetupSharedNATS(t)
	defer natsContainer.Cleanup(t)

	conn := natsContainer.Connect(t)
	sub, err := conn.SubscribeSync("academico.>")
	require.NoError(t, err)
	require.NoError(t, conn.Flush())

	p, err := events.NewNATSPublisher(natsContainer.URL, "academico", discardLogger())
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "academico.person.created", p.Subject(events.TypePersonCreated))

	err = p.Publish(context.Background(), events.New(events.TypePersonCreated, map[string]any{"codigo_usuario": "T200"}))
	require.NoError(t, err)

	msg, err := sub.NextMsg(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, "academico.person.created", msg.Subject)

	var event events.Event
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, events.TypePersonCreated, event.Type)
	assert.Equal(t, "T200", event.Payload["codigo_usuario"])
}

type failingPublisher struct{ events.NoopPublisher }

func (failingPublisher) Publish(context.Context, events.Event) error {
	return errors.New("broker unavailable")
}

func TestInstrument(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := metrics.NewMessagingMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	ok := events.Instrument(events.NoopPublisher{}, "none", m)
	require.NoError(t, ok.Publish(ctx, events.New(events.TypeUserLoggedIn, nil)))

	failing := events.Instrument(failingPublisher{}, "nats", m)
	assert.Error(t, failing.Publish(ctx, events.New(events.TypePersonCreated, nil)))
	assert.NoError(t, failing.Close())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	totals := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if sum, isSum := metric.Data.(metricdata.Sum[int64]); isSum {
				for _, dp := range sum.DataPoints {
					totals[metric.Name] += dp.Value
				}
			}
		}
	}
	assert.Equal(t, int64(1), totals["messaging.events.published"])
	assert.Equal(t, int64(1), totals["messaging.events.errors"])
}
