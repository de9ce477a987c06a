package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/IBM/sarama"
)

// KafkaPublisher writes every event to one topic, keyed by event type.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) (*KafkaPublisher, error) {
	producer, err := sarama.NewSyncProducer(brokers, ProducerConfig())
	if err != nil {
		return nil, err
	}

	logger.Info("kafka publisher initialized", "brokers", brokers, "topic", topic)

	return NewKafkaPublisherWithProducer(producer, topic, logger), nil
}

func NewKafkaPublisherWithProducer(producer sarama.SyncProducer, topic string, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		producer: producer,
		topic:    topic,
		logger:   logger,
	}
}

// Upper bound on one Publish call. Events are best effort and are published
// from request handlers.
const publishTimeout = 2 * time.Second

func ProducerConfig() *sarama.Config {
	config := sarama.NewConfig()
	config.Net.DialTimeout = time.Second
	config.Net.ReadTimeout = publishTimeout
	config.Net.WriteTimeout = publishTimeout
	config.Metadata.Retry.Max = 1
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Timeout = publishTimeout
	config.Producer.Retry.Max = 2
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	return config
}

type sendResult struct {
	partition int32
	offset    int64
	err       error
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.Type),
		Value: sarama.ByteEncoder(data),
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	// SendMessage takes no context; the buffered channel lets an abandoned
	// send finish without leaking.
	done := make(chan sendResult, 1)
	go func() {
		partition, offset, err := p.producer.SendMessage(msg)
		done <- sendResult{partition: partition, offset: offset, err: err}
	}()

	select {
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "kafka publish abandoned", "topic", p.topic, "type", event.Type, "error", ctx.Err())
		return ctx.Err()
	case res := <-done:
		if res.err != nil {
			return res.err
		}
		p.logger.DebugContext(ctx, "event published to kafka",
			"topic", p.topic, "partition", res.partition, "offset", res.offset, "type", event.Type)
		return nil
	}
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}
