// Package events publishes applied votes to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/emilythestrangee/vote-tally/backend/internal/config"
	"github.com/emilythestrangee/vote-tally/backend/internal/models"
)

type Publisher interface {
	Publish(ctx context.Context, event models.VoteEvent) error
	Close() error
}

// Kafka publishes each event synchronously, keyed by the voted item so all
// events of one item land on the same partition.
type Kafka struct {
	producer sarama.SyncProducer
	topic    string
}

func NewKafkaProducer(cfg config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Return.Successes = true
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Partitioner = sarama.NewHashPartitioner
	sc.Version = sarama.V2_0_0_0
	sc.ClientID = cfg.ClientID

	return sarama.NewSyncProducer(cfg.Brokers, sc)
}

func NewKafka(producer sarama.SyncProducer, topic string) *Kafka {
	return &Kafka{producer: producer, topic: topic}
}

func (k *Kafka) Publish(ctx context.Context, event models.VoteEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode vote event: %w", err)
	}

	_, _, err = k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: k.topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("publish vote event %s: %w", event.ID, err)
	}
	return nil
}

func (k *Kafka) Close() error {
	return k.producer.Close()
}

type Noop struct{}

func (Noop) Publish(context.Context, models.VoteEvent) error { return nil }

func (Noop) Close() error { return nil }
