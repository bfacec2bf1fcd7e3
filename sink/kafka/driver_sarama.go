package kafka

import (
	"context"
	"fmt"

	"github.com/IBM/sarama"

	"datasync/internal/journal"
	"datasync/sink"
)

// HeaderBatchID matches the header the Kafka source reads.
const HeaderBatchID = "batch-id"

type Config struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Acks    int16    `yaml:"required_acks"` // 0,1,-1
	Version string   `yaml:"version"`
}

// driver publishes each batch synchronously so a failed send fails the
// batch instead of being reported after its offset was committed.
type driver struct {
	cfg Config
	p   sarama.SyncProducer
}

func (d *driver) Configure(c any) error {
	cfg, ok := c.(Config)
	if !ok {
		return fmt.Errorf("kafka-sink: want Config, got %T", c)
	}
	if cfg.Topic == "" || len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka-sink: brokers and topic are required")
	}
	d.cfg = cfg

	sc := sarama.NewConfig()
	sc.Producer.RequiredAcks = sarama.RequiredAcks(cfg.Acks)
	sc.Producer.Return.Successes = true
	if cfg.Version != "" {
		ver, err := sarama.ParseKafkaVersion(cfg.Version)
		if err != nil {
			return err
		}
		sc.Version = ver
	}
	var err error
	d.p, err = sarama.NewSyncProducer(cfg.Brokers, sc)
	return err
}

func (d *driver) Push(_ context.Context, b journal.Batch) error {
	raw, err := journal.EncodeBatch(b)
	if err != nil {
		return fmt.Errorf("kafka-sink: %w", err)
	}
	_, _, err = d.p.SendMessage(&sarama.ProducerMessage{
		Topic:   d.cfg.Topic,
		Key:     sarama.StringEncoder(b.Table),
		Value:   sarama.ByteEncoder(raw),
		Headers: []sarama.RecordHeader{{Key: []byte(HeaderBatchID), Value: []byte(b.ID)}},
	})
	if err != nil {
		return fmt.Errorf("kafka-sink: send batch %q: %w", b.ID, err)
	}
	return nil
}

func (d *driver) Close() error {
	if d.p == nil {
		return nil
	}
	return d.p.Close()
}

func init() { sink.Register("kafka", func() sink.Adapter { return &driver{} }) }
