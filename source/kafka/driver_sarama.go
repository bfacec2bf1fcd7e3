package kafka

import (
	"context"
	"fmt"
	"sync"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"datasync/internal/journal"
	"datasync/internal/logging"
)

// HeaderBatchID carries the capture side's batch id, when it assigns one.
const HeaderBatchID = "batch-id"

// batchNamespace seeds ids for batches that arrive without one, so a
// redelivered message keeps its id.
var batchNamespace = uuid.MustParse("6f1b2c1e-3f0a-5b7d-9a55-2a8c1d0e4b11")

// SaramaDriver consumes one journal batch per Kafka message. Offsets are
// marked only after the pipeline and every sink accepted the batch.
type SaramaDriver struct {
	cfg   Config
	cl    sarama.Client
	group sarama.ConsumerGroup
}

func (d *SaramaDriver) Configure(config Config) error {
	d.cfg = config

	ver, err := sarama.ParseKafkaVersion(config.Version)
	if err != nil {
		return err
	}
	sc := sarama.NewConfig()
	sc.Version = ver
	sc.Consumer.Return.Errors = true
	if config.TLSEn {
		sc.Net.TLS.Enable = true
	}
	if config.SASLUser != "" {
		sc.Net.SASL.Enable = true
		sc.Net.SASL.User, sc.Net.SASL.Password = config.SASLUser, config.SASLPass
	}
	switch config.StartFrom {
	case "oldest":
		sc.Consumer.Offsets.Initial = sarama.OffsetOldest
	default:
		sc.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	if d.cl, err = sarama.NewClient(config.Brokers, sc); err != nil {
		return err
	}
	d.group, err = sarama.NewConsumerGroupFromClient(config.GroupID, d.cl)
	return err
}

// Run consumes until ctx is done or a batch fails. The first batch error is
// returned and stops consumption for every partition.
func (d *SaramaDriver) Run(ctx context.Context, emit EmitFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	handler := &groupHandler{emit: emit, cancel: cancel}

	go func() {
		for err := range d.group.Errors() {
			logging.L().Warn("sarama-driver: consumer group error", "err", err)
		}
	}()

	for {
		err := d.group.Consume(ctx, d.cfg.Topics, handler)
		// A batch failure cancels ctx, which Consume may report in its place.
		if ferr := handler.failure(); ferr != nil {
			return ferr
		}
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (d *SaramaDriver) Close() error {
	_ = d.group.Close()
	_ = d.cl.Close()
	return nil
}

type groupHandler struct {
	emit   EmitFunc
	cancel context.CancelFunc

	mu  sync.Mutex
	err error
}

func (h *groupHandler) fail(err error) {
	h.mu.Lock()
	if h.err == nil {
		h.err = err
	}
	h.mu.Unlock()
	h.cancel()
}

func (h *groupHandler) failure() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (*groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (*groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(
	sess sarama.ConsumerGroupSession,
	claim sarama.ConsumerGroupClaim,
) error {
	for {
		select {
		case <-sess.Context().Done():
			return nil

		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			b, err := toBatch(msg)
			if err != nil {
				err = fmt.Errorf("%s[%d]@%d: %w", msg.Topic, msg.Partition, msg.Offset, err)
				h.fail(err)
				return err
			}
			if err := h.emit(sess.Context(), b); err != nil {
				h.fail(err)
				return err
			}
			sess.MarkMessage(msg, "")
		}
	}
}

func toBatch(msg *sarama.ConsumerMessage) (journal.Batch, error) {
	b, err := journal.DecodeBatch(msg.Value)
	if err != nil {
		return b, err
	}
	if b.ID != "" {
		return b, nil
	}
	for _, hdr := range msg.Headers {
		if hdr != nil && string(hdr.Key) == HeaderBatchID && len(hdr.Value) > 0 {
			b.ID = string(hdr.Value)
			return b, nil
		}
	}
	name := fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	b.ID = uuid.NewSHA1(batchNamespace, []byte(name)).String()
	return b, nil
}
