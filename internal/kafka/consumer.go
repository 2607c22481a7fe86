package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/go-playground/validator/v10"

	"github.com/gamenight-tracker/internal/config"
	"github.com/gamenight-tracker/internal/domain"
)

const batchTimeout = 10 * time.Second

// ResultRecorder stores game results
type ResultRecorder interface {
	RecordResultBatch(ctx context.Context, batch domain.BatchResultSubmission) (*domain.BatchOutcome, error)
}

// Consumer consumes game result messages from Kafka
type Consumer struct {
	config        *config.KafkaConfig
	recorder      ResultRecorder
	validate      *validator.Validate
	logger        *slog.Logger
	consumerGroup sarama.ConsumerGroup
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	ready         chan bool
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg *config.KafkaConfig, recorder ResultRecorder, logger *slog.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating consumer group: %w", err)
	}

	c := newConsumer(cfg, recorder, logger)
	c.consumerGroup = consumerGroup
	return c, nil
}

func newConsumer(cfg *config.KafkaConfig, recorder ResultRecorder, logger *slog.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		config:   cfg,
		recorder: recorder,
		validate: validator.New(),
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
		ready:    make(chan bool),
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start() error {
	c.logger.Info("starting Kafka consumer",
		"brokers", c.config.Brokers,
		"topic", c.config.Topic,
		"group_id", c.config.GroupID,
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			handler := &consumerGroupHandler{
				consumer: c,
				ready:    c.ready,
			}

			if err := c.consumerGroup.Consume(c.ctx, []string{c.config.Topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.Error("error from consumer", "error", err)
			}

			// Check if context was cancelled
			if c.ctx.Err() != nil {
				return
			}

			c.ready = make(chan bool)
		}
	}()

	// Wait until consumer is ready
	<-c.ready
	c.logger.Info("Kafka consumer ready")

	// Handle errors in separate goroutine
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case err, ok := <-c.consumerGroup.Errors():
				if !ok {
					return
				}
				c.logger.Error("consumer group error", "error", err)
			}
		}
	}()

	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info("stopping Kafka consumer")
	c.cancel()
	c.wg.Wait()
	return c.consumerGroup.Close()
}

// decode parses and validates one message
func (c *Consumer) decode(value []byte) (domain.ResultSubmission, error) {
	var sub domain.ResultSubmission
	if err := json.Unmarshal(value, &sub); err != nil {
		return domain.ResultSubmission{}, fmt.Errorf("decoding message: %w", err)
	}
	if err := c.validate.Struct(sub); err != nil {
		return domain.ResultSubmission{}, fmt.Errorf("%w: %v", domain.ErrInvalidResult, err)
	}
	return sub, nil
}

// record submits a batch, retrying failed writes. Rejected entries are logged
// and dropped since retrying cannot fix them. Each attempt gets its own deadline
// so the final flush still runs after Stop.
func (c *Consumer) record(batch []domain.ResultSubmission) error {
	submission := domain.BatchResultSubmission{Results: batch}

	attempts := max(c.config.RetryAttempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
		var outcome *domain.BatchOutcome
		outcome, err = c.recorder.RecordResultBatch(ctx, submission)
		cancel()

		if err == nil {
			for _, f := range outcome.Failed {
				c.logger.Warn("rejected result from stream", "index", f.Index, "result_id", f.ID, "error", f.Error)
			}
			c.logger.Debug("processed batch", "batch_size", len(batch), "recorded", len(outcome.Recorded))
			return nil
		}

		c.logger.Error("failed to process batch", "error", err, "batch_size", len(batch), "attempt", attempt)
		if attempt < attempts {
			select {
			case <-time.After(c.config.RetryDelay):
			case <-c.ctx.Done():
				return fmt.Errorf("recording batch: %w", err)
			}
		}
	}
	return fmt.Errorf("recording batch after %d attempts: %w", attempts, err)
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
	ready    chan bool
}

// Setup is called at the beginning of a new session
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

// Cleanup is called at the end of a session
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim batches result messages from a topic partition
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	cfg := h.consumer.config
	batch := make([]domain.ResultSubmission, 0, cfg.BatchSize)
	pending := make([]*sarama.ConsumerMessage, 0, cfg.BatchSize)
	batchTimer := time.NewTimer(cfg.BatchTimeout)
	defer batchTimer.Stop()

	// Offsets are marked only after the batch is recorded. A failed batch ends
	// the session unmarked so its messages are delivered again.
	processBatch := func() error {
		if len(batch) > 0 {
			if err := h.consumer.record(batch); err != nil {
				return err
			}
		}
		for _, msg := range pending {
			session.MarkMessage(msg, "")
		}
		batch = batch[:0]
		pending = pending[:0]
		return nil
	}

	for {
		select {
		case <-session.Context().Done():
			// Process remaining batch before exit
			return processBatch()

		case <-batchTimer.C:
			if err := processBatch(); err != nil {
				return err
			}
			batchTimer.Reset(cfg.BatchTimeout)

		case message, ok := <-claim.Messages():
			if !ok {
				return processBatch()
			}

			sub, err := h.consumer.decode(message.Value)
			if err != nil {
				h.consumer.logger.Warn("invalid result message",
					"error", err,
					"offset", message.Offset,
					"partition", message.Partition,
				)
				pending = append(pending, message)
				continue
			}

			batch = append(batch, sub)
			pending = append(pending, message)

			if len(batch) >= cfg.BatchSize {
				if err := processBatch(); err != nil {
					return err
				}
				batchTimer.Reset(cfg.BatchTimeout)
			}
		}
	}
}
