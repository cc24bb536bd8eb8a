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
	"github.com/gamebuddy-app/internal/config"
	"github.com/gamebuddy-app/internal/notification"
)

var (
	errInvalidNotification = errors.New("notification without gamer id")
	errStartTimeout        = errors.New("kafka consumer did not join its group in time")
)

// Consumer reads published notifications and hands them to a local sink,
// usually the websocket hub of this instance
type Consumer struct {
	config        *config.KafkaConfig
	sink          notification.Sink
	logger        *slog.Logger
	consumerGroup sarama.ConsumerGroup
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup

	// started is closed by the first session Setup
	started     chan struct{}
	startedOnce sync.Once
}

// NewConsumer creates a new Kafka consumer
func NewConsumer(cfg *config.KafkaConfig, sink notification.Sink, logger *slog.Logger) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("creating consumer group: %w", err)
	}

	return newConsumer(cfg, sink, consumerGroup, logger), nil
}

func newConsumer(cfg *config.KafkaConfig, sink notification.Sink, group sarama.ConsumerGroup, logger *slog.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		config:        cfg,
		sink:          sink,
		logger:        logger,
		consumerGroup: group,
		ctx:           ctx,
		cancel:        cancel,
		started:       make(chan struct{}),
	}
}

func (c *Consumer) markStarted() {
	c.startedOnce.Do(func() { close(c.started) })
}

// Start begins consuming messages from Kafka. It returns once the first
// group session is set up, or fails after StartTimeout and releases the
// consumer group.
func (c *Consumer) Start() error {
	c.logger.Info("starting Kafka consumer",
		"brokers", c.config.Brokers,
		"topic", c.config.Topic,
		"group_id", c.config.GroupID,
	)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		handler := &consumerGroupHandler{consumer: c}
		for {
			if err := c.consumerGroup.Consume(c.ctx, []string{c.config.Topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.Error("error from consumer", "error", err)
				select {
				case <-c.ctx.Done():
				case <-time.After(c.config.RetryDelay):
				}
			}

			if c.ctx.Err() != nil {
				return
			}
		}
	}()

	timeout := c.config.StartTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-c.started:
	case <-c.ctx.Done():
		return fmt.Errorf("starting kafka consumer: %w", c.ctx.Err())
	case <-timer.C:
		if err := c.Stop(); err != nil {
			c.logger.Warn("failed to close consumer group", "error", err)
		}
		return errStartTimeout
	}
	c.logger.Info("Kafka consumer ready")

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

// decode parses a published notification
func decode(value []byte) (notification.Notification, error) {
	var n notification.Notification
	if err := json.Unmarshal(value, &n); err != nil {
		return n, fmt.Errorf("decoding notification: %w", err)
	}
	if n.GamerID == "" {
		return n, errInvalidNotification
	}
	return n, nil
}

// handle delivers one message to the sink with retries. Undecodable
// messages and offline recipients are dropped.
func (c *Consumer) handle(value []byte, stop <-chan struct{}) error {
	n, err := decode(value)
	if err != nil {
		c.logger.Warn("skipping notification message", "error", err)
		return nil
	}

	err = notification.Retry(c.config.RetryAttempts, c.config.RetryDelay, stop, func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return c.sink.Deliver(ctx, n)
	})
	if errors.Is(err, notification.ErrRecipientOffline) {
		c.logger.Debug("notification recipient offline", "gamer_id", n.GamerID, "kind", n.Kind)
		return nil
	}
	return err
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
}

// Setup is called at the beginning of a new session
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.consumer.markStarted()
	return nil
}

// Cleanup is called at the end of a session
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim processes messages from a topic partition
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil

		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			if err := h.consumer.handle(message.Value, session.Context().Done()); err != nil {
				h.consumer.logger.Error("failed to deliver notification",
					"error", err,
					"offset", message.Offset,
					"partition", message.Partition,
				)
			}
			session.MarkMessage(message, "")
		}
	}
}
