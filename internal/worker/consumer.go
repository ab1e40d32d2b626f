package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/trademkt/image-audit/internal/worker/domain"
)

// setupConsumers configures QoS on the channel and starts one consumer plus
// dispatcher per kind queue.
func (w *Worker) setupConsumers(ctx context.Context) error {
	channel := w.rabbitClient.GetChannel()
	if channel == nil {
		return fmt.Errorf("rabbitmq channel is nil")
	}

	// prefetch_count bounds unacknowledged deliveries per consumer so a slow
	// pipeline does not hoard the queue
	err := channel.Qos(
		w.prefetchCount, // prefetch count from config
		0,               // prefetch size
		false,           // global
	)
	if err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	w.logger.Info("RabbitMQ QoS configured",
		slog.Int("prefetch_count", w.prefetchCount),
	)

	for _, queue := range w.queues {
		consumerTag := fmt.Sprintf("%s-%s", w.workerID, queue)

		deliveries, err := w.rabbitClient.Consume(queue, consumerTag)
		if err != nil {
			return fmt.Errorf("failed to start consuming from %s: %w", queue, err)
		}

		w.logger.Info("RabbitMQ consumer started",
			slog.String("consumer_tag", consumerTag),
			slog.String("queue", queue),
		)

		w.wg.Add(1)
		go func(queue string, deliveries <-chan amqp.Delivery) {
			defer w.wg.Done()
			w.dispatchMessages(ctx, queue, deliveries)
		}(queue, deliveries)
	}

	return nil
}

// dispatchMessages listens to one queue's deliveries and hands jobs to the
// worker pool. The routing key selects the pipeline, so no message parse is
// needed beyond the job_id sanity check.
func (w *Worker) dispatchMessages(ctx context.Context, queue string, deliveries <-chan amqp.Delivery) {
	w.logger.Info("Message dispatcher started",
		slog.String("worker_id", w.workerID),
		slog.String("queue", queue),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Message dispatcher stopped - context canceled",
				slog.String("queue", queue),
			)
			return

		case delivery, ok := <-deliveries:
			if !ok {
				w.logger.Warn("RabbitMQ delivery channel closed",
					slog.String("queue", queue),
				)
				return
			}

			var msg struct {
				JobID string `json:"job_id"`
			}

			if err := json.Unmarshal(delivery.Body, &msg); err != nil {
				w.logger.Error("Failed to parse message JSON",
					slog.String("queue", queue),
					slog.String("error", err.Error()),
					slog.String("body", string(delivery.Body)),
				)
				// Malformed messages are dropped; requeueing them would loop forever
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK malformed message",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			if _, err := uuid.Parse(msg.JobID); err != nil {
				w.logger.Error("Invalid job_id format - not a UUID",
					slog.String("job_id", msg.JobID),
					slog.String("error", err.Error()),
				)
				if nackErr := delivery.Nack(false, false); nackErr != nil {
					w.logger.Error("Failed to NACK message with invalid job_id",
						slog.String("error", nackErr.Error()),
					)
				}
				continue
			}

			jobMsg := &domain.JobMessage{
				JobID:       msg.JobID,
				Tipo:        delivery.RoutingKey,
				Body:        delivery.Body,
				DeliveryTag: delivery.DeliveryTag,
			}

			select {
			case w.jobsChan <- jobMsg:
				w.logger.Debug("Job dispatched to worker pool",
					slog.String("job_id", msg.JobID),
					slog.String("tipo", jobMsg.Tipo),
					slog.Uint64("delivery_tag", delivery.DeliveryTag),
				)
			case <-ctx.Done():
				w.logger.Info("Message dispatcher stopped while dispatching job")
				if nackErr := delivery.Nack(false, true); nackErr != nil {
					w.logger.Error("Failed to NACK message on shutdown",
						slog.String("error", nackErr.Error()),
					)
				}
				return
			}
		}
	}
}
