package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/feastline/order-svc/internal/dal/interfaces/ioutboxrepo"
	"github.com/feastline/order-svc/internal/service/models/notification"
	"github.com/feastline/order-svc/internal/service/models/order"
	"github.com/feastline/order-svc/internal/service/models/outbox"
)

// directory provides notification content from the external directories.
type directory interface {
	CustomerEmail(ctx context.Context, customerID int64) (string, error)
	RestaurantName(ctx context.Context, restaurantID int64) (string, error)
}

// publisher hands a composed notification to the delivery collaborator.
type publisher interface {
	Publish(ctx context.Context, msg notification.Email) error
}

// Worker drains the notification outbox. Everything in here is best-effort:
// a failure is logged and rescheduled with backoff, it never reaches the
// request path and never undoes a committed order write.
type Worker struct {
	outboxRepo   ioutboxrepo.IOutboxRepository
	directory    directory
	publisher    publisher
	pollInterval time.Duration
	batchSize    int
	stopCh       chan struct{}
}

// NewWorker creates a new notifier worker.
func NewWorker(
	outboxRepo ioutboxrepo.IOutboxRepository,
	directory directory,
	publisher publisher,
) *Worker {
	pollIntervalSeconds := viper.GetInt("rabbitmq.outbox.poll_interval_seconds")
	if pollIntervalSeconds == 0 {
		pollIntervalSeconds = 10
	}

	batchSize := viper.GetInt("rabbitmq.outbox.batch_size")
	if batchSize == 0 {
		batchSize = 100
	}

	return &Worker{
		outboxRepo:   outboxRepo,
		directory:    directory,
		publisher:    publisher,
		pollInterval: time.Duration(pollIntervalSeconds) * time.Second,
		batchSize:    batchSize,
		stopCh:       make(chan struct{}),
	}
}

// Start begins processing messages from the outbox.
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	slog.Info("Notifier worker started", "poll_interval", w.pollInterval, "batch_size", w.batchSize)

	for {
		select {
		case <-ctx.Done():
			slog.Info("Notifier worker shutting down")

			return
		case <-w.stopCh:
			slog.Info("Notifier worker stopped")

			return
		case <-ticker.C:
			w.ProcessMessages(ctx)
		}
	}
}

// Stop stops the worker.
func (w *Worker) Stop() {
	close(w.stopCh)
}

// ProcessMessages retrieves and dispatches pending notifications.
func (w *Worker) ProcessMessages(ctx context.Context) {
	messages, err := w.outboxRepo.GetPendingMessages(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to get pending notifications from outbox", "error", err)

		return
	}

	if len(messages) == 0 {
		return
	}

	slog.Info("Processing outbox notifications", "count", len(messages))

	for _, msg := range messages {
		if err := w.dispatch(ctx, msg); err != nil {
			w.reschedule(ctx, msg, err)

			continue
		}

		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to delete notification after successful dispatch",
				"outbox_id", msg.ID,
				"error", err,
			)
		} else {
			slog.Info("Notification dispatched and removed from outbox", "outbox_id", msg.ID)
		}
	}
}

// dispatch composes and publishes one notification.
func (w *Worker) dispatch(ctx context.Context, msg outbox.Message) error {
	var email, text string

	switch msg.Kind {
	case outbox.KindOrderCreated:
		var p outbox.OrderCreatedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("failed to unmarshal order_created payload: %w", err)
		}

		var restaurantName string
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(2)
		g.Go(func() error {
			addr, err := w.directory.CustomerEmail(gctx, p.CustomerID)
			if err != nil {
				return err
			}
			email = addr

			return nil
		})
		g.Go(func() error {
			// A missing restaurant name degrades the message, it does not
			// block dispatch.
			name, err := w.directory.RestaurantName(gctx, p.RestaurantID)
			if err != nil {
				slog.Warn("Restaurant directory lookup failed", "restaurant_id", p.RestaurantID, "error", err)

				return nil
			}
			restaurantName = name

			return nil
		})
		if err := g.Wait(); err != nil {
			return err
		}

		if restaurantName != "" {
			text = fmt.Sprintf("Your order '%d' at %s has been received", p.OrderID, restaurantName)
		} else {
			text = fmt.Sprintf("Your order '%d' has been received", p.OrderID)
		}

	case outbox.KindStatusChanged:
		var p outbox.StatusChangedPayload
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("failed to unmarshal status_changed payload: %w", err)
		}

		addr, err := w.directory.CustomerEmail(ctx, p.CustomerID)
		if err != nil {
			return err
		}
		email = addr
		text = fmt.Sprintf("Your order '%d' is now %s", p.OrderID, order.Status(p.Status))

	default:
		return fmt.Errorf("unknown notification kind %q", msg.Kind)
	}

	return w.publisher.Publish(ctx, notification.Email{
		EventID: msg.EventID,
		Email:   email,
		Message: text,
	})
}

// reschedule records a failed attempt with exponential backoff, dropping the
// message once retries are exhausted.
func (w *Worker) reschedule(ctx context.Context, msg outbox.Message, cause error) {
	newRetryCount := msg.RetryCount + 1

	if newRetryCount > msg.MaxRetries {
		slog.Error("Notification retries exhausted, dropping message",
			"outbox_id", msg.ID,
			"retry_count", newRetryCount,
			"error", cause,
		)
		if err := w.outboxRepo.Delete(ctx, msg.ID); err != nil {
			slog.Error("Failed to drop exhausted notification", "outbox_id", msg.ID, "error", err)
		}

		return
	}

	backoffSeconds := math.Pow(2, float64(newRetryCount)) * 30 // 60s, 120s, 240s, etc.
	nextRetryAt := time.Now().Add(time.Duration(backoffSeconds) * time.Second)

	slog.Warn("Failed to dispatch notification, will retry",
		"outbox_id", msg.ID,
		"retry_count", newRetryCount,
		"next_retry", nextRetryAt,
		"error", cause,
	)

	if err := w.outboxRepo.UpdateRetry(ctx, msg.ID, newRetryCount, cause.Error(), nextRetryAt); err != nil {
		slog.Error("Failed to update retry information", "outbox_id", msg.ID, "error", err)
	}
}
