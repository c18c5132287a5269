package nats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/resilience"
)

const (
	DefaultRecordedSubject  = "salaysay.recorded"
	DefaultReprocessSubject = "salaysay.reprocess"

	workerQueueGroup = "workers"
)

// Queue publishes record events and carries reprocess requests between the API and workers.
type Queue struct {
	conn             *nats.Conn
	recordedSubject  string
	reprocessSubject string
	executor         *resilience.Executor
	logger           *slog.Logger
}

type Options struct {
	RecordedSubject      string
	ReprocessSubject     string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func NewWithOptions(url string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	// negative means reconnect forever
	maxReconnects := options.MaxReconnects
	if maxReconnects == 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("neu-salaysay-tracker"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:             conn,
		recordedSubject:  subjectOrDefault(options.RecordedSubject, DefaultRecordedSubject),
		reprocessSubject: subjectOrDefault(options.ReprocessSubject, DefaultReprocessSubject),
		executor:         options.ResilienceExecutor,
		logger:           logger,
	}, nil
}

func subjectOrDefault(subject, fallback string) string {
	if s := strings.TrimSpace(subject); s != "" {
		return s
	}
	return fallback
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// PublishRecorded announces that a record was persisted.
func (q *Queue) PublishRecorded(ctx context.Context, recordID string) error {
	return q.publish(ctx, q.recordedSubject, recordID)
}

// PublishReprocess asks a worker to rerun the pipeline for a stored record.
func (q *Queue) PublishReprocess(ctx context.Context, recordID string) error {
	return q.publish(ctx, q.reprocessSubject, recordID)
}

func (q *Queue) publish(ctx context.Context, subject, recordID string) error {
	call := func(_ context.Context) error {
		if err := q.conn.Publish(subject, []byte(recordID)); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	var err error
	if q.executor != nil {
		err = q.executor.Execute(ctx, "nats.publish", call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	return publishError(subject, err)
}

// SubscribeReprocess consumes reprocess requests in the shared worker queue group until ctx is done.
func (q *Queue) SubscribeReprocess(ctx context.Context, handler func(context.Context, string) error) error {
	sub, err := q.conn.QueueSubscribe(q.reprocessSubject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		recordID := strings.TrimSpace(string(msg.Data))
		if recordID == "" {
			q.logger.Warn("reprocess_message_empty", "subject", msg.Subject)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, recordID); err != nil {
			q.logger.Error("reprocess_handler_failed", "record_id", recordID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}
