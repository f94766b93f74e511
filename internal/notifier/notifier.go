// Package notifier publishes run summaries to NATS so downstream reporting
// consumers can react to completed loads without polling the database.
package notifier

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/vaxtrack/etl/customer-country-etl/internal/usecase"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/logger"
	"gitlab.com/vaxtrack/etl/customer-country-etl/pkg/utils"
)

// Notifier publishes pipeline run summaries to a NATS subject.
type Notifier interface {
	PublishRunSummary(ctx context.Context, summary *usecase.RunSummary) error
	Close()
}

// NoopNotifier is used when NATS publishing is disabled.
type NoopNotifier struct{}

func (NoopNotifier) PublishRunSummary(context.Context, *usecase.RunSummary) error { return nil }
func (NoopNotifier) Close()                                                       {}

// NatsNotifier publishes run summaries over a plain NATS connection.
type NatsNotifier struct {
	nc      *nats.Conn
	subject string
}

// NewNatsNotifier connects to the NATS server at url. The connection retries
// in the background, so a publisher can come up before the broker does.
func NewNatsNotifier(url, subject string) (*NatsNotifier, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NatsNotifier{nc: nc, subject: subject}, nil
}

// PublishRunSummary sends the summary as JSON. Publish failures are the
// caller's to decide on; the pipeline treats them as non-fatal because the
// database already holds the run's results.
func (n *NatsNotifier) PublishRunSummary(ctx context.Context, summary *usecase.RunSummary) error {
	payload := utils.MustMarshalJSON(summary)

	if err := n.nc.Publish(n.subject, payload); err != nil {
		return fmt.Errorf("failed to publish run summary: %w", err)
	}

	logger.FromContext(ctx).Info("Published run summary",
		zap.String("subject", n.subject),
		zap.Int("bytes", len(payload)))
	return nil
}

// Close drains the connection, flushing any buffered publishes.
func (n *NatsNotifier) Close() {
	if n.nc == nil {
		return
	}
	if err := n.nc.Drain(); err != nil {
		logger.Log.Warn("Failed to drain NATS connection", zap.Error(err))
	}
}
