package nats

import (
	"context"
	"errors"

	"github.com/nats-io/nats.go"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/infrastructure/resilience"
)

// connection states in which a publish is worth retrying
var transientPublishErrors = []error{
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrConnectionDraining,
	nats.ErrConnectionReconnecting,
	nats.ErrDisconnected,
}

func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled):
		return resilience.ErrorClassification{}
	case errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{RecordFailure: true}
	case resilience.IsCircuitOpen(err), isTransientPublishError(err):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	case isRejectedMessage(err):
		// the broker is healthy; the message itself is wrong
		return resilience.ErrorClassification{}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

func isTransientPublishError(err error) bool {
	for _, target := range transientPublishErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isRejectedMessage(err error) bool {
	return errors.Is(err, nats.ErrBadSubject) || errors.Is(err, nats.ErrMaxPayload)
}

// publishError maps a failed publish on subject onto a domain error kind.
func publishError(subject string, err error) error {
	op := "publish " + subject
	switch {
	case err == nil:
		return nil
	case domain.IsKind(err, domain.ErrTemporary), domain.IsKind(err, domain.ErrInvalidInput):
		return err
	case isRejectedMessage(err):
		return domain.WrapError(domain.ErrInvalidInput, op, err)
	case classifyPublishError(err).Retryable, errors.Is(err, context.DeadlineExceeded):
		return domain.WrapError(domain.ErrTemporary, op, err)
	default:
		return err
	}
}
