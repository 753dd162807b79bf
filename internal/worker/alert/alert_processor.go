package alert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"breaktime.service/internal/core"
	"breaktime.service/internal/ports/messaging"
	"breaktime.service/internal/worker"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

const defaultMaxAttempts = 8

// AlertProcessor e-mails a supervisor for every closed break that ran over its limit.
// SES is called through a circuit breaker so an outage does not burn through retries.
type AlertProcessor struct {
	alerts    core.AlertService
	recipient string
	cb        *gobreaker.CircuitBreaker
	// MaxAttempts bounds deliveries before a message is left to the queue's redrive policy.
	MaxAttempts int
}

// NewProcessor sets up a new processor for the alert queue.
func NewProcessor(alerts core.AlertService, recipient string) *AlertProcessor {
	return &AlertProcessor{
		alerts:      alerts,
		recipient:   recipient,
		cb:          worker.NewCircuitBreaker("SES-Alerts"),
		MaxAttempts: defaultMaxAttempts,
	}
}

// Process is the main entry point for handling a message from the alert queue.
func (p *AlertProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.BreakClosedEvent
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal alert event")
		return false, 0, err // Do not retry on malformed message
	}

	logger := log.Ctx(ctx).With().
		Int64("break_record_id", event.BreakRecordID).
		Int64("employee_id", event.EmployeeID).
		Logger()

	if event.ExcessMinutes <= 0 {
		logger.Debug().Msg("Break within limits, no alert needed")
		return false, 0, nil
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.alerts.SendExcessAlert(ctx, p.recipient, event)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			logger.Warn().Msg("Circuit breaker is open, skipping SES call")
		}

		attempt := worker.ReceiveCount(msg)
		if attempt >= p.MaxAttempts {
			return false, 0, fmt.Errorf("alert not sent after %d attempts: %w", attempt, err)
		}
		return true, worker.Backoff(attempt), err
	}

	logger.Info().Int("excess_minutes", event.ExcessMinutes).Msg("Excess alert sent")
	return false, 0, nil
}
