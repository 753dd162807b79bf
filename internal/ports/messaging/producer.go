package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Producer struct {
	sender         MessageSender
	exportQueueURL string
	alertQueueURL  string
}

func NewProducer(sender MessageSender, exportQueueURL, alertQueueURL string) *Producer {
	return &Producer{
		sender:         sender,
		exportQueueURL: exportQueueURL,
		alertQueueURL:  alertQueueURL,
	}
}

func NewSQSProducer(client SQSClient, exportQueueURL, alertQueueURL string) *Producer {
	return NewProducer(&SQSSender{client: client}, exportQueueURL, alertQueueURL)
}

func (p *Producer) PublishExport(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.exportQueueURL, body)
}

func (p *Producer) PublishAlert(ctx context.Context, body interface{}) error {
	return p.publish(ctx, p.alertQueueURL, body)
}

func (p *Producer) publish(ctx context.Context, destination string, body interface{}) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal body: %w", err)
	}

	// Enrich the current span with employee_id if available
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		var payload struct {
			EmployeeID int64 `json:"employeeId"`
		}
		if err := json.Unmarshal(b, &payload); err == nil && payload.EmployeeID != 0 {
			span.SetAttributes(attribute.Int64("app.employee_id", payload.EmployeeID))
		}
	}

	if err := p.sender.SendMessage(ctx, destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
