package messaging

import (
	"context"

	"breaktime.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// EventTypeAttribute names the SQS message attribute carrying the event type.
const (
	EventTypeAttribute = "EventType"
	EventTypeClosed    = "BREAK_CLOSED"
)

// SQSSender implements MessageSender for AWS SQS.
type SQSSender struct {
	client SQSClient
}

func (s *SQSSender) SendMessage(ctx context.Context, destination string, body []byte) error {
	// Inject trace context into message attributes
	attributes := telemetry.InjectTraceContext(ctx)
	attributes[EventTypeAttribute] = types.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(EventTypeClosed),
	}

	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:          aws.String(destination),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: attributes,
	})
	return err
}
