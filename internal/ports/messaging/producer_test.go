package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"breaktime.service/internal/core/model"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	inputs []*sqs.SendMessageInput
	err    error
}

func (f *fakeSQS) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.inputs = append(f.inputs, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, f.err
}

func TestSQSProducer_RoutesByQueue(t *testing.T) {
	client := &fakeSQS{}
	p := NewSQSProducer(client, "https://sqs/export", "https://sqs/alert")
	event := BreakClosedEvent{
		BreakRecordID:   9,
		EmployeeID:      3,
		EmployeeCode:    "ALC01",
		Category:        model.CategoryMeal,
		DurationMinutes: 52,
		ExcessMinutes:   12,
		ClosedAt:        time.Date(2025, 3, 14, 16, 0, 0, 0, time.UTC),
	}

	require.NoError(t, p.PublishExport(context.Background(), event))
	require.NoError(t, p.PublishAlert(context.Background(), event))
	require.Len(t, client.inputs, 2)

	assert.Equal(t, "https://sqs/export", aws.ToString(client.inputs[0].QueueUrl))
	assert.Equal(t, "https://sqs/alert", aws.ToString(client.inputs[1].QueueUrl))

	attr, ok := client.inputs[0].MessageAttributes[EventTypeAttribute]
	require.True(t, ok)
	assert.Equal(t, EventTypeClosed, aws.ToString(attr.StringValue))

	var got BreakClosedEvent
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.inputs[0].MessageBody)), &got))
	assert.Equal(t, event, got)
	assert.Contains(t, aws.ToString(client.inputs[0].MessageBody), `"employeeId":3`)
}

func TestSQSProducer_Errors(t *testing.T) {
	client := &fakeSQS{err: errors.New("queue gone")}
	p := NewSQSProducer(client, "https://sqs/export", "https://sqs/alert")

	err := p.PublishExport(context.Background(), BreakClosedEvent{})
	assert.ErrorContains(t, err, "queue gone")

	err = p.PublishExport(context.Background(), func() {})
	assert.ErrorContains(t, err, "marshal")
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.PublishExport(context.Background(), nil))
	assert.NoError(t, p.PublishAlert(context.Background(), nil))
}
