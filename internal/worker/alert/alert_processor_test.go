package alert

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"breaktime.service/internal/core/model"
	"breaktime.service/internal/ports/messaging"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAlerts struct {
	err  error
	sent []messaging.BreakClosedEvent
	to   []string
}

func (f *fakeAlerts) SendExcessAlert(_ context.Context, to string, e messaging.BreakClosedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.sent = append(f.sent, e)
	return nil
}

func eventMessage(t *testing.T, e messaging.BreakClosedEvent, receiveCount string) types.Message {
	t.Helper()
	b, err := json.Marshal(e)
	require.NoError(t, err)
	msg := types.Message{MessageId: aws.String("m"), Body: aws.String(string(b))}
	if receiveCount != "" {
		msg.Attributes = map[string]string{"ApproximateReceiveCount": receiveCount}
	}
	return msg
}

var overLimit = messaging.BreakClosedEvent{
	BreakRecordID: 9, EmployeeID: 1, EmployeeName: "Alicia", EmployeeCode: "ALC01",
	Category: model.CategoryShortBreak, DurationMinutes: 27, ExcessMinutes: 7,
}

func TestProcess_SendsAlert(t *testing.T) {
	alerts := &fakeAlerts{}
	p := NewProcessor(alerts, "boss@example.com")

	retry, _, err := p.Process(context.Background(), eventMessage(t, overLimit, ""))

	require.NoError(t, err)
	assert.False(t, retry)
	require.Len(t, alerts.sent, 1)
	assert.Equal(t, []string{"boss@example.com"}, alerts.to)
	assert.Equal(t, int64(9), alerts.sent[0].BreakRecordID)
}

func TestProcess_SkipsWithinLimit(t *testing.T) {
	alerts := &fakeAlerts{}
	p := NewProcessor(alerts, "boss@example.com")

	ok := overLimit
	ok.DurationMinutes, ok.ExcessMinutes = 15, 0

	retry, _, err := p.Process(context.Background(), eventMessage(t, ok, ""))
	require.NoError(t, err)
	assert.False(t, retry)
	assert.Empty(t, alerts.sent)
}

func TestProcess_RetriesWithBackoff(t *testing.T) {
	p := NewProcessor(&fakeAlerts{err: errors.New("throttled")}, "boss@example.com")

	retry, delay, err := p.Process(context.Background(), eventMessage(t, overLimit, "2"))
	assert.Error(t, err)
	assert.True(t, retry)
	assert.Equal(t, int32(40), delay)
}

func TestProcess_GivesUpAfterMaxAttempts(t *testing.T) {
	p := NewProcessor(&fakeAlerts{err: errors.New("throttled")}, "boss@example.com")
	p.MaxAttempts = 3

	retry, _, err := p.Process(context.Background(), eventMessage(t, overLimit, "3"))
	assert.Error(t, err)
	assert.False(t, retry)
}

func TestProcess_MalformedIsNotRetried(t *testing.T) {
	p := NewProcessor(&fakeAlerts{}, "boss@example.com")

	retry, _, err := p.Process(context.Background(), types.Message{Body: aws.String("{not json")})
	assert.Error(t, err)
	assert.False(t, retry)
}
