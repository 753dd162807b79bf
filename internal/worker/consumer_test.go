package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSQS struct {
	mu         sync.Mutex
	batches    [][]types.Message
	deleted    []string
	visibility map[string]int32
	receives   int
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, in *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	f.mu.Lock()
	f.receives++
	if len(f.batches) > 0 {
		batch := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: batch}, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

func (f *fakeSQS) DeleteMessage(_ context.Context, in *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, aws.ToString(in.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func (f *fakeSQS) ChangeMessageVisibility(_ context.Context, in *sqs.ChangeMessageVisibilityInput, _ ...func(*sqs.Options)) (*sqs.ChangeMessageVisibilityOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.visibility == nil {
		f.visibility = map[string]int32{}
	}
	f.visibility[aws.ToString(in.ReceiptHandle)] = in.VisibilityTimeout
	return &sqs.ChangeMessageVisibilityOutput{}, nil
}

// outcomeProcessor decides the outcome from the message body.
type outcomeProcessor struct {
	mu   sync.Mutex
	seen []string
}

func (p *outcomeProcessor) Process(_ context.Context, msg types.Message) (bool, int32, error) {
	p.mu.Lock()
	p.seen = append(p.seen, aws.ToString(msg.Body))
	p.mu.Unlock()

	switch aws.ToString(msg.Body) {
	case "retry":
		return true, 40, errors.New("downstream unavailable")
	case "poison":
		return false, 0, errors.New("malformed")
	}
	return false, 0, nil
}

func message(handle, body string) types.Message {
	return types.Message{
		MessageId:     aws.String("id-" + handle),
		ReceiptHandle: aws.String(handle),
		Body:          aws.String(body),
	}
}

func TestWorker_HandlesOutcomes(t *testing.T) {
	client := &fakeSQS{batches: [][]types.Message{{
		message("h-ok", "ok"),
		message("h-retry", "retry"),
		message("h-poison", "poison"),
	}}}
	proc := &outcomeProcessor{}

	w := NewWorker(client, "http://queue", proc)
	w.Concurrency = 2

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		proc.mu.Lock()
		defer proc.mu.Unlock()
		return len(proc.seen) == 3
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, []string{"h-ok"}, client.deleted)
	assert.Equal(t, map[string]int32{"h-retry": 40}, client.visibility)
}

func TestReceiveCount(t *testing.T) {
	assert.Equal(t, 1, ReceiveCount(types.Message{}))
	assert.Equal(t, 1, ReceiveCount(types.Message{Attributes: map[string]string{"ApproximateReceiveCount": "junk"}}))
	assert.Equal(t, 4, ReceiveCount(types.Message{Attributes: map[string]string{"ApproximateReceiveCount": "4"}}))
}

func TestBackoff(t *testing.T) {
	assert.Equal(t, int32(10), Backoff(0))
	assert.Equal(t, int32(20), Backoff(1))
	assert.Equal(t, int32(80), Backoff(3))
	assert.Equal(t, int32(3600), Backoff(9))
	assert.Equal(t, int32(3600), Backoff(40))
	assert.Equal(t, int32(10), Backoff(-2))
}
