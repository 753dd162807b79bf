package telemetry

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

func TestTraceContextRoundTripsThroughSQSAttributes(t *testing.T) {
	otel.SetTextMapPropagator(propagation.TraceContext{})
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, parent := tp.Tracer("test").Start(context.Background(), "publish")
	attrs := InjectTraceContext(ctx)
	parent.End()

	require.Contains(t, attrs, "traceparent")

	msg := types.Message{
		MessageId:         aws.String("m-1"),
		Body:              aws.String(`{"employeeId": 42, "category": "COMIDA"}`),
		MessageAttributes: attrs,
	}
	ctx, span := StartSpanFromSQSMessage(context.Background(), msg)
	defer span.End()

	assert.Equal(t, parent.SpanContext().TraceID(), trace.SpanContextFromContext(ctx).TraceID())
	assert.Equal(t, int64(42), GetEmployeeIDFromContext(ctx))
}

func TestStartSpanFromSQSMessage_NoBody(t *testing.T) {
	ctx, span := StartSpanFromSQSMessage(context.Background(), types.Message{})
	defer span.End()

	assert.Zero(t, GetEmployeeIDFromContext(ctx))
}
