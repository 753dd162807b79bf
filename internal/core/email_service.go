package core

import (
	"context"
	"fmt"

	"breaktime.service/internal/ports/messaging"
	"breaktime.service/pkg/telemetry"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// AlertService notifies supervisors about breaks that ran over their limit.
type AlertService interface {
	SendExcessAlert(ctx context.Context, to string, event messaging.BreakClosedEvent) error
}

// SESClient is the subset of the SES client used here.
type SESClient interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SESAlertService struct {
	client SESClient
	sender string
}

func NewSESAlertService(client SESClient, sender string) *SESAlertService {
	return &SESAlertService{client: client, sender: sender}
}

func (s *SESAlertService) SendExcessAlert(ctx context.Context, to string, event messaging.BreakClosedEvent) error {
	tracer := otel.Tracer("ses-alert-service")
	ctx, span := tracer.Start(ctx, "send_excess_alert", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	if empID := telemetry.GetEmployeeIDFromContext(ctx); empID != 0 {
		span.SetAttributes(attribute.Int64("app.employee_id", empID))
	}

	subject, body := ExcessAlertMessage(event)

	input := &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body)},
			},
		},
	}

	_, err := s.client.SendEmail(ctx, input)
	return err
}

// ExcessAlertMessage renders the subject and plain-text body of an excess alert.
func ExcessAlertMessage(e messaging.BreakClosedEvent) (subject, body string) {
	subject = fmt.Sprintf("Exceso de descanso: %s (%s)", e.EmployeeName, e.EmployeeCode)
	body = fmt.Sprintf(
		"Hola,\n\n%s (%s, turno %s) cerró un %s el %s de %s a %s.\n"+
			"Duración: %d min. Permitido: %d min. Exceso: %d min.\n",
		e.EmployeeName, e.EmployeeCode, e.EmployeeShift,
		e.Category, e.Date, e.StartTime, e.EndTime,
		e.DurationMinutes, AllowedMinutes(e.Category), e.ExcessMinutes,
	)
	return subject, body
}
