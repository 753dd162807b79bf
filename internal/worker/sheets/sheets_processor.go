package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"time"

	"breaktime.service/internal/core"
	"breaktime.service/internal/core/model"
	"breaktime.service/internal/ports/messaging"
	"breaktime.service/internal/worker"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// SheetName is the tab closed breaks are appended to.
const SheetName = "Registros"

// Header is the column layout of the records tab.
var Header = []string{
	"Fecha", "Día Semana", "Nombre", "Código", "Turno",
	"Tipo", "Entrada", "Salida", "Duración (min)",
	"Duración (h)", "Exceso (min)", "Estado",
}

// SheetsProcessor handles jobs from the export queue by appending each closed break to
// the spreadsheet. It uses a circuit breaker to avoid hammering the webhook if it's
// having issues.
type SheetsProcessor struct {
	client Client
	cb     *gobreaker.CircuitBreaker
}

// NewProcessor creates a new processor for the export queue.
func NewProcessor(client Client) *SheetsProcessor {
	return &SheetsProcessor{
		client: client,
		cb:     worker.NewCircuitBreaker("Sheets-Webhook"),
	}
}

// Process calls the webhook through the circuit breaker and retries with exponential backoff.
func (p *SheetsProcessor) Process(ctx context.Context, msg types.Message) (bool, int32, error) {
	var event messaging.BreakClosedEvent
	if err := json.Unmarshal([]byte(aws.ToString(msg.Body)), &event); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to unmarshal export event")
		return false, 0, err // Do not retry on malformed message
	}

	log.Ctx(ctx).Info().
		Int64("break_record_id", event.BreakRecordID).
		Str("employee_code", event.EmployeeCode).
		Int("duration_minutes", event.DurationMinutes).
		Msg("Exporting closed break")

	req := AppendRequest{
		Sheet:  SheetName,
		RowID:  strconv.FormatInt(event.BreakRecordID, 10),
		Header: Header,
		Values: Row(event),
	}

	_, err := p.cb.Execute(func() (interface{}, error) {
		return nil, p.client.AppendRow(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			log.Ctx(ctx).Warn().Msg("Circuit breaker is open, skipping sheets call")
		}
		return true, worker.Backoff(worker.ReceiveCount(msg)), err
	}

	return false, 0, nil
}

// Row renders a closed break in the column order of Header.
func Row(e messaging.BreakClosedEvent) []interface{} {
	date, weekday := e.Date, ""
	if t, err := time.Parse(model.DateLayout, e.Date); err == nil {
		date = t.Format("02/01/2006")
		weekday = t.Weekday().String()
	}

	excess := core.ExcessMinutes(e.Category, e.DurationMinutes)

	return []interface{}{
		date,
		weekday,
		e.EmployeeName,
		e.EmployeeCode,
		string(e.EmployeeShift),
		string(e.Category),
		e.StartTime,
		e.EndTime,
		e.DurationMinutes,
		math.Round(float64(e.DurationMinutes)/60*100) / 100,
		excess,
		core.ExcessStatus(excess),
	}
}
