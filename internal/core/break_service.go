package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"breaktime.service/internal/core/model"
	"breaktime.service/internal/ports/messaging"
	"breaktime.service/internal/ports/repository"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type BreakService struct {
	repo      repository.Repository
	publisher messaging.Publisher
	loc       *time.Location
	now       func() time.Time
}

type options struct {
	now func() time.Time
}

// Option customises the services in this package.
type Option func(*options)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewBreakService wires the engine to its store, event publisher and local timezone.
// A nil publisher disables events; a nil location means UTC.
func NewBreakService(repo repository.Repository, p messaging.Publisher, loc *time.Location, opts ...Option) *BreakService {
	if p == nil {
		p = messaging.NopPublisher{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &BreakService{
		repo:      repo,
		publisher: p,
		loc:       loc,
		now:       buildOptions(opts).now,
	}
}

// Location is the timezone used for calendar dates and wall-clock times.
func (s *BreakService) Location() *time.Location {
	return s.loc
}

// ResolveEmployee finds the employee behind a scan token: badge first, then the
// upper-cased employee code. It returns ErrEmployeeNotFound when neither matches.
func (s *BreakService) ResolveEmployee(ctx context.Context, token string) (*model.Employee, error) {
	emp, err := s.repo.FindEmployeeByBadge(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("find employee by badge: %w", err)
	}
	if emp != nil {
		return emp, nil
	}

	emp, err = s.repo.FindEmployeeByCode(ctx, NormalizeCode(token))
	if err != nil {
		return nil, fmt.Errorf("find employee by code: %w", err)
	}
	if emp != nil {
		return emp, nil
	}

	return nil, ErrEmployeeNotFound
}

// Scan is the core business logic. It figures out whether the employee behind the
// token is starting or ending a break by checking for an open break.
func (s *BreakService) Scan(ctx context.Context, raw string) ScanResult {
	token := ParseScan(raw)
	if token == "" {
		return failure(ReasonInvalidScan, "Lectura vacía o inválida", nil)
	}

	emp, err := s.ResolveEmployee(ctx, token)
	if errors.Is(err, ErrEmployeeNotFound) {
		log.Ctx(ctx).Info().Str("token", token).Msg("Scan did not match any employee")
		return failure(ReasonNotFound, "Usuario no encontrado", nil)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("token", token).Msg("Employee lookup failed")
		return failure(ReasonStoreReadFailure, "Error al procesar la lectura", err)
	}

	ctx = withEmployee(ctx, emp)
	now := s.now().UTC()

	active, err := s.repo.FindActiveBreak(ctx, emp.ID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Active break lookup failed")
		res := failure(ReasonStoreReadFailure, fmt.Sprintf("Error al procesar la lectura de %s", emp.Name), err)
		return withIdentity(res, emp)
	}

	if active == nil {
		return s.openBreak(ctx, emp, now)
	}
	return s.closeBreak(ctx, emp, active, now)
}

// openBreak handles the WORKING -> ON_BREAK transition.
func (s *BreakService) openBreak(ctx context.Context, emp *model.Employee, now time.Time) ScanResult {
	ab, err := s.repo.CreateActiveBreak(ctx, emp.ID, now)
	if errors.Is(err, repository.ErrActiveBreakExists) {
		// Another scan for the same employee won the race between lookup and insert.
		log.Ctx(ctx).Warn().Msg("Break already open, concurrent scan detected")
		res := failure(ReasonAlreadyOnBreak, fmt.Sprintf("%s ya tiene un descanso activo", emp.Name), ErrAlreadyOnBreak)
		return withIdentity(res, emp)
	}
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("Failed to create active break")
		res := failure(ReasonStoreWriteFailure, fmt.Sprintf("Error al registrar entrada de %s", emp.Name), err)
		return withIdentity(res, emp)
	}

	log.Ctx(ctx).Info().Int64("active_break_id", ab.ID).Time("started_at", ab.StartedAt).Msg("Break started")

	return withIdentity(ScanResult{
		Status:  StatusBreakStarted,
		Success: true,
		Message: fmt.Sprintf("%s - Entrada a descanso registrada", emp.Name),
	}, emp)
}

// closeBreak handles the ON_BREAK -> WORKING transition.
//
// Losing history is fatal: if the record insert fails the active break stays so the
// employee can scan again. A stray active row is only a warning: the record exists,
// so the close is reported as successful.
func (s *BreakService) closeBreak(ctx context.Context, emp *model.Employee, active *model.ActiveBreak, now time.Time) ScanResult {
	logger := log.Ctx(ctx).With().Int64("active_break_id", active.ID).Logger()

	cls := Classify(active.StartedAt, now)
	start := active.StartedAt.In(s.loc)
	end := now.In(s.loc)

	rec, err := s.repo.CreateBreakRecord(ctx, model.BreakRecord{
		EmployeeID:      emp.ID,
		ActiveBreakID:   active.ID,
		Category:        cls.Category,
		Date:            start.Format(model.DateLayout),
		StartTime:       start.Format(model.TimeLayout),
		EndTime:         end.Format(model.TimeLayout),
		DurationMinutes: cls.Minutes,
	})
	if errors.Is(err, repository.ErrBreakAlreadyClosed) {
		// The record is stored, the row is a leftover. Clear it so the next scan opens.
		deleted, derr := s.repo.DeleteActiveBreak(ctx, active.ID)
		if derr != nil {
			logger.Error().Err(derr).Msg("Break already closed, leftover active break not removed")
			res := failure(ReasonStoreWriteFailure, fmt.Sprintf("Error al registrar salida de %s", emp.Name), derr)
			return withIdentity(res, emp)
		}
		logger.Warn().Bool("deleted", deleted).Msg("Break already closed, leftover active break removed")
		res := failure(ReasonNotOnBreak, fmt.Sprintf("El descanso de %s ya fue cerrado", emp.Name), ErrNotOnBreak)
		return withIdentity(res, emp)
	}
	if err != nil {
		logger.Error().Err(err).Msg("Failed to insert break record, active break kept")
		res := failure(ReasonStoreWriteFailure, fmt.Sprintf("Error al registrar salida de %s", emp.Name), err)
		return withIdentity(res, emp)
	}

	res := ScanResult{
		Status:          StatusBreakEnded,
		Success:         true,
		Category:        rec.Category,
		DurationMinutes: rec.DurationMinutes,
		BreakRecordID:   rec.ID,
		Message: fmt.Sprintf("%s - Salida registrada (Descanso cerrado: %s de %d min)",
			emp.Name, rec.Category, rec.DurationMinutes),
	}

	deleted, err := s.repo.DeleteActiveBreak(ctx, active.ID)
	if err != nil || !deleted {
		logger.Warn().Err(err).Bool("deleted", deleted).Msg("Active break deletion not confirmed")
		res.Warnings = append(res.Warnings, WarningActiveBreakNotDeleted)
	}

	remaining, err := s.repo.CountActiveBreaks(ctx, emp.ID)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("Post-close verification failed")
	case remaining > 0:
		logger.Warn().Int("remaining", remaining).Msg("Active breaks remain after close")
		res.Warnings = append(res.Warnings, WarningPostConditionAnomaly)
		res.RemainingActive = remaining
	}

	logger.Info().
		Str("category", string(rec.Category)).
		Int("duration_minutes", rec.DurationMinutes).
		Int64("break_record_id", rec.ID).
		Msg("Break closed")

	s.publishClosed(ctx, emp, rec, now)

	return withIdentity(res, emp)
}

// publishClosed emits the break-closed event. Failures never undo the close.
func (s *BreakService) publishClosed(ctx context.Context, emp *model.Employee, rec *model.BreakRecord, now time.Time) {
	event := messaging.BreakClosedEvent{
		BreakRecordID:   rec.ID,
		EmployeeID:      emp.ID,
		EmployeeName:    emp.Name,
		EmployeeCode:    emp.Code,
		EmployeeShift:   emp.Shift,
		Category:        rec.Category,
		Date:            rec.Date,
		StartTime:       rec.StartTime,
		EndTime:         rec.EndTime,
		DurationMinutes: rec.DurationMinutes,
		ExcessMinutes:   ExcessMinutes(rec.Category, rec.DurationMinutes),
		ClosedAt:        now,
	}

	if err := s.publisher.PublishExport(ctx, event); err != nil {
		log.Ctx(ctx).Warn().Err(err).Msg("Failed to publish break export event")
	}
	if event.ExcessMinutes > 0 {
		if err := s.publisher.PublishAlert(ctx, event); err != nil {
			log.Ctx(ctx).Warn().Err(err).Msg("Failed to publish break alert event")
		}
	}
}

// ForceClose closes an active break by ID on behalf of an administrator.
// Breaks whose employee no longer exists are deleted without a record.
func (s *BreakService) ForceClose(ctx context.Context, activeBreakID int64) ScanResult {
	active, err := s.repo.GetActiveBreak(ctx, activeBreakID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("active_break_id", activeBreakID).Msg("Active break lookup failed")
		return failure(ReasonStoreReadFailure, "Error al buscar el descanso", err)
	}
	if active == nil {
		return failure(ReasonNotOnBreak, "Descanso no encontrado", ErrActiveBreakNotFound)
	}

	emp, err := s.repo.GetEmployee(ctx, active.EmployeeID)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Int64("employee_id", active.EmployeeID).Msg("Employee lookup failed")
		return failure(ReasonStoreReadFailure, "Error al buscar el empleado", err)
	}
	if emp == nil {
		deleted, err := s.repo.DeleteActiveBreak(ctx, active.ID)
		if err != nil {
			return failure(ReasonStoreWriteFailure, "Error al eliminar descanso huérfano", err)
		}
		log.Ctx(ctx).Warn().Int64("active_break_id", active.ID).Int64("employee_id", active.EmployeeID).
			Bool("deleted", deleted).Msg("Orphaned active break removed")
		return ScanResult{Status: StatusBreakEnded, Success: true, Message: "Descanso huérfano eliminado"}
	}

	return s.closeBreak(withEmployee(ctx, emp), emp, active, s.now().UTC())
}

// ActiveBreakView is one row of the live dashboard.
type ActiveBreakView struct {
	ActiveBreakID int64     `json:"active_break_id"`
	EmployeeID    int64     `json:"employee_id"`
	EmployeeName  string    `json:"employee_name"`
	EmployeeCode  string    `json:"employee_code"`
	StartedAt     time.Time `json:"started_at"`
	StartedLocal  string    `json:"started_local"`
	Estimate
}

// ActiveBreaks lists who is on break right now with the in-progress estimate.
// Breaks whose employee cannot be found are skipped and logged.
func (s *BreakService) ActiveBreaks(ctx context.Context) ([]ActiveBreakView, error) {
	breaks, err := s.repo.ListActiveBreaks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active breaks: %w", err)
	}

	now := s.now().UTC()
	views := make([]ActiveBreakView, 0, len(breaks))

	for _, ab := range breaks {
		emp, err := s.repo.GetEmployee(ctx, ab.EmployeeID)
		if err != nil {
			log.Ctx(ctx).Error().Err(err).Int64("active_break_id", ab.ID).Msg("Employee lookup failed, skipping break")
			continue
		}
		if emp == nil {
			log.Ctx(ctx).Warn().
				Int64("active_break_id", ab.ID).
				Int64("employee_id", ab.EmployeeID).
				Msg("Orphaned active break, employee not found")
			continue
		}

		views = append(views, ActiveBreakView{
			ActiveBreakID: ab.ID,
			EmployeeID:    emp.ID,
			EmployeeName:  emp.Name,
			EmployeeCode:  emp.Code,
			StartedAt:     ab.StartedAt,
			StartedLocal:  ab.StartedAt.In(s.loc).Format("15:04"),
			Estimate:      EstimateInProgress(ab.StartedAt, now),
		})
	}

	return views, nil
}

func withEmployee(ctx context.Context, emp *model.Employee) context.Context {
	l := zerolog.Ctx(ctx).With().Int64("employee_id", emp.ID).Str("employee_code", emp.Code).Logger()
	return l.WithContext(ctx)
}

func withIdentity(res ScanResult, emp *model.Employee) ScanResult {
	res.EmployeeName = emp.Name
	res.EmployeeCode = emp.Code
	return res
}
