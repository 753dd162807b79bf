package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"breaktime.service/internal/core/model"
	"breaktime.service/internal/ports/repository"
	"github.com/rs/zerolog/log"
)

// Default look-back windows, in days, when a date range is left open.
const (
	DefaultRecordsDays = 7
	DefaultReportDays  = 30
)

// AdminService backs the administrative surface: the employee roster, record
// listings and reports.
type AdminService struct {
	repo repository.Repository
	loc  *time.Location
	now  func() time.Time
}

func NewAdminService(repo repository.Repository, loc *time.Location, opts ...Option) *AdminService {
	if loc == nil {
		loc = time.UTC
	}
	return &AdminService{repo: repo, loc: loc, now: buildOptions(opts).now}
}

func (s *AdminService) ListEmployees(ctx context.Context) ([]model.Employee, error) {
	return s.repo.ListEmployees(ctx)
}

func (s *AdminService) GetEmployee(ctx context.Context, id int64) (*model.Employee, error) {
	emp, err := s.repo.GetEmployee(ctx, id)
	if err != nil {
		return nil, err
	}
	if emp == nil {
		return nil, ErrEmployeeNotFound
	}
	return emp, nil
}

// CreateEmployee validates and stores a new employee. The code is stored upper-cased.
func (s *AdminService) CreateEmployee(ctx context.Context, e model.Employee) (*model.Employee, error) {
	e, err := normalizeEmployee(e)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.CreateEmployee(ctx, e)
	if err != nil {
		return nil, err
	}
	log.Ctx(ctx).Info().Int64("employee_id", created.ID).Str("employee_code", created.Code).Msg("Employee created")
	return created, nil
}

func (s *AdminService) UpdateEmployee(ctx context.Context, e model.Employee) error {
	e, err := normalizeEmployee(e)
	if err != nil {
		return err
	}

	ok, err := s.repo.UpdateEmployee(ctx, e)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEmployeeNotFound
	}
	log.Ctx(ctx).Info().Int64("employee_id", e.ID).Msg("Employee updated")
	return nil
}

// DeleteEmployee removes an employee and their open break. Employees with
// break history are refused with ErrEmployeeHasHistory.
func (s *AdminService) DeleteEmployee(ctx context.Context, id int64) error {
	ok, err := s.repo.DeleteEmployee(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrEmployeeNotFound
	}
	log.Ctx(ctx).Info().Int64("employee_id", id).Msg("Employee deleted")
	return nil
}

// ImportResult counts what an import did.
type ImportResult struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// ImportEmployees upserts a roster keyed by employee code. It stops at the first
// invalid entry; entries before it stay applied.
func (s *AdminService) ImportEmployees(ctx context.Context, roster []model.Employee) (ImportResult, error) {
	var res ImportResult

	for i, e := range roster {
		e, err := normalizeEmployee(e)
		if err != nil {
			return res, fmt.Errorf("entry %d: %w", i+1, err)
		}

		existing, err := s.repo.FindEmployeeByCode(ctx, e.Code)
		if err != nil {
			return res, fmt.Errorf("entry %d: %w", i+1, err)
		}

		if existing == nil {
			if _, err := s.repo.CreateEmployee(ctx, e); err != nil {
				return res, fmt.Errorf("entry %d (%s): %w", i+1, e.Code, err)
			}
			res.Created++
			continue
		}

		e.ID = existing.ID
		if _, err := s.repo.UpdateEmployee(ctx, e); err != nil {
			return res, fmt.Errorf("entry %d (%s): %w", i+1, e.Code, err)
		}
		res.Updated++
	}

	log.Ctx(ctx).Info().Int("created", res.Created).Int("updated", res.Updated).Msg("Roster imported")
	return res, nil
}

// ResolveRange fills an open date range: To defaults to today and From to
// days before To.
func (s *AdminService) ResolveRange(f model.RecordFilter, days int) model.RecordFilter {
	today := s.Today()
	if f.To == "" {
		f.To = today.Format(model.DateLayout)
	}
	if f.From == "" {
		end, err := time.ParseInLocation(model.DateLayout, f.To, s.loc)
		if err != nil {
			end = today
		}
		f.From = end.AddDate(0, 0, -days).Format(model.DateLayout)
	}
	return f
}

// Today is the current local calendar date at midnight.
func (s *AdminService) Today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

// Records lists break records. An open range covers the last DefaultRecordsDays days.
// The resolved filter is returned alongside the rows.
func (s *AdminService) Records(ctx context.Context, f model.RecordFilter) ([]model.BreakRecordView, model.RecordFilter, error) {
	f = s.ResolveRange(f, DefaultRecordsDays)
	if err := repository.ValidateFilter(f); err != nil {
		return nil, f, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	rows, err := s.repo.ListBreakRecords(ctx, f)
	if err != nil {
		return nil, f, fmt.Errorf("list break records: %w", err)
	}
	return rows, f, nil
}

// Report summarises break records between from and to. An open range covers the last
// DefaultReportDays days.
func (s *AdminService) Report(ctx context.Context, from, to string) (Report, error) {
	f := s.ResolveRange(model.RecordFilter{From: from, To: to}, DefaultReportDays)
	if err := repository.ValidateFilter(f); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	rows, err := s.repo.ListBreakRecords(ctx, f)
	if err != nil {
		return Report{}, fmt.Errorf("list break records: %w", err)
	}

	rep := Summarize(rows, s.Today())
	rep.From, rep.To = f.From, f.To
	return rep, nil
}

func normalizeEmployee(e model.Employee) (model.Employee, error) {
	e.Name = strings.TrimSpace(e.Name)
	e.Badge = strings.TrimSpace(e.Badge)
	e.Code = NormalizeCode(e.Code)
	e.Shift = model.Shift(strings.TrimSpace(string(e.Shift)))

	var missing []string
	if e.Name == "" {
		missing = append(missing, "name")
	}
	if e.Badge == "" {
		missing = append(missing, "badge")
	}
	if e.Code == "" {
		missing = append(missing, "code")
	}
	if len(missing) > 0 {
		return e, fmt.Errorf("%w: missing %s", ErrInvalidEmployee, strings.Join(missing, ", "))
	}
	if !e.Shift.Valid() {
		return e, fmt.Errorf("%w: unknown shift %q", ErrInvalidEmployee, e.Shift)
	}
	return e, nil
}

// IsValidationError reports whether err was caused by bad caller input.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidEmployee) || errors.Is(err, ErrInvalidRange)
}
