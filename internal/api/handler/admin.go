package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"breaktime.service/internal/core"
	"breaktime.service/internal/core/model"
	"breaktime.service/internal/export"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

type AdminHandler struct {
	Admin  *core.AdminService
	Breaks *core.BreakService
}

func (h *AdminHandler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Admin.ListEmployees(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if employees == nil {
		employees = []model.Employee{}
	}
	writeJSON(w, r, http.StatusOK, employees)
}

func (h *AdminHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var e model.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.Admin.CreateEmployee(r.Context(), e)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, created)
}

func (h *AdminHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var e model.Employee
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	e.ID = id

	if err := h.Admin.UpdateEmployee(r.Context(), e); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, e)
}

func (h *AdminHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.Admin.DeleteEmployee(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) Records(w http.ResponseWriter, r *http.Request) {
	filter, ok := recordFilter(w, r)
	if !ok {
		return
	}

	rows, filter, err := h.Admin.Records(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if rows == nil {
		rows = []model.BreakRecordView{}
	}

	totalMinutes := 0
	for _, row := range rows {
		totalMinutes += row.DurationMinutes
	}
	average := 0.0
	if len(rows) > 0 {
		average = math.Round(float64(totalMinutes)/float64(len(rows))*10) / 10
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"from":             filter.From,
		"to":               filter.To,
		"total_records":    len(rows),
		"total_minutes":    totalMinutes,
		"average_duration": average,
		"records":          rows,
	})
}

// RecordsCSV streams the filtered records as a CSV download.
func (h *AdminHandler) RecordsCSV(w http.ResponseWriter, r *http.Request) {
	filter, ok := recordFilter(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("from") == "" {
		// Exports default to the report window, not the listing one.
		filter = h.Admin.ResolveRange(filter, core.DefaultReportDays)
	}

	rows, filter, err := h.Admin.Records(r.Context(), filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(filter.From, filter.To)))
	w.WriteHeader(http.StatusOK)
	if err := export.WriteRecords(w, rows); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write CSV export")
	}
}

func (h *AdminHandler) Report(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rep, err := h.Admin.Report(r.Context(), q.Get("from"), q.Get("to"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, rep)
}

// ForceClose closes an active break on behalf of an administrator.
func (h *AdminHandler) ForceClose(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	res := h.Breaks.ForceClose(r.Context(), id)

	status := http.StatusOK
	switch {
	case res.IsStoreFailure():
		status = http.StatusInternalServerError
	case res.Reason == core.ReasonNotOnBreak:
		status = http.StatusNotFound
	}
	writeJSON(w, r, status, res)
}

func (h *AdminHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case core.IsValidationError(err):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrDuplicateEmployeeCode), errors.Is(err, core.ErrEmployeeHasHistory):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, core.ErrEmployeeNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Admin request failed")
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return 0, false
	}
	return id, true
}

func recordFilter(w http.ResponseWriter, r *http.Request) (model.RecordFilter, bool) {
	q := r.URL.Query()
	f := model.RecordFilter{From: q.Get("from"), To: q.Get("to")}

	if raw := q.Get("employee_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid employee_id")
			return f, false
		}
		f.EmployeeID = id
	}
	return f, true
}
