package core

import (
	"fmt"
	"testing"
	"time"

	"breaktime.service/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func view(empID int64, name, date string, c model.Category, minutes int) model.BreakRecordView {
	return model.BreakRecordView{
		BreakRecord: model.BreakRecord{
			EmployeeID:      empID,
			Category:        c,
			Date:            date,
			DurationMinutes: minutes,
		},
		EmployeeName: name,
		EmployeeCode: fmt.Sprintf("E%02d", empID),
	}
}

func TestSummarize(t *testing.T) {
	today := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	records := []model.BreakRecordView{
		view(1, "Ana", "2025-03-14", model.CategoryShortBreak, 25),
		view(1, "Ana", "2025-03-14", model.CategoryMeal, 45),
		view(2, "Bruno", "2025-03-14", model.CategoryShortBreak, 12),
		view(2, "Bruno", "2025-03-10", model.CategoryMeal, 70),
		view(3, "Carla", "2025-03-07", model.CategoryShortBreak, 18),
		view(3, "Carla", "2025-03-01", model.CategoryShortBreak, 19),
	}

	rep := Summarize(records, today)

	assert.Equal(t, CategoryTotals{
		ShortBreaks:       4,
		Meals:             2,
		ShortBreakMinutes: 74,
		MealMinutes:       115,
		AverageShortBreak: 18.5,
		AverageMeal:       57.5,
	}, rep.Totals)

	assert.Equal(t, PeriodStats{
		Breaks:            3,
		Minutes:           82,
		AverageMinutes:    27.3,
		Meals:             1,
		ShortBreaks:       2,
		MealMinutes:       45,
		ShortBreakMinutes: 37,
	}, rep.Today)

	// The week covers 2025-03-07 through today.
	assert.Equal(t, 5, rep.LastWeek.Breaks)
	assert.Equal(t, 170, rep.LastWeek.Minutes)

	require.Len(t, rep.PerDay, 4)
	assert.Equal(t, "2025-03-01", rep.PerDay[0].Date)
	assert.Equal(t, DayStats{Date: "2025-03-14", ShortBreaks: 2, Meals: 1, UniqueEmployees: 2}, rep.PerDay[3])

	require.Len(t, rep.TopExcess, 2)
	assert.Equal(t, EmployeeExcess{
		Rank: 1, EmployeeID: 2, EmployeeName: "Bruno", EmployeeCode: "E02",
		ShortBreaks: 1, Meals: 1, TotalMinutes: 82, ExcessMinutes: 30,
	}, rep.TopExcess[0])
	assert.Equal(t, 2, rep.TopExcess[1].Rank)
	assert.Equal(t, "Ana", rep.TopExcess[1].EmployeeName)
	assert.Equal(t, 10, rep.TopExcess[1].ExcessMinutes)
}

func TestSummarize_TopExcessCappedAndTieBroken(t *testing.T) {
	today := time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)
	var records []model.BreakRecordView
	for i := int64(1); i <= 12; i++ {
		records = append(records, view(i, fmt.Sprintf("Emp%02d", 13-i), "2025-03-14", model.CategoryShortBreak, 30))
	}

	rep := Summarize(records, today)
	require.Len(t, rep.TopExcess, 10)
	assert.Equal(t, "Emp01", rep.TopExcess[0].EmployeeName)
	assert.Equal(t, "Emp10", rep.TopExcess[9].EmployeeName)
	assert.Equal(t, 10, rep.TopExcess[9].Rank)
}

func TestSummarize_Empty(t *testing.T) {
	rep := Summarize(nil, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC))

	assert.Zero(t, rep.Totals)
	assert.Zero(t, rep.Today.AverageMinutes)
	assert.Empty(t, rep.PerDay)
	assert.NotNil(t, rep.TopExcess)
	assert.Empty(t, rep.TopExcess)
}
