package core

import (
	"math"
	"sort"
	"time"

	"breaktime.service/internal/core/model"
)

const topExcessLimit = 10

type PeriodStats struct {
	Breaks            int     `json:"total_breaks"`
	Minutes           int     `json:"total_minutes"`
	AverageMinutes    float64 `json:"average_minutes"`
	Meals             int     `json:"meals"`
	ShortBreaks       int     `json:"short_breaks"`
	MealMinutes       int     `json:"meal_minutes"`
	ShortBreakMinutes int     `json:"short_break_minutes"`
}

type CategoryTotals struct {
	ShortBreaks       int     `json:"short_breaks"`
	Meals             int     `json:"meals"`
	ShortBreakMinutes int     `json:"short_break_minutes"`
	MealMinutes       int     `json:"meal_minutes"`
	AverageShortBreak float64 `json:"average_short_break"`
	AverageMeal       float64 `json:"average_meal"`
}

type DayStats struct {
	Date            string `json:"date"`
	ShortBreaks     int    `json:"short_breaks"`
	Meals           int    `json:"meals"`
	UniqueEmployees int    `json:"unique_employees"`
}

type EmployeeExcess struct {
	Rank          int    `json:"rank"`
	EmployeeID    int64  `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	EmployeeCode  string `json:"employee_code"`
	ShortBreaks   int    `json:"short_breaks"`
	Meals         int    `json:"meals"`
	TotalMinutes  int    `json:"total_minutes"`
	ExcessMinutes int    `json:"excess_minutes"`
}

// Report aggregates break records over a date range.
type Report struct {
	From      string           `json:"from"`
	To        string           `json:"to"`
	Totals    CategoryTotals   `json:"totals"`
	Today     PeriodStats      `json:"today"`
	LastWeek  PeriodStats      `json:"last_week"`
	PerDay    []DayStats       `json:"per_day"`
	TopExcess []EmployeeExcess `json:"top_excess"`
}

// Summarize computes the report for records relative to today (a local calendar date).
// PerDay is in ascending date order. TopExcess holds at most ten employees, all with
// excess > 0, highest excess first.
func Summarize(records []model.BreakRecordView, today time.Time) Report {
	todayStr := today.Format(model.DateLayout)
	weekStart := today.AddDate(0, 0, -7).Format(model.DateLayout)

	var (
		rep      Report
		todayAcc periodAcc
		weekAcc  periodAcc
	)
	days := map[string]*dayAcc{}
	employees := map[int64]*EmployeeExcess{}

	for _, r := range records {
		meal := r.Category == model.CategoryMeal
		if meal {
			rep.Totals.Meals++
			rep.Totals.MealMinutes += r.DurationMinutes
		} else {
			rep.Totals.ShortBreaks++
			rep.Totals.ShortBreakMinutes += r.DurationMinutes
		}

		if r.Date == todayStr {
			todayAcc.add(meal, r.DurationMinutes)
		}
		if r.Date >= weekStart {
			weekAcc.add(meal, r.DurationMinutes)
		}

		d, ok := days[r.Date]
		if !ok {
			d = &dayAcc{employees: map[int64]struct{}{}}
			days[r.Date] = d
		}
		if meal {
			d.meals++
		} else {
			d.shortBreaks++
		}
		d.employees[r.EmployeeID] = struct{}{}

		e, ok := employees[r.EmployeeID]
		if !ok {
			e = &EmployeeExcess{EmployeeID: r.EmployeeID, EmployeeName: r.EmployeeName, EmployeeCode: r.EmployeeCode}
			employees[r.EmployeeID] = e
		}
		if meal {
			e.Meals++
		} else {
			e.ShortBreaks++
		}
		e.TotalMinutes += r.DurationMinutes
		e.ExcessMinutes += ExcessMinutes(r.Category, r.DurationMinutes)
	}

	rep.Totals.AverageShortBreak = average(rep.Totals.ShortBreakMinutes, rep.Totals.ShortBreaks)
	rep.Totals.AverageMeal = average(rep.Totals.MealMinutes, rep.Totals.Meals)
	rep.Today = todayAcc.stats()
	rep.LastWeek = weekAcc.stats()

	rep.PerDay = make([]DayStats, 0, len(days))
	for date, d := range days {
		rep.PerDay = append(rep.PerDay, DayStats{
			Date:            date,
			ShortBreaks:     d.shortBreaks,
			Meals:           d.meals,
			UniqueEmployees: len(d.employees),
		})
	}
	sort.Slice(rep.PerDay, func(i, j int) bool { return rep.PerDay[i].Date < rep.PerDay[j].Date })

	rep.TopExcess = make([]EmployeeExcess, 0, topExcessLimit)
	for _, e := range employees {
		if e.ExcessMinutes > 0 {
			rep.TopExcess = append(rep.TopExcess, *e)
		}
	}
	sort.Slice(rep.TopExcess, func(i, j int) bool {
		a, b := rep.TopExcess[i], rep.TopExcess[j]
		if a.ExcessMinutes != b.ExcessMinutes {
			return a.ExcessMinutes > b.ExcessMinutes
		}
		return a.EmployeeName < b.EmployeeName
	})
	if len(rep.TopExcess) > topExcessLimit {
		rep.TopExcess = rep.TopExcess[:topExcessLimit]
	}
	for i := range rep.TopExcess {
		rep.TopExcess[i].Rank = i + 1
	}

	return rep
}

type periodAcc struct {
	PeriodStats
}

func (p *periodAcc) add(meal bool, minutes int) {
	p.Breaks++
	p.Minutes += minutes
	if meal {
		p.Meals++
		p.MealMinutes += minutes
	} else {
		p.ShortBreaks++
		p.ShortBreakMinutes += minutes
	}
}

func (p *periodAcc) stats() PeriodStats {
	s := p.PeriodStats
	s.AverageMinutes = average(s.Minutes, s.Breaks)
	return s
}

type dayAcc struct {
	shortBreaks int
	meals       int
	employees   map[int64]struct{}
}

// average rounds to one decimal; zero when n is zero.
func average(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return math.Round(float64(total)/float64(n)*10) / 10
}
