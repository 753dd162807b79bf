package core

import (
	"time"

	"breaktime.service/internal/core/model"
)

// Final classification, applied once when a break closes.
const MealThresholdMinutes = 30

// In-progress estimate shown on the live dashboard. Its meal cutoff is lower than the
// final classification's.
const (
	EstimateMealThresholdMinutes = 20
	ShortBreakAllowedMinutes     = 20
	MealAllowedMinutes           = 40
)

// Classification is the outcome of closing a break.
type Classification struct {
	Minutes  int
	Category model.Category
}

// Estimate is the provisional view of a break that is still open.
type Estimate struct {
	ElapsedMinutes    int            `json:"minutes_elapsed"`
	Category          model.Category `json:"category_estimate"`
	MaxAllowedMinutes int            `json:"max_allowed_minutes"`
	RemainingMinutes  int            `json:"minutes_remaining"`
}

// Classify turns a closed interval into whole minutes and a category.
// Every break counts for at least one minute. An end before start (clock skew) is
// treated as zero elapsed time.
func Classify(start, end time.Time) Classification {
	minutes := elapsedMinutes(start, end)
	if minutes < 1 {
		minutes = 1
	}

	category := model.CategoryShortBreak
	if minutes >= MealThresholdMinutes {
		category = model.CategoryMeal
	}

	return Classification{Minutes: minutes, Category: category}
}

// EstimateInProgress computes the dashboard fields for a break that started at start.
func EstimateInProgress(start, now time.Time) Estimate {
	elapsed := elapsedMinutes(start, now)

	est := Estimate{
		ElapsedMinutes:    elapsed,
		Category:          model.CategoryShortBreak,
		MaxAllowedMinutes: ShortBreakAllowedMinutes,
	}
	if elapsed >= EstimateMealThresholdMinutes {
		est.Category = model.CategoryMeal
		est.MaxAllowedMinutes = MealAllowedMinutes
	}

	est.RemainingMinutes = est.MaxAllowedMinutes - elapsed
	if est.RemainingMinutes < 0 {
		est.RemainingMinutes = 0
	}
	return est
}

// AllowedMinutes is the maximum duration tolerated for a category.
func AllowedMinutes(c model.Category) int {
	if c == model.CategoryMeal {
		return MealAllowedMinutes
	}
	return ShortBreakAllowedMinutes
}

// ExcessMinutes is how far a closed break ran over its allowance.
func ExcessMinutes(c model.Category, minutes int) int {
	excess := minutes - AllowedMinutes(c)
	if excess < 0 {
		return 0
	}
	return excess
}

func elapsedMinutes(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}

// Excess labels used on exported sheets.
const (
	ExcessNone = "NORMAL"
	ExcessSome = "CON EXCESO"
	ExcessHigh = "EXCESO ALTO"
)

// HighExcessMinutes is the excess above which a break is flagged ExcessHigh.
const HighExcessMinutes = 30

// ExcessStatus labels an excess in minutes.
func ExcessStatus(excess int) string {
	switch {
	case excess > HighExcessMinutes:
		return ExcessHigh
	case excess > 0:
		return ExcessSome
	}
	return ExcessNone
}
