package consumption

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrInsufficientWeeks  = errors.New("at least two weeks are required")
	ErrZeroReferenceTotal = errors.New("reference week total is zero")
)

// SpikeFactor is how many times the mean daily cost a day must exceed to
// count as a spike.
const SpikeFactor = 2

type SavingsComparison struct {
	Saved      bool    `json:"saved"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Difference float64 `json:"difference"`
}

type WeekStats struct {
	Total     float64 `json:"total"`
	DateRange string  `json:"date_range"`
	Average   float64 `json:"average"`
}

// DayRef is a DailyRecord annotated with the date range of its week.
type DayRef struct {
	Day  string  `json:"day"`
	Cost float64 `json:"cost"`
	Date string  `json:"date"`
	Week string  `json:"week"`
}

type Summary struct {
	Utility          Utility           `json:"utility"`
	CurrentWeek      WeekStats         `json:"current_week"`
	LastWeek         WeekStats         `json:"last_week"`
	Savings          SavingsComparison `json:"savings"`
	HighestCostDay   DayRef            `json:"highest_cost_day"`
	AverageDailyCost float64           `json:"average_daily_cost"`
	Spikes           []DayRef          `json:"spikes"`
	TotalWeeks       int               `json:"total_weeks"`
}

// CalculateSavings compares two week totals. The percentage is relative to
// the reference week and rounded to one decimal.
func CalculateSavings(current, reference WeekRecord) (SavingsComparison, error) {
	if reference.Total == 0 {
		return SavingsComparison{}, ErrZeroReferenceTotal
	}
	difference := decimal.NewFromFloat(current.Total).Sub(decimal.NewFromFloat(reference.Total))
	amount := difference.Abs()
	percentage := amount.Div(decimal.NewFromFloat(reference.Total).Abs()).
		Mul(decimal.NewFromInt(100)).
		Round(1)

	return SavingsComparison{
		Saved:      difference.IsNegative(),
		Amount:     amount.InexactFloat64(),
		Percentage: percentage.InexactFloat64(),
		Difference: difference.InexactFloat64(),
	}, nil
}

// Summarize derives the aggregate view of a dataset. The week-over-week
// comparison uses weeks 0 and 1 only, while the highest day, the mean and
// the spikes cover every week in the dataset.
func Summarize(dataset Dataset) (Summary, error) {
	if len(dataset.Weeks) < 2 {
		return Summary{}, fmt.Errorf("%s: %w", dataset.Utility, ErrInsufficientWeeks)
	}
	current := dataset.Weeks[0]
	reference := dataset.Weeks[1]

	savings, err := CalculateSavings(current, reference)
	if err != nil {
		return Summary{}, fmt.Errorf("%s: %w", dataset.Utility, err)
	}

	allDays := flattenDays(dataset.Weeks)
	if len(allDays) == 0 {
		return Summary{}, fmt.Errorf("%s: dataset has no days", dataset.Utility)
	}

	highest := allDays[0]
	for _, day := range allDays[1:] {
		if day.Cost > highest.Cost {
			highest = day
		}
	}

	mean := stat.Mean(lo.Map(allDays, func(day DayRef, _ int) float64 { return day.Cost }), nil)
	threshold := mean * SpikeFactor
	spikes := lo.Filter(allDays, func(day DayRef, _ int) bool { return day.Cost > threshold })

	return Summary{
		Utility:          dataset.Utility,
		CurrentWeek:      weekStats(current),
		LastWeek:         weekStats(reference),
		Savings:          savings,
		HighestCostDay:   highest,
		AverageDailyCost: mean,
		Spikes:           spikes,
		TotalWeeks:       len(dataset.Weeks),
	}, nil
}

func flattenDays(weeks []WeekRecord) []DayRef {
	return lo.FlatMap(weeks, func(week WeekRecord, _ int) []DayRef {
		return lo.Map(week.Days, func(day DailyRecord, _ int) DayRef {
			return DayRef{Day: day.Day, Cost: day.Cost, Date: day.Date, Week: week.DateRange}
		})
	})
}

func weekStats(week WeekRecord) WeekStats {
	average := decimal.NewFromFloat(week.Total).
		Div(decimal.NewFromInt(DaysPerWeek)).
		Round(2)
	return WeekStats{
		Total:     week.Total,
		DateRange: week.DateRange,
		Average:   average.InexactFloat64(),
	}
}

// SpikeThreshold is the cost a day must exceed to be listed in Spikes.
func (s Summary) SpikeThreshold() float64 {
	return s.AverageDailyCost * SpikeFactor
}

// FormatAmount renders a currency amount with two decimals.
func FormatAmount(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(2)
}

// FormatNumber renders a value without trailing zeros, the way whole-peso
// totals are shown in replies.
func FormatNumber(value float64) string {
	return decimal.NewFromFloat(value).String()
}
