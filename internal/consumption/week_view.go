package consumption

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

var ErrWeekNotFound = errors.New("week not found")

// WeekView is the dashboard projection of a single selected week.
type WeekView struct {
	Utility   Utility           `json:"utility"`
	Index     int               `json:"index"`
	Week      WeekRecord        `json:"week"`
	IsCurrent bool              `json:"is_current"`
	Savings   SavingsComparison `json:"savings"`
	// RoundedAverage is the week total over its days, rounded to a whole peso.
	RoundedAverage float64       `json:"rounded_average"`
	Spikes         []DailyRecord `json:"spikes"`
	Unit           string        `json:"unit"`
}

// ViewWeek projects the week at index. Savings always compare the selected
// week against the reference week (index 1); the dashboard only presents
// them for the current week.
func ViewWeek(dataset Dataset, index int) (WeekView, error) {
	if index < 0 || index >= len(dataset.Weeks) {
		return WeekView{}, fmt.Errorf("%s week %d: %w", dataset.Utility, index, ErrWeekNotFound)
	}
	if len(dataset.Weeks) < 2 {
		return WeekView{}, fmt.Errorf("%s: %w", dataset.Utility, ErrInsufficientWeeks)
	}
	week := dataset.Weeks[index]

	savings, err := CalculateSavings(week, dataset.Weeks[1])
	if err != nil {
		return WeekView{}, fmt.Errorf("%s: %w", dataset.Utility, err)
	}

	average := 0.0
	if len(week.Days) > 0 {
		average = decimal.NewFromFloat(week.Total).
			Div(decimal.NewFromInt(int64(len(week.Days)))).
			Round(0).
			InexactFloat64()
	}
	spikes := lo.Filter(week.Days, func(day DailyRecord, _ int) bool {
		return day.Cost > average*SpikeFactor
	})

	return WeekView{
		Utility:        dataset.Utility,
		Index:          index,
		Week:           week,
		IsCurrent:      index == 0,
		Savings:        savings,
		RoundedAverage: average,
		Spikes:         spikes,
		Unit:           dataset.Utility.Unit(),
	}, nil
}
