// Package consumption holds the weekly utility datasets and the summaries
// derived from them.
package consumption

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Utility string

const (
	Electricity Utility = "electricity"
	Water       Utility = "water"
)

var Utilities = []Utility{Electricity, Water}

var ErrUnknownUtility = errors.New("unknown utility")

// ParseUtility accepts the canonical names plus the Spanish labels used by
// the dashboard.
func ParseUtility(raw string) (Utility, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "electricity", "electricidad", "luz", "cfe":
		return Electricity, nil
	case "water", "agua":
		return Water, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUtility, raw)
	}
}

func (u Utility) Label() string {
	switch u {
	case Electricity:
		return "Electricidad"
	case Water:
		return "Agua"
	default:
		return string(u)
	}
}

func (u Utility) Unit() string {
	switch u {
	case Electricity:
		return "kWh"
	case Water:
		return "m³"
	default:
		return ""
	}
}

const DaysPerWeek = 7

// DailyRecord is one calendar day of usage. Cost is in MXN; Quantity is in
// the utility's unit.
type DailyRecord struct {
	Day      string  `json:"day" yaml:"day"`
	Cost     float64 `json:"cost" yaml:"cost"`
	Quantity float64 `json:"quantity" yaml:"quantity"`
	Date     string  `json:"date" yaml:"date"`
}

type WeekRecord struct {
	Number    int           `json:"week_number" yaml:"week_number"`
	DateRange string        `json:"date_range" yaml:"date_range"`
	StartDate string        `json:"start_date" yaml:"start_date"`
	EndDate   string        `json:"end_date" yaml:"end_date"`
	Days      []DailyRecord `json:"days" yaml:"days"`
	Total     float64       `json:"total" yaml:"total"`
}

// Dataset is one utility's weeks, most recent first.
type Dataset struct {
	Utility Utility      `json:"utility" yaml:"utility"`
	Weeks   []WeekRecord `json:"weeks" yaml:"weeks"`
}

func (w WeekRecord) DaysTotal() float64 {
	sum := decimal.Zero
	for _, day := range w.Days {
		sum = sum.Add(decimal.NewFromFloat(day.Cost))
	}
	return sum.InexactFloat64()
}

func (w WeekRecord) Validate() error {
	if len(w.Days) != DaysPerWeek {
		return fmt.Errorf("week %d: expected %d days, got %d", w.Number, DaysPerWeek, len(w.Days))
	}
	for _, raw := range []string{w.StartDate, w.EndDate} {
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			return fmt.Errorf("week %d: invalid date %q: %w", w.Number, raw, err)
		}
	}
	for _, day := range w.Days {
		if day.Cost < 0 || day.Quantity < 0 {
			return fmt.Errorf("week %d: negative usage on %s", w.Number, day.Date)
		}
		if _, err := time.Parse(time.DateOnly, day.Date); err != nil {
			return fmt.Errorf("week %d: invalid day date %q: %w", w.Number, day.Date, err)
		}
	}
	if !decimal.NewFromFloat(w.Total).Equal(decimal.NewFromFloat(w.DaysTotal())) {
		return fmt.Errorf("week %d: total %v does not match day costs %v", w.Number, w.Total, w.DaysTotal())
	}
	return nil
}

func (d Dataset) Validate() error {
	if _, err := ParseUtility(string(d.Utility)); err != nil {
		return err
	}
	if len(d.Weeks) == 0 {
		return fmt.Errorf("%s dataset has no weeks", d.Utility)
	}
	for _, week := range d.Weeks {
		if err := week.Validate(); err != nil {
			return fmt.Errorf("%s dataset: %w", d.Utility, err)
		}
	}
	return nil
}
