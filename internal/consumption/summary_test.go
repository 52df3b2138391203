package consumption

import (
	"errors"
	"reflect"
	"testing"
)

func week(number int, dateRange string, costs ...float64) WeekRecord {
	names := []string{"Lun", "Mar", "Mié", "Jue", "Vie", "Sáb", "Dom"}
	days := make([]DailyRecord, len(costs))
	total := 0.0
	for i, cost := range costs {
		days[i] = DailyRecord{
			Day:      names[i%len(names)],
			Cost:     cost,
			Quantity: cost / 4,
			Date:     "2025-10-" + twoDigits(number*7+i),
		}
		total += cost
	}
	return WeekRecord{
		Number:    number,
		DateRange: dateRange,
		StartDate: days[0].Date,
		EndDate:   days[len(days)-1].Date,
		Days:      days,
		Total:     total,
	}
}

func twoDigits(n int) string {
	n = n%28 + 1
	return string(rune('0'+n/10)) + string(rune('0'+n%10))
}

func TestCalculateSavingsIncrease(t *testing.T) {
	current := WeekRecord{Total: 505}
	reference := WeekRecord{Total: 331}

	got, err := CalculateSavings(current, reference)
	if err != nil {
		t.Fatalf("calculate savings: %v", err)
	}
	want := SavingsComparison{Saved: false, Amount: 174, Percentage: 52.6, Difference: 174}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestCalculateSavingsDecrease(t *testing.T) {
	got, err := CalculateSavings(WeekRecord{Total: 209}, WeekRecord{Total: 329})
	if err != nil {
		t.Fatalf("calculate savings: %v", err)
	}
	if !got.Saved {
		t.Fatalf("expected saved=true")
	}
	if got.Amount != 120 || got.Difference != -120 {
		t.Fatalf("unexpected amount/difference: %+v", got)
	}
	if got.Percentage != 36.5 {
		t.Fatalf("expected 36.5%%, got %v", got.Percentage)
	}
}

func TestCalculateSavingsEqualTotalsIsNotSaved(t *testing.T) {
	got, err := CalculateSavings(WeekRecord{Total: 100}, WeekRecord{Total: 100})
	if err != nil {
		t.Fatalf("calculate savings: %v", err)
	}
	if got.Saved || got.Amount != 0 || got.Percentage != 0 {
		t.Fatalf("unexpected comparison for equal totals: %+v", got)
	}
}

func TestCalculateSavingsRejectsZeroReference(t *testing.T) {
	_, err := CalculateSavings(WeekRecord{Total: 10}, WeekRecord{Total: 0})
	if !errors.Is(err, ErrZeroReferenceTotal) {
		t.Fatalf("expected ErrZeroReferenceTotal, got %v", err)
	}
}

func TestSummarizeRequiresTwoWeeks(t *testing.T) {
	_, err := Summarize(Dataset{Utility: Water, Weeks: []WeekRecord{week(1, "a", 1, 1, 1, 1, 1, 1, 1)}})
	if !errors.Is(err, ErrInsufficientWeeks) {
		t.Fatalf("expected ErrInsufficientWeeks, got %v", err)
	}
}

func TestSummarizePropagatesZeroReference(t *testing.T) {
	dataset := Dataset{Utility: Water, Weeks: []WeekRecord{
		week(1, "a", 1, 1, 1, 1, 1, 1, 1),
		week(2, "b", 0, 0, 0, 0, 0, 0, 0),
	}}
	if _, err := Summarize(dataset); !errors.Is(err, ErrZeroReferenceTotal) {
		t.Fatalf("expected ErrZeroReferenceTotal, got %v", err)
	}
}

func TestSummarizeScansEveryWeek(t *testing.T) {
	dataset := Dataset{Utility: Electricity, Weeks: []WeekRecord{
		week(1, "current", 10, 10, 10, 10, 10, 10, 10),
		week(2, "reference", 10, 10, 10, 10, 10, 10, 10),
		week(3, "older", 10, 10, 10, 200, 10, 10, 10),
	}}

	summary, err := Summarize(dataset)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.HighestCostDay.Cost != 200 || summary.HighestCostDay.Week != "older" {
		t.Fatalf("expected highest day from the older week, got %+v", summary.HighestCostDay)
	}
	if summary.CurrentWeek.DateRange != "current" || summary.LastWeek.DateRange != "reference" {
		t.Fatalf("comparison must use weeks 0 and 1, got %+v / %+v", summary.CurrentWeek, summary.LastWeek)
	}
	if len(summary.Spikes) != 1 || summary.Spikes[0].Cost != 200 {
		t.Fatalf("expected a single spike of 200, got %+v", summary.Spikes)
	}
	if summary.TotalWeeks != 3 {
		t.Fatalf("expected 3 weeks, got %d", summary.TotalWeeks)
	}
}

func TestSummarizeHighestDayTieKeepsEarliest(t *testing.T) {
	dataset := Dataset{Utility: Water, Weeks: []WeekRecord{
		week(1, "first", 5, 90, 5, 5, 5, 90, 5),
		week(2, "second", 90, 5, 5, 5, 5, 5, 5),
	}}

	summary, err := Summarize(dataset)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	first := dataset.Weeks[0].Days[1]
	if summary.HighestCostDay.Date != first.Date || summary.HighestCostDay.Week != "first" {
		t.Fatalf("expected earliest record %s, got %+v", first.Date, summary.HighestCostDay)
	}
}

func TestSummarizeMeanAndSpikeProperties(t *testing.T) {
	dataset := Dataset{Utility: Electricity, Weeks: []WeekRecord{
		week(1, "a", 45, 52, 125, 48, 55, 142, 38),
		week(2, "b", 42, 48, 51, 44, 53, 58, 35),
		week(3, "c", 50, 55, 62, 48, 71, 68, 40),
	}}

	summary, err := Summarize(dataset)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	sum, count := 0.0, 0
	for _, w := range dataset.Weeks {
		for _, d := range w.Days {
			sum += d.Cost
			count++
		}
	}
	if summary.AverageDailyCost != sum/float64(count) {
		t.Fatalf("expected mean %v, got %v", sum/float64(count), summary.AverageDailyCost)
	}

	inSpikes := map[string]bool{}
	for _, s := range summary.Spikes {
		if s.Cost <= 2*summary.AverageDailyCost {
			t.Fatalf("spike %+v does not exceed threshold %v", s, 2*summary.AverageDailyCost)
		}
		inSpikes[s.Date] = true
	}
	for _, w := range dataset.Weeks {
		for _, d := range w.Days {
			if d.Cost > 2*summary.AverageDailyCost && !inSpikes[d.Date] {
				t.Fatalf("day %+v exceeds threshold but is not a spike", d)
			}
		}
	}
}

func TestSummarizeAmountMatchesTotals(t *testing.T) {
	dataset := Dataset{Utility: Water, Weeks: []WeekRecord{
		week(1, "a", 26, 30, 32, 28, 33, 38, 22),
		week(2, "b", 28, 32, 85, 30, 34, 96, 24),
	}}
	summary, err := Summarize(dataset)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	current, reference := dataset.Weeks[0].Total, dataset.Weeks[1].Total
	diff := current - reference
	if diff < 0 {
		diff = -diff
	}
	if summary.Savings.Amount != diff {
		t.Fatalf("expected amount %v, got %v", diff, summary.Savings.Amount)
	}
	if summary.Savings.Saved != (current < reference) {
		t.Fatalf("saved flag mismatch: %+v", summary.Savings)
	}
	if summary.CurrentWeek.Average != 29.86 {
		t.Fatalf("expected current average 29.86, got %v", summary.CurrentWeek.Average)
	}
}

func TestSummarizeIsIdempotent(t *testing.T) {
	catalog, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	dataset, err := catalog.Dataset(Electricity)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	first, err := Summarize(dataset)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	second, err := Summarize(dataset)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical summaries:\n%+v\n%+v", first, second)
	}
}

func TestFormatting(t *testing.T) {
	if got := FormatAmount(174); got != "174.00" {
		t.Fatalf("FormatAmount(174) = %q", got)
	}
	if got := FormatAmount(39.0714285714); got != "39.07" {
		t.Fatalf("FormatAmount(39.07...) = %q", got)
	}
	if got := FormatNumber(505); got != "505" {
		t.Fatalf("FormatNumber(505) = %q", got)
	}
	if got := FormatNumber(72.14); got != "72.14" {
		t.Fatalf("FormatNumber(72.14) = %q", got)
	}
}
