package consumption

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaultDatasetsAreConsistent(t *testing.T) {
	catalog, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	for _, utility := range Utilities {
		dataset, err := catalog.Dataset(utility)
		if err != nil {
			t.Fatalf("dataset %s: %v", utility, err)
		}
		if len(dataset.Weeks) != 4 {
			t.Fatalf("%s: expected 4 weeks, got %d", utility, len(dataset.Weeks))
		}
		for _, w := range dataset.Weeks {
			if len(w.Days) != DaysPerWeek {
				t.Fatalf("%s week %d: expected 7 days", utility, w.Number)
			}
			if w.Total != w.DaysTotal() {
				t.Fatalf("%s week %d: total %v != %v", utility, w.Number, w.Total, w.DaysTotal())
			}
		}
	}
}

func TestDefaultElectricitySummary(t *testing.T) {
	catalog, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	summary, err := catalog.Summary(Electricity)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.CurrentWeek.Total != 505 || summary.LastWeek.Total != 331 {
		t.Fatalf("unexpected totals: %+v %+v", summary.CurrentWeek, summary.LastWeek)
	}
	want := SavingsComparison{Saved: false, Amount: 174, Percentage: 52.6, Difference: 174}
	if summary.Savings != want {
		t.Fatalf("expected savings %+v, got %+v", want, summary.Savings)
	}
	if summary.HighestCostDay.Day != "Sáb" || summary.HighestCostDay.Cost != 142 {
		t.Fatalf("unexpected highest day: %+v", summary.HighestCostDay)
	}
	if summary.AverageDailyCost != 61 {
		t.Fatalf("expected mean 61, got %v", summary.AverageDailyCost)
	}
	if len(summary.Spikes) != 2 {
		t.Fatalf("expected 2 spikes, got %+v", summary.Spikes)
	}
	if summary.CurrentWeek.Average != 72.14 {
		t.Fatalf("expected current average 72.14, got %v", summary.CurrentWeek.Average)
	}
}

func TestDefaultWaterSummary(t *testing.T) {
	catalog, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	summary, err := catalog.Summary(Water)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.Savings.Saved || summary.Savings.Amount != 120 {
		t.Fatalf("unexpected water savings: %+v", summary.Savings)
	}
	if summary.HighestCostDay.Cost != 96 || summary.HighestCostDay.Week != "7 Oct - 13 Oct" {
		t.Fatalf("unexpected water highest day: %+v", summary.HighestCostDay)
	}
	if FormatAmount(summary.AverageDailyCost) != "39.07" {
		t.Fatalf("unexpected water mean: %v", summary.AverageDailyCost)
	}
}

func TestCatalogDatasetReturnsCopy(t *testing.T) {
	catalog, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	dataset, _ := catalog.Dataset(Water)
	dataset.Weeks[0].Days[0].Cost = 9999

	again, _ := catalog.Dataset(Water)
	if again.Weeks[0].Days[0].Cost == 9999 {
		t.Fatalf("catalog must not be mutated through returned datasets")
	}
}

func TestParseRejectsInconsistentTotal(t *testing.T) {
	raw := []byte(`
datasets:
  - utility: agua
    weeks:
      - week_number: 1
        date_range: "a"
        start_date: "2025-10-14"
        end_date: "2025-10-20"
        total: 8
        days:
          - {day: "Lun", cost: 1, quantity: 1, date: "2025-10-14"}
          - {day: "Mar", cost: 1, quantity: 1, date: "2025-10-15"}
          - {day: "Mié", cost: 1, quantity: 1, date: "2025-10-16"}
          - {day: "Jue", cost: 1, quantity: 1, date: "2025-10-17"}
          - {day: "Vie", cost: 1, quantity: 1, date: "2025-10-18"}
          - {day: "Sáb", cost: 1, quantity: 1, date: "2025-10-19"}
          - {day: "Dom", cost: 1, quantity: 1, date: "2025-10-20"}
`)
	_, err := Parse(raw)
	if err == nil || !strings.Contains(err.Error(), "does not match") {
		t.Fatalf("expected total mismatch error, got %v", err)
	}
}

func TestParseRequiresBothUtilities(t *testing.T) {
	_, err := Parse([]byte("datasets: []\n"))
	if err == nil || !strings.Contains(err.Error(), "missing") {
		t.Fatalf("expected missing dataset error, got %v", err)
	}
}

func TestLoadFileRoundTripsBundledData(t *testing.T) {
	electricity, err := defaultData.ReadFile("data/electricity.yaml")
	if err != nil {
		t.Fatalf("read bundled: %v", err)
	}
	water, err := defaultData.ReadFile("data/water.yaml")
	if err != nil {
		t.Fatalf("read bundled: %v", err)
	}
	var b strings.Builder
	b.WriteString("datasets:\n")
	for _, doc := range [][]byte{electricity, water} {
		for i, line := range strings.Split(strings.TrimRight(string(doc), "\n"), "\n") {
			if i == 0 {
				b.WriteString("  - " + line + "\n")
				continue
			}
			b.WriteString("    " + line + "\n")
		}
	}

	filePath := filepath.Join(t.TempDir(), "datasets.yaml")
	if err := os.WriteFile(filePath, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	catalog, err := Load(filePath)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	summary, err := catalog.Summary(Electricity)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.CurrentWeek.Total != 505 {
		t.Fatalf("expected 505, got %v", summary.CurrentWeek.Total)
	}
}

func TestParseUtility(t *testing.T) {
	cases := map[string]Utility{
		"electricity":   Electricity,
		" Electricidad": Electricity,
		"luz":           Electricity,
		"AGUA":          Water,
		"water":         Water,
	}
	for raw, want := range cases {
		got, err := ParseUtility(raw)
		if err != nil || got != want {
			t.Fatalf("ParseUtility(%q) = %q, %v", raw, got, err)
		}
	}
	if _, err := ParseUtility("gas"); !errors.Is(err, ErrUnknownUtility) {
		t.Fatalf("expected ErrUnknownUtility, got %v", err)
	}
}

func TestCombinedWeekTotal(t *testing.T) {
	catalog, err := LoadDefault()
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	electricity, water, combined, err := catalog.CombinedWeekTotal(0)
	if err != nil {
		t.Fatalf("combined: %v", err)
	}
	if electricity != 505 || water != 209 || combined != 714 {
		t.Fatalf("unexpected totals %v + %v = %v", electricity, water, combined)
	}
	if _, _, _, err := catalog.CombinedWeekTotal(9); !errors.Is(err, ErrWeekNotFound) {
		t.Fatalf("expected ErrWeekNotFound, got %v", err)
	}
}

func TestNewCatalogRejectsDatasetsThatCannotBeSummarized(t *testing.T) {
	valid := []WeekRecord{
		week(1, "a", 10, 10, 10, 10, 10, 10, 10),
		week(2, "b", 20, 20, 20, 20, 20, 20, 20),
	}
	cases := []struct {
		name  string
		weeks []WeekRecord
		want  error
	}{
		{"single week", valid[:1], ErrInsufficientWeeks},
		{"zero reference total", []WeekRecord{valid[0], week(2, "b", 0, 0, 0, 0, 0, 0, 0)}, ErrZeroReferenceTotal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewCatalog(
				Dataset{Utility: Electricity, Weeks: tc.weeks},
				Dataset{Utility: Water, Weeks: valid},
			)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := NewCatalog(Dataset{Utility: Electricity, Weeks: valid}, Dataset{Utility: Water, Weeks: valid}); err != nil {
		t.Fatalf("two summarizable weeks must load: %v", err)
	}
}
