package consumption

import (
	"embed"
	"fmt"
	"os"
	"path"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var defaultData embed.FS

// Catalog holds one dataset per utility. It is built once at startup and
// never mutated afterwards, so it is safe to share between goroutines.
type Catalog struct {
	datasets map[Utility]Dataset
}

type catalogFile struct {
	Datasets []Dataset `yaml:"datasets"`
}

// LoadDefault returns the datasets bundled with the binary.
func LoadDefault() (*Catalog, error) {
	datasets := make([]Dataset, 0, len(Utilities))
	for _, utility := range Utilities {
		raw, err := defaultData.ReadFile(path.Join("data", string(utility)+".yaml"))
		if err != nil {
			return nil, fmt.Errorf("reading bundled %s dataset: %w", utility, err)
		}
		var dataset Dataset
		if err := yaml.Unmarshal(raw, &dataset); err != nil {
			return nil, fmt.Errorf("parsing bundled %s dataset: %w", utility, err)
		}
		datasets = append(datasets, dataset)
	}
	return NewCatalog(datasets...)
}

// LoadFile reads a YAML file with a top-level `datasets` list.
func LoadFile(filePath string) (*Catalog, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("reading dataset file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing dataset file: %w", err)
	}
	return NewCatalog(file.Datasets...)
}

// Load returns the bundled datasets when filePath is empty.
func Load(filePath string) (*Catalog, error) {
	if filePath == "" {
		return LoadDefault()
	}
	return LoadFile(filePath)
}

func NewCatalog(datasets ...Dataset) (*Catalog, error) {
	catalog := &Catalog{datasets: make(map[Utility]Dataset, len(datasets))}
	for _, dataset := range datasets {
		utility, err := ParseUtility(string(dataset.Utility))
		if err != nil {
			return nil, err
		}
		dataset.Utility = utility
		if err := dataset.Validate(); err != nil {
			return nil, err
		}
		// Every turn summarizes; a dataset that cannot be summarized is refused here.
		if _, err := Summarize(dataset); err != nil {
			return nil, err
		}
		if _, dup := catalog.datasets[utility]; dup {
			return nil, fmt.Errorf("duplicate %s dataset", utility)
		}
		catalog.datasets[utility] = cloneDataset(dataset)
	}
	for _, utility := range Utilities {
		if _, ok := catalog.datasets[utility]; !ok {
			return nil, fmt.Errorf("missing %s dataset", utility)
		}
	}
	return catalog, nil
}

// Dataset returns a copy so callers cannot mutate the catalog.
func (c *Catalog) Dataset(utility Utility) (Dataset, error) {
	dataset, ok := c.datasets[utility]
	if !ok {
		return Dataset{}, fmt.Errorf("%w: %q", ErrUnknownUtility, utility)
	}
	return cloneDataset(dataset), nil
}

func (c *Catalog) Summary(utility Utility) (Summary, error) {
	dataset, err := c.Dataset(utility)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(dataset)
}

// Summaries recomputes both utilities' summaries.
func (c *Catalog) Summaries() (electricity, water Summary, err error) {
	electricity, err = c.Summary(Electricity)
	if err != nil {
		return Summary{}, Summary{}, err
	}
	water, err = c.Summary(Water)
	if err != nil {
		return Summary{}, Summary{}, err
	}
	return electricity, water, nil
}

func (c *Catalog) ViewWeek(utility Utility, index int) (WeekView, error) {
	dataset, err := c.Dataset(utility)
	if err != nil {
		return WeekView{}, err
	}
	return ViewWeek(dataset, index)
}

// CombinedWeekTotal sums both utilities' totals for the week at index.
func (c *Catalog) CombinedWeekTotal(index int) (electricity, water, combined float64, err error) {
	for _, utility := range Utilities {
		dataset := c.datasets[utility]
		if index < 0 || index >= len(dataset.Weeks) {
			return 0, 0, 0, fmt.Errorf("%s week %d: %w", utility, index, ErrWeekNotFound)
		}
	}
	electricity = c.datasets[Electricity].Weeks[index].Total
	water = c.datasets[Water].Weeks[index].Total
	combined = decimal.NewFromFloat(electricity).Add(decimal.NewFromFloat(water)).InexactFloat64()
	return electricity, water, combined, nil
}

func cloneDataset(dataset Dataset) Dataset {
	weeks := make([]WeekRecord, len(dataset.Weeks))
	for i, week := range dataset.Weeks {
		days := make([]DailyRecord, len(week.Days))
		copy(days, week.Days)
		week.Days = days
		weeks[i] = week
	}
	dataset.Weeks = weeks
	return dataset
}
