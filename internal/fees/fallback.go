package fees

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/gyeh/carecost/internal/model"
	"github.com/gyeh/carecost/internal/normalize"
)

//go:embed fallback.yaml
var defaultFallbackYAML []byte

// FallbackTable is a versioned set of sample fee percentiles keyed by
// normalized procedure code.
type FallbackTable struct {
	Version   string
	Effective string
	entries   map[string]model.FeePercentiles
}

type fallbackFile struct {
	Version   string                   `yaml:"version"`
	Effective string                   `yaml:"effective"`
	Codes     map[string]fallbackEntry `yaml:"codes"`
}

type fallbackEntry struct {
	Description string            `yaml:"description"`
	ScheduleA   *fallbackSchedule `yaml:"schedule_a"`
	ScheduleB   *fallbackSchedule `yaml:"schedule_b"`
}

type fallbackSchedule struct {
	P50 float64 `yaml:"p50"`
	P75 float64 `yaml:"p75"`
}

var defaultTable = mustParseFallback(defaultFallbackYAML)

// DefaultFallbackTable returns the embedded fallback table.
func DefaultFallbackTable() *FallbackTable {
	return defaultTable
}

// LoadFallbackTable reads a fallback table from a YAML file.
func LoadFallbackTable(path string) (*FallbackTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fallback table: %w", err)
	}
	return ParseFallbackTable(data)
}

// ParseFallbackTable decodes and validates a YAML fallback table.
func ParseFallbackTable(data []byte) (*FallbackTable, error) {
	var f fallbackFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fallback table: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("fallback table: version is required")
	}

	t := &FallbackTable{
		Version:   f.Version,
		Effective: f.Effective,
		entries:   make(map[string]model.FeePercentiles, len(f.Codes)),
	}
	for raw, e := range f.Codes {
		code := normalize.ProcedureCode(raw)
		if code == "" {
			return nil, fmt.Errorf("fallback table: empty code %q", raw)
		}
		if _, dup := t.entries[code]; dup {
			return nil, fmt.Errorf("fallback table: duplicate code %s", code)
		}
		p := model.FeePercentiles{Code: code, Description: e.Description, Origin: model.FeeOriginEstimated}
		var err error
		if p.ScheduleA, err = e.ScheduleA.schedule(); err != nil {
			return nil, fmt.Errorf("fallback table: code %s schedule_a: %w", code, err)
		}
		if p.ScheduleB, err = e.ScheduleB.schedule(); err != nil {
			return nil, fmt.Errorf("fallback table: code %s schedule_b: %w", code, err)
		}
		if !p.HasData() {
			return nil, fmt.Errorf("fallback table: code %s has no schedules", code)
		}
		t.entries[code] = p
	}
	return t, nil
}

func (s *fallbackSchedule) schedule() (*model.FeeSchedule, error) {
	if s == nil {
		return nil, nil
	}
	if s.P50 < 0 || s.P75 < 0 {
		return nil, fmt.Errorf("negative percentile")
	}
	if s.P50 > s.P75 {
		return nil, fmt.Errorf("p50 %.2f exceeds p75 %.2f", s.P50, s.P75)
	}
	return &model.FeeSchedule{
		Low:  decimal.NewFromFloat(s.P50),
		High: decimal.NewFromFloat(s.P75),
	}, nil
}

func mustParseFallback(data []byte) *FallbackTable {
	t, err := ParseFallbackTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns a copy of the entry for code, marked estimated.
// The code is normalized first.
func (t *FallbackTable) Lookup(code string) (*model.FeePercentiles, bool) {
	if t == nil {
		return nil, false
	}
	p, ok := t.entries[normalize.ProcedureCode(code)]
	if !ok {
		return nil, false
	}
	return clonePercentiles(&p), true
}

// Codes returns the table's codes in ascending order.
func (t *FallbackTable) Codes() []string {
	if t == nil {
		return nil
	}
	codes := make([]string, 0, len(t.entries))
	for c := range t.entries {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Len returns the number of codes in the table.
func (t *FallbackTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

func clonePercentiles(p *model.FeePercentiles) *model.FeePercentiles {
	out := *p
	if p.ScheduleA != nil {
		a := *p.ScheduleA
		out.ScheduleA = &a
	}
	if p.ScheduleB != nil {
		b := *p.ScheduleB
		out.ScheduleB = &b
	}
	return &out
}
