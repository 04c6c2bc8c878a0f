/*
config.go - YAML loading for the rate table and holiday calendar

PURPOSE:
  Both lookup structures are static reference data maintained outside the
  code. Ops edits a YAML file; the server loads it once at startup into the
  immutable Table/Calendar structures. No live reload: a rate change is a
  deploy, which keeps locked rates trivially auditable against the file
  history.

YAML SCHEMA:
  rates:
    PHARMACIST:
      PHARMACIST:                 # classification key (award level)
        full_part_time:
          weekday: "48.50"
          saturday: "55.00"
          sunday: "62.00"
          public_holiday: "85.00"
          early_morning: "52.00"
          late_night: "58.00"
        casual: { ... }
    ASSISTANT:
      level_1: { ... }
      level_2: { ... }
  holidays:
    NSW: ["2025-12-25", "2025-12-26"]
    VIC: ["2025-12-25", "2025-11-04"]

  Rate values are strings so decimals survive YAML parsing intact.
*/
package rates

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/locumbase/shift-engine/shifts"
)

// fileSchema mirrors the YAML layout.
type fileSchema struct {
	Rates    map[string]map[string]map[string]map[string]string `yaml:"rates"`
	Holidays map[string][]string                                `yaml:"holidays"`
}

// Load reads a YAML config file and builds the immutable table and
// calendar.
func Load(path string) (*Table, *Calendar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read rate config: %w", err)
	}
	return Parse(data)
}

// Parse builds the table and calendar from raw YAML.
func Parse(data []byte) (*Table, *Calendar, error) {
	var file fileSchema
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("parse rate config: %w", err)
	}

	src := make(map[shifts.Role]map[string]map[shifts.EmploymentCategory]map[string]decimal.Decimal)
	for roleName, byClass := range file.Rates {
		role := shifts.Role(roleName)
		src[role] = make(map[string]map[shifts.EmploymentCategory]map[string]decimal.Decimal)
		for class, byCat := range byClass {
			src[role][class] = make(map[shifts.EmploymentCategory]map[string]decimal.Decimal)
			for catName, byKey := range byCat {
				cat := shifts.EmploymentCategory(catName)
				if cat != shifts.CategoryFullPartTime && cat != shifts.CategoryCasual {
					return nil, nil, fmt.Errorf("rate config: unknown employment category %q under %s/%s", catName, roleName, class)
				}
				entries := make(map[string]decimal.Decimal)
				for key, raw := range byKey {
					rate, err := decimal.NewFromString(raw)
					if err != nil {
						return nil, nil, fmt.Errorf("rate config: bad rate %q at %s/%s/%s/%s: %w", raw, roleName, class, catName, key, err)
					}
					entries[key] = rate
				}
				src[role][class][cat] = entries
			}
		}
	}

	holidays := make(map[string][]shifts.Date)
	for state, dates := range file.Holidays {
		for _, raw := range dates {
			d, err := shifts.ParseDate(raw)
			if err != nil {
				return nil, nil, fmt.Errorf("rate config: bad holiday for %s: %w", state, err)
			}
			holidays[state] = append(holidays[state], d)
		}
	}

	return NewTable(src), NewCalendar(holidays), nil
}
