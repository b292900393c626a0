package config

import (
	"time"

	"github.com/spf13/viper"

	"timegrid/internal/catalog"
)

// Config holds all runtime configuration for a timetable generation run.
// Values are populated from .timegrid.yaml, TIMEGRID_* env vars, and CLI
// flags.
type Config struct {
	LabSlotsPerDay    uint64        `mapstructure:"lab_slots_per_day"`
	TheorySlotsPerDay uint64        `mapstructure:"theory_slots_per_day"`
	Days              []string      `mapstructure:"days"`
	LunchTheorySlot   uint64        `mapstructure:"lunch_theory_slot"`
	LunchLabSlots     []uint64      `mapstructure:"lunch_lab_slots"`
	LabKeywords       []string      `mapstructure:"lab_keywords"`
	FirstYearCutoff   uint64        `mapstructure:"first_year_cutoff"`
	WorkloadCap       uint64        `mapstructure:"workload_cap"`
	TimeLimit         time.Duration `mapstructure:"time_limit"`
	Workers           int           `mapstructure:"workers"`
	Verbose           bool          `mapstructure:"verbose"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() Config {
	viper.SetDefault("lab_slots_per_day", 12)
	viper.SetDefault("theory_slots_per_day", 11)
	viper.SetDefault("days", []string{})
	viper.SetDefault("lunch_theory_slot", 5)
	viper.SetDefault("lunch_lab_slots", []uint64{4, 5})
	viper.SetDefault("lab_keywords", catalog.DefaultLabKeywords)
	viper.SetDefault("first_year_cutoff", 8)
	viper.SetDefault("workload_cap", 0)
	viper.SetDefault("time_limit", time.Duration(0))
	viper.SetDefault("workers", 1)
	viper.SetDefault("verbose", false)

	var cfg Config
	_ = viper.Unmarshal(&cfg)
	return cfg
}

// WorkingDays parses the configured day names; an empty or invalid list
// falls back to the catalog default.
func (c Config) WorkingDays() []catalog.Weekday {
	days := make([]catalog.Weekday, 0, len(c.Days))
	for _, name := range c.Days {
		day, err := catalog.ParseWeekday(name)
		if err != nil {
			return nil
		}
		days = append(days, day)
	}
	if len(days) == 0 {
		return nil
	}
	return days
}
