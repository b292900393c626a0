package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"

	"timegrid/internal/catalog"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	cfg := Load()

	assert.Equal(t, uint64(12), cfg.LabSlotsPerDay)
	assert.Equal(t, uint64(11), cfg.TheorySlotsPerDay)
	assert.Equal(t, uint64(5), cfg.LunchTheorySlot)
	assert.Equal(t, []uint64{4, 5}, cfg.LunchLabSlots)
	assert.Equal(t, catalog.DefaultLabKeywords, cfg.LabKeywords)
	assert.Equal(t, uint64(8), cfg.FirstYearCutoff)
	assert.Equal(t, 1, cfg.Workers)
	assert.Nil(t, cfg.WorkingDays())
}

func TestLoadOverrides(t *testing.T) {
	viper.Reset()
	defer viper.Reset()
	viper.Set("theory_slots_per_day", 8)
	viper.Set("days", []string{"monday", "wed", "fri"})
	viper.Set("time_limit", "30s")
	viper.Set("workers", 4)

	cfg := Load()

	assert.Equal(t, uint64(8), cfg.TheorySlotsPerDay)
	assert.Equal(t, 30*time.Second, cfg.TimeLimit)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t,
		[]catalog.Weekday{catalog.Monday, catalog.Wednesday, catalog.Friday},
		cfg.WorkingDays())
}

func TestWorkingDaysInvalidName(t *testing.T) {
	cfg := Config{Days: []string{"monday", "someday"}}

	assert.Nil(t, cfg.WorkingDays())
}
