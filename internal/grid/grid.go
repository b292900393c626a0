// Package grid enumerates the discrete schedulable units of a run: one slot
// per (working day, slot index, session kind). Lab and theory sessions run on
// distinct slot calendars.
package grid

import (
	"fmt"

	"github.com/samber/lo"

	"timegrid/internal/catalog"
)

// Reference slot calendars. Lab sessions run on twelve 50-minute slots per
// day, theory sessions on eleven.
var (
	LabSlotTimes = []string{
		"8:00 - 8:50", "8:50 - 9:40", "9:50 - 10:40", "10:40 - 11:30",
		"11:50 - 12:40", "12:40 - 1:30", "1:50 - 2:40", "2:40 - 3:30",
		"3:50 - 4:40", "4:40 - 5:30", "5:30 - 6:20", "6:20 - 7:10",
	}
	TheorySlotTimes = []string{
		"8:00 - 8:50", "8:50 - 9:40", "9:50 - 10:40", "10:40 - 11:30",
		"11:40 - 12:30", "12:30 - 1:20", "1:30 - 2:20", "2:20 - 3:10",
		"3:10 - 4:00", "4:00 - 4:50", "5:00 - 5:50",
	}
)

// Slot is a discrete schedulable unit.
type Slot struct {
	Day   catalog.Weekday
	Index uint64
	Kind  catalog.SessionKind
	Time  string
	Lunch bool
}

// Key uniquely identifies a slot within a grid.
func (s Slot) Key() string {
	return fmt.Sprintf("%v/%v/%v", s.Kind, s.Day, s.Index)
}

// TimeKey identifies the wall-clock period of a slot regardless of kind.
// Lab slot n and theory slot n of the same day overlap in time, so clash
// detection groups variables by TimeKey rather than Key.
func (s Slot) TimeKey() string {
	return fmt.Sprintf("%v/%v", s.Day, s.Index)
}

// Grid holds the full slot enumeration of a run, ordered lexicographically by
// (day, index) within each kind. The ordering is part of the contract: solver
// tie-breaks rely on it for reproducibility.
type Grid struct {
	catalog *catalog.Catalog

	labSlots    []Slot
	theorySlots []Slot
	days        []catalog.Weekday
}

// Build enumerates slots over the working-day universe. Slot counts of zero
// fall back to the reference calendars.
func Build(cat *catalog.Catalog, labSlotCount, theorySlotCount uint64, days []catalog.Weekday) *Grid {
	if labSlotCount == 0 {
		labSlotCount = uint64(len(LabSlotTimes))
	}
	if theorySlotCount == 0 {
		theorySlotCount = uint64(len(TheorySlotTimes))
	}
	if len(days) == 0 {
		days = catalog.DefaultWorkingDays
	}

	grid := &Grid{catalog: cat, days: days}

	for _, day := range days {
		for index := uint64(0); index < labSlotCount; index++ {
			grid.labSlots = append(grid.labSlots, Slot{
				Day:   day,
				Index: index,
				Kind:  catalog.Lab,
				Time:  timeLabel(LabSlotTimes, index),
				Lunch: cat.IsLunchSlot(index, catalog.Lab),
			})
		}
		for index := uint64(0); index < theorySlotCount; index++ {
			grid.theorySlots = append(grid.theorySlots, Slot{
				Day:   day,
				Index: index,
				Kind:  catalog.Theory,
				Time:  timeLabel(TheorySlotTimes, index),
				Lunch: cat.IsLunchSlot(index, catalog.Theory),
			})
		}
	}

	return grid
}

func timeLabel(times []string, index uint64) string {
	if index < uint64(len(times)) {
		return times[index]
	}
	return ""
}

// Days returns the working-day universe of the grid.
func (g *Grid) Days() []catalog.Weekday {
	return g.days
}

// Slots returns every slot of the given kind across the full day universe.
func (g *Grid) Slots(kind catalog.SessionKind) []Slot {
	if kind == catalog.Lab {
		return g.labSlots
	}
	return g.theorySlots
}

// AllSlots returns every slot of both kinds, lab calendar first.
func (g *Grid) AllSlots() []Slot {
	slots := make([]Slot, 0, len(g.labSlots)+len(g.theorySlots))
	slots = append(slots, g.labSlots...)
	return append(slots, g.theorySlots...)
}

// SlotsPerDay returns how many slots of the given kind each day carries.
func (g *Grid) SlotsPerDay(kind catalog.SessionKind) uint64 {
	if len(g.days) == 0 {
		return 0
	}
	return uint64(len(g.Slots(kind))) / uint64(len(g.days))
}

// SlotsFor returns the slots of the given kind restricted to the working days
// of a department and semester, preserving lexicographic (day, index) order.
func (g *Grid) SlotsFor(department string, semester uint64, kind catalog.SessionKind) []Slot {
	working := g.catalog.WorkingDays(department, semester)
	return lo.Filter(g.Slots(kind), func(slot Slot, _ int) bool {
		return lo.Contains(working, slot.Day)
	})
}
