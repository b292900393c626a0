package engine

import (
	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

// doubleBookingUnit posts, for every (room, slot) pair, that at most one
// variable among the competitors may be true.
type doubleBookingUnit struct{}

func (doubleBookingUnit) Name() string     { return "structural/no-double-booking" }
func (doubleBookingUnit) Structural() bool { return true }

func (doubleBookingUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	// Walk variables in id order so restriction order is deterministic.
	seen := make(map[pairKey]bool)
	for _, variable := range m.Variables() {
		key := pairKey{variable.Room.ID, variable.Slot.TimeKey()}
		if seen[key] {
			continue
		}
		seen[key] = true

		competitors := m.VariablesForRoomSlot(variable.Room.ID, variable.Slot)
		if len(competitors) < 2 {
			continue
		}
		if err := m.AtMostOne(competitors); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// hoursCompletenessUnit posts, for every demand, that the sum of true
// variables equals the demanded hours exactly: no partial scheduling and no
// over-scheduling.
type hoursCompletenessUnit struct{}

func (hoursCompletenessUnit) Name() string     { return "structural/hours-completeness" }
func (hoursCompletenessUnit) Structural() bool { return true }

func (hoursCompletenessUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	for i, demand := range m.Demands() {
		if err := m.Exactly(m.VariablesForDemand(i), demand.Hours); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// teacherConflictUnit posts, for every (teacher, slot) pair, that the
// teacher holds at most one session.
type teacherConflictUnit struct{}

func (teacherConflictUnit) Name() string     { return "structural/teacher-conflict" }
func (teacherConflictUnit) Structural() bool { return true }

func (teacherConflictUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	seen := make(map[pairKey]bool)
	for _, variable := range m.Variables() {
		key := pairKey{variable.Section.Teacher, variable.Slot.TimeKey()}
		if seen[key] {
			continue
		}
		seen[key] = true

		sessions := m.VariablesForTeacherSlot(variable.Section.Teacher, variable.Slot)
		if len(sessions) < 2 {
			continue
		}
		if err := m.AtMostOne(sessions); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}
