package engine

import (
	"fmt"

	"github.com/samber/lo"

	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

// Entry is one scheduled session of the produced timetable.
type Entry struct {
	Section catalog.Section
	Room    catalog.Room
	Slot    grid.Slot
}

// Timetable is the extracted solution restricted to true assignments, with
// per-section, per-room and per-teacher views for fast lookup.
type Timetable struct {
	entries   []Entry
	bySection map[string][]Entry
	byRoom    map[string][]Entry
	byTeacher map[string][]Entry
}

// Entries returns every scheduled session in variable order.
func (t *Timetable) Entries() []Entry {
	return t.entries
}

// BySection returns the sessions of a section key.
func (t *Timetable) BySection(key string) []Entry {
	return t.bySection[key]
}

// ByRoom returns the sessions held in a room.
func (t *Timetable) ByRoom(roomID string) []Entry {
	return t.byRoom[roomID]
}

// ByTeacher returns the sessions taught by a teacher.
func (t *Timetable) ByTeacher(teacher string) []Entry {
	return t.byTeacher[teacher]
}

// Extract converts a solved result into a Timetable, re-validating every
// posted restriction against the assignment first. A violation here means an
// engine defect, surfaced as *ExtractionError and never silently corrected.
func Extract(m *Model, result Result) (*Timetable, error) {
	if result.Status != Solved {
		return nil, &ExtractionError{Reason: fmt.Sprintf("solver status is %v, not solved", result.Status)}
	}

	if err := revalidate(m, result.Assignment); err != nil {
		return nil, err
	}

	timetable := &Timetable{
		entries:   make([]Entry, 0, len(result.Assignment)),
		bySection: make(map[string][]Entry),
		byRoom:    make(map[string][]Entry),
		byTeacher: make(map[string][]Entry),
	}
	for _, variable := range result.Assignment {
		entry := Entry{Section: variable.Section, Room: variable.Room, Slot: variable.Slot}
		timetable.entries = append(timetable.entries, entry)
		timetable.bySection[variable.Section.Key()] = append(timetable.bySection[variable.Section.Key()], entry)
		timetable.byRoom[variable.Room.ID] = append(timetable.byRoom[variable.Room.ID], entry)
		timetable.byTeacher[variable.Section.Teacher] = append(timetable.byTeacher[variable.Section.Teacher], entry)
	}
	return timetable, nil
}

// revalidate replays the assignment against the model's restrictions: no
// double-booking, exact hour coverage, no teacher clash, and no variable a
// unit explicitly forbade.
func revalidate(m *Model, assignment []Variable) error {
	active := make(map[int]bool, len(assignment))
	for _, variable := range assignment {
		if variable.ID < 0 || variable.ID >= len(m.variables) {
			return &ExtractionError{Reason: fmt.Sprintf("assignment references unknown variable %v", variable.ID)}
		}
		if active[variable.ID] {
			return &ExtractionError{Reason: fmt.Sprintf("variable %v assigned twice", variable.Key())}
		}
		active[variable.ID] = true
	}

	for _, id := range m.forbidden {
		if active[id] {
			return &ExtractionError{Reason: fmt.Sprintf("forbidden variable %v is true", m.variables[id].Key())}
		}
	}

	for _, group := range m.groups {
		trueCount := uint64(lo.CountBy(group.vars, func(id int) bool { return active[id] }))
		if group.exact && trueCount != group.bound {
			return &ExtractionError{Reason: fmt.Sprintf("exact restriction violated: %v true, %v required", trueCount, group.bound)}
		}
		if !group.exact && trueCount > group.bound {
			return &ExtractionError{Reason: fmt.Sprintf("bound restriction violated: %v true, at most %v allowed", trueCount, group.bound)}
		}
	}

	return nil
}
