package engine

import (
	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

// LabRoomOnlyUnit re-validates that practical sessions only sit in
// lab-category rooms. Model build already prunes incompatible variables, so
// this normally posts nothing; it exists as a safety net for variables
// created through a different path.
type LabRoomOnlyUnit struct{}

func (LabRoomOnlyUnit) Name() string     { return "extension/lab-room-only" }
func (LabRoomOnlyUnit) Structural() bool { return false }

func (LabRoomOnlyUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	for _, variable := range m.Variables() {
		if variable.Slot.Kind == variable.Room.Kind {
			continue
		}
		if err := m.Forbid(variable.ID); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// LunchExclusionUnit blocks theory sessions at lunch slots.
type LunchExclusionUnit struct{}

func (LunchExclusionUnit) Name() string     { return "extension/lunch-exclusion" }
func (LunchExclusionUnit) Structural() bool { return false }

func (LunchExclusionUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	for _, variable := range m.Variables() {
		if variable.Slot.Kind != catalog.Theory || !variable.Slot.Lunch {
			continue
		}
		if err := m.Forbid(variable.ID); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// TeacherWorkloadCapUnit bounds a teacher's weekly scheduled hours. An empty
// Teacher applies the cap to every teacher in the catalog.
type TeacherWorkloadCapUnit struct {
	Teacher  string
	MaxHours uint64
}

func (u TeacherWorkloadCapUnit) Name() string {
	if u.Teacher == "" {
		return "extension/teacher-workload-cap"
	}
	return "extension/teacher-workload-cap/" + u.Teacher
}

func (TeacherWorkloadCapUnit) Structural() bool { return false }

func (u TeacherWorkloadCapUnit) Apply(m *Model, cat *catalog.Catalog, _ *grid.Grid) (int, error) {
	teachers := cat.Teachers()
	if u.Teacher != "" {
		teachers = []string{u.Teacher}
	}

	perTeacher := make(map[string][]int)
	for _, variable := range m.Variables() {
		perTeacher[variable.Section.Teacher] = append(perTeacher[variable.Section.Teacher], variable.ID)
	}

	count := 0
	for _, teacher := range teachers {
		vars := perTeacher[teacher]
		if len(vars) == 0 {
			continue
		}
		if err := m.AtMost(vars, u.MaxHours); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// FirstYearEndTimeUnit keeps first-year theory sessions before a cutoff slot
// so first-year students finish early.
type FirstYearEndTimeUnit struct {
	CutoffIndex uint64
}

func (FirstYearEndTimeUnit) Name() string     { return "extension/first-year-end-time" }
func (FirstYearEndTimeUnit) Structural() bool { return false }

func (u FirstYearEndTimeUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	for _, variable := range m.Variables() {
		if variable.Section.Year != 1 || variable.Slot.Kind != catalog.Theory {
			continue
		}
		if variable.Slot.Index < u.CutoffIndex {
			continue
		}
		if err := m.Forbid(variable.ID); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// DayBlockUnit blocks a contiguous slot index range for one or both session
// kinds, covering "no classes between X and Y" style rules.
type DayBlockUnit struct {
	Label string
	From  uint64
	To    uint64
	Kinds []catalog.SessionKind
}

func (u DayBlockUnit) Name() string {
	if u.Label == "" {
		return "extension/day-block"
	}
	return "extension/day-block/" + u.Label
}

func (DayBlockUnit) Structural() bool { return false }

func (u DayBlockUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	kinds := u.Kinds
	if len(kinds) == 0 {
		kinds = []catalog.SessionKind{catalog.Lab, catalog.Theory}
	}

	count := 0
	for _, variable := range m.Variables() {
		if variable.Slot.Index < u.From || variable.Slot.Index > u.To {
			continue
		}
		blocked := false
		for _, kind := range kinds {
			if variable.Slot.Kind == kind {
				blocked = true
				break
			}
		}
		if !blocked {
			continue
		}
		if err := m.Forbid(variable.ID); err != nil {
			return 0, err
		}
		count++
	}
	return count, nil
}

// MaxSessionsPerDayUnit limits how many sessions of one demand may land on
// the same day, spreading a course across the week.
type MaxSessionsPerDayUnit struct {
	MaxTheory uint64
	MaxLab    uint64
}

func (MaxSessionsPerDayUnit) Name() string     { return "extension/max-sessions-per-day" }
func (MaxSessionsPerDayUnit) Structural() bool { return false }

func (u MaxSessionsPerDayUnit) Apply(m *Model, _ *catalog.Catalog, _ *grid.Grid) (int, error) {
	count := 0
	for i, demand := range m.Demands() {
		max := u.MaxTheory
		if demand.Kind == catalog.Lab {
			max = u.MaxLab
		}
		if max == 0 || demand.Hours <= max {
			continue
		}

		perDay := make(map[catalog.Weekday][]int)
		for _, id := range m.VariablesForDemand(i) {
			day := m.Variables()[id].Slot.Day
			perDay[day] = append(perDay[day], id)
		}

		for _, day := range m.Grid().Days() {
			vars := perDay[day]
			if uint64(len(vars)) <= max {
				continue
			}
			if err := m.AtMost(vars, max); err != nil {
				return 0, err
			}
			count++
		}
	}
	return count, nil
}
