// Package engine holds the decision-variable model, the constraint library
// and the search procedure that together produce a valid timetable.
package engine

import (
	"fmt"

	"go.uber.org/zap"

	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

// Variable is one boolean decision: "section holds this room at this slot".
// Variables exist only for room-compatible slots on working days of the
// section's department, and their identity never changes after model build.
type Variable struct {
	ID      int
	Section catalog.Section
	Room    catalog.Room
	Slot    grid.Slot
}

// Key is the external identity of a variable, used by generated units that
// address variables by data identifiers instead of positions.
func (v Variable) Key() string {
	return fmt.Sprintf("%v|%v|%v", v.Section.Key(), v.Room.ID, v.Slot.Key())
}

// Demand is a section's requirement of a fixed number of hours of one
// session kind. Each demand owns a disjoint set of candidate variables.
type Demand struct {
	Section catalog.Section
	Kind    catalog.SessionKind
	Hours   uint64
}

// cardinality is one posted restriction over a variable group: the number of
// true variables must be exactly (or at most) the bound.
type cardinality struct {
	vars  []int
	bound uint64
	exact bool
}

type pairKey struct {
	a string
	b string
}

// Model owns the variables and the restrictions posted on them. Variables
// are created once at build time; only restrictions accumulate afterwards,
// and none after the model is sealed.
type Model struct {
	catalog *catalog.Catalog
	grid    *grid.Grid

	variables []Variable
	demands   []Demand

	byDemand      [][]int
	byKey         map[string]int
	byRoomSlot    map[pairKey][]int
	byTeacherSlot map[pairKey][]int

	forbidden []int
	groups    []cardinality

	sealed bool
}

// BuildModel creates one variable per feasible (section, room, slot) triple.
// A section demanding hours of a kind with no candidate room or slot fails
// with *ModelBuildError naming the section.
func BuildModel(cat *catalog.Catalog, g *grid.Grid, logger *zap.Logger) (*Model, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	model := &Model{
		catalog:       cat,
		grid:          g,
		byKey:         make(map[string]int),
		byRoomSlot:    make(map[pairKey][]int),
		byTeacherSlot: make(map[pairKey][]int),
	}

	for _, section := range cat.Sections() {
		for _, kind := range []catalog.SessionKind{catalog.Lab, catalog.Theory} {
			hours := section.LabHours
			if kind == catalog.Theory {
				hours = section.TheoryHours
			}
			if hours == 0 {
				continue
			}

			rooms := cat.RoomsByKind(kind)
			slots := g.SlotsFor(section.Department, section.Semester, kind)

			candidates := make([]int, 0, len(rooms)*len(slots))
			for _, slot := range slots {
				for _, room := range rooms {
					id := len(model.variables)
					variable := Variable{ID: id, Section: section, Room: room, Slot: slot}
					model.variables = append(model.variables, variable)
					candidates = append(candidates, id)

					model.byKey[variable.Key()] = id
					roomSlot := pairKey{room.ID, slot.TimeKey()}
					model.byRoomSlot[roomSlot] = append(model.byRoomSlot[roomSlot], id)
					teacherSlot := pairKey{section.Teacher, slot.TimeKey()}
					model.byTeacherSlot[teacherSlot] = append(model.byTeacherSlot[teacherSlot], id)
				}
			}

			if len(candidates) == 0 {
				return nil, &ModelBuildError{SectionKey: section.Key(), Kind: kind.String()}
			}

			model.demands = append(model.demands, Demand{Section: section, Kind: kind, Hours: hours})
			model.byDemand = append(model.byDemand, candidates)
		}
	}

	logger.Info("variable model built",
		zap.Int("variables", len(model.variables)),
		zap.Int("demands", len(model.demands)))
	return model, nil
}

// Variables returns all variables in creation order.
func (m *Model) Variables() []Variable {
	return m.variables
}

// Demands returns all (section, kind) hour demands in creation order.
func (m *Model) Demands() []Demand {
	return m.demands
}

// VariablesForDemand returns the candidate variable ids of a demand.
func (m *Model) VariablesForDemand(demand int) []int {
	return m.byDemand[demand]
}

// VariablesForRoomSlot returns the variable ids competing for a room at the
// slot's wall-clock period. Backed by a precomputed index.
func (m *Model) VariablesForRoomSlot(roomID string, slot grid.Slot) []int {
	return m.byRoomSlot[pairKey{roomID, slot.TimeKey()}]
}

// VariablesForTeacherSlot returns the variable ids placing a teacher at the
// slot's wall-clock period, across both slot calendars. Backed by a
// precomputed index.
func (m *Model) VariablesForTeacherSlot(teacher string, slot grid.Slot) []int {
	return m.byTeacherSlot[pairKey{teacher, slot.TimeKey()}]
}

// VariableByKey resolves a variable by its external key.
func (m *Model) VariableByKey(key string) (int, bool) {
	id, ok := m.byKey[key]
	return id, ok
}

// RoomSlotPairs iterates every indexed (room, slot) pair.
func (m *Model) RoomSlotPairs(visit func(roomID, slotKey string, vars []int)) {
	for key, vars := range m.byRoomSlot {
		visit(key.a, key.b, vars)
	}
}

// TeacherSlotPairs iterates every indexed (teacher, slot) pair.
func (m *Model) TeacherSlotPairs(visit func(teacher, slotKey string, vars []int)) {
	for key, vars := range m.byTeacherSlot {
		visit(key.a, key.b, vars)
	}
}

// Forbid posts a unary restriction fixing the variable to false.
func (m *Model) Forbid(id int) error {
	if err := m.check(id); err != nil {
		return err
	}
	m.forbidden = append(m.forbidden, id)
	return nil
}

// AtMost posts a restriction allowing at most bound true variables in vars.
func (m *Model) AtMost(vars []int, bound uint64) error {
	return m.post(vars, bound, false)
}

// AtMostOne is the common special case of AtMost with a bound of one.
func (m *Model) AtMostOne(vars []int) error {
	return m.post(vars, 1, false)
}

// Exactly posts a restriction forcing exactly bound true variables in vars.
func (m *Model) Exactly(vars []int, bound uint64) error {
	return m.post(vars, bound, true)
}

func (m *Model) post(vars []int, bound uint64, exact bool) error {
	for _, id := range vars {
		if err := m.check(id); err != nil {
			return err
		}
	}
	owned := make([]int, len(vars))
	copy(owned, vars)
	m.groups = append(m.groups, cardinality{vars: owned, bound: bound, exact: exact})
	return nil
}

func (m *Model) check(id int) error {
	if m.sealed {
		return fmt.Errorf("model is sealed")
	}
	if id < 0 || id >= len(m.variables) {
		return fmt.Errorf("unknown variable id %v", id)
	}
	return nil
}

// mark and rollbackTo bracket a unit's postings so that a rejected unit
// leaves no restrictions behind.
type modelMark struct {
	forbidden int
	groups    int
}

func (m *Model) mark() modelMark {
	return modelMark{forbidden: len(m.forbidden), groups: len(m.groups)}
}

func (m *Model) rollbackTo(mark modelMark) {
	m.forbidden = m.forbidden[:mark.forbidden]
	m.groups = m.groups[:mark.groups]
}

// Seal freezes the restriction set. Posting after sealing fails; the solver
// seals the model when the solve starts.
func (m *Model) Seal() {
	m.sealed = true
}

// Sealed reports whether the restriction set is frozen.
func (m *Model) Sealed() bool {
	return m.sealed
}

// Catalog returns the read-only catalog the model was built from.
func (m *Model) Catalog() *catalog.Catalog {
	return m.catalog
}

// Grid returns the slot grid the model was built from.
func (m *Model) Grid() *grid.Grid {
	return m.grid
}
