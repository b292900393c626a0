package engine

import (
	"go.uber.org/zap"

	"timegrid/internal/catalog"
	"timegrid/internal/grid"
)

// Unit is a named, self-contained restriction over a subset of the model's
// variables. Structural units define base feasibility and always run first;
// extension units layer on top and may be registered between runs by
// external generators. Apply must be idempotent with respect to solver
// semantics and returns the count of atomic restrictions posted.
type Unit interface {
	Name() string
	Structural() bool
	Apply(m *Model, cat *catalog.Catalog, g *grid.Grid) (int, error)
}

// Library is the ordered, append-only collection of constraint units of a
// run. Structural units are installed at construction; extension units are
// registered before the solve starts. Registration is disallowed once the
// library is sealed.
type Library struct {
	structural []Unit
	extension  []Unit
	names      map[string]bool
	rejected   []string
	sealed     bool
	logger     *zap.Logger
}

// NewLibrary creates a library carrying the three structural units in their
// fixed order: double-booking, hours completeness, teacher conflict.
func NewLibrary(logger *zap.Logger) *Library {
	if logger == nil {
		logger = zap.NewNop()
	}
	library := &Library{
		names:  make(map[string]bool),
		logger: logger,
	}
	for _, unit := range []Unit{doubleBookingUnit{}, hoursCompletenessUnit{}, teacherConflictUnit{}} {
		library.structural = append(library.structural, unit)
		library.names[unit.Name()] = true
	}
	return library
}

// Register appends a unit. Registering a unit with an already-registered
// name is a logged no-op, so re-registration cannot change solver semantics.
// Registration after sealing fails with *RegistrationError.
func (l *Library) Register(unit Unit) error {
	if l.sealed {
		return &RegistrationError{Unit: unit.Name(), Reason: "library is sealed, solve already started"}
	}
	if l.names[unit.Name()] {
		l.logger.Info("constraint unit already registered, ignoring", zap.String("unit", unit.Name()))
		return nil
	}

	l.names[unit.Name()] = true
	if unit.Structural() {
		l.structural = append(l.structural, unit)
	} else {
		l.extension = append(l.extension, unit)
	}
	return nil
}

// ApplyAll runs every unit against the model, structural units first, and
// returns the total count of atomic restrictions posted. A unit that fails
// validation is rolled back, logged and skipped; the remaining units still
// run. A unit posting zero restrictions is not an error but is logged.
func (l *Library) ApplyAll(m *Model, cat *catalog.Catalog, g *grid.Grid) (int, error) {
	l.rejected = nil
	total := 0
	for _, unit := range append(append([]Unit{}, l.structural...), l.extension...) {
		mark := m.mark()

		count, err := unit.Apply(m, cat, g)
		if err != nil {
			m.rollbackTo(mark)
			l.rejected = append(l.rejected, unit.Name())
			l.logger.Error("constraint unit rejected",
				zap.String("unit", unit.Name()),
				zap.Error(&RegistrationError{Unit: unit.Name(), Reason: err.Error()}))
			continue
		}

		if count == 0 {
			l.logger.Warn("constraint unit posted no restrictions", zap.String("unit", unit.Name()))
		}
		total += count
	}

	l.logger.Info("constraint library applied",
		zap.Int("units", len(l.structural)+len(l.extension)),
		zap.Int("restrictions", total),
		zap.Strings("rejected", l.rejected))
	return total, nil
}

// Rejected lists the names of units rejected during the last ApplyAll.
func (l *Library) Rejected() []string {
	return l.rejected
}

// Seal disallows further registration. The solver seals the library when a
// solve starts; the sealed set is safe for concurrent reads.
func (l *Library) Seal() {
	l.sealed = true
}
