package catalog

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// SessionKind distinguishes lab sessions from theory sessions. Rooms and
// slots carry the same categorization so that variables are only created for
// compatible (section, room, slot) combinations.
type SessionKind uint8

const (
	Lab SessionKind = iota
	Theory
)

func (k SessionKind) String() string {
	if k == Lab {
		return "lab"
	}
	return "theory"
}

// Weekday indexes working days starting from Monday = 0.
type Weekday uint8

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
	Saturday:  "Saturday",
	Sunday:    "Sunday",
}

func (d Weekday) String() string {
	return weekdayNames[d]
}

// ParseWeekday accepts full names and the abbreviated forms found in
// day-order calendars ("wed", "thur", "fri", "sat").
func ParseWeekday(name string) (Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "monday", "mon":
		return Monday, nil
	case "tuesday", "tue", "tues":
		return Tuesday, nil
	case "wednesday", "wed":
		return Wednesday, nil
	case "thursday", "thur", "thu":
		return Thursday, nil
	case "friday", "fri":
		return Friday, nil
	case "saturday", "sat":
		return Saturday, nil
	case "sunday", "sun":
		return Sunday, nil
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}

// DefaultWorkingDays is assumed for any department without a calendar entry.
var DefaultWorkingDays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

// Section is one schedulable (course, department, semester, section) unit.
// Immutable for a scheduling run.
type Section struct {
	CourseID    string
	Department  string
	Semester    uint64
	Section     string
	Teacher     string
	LabHours    uint64
	TheoryHours uint64
	Year        uint64
	Students    uint64
}

// Key uniquely identifies a section within a run.
func (s Section) Key() string {
	return fmt.Sprintf("%v/%v/%v/%v", s.CourseID, s.Department, s.Semester, s.Section)
}

// Room is a physical room with a derived category.
type Room struct {
	ID       string
	Name     string
	Capacity uint64
	Kind     SessionKind
}

// RoomClassifier decides whether a room name denotes a lab room. The default
// matches the documented keyword set by substring; callers may plug their own.
type RoomClassifier func(name string) SessionKind

// DefaultLabKeywords is the documented keyword set for lab-room detection.
var DefaultLabKeywords = []string{"lab", "computer"}

// NewKeywordClassifier builds a classifier matching any keyword as a
// case-insensitive substring of the room name.
func NewKeywordClassifier(keywords []string) RoomClassifier {
	return func(name string) SessionKind {
		lower := strings.ToLower(name)
		if lo.SomeBy(keywords, func(keyword string) bool { return strings.Contains(lower, keyword) }) {
			return Lab
		}
		return Theory
	}
}

type calendarKey struct {
	department string
	semester   uint64
}

// Catalog is the normalized read-only view of courses, rooms, teachers and
// working-day calendars. Built once per scheduling run.
type Catalog struct {
	sections []Section
	rooms    []Room

	calendars   map[calendarKey][]Weekday
	preferences map[string]map[Weekday]int64

	lunchTheorySlot uint64
	lunchLabSlots   []uint64

	classifier RoomClassifier
	logger     *zap.Logger
}

// Option tweaks catalog construction.
type Option func(*Catalog)

// WithClassifier replaces the default keyword classifier used during load.
func WithClassifier(classifier RoomClassifier) Option {
	return func(c *Catalog) { c.classifier = classifier }
}

// WithLunchSlots overrides the reference lunch configuration (theory slot 5,
// lab slots 4 and 5).
func WithLunchSlots(theorySlot uint64, labSlots []uint64) Option {
	return func(c *Catalog) {
		c.lunchTheorySlot = theorySlot
		c.lunchLabSlots = labSlots
	}
}

// WithLogger attaches a logger; a nop logger is used otherwise.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

// Sections returns sections in load order.
func (c *Catalog) Sections() []Section {
	return c.sections
}

// Rooms returns rooms in load order.
func (c *Catalog) Rooms() []Room {
	return c.rooms
}

// RoomsByKind returns rooms of the given kind, preserving load order.
func (c *Catalog) RoomsByKind(kind SessionKind) []Room {
	return lo.Filter(c.rooms, func(room Room, _ int) bool { return room.Kind == kind })
}

// Room resolves a room by id.
func (c *Catalog) Room(id string) (Room, bool) {
	return lo.Find(c.rooms, func(room Room) bool { return room.ID == id })
}

// IsLab reports whether the room with the given id is categorized as a lab.
func (c *Catalog) IsLab(roomID string) bool {
	room, ok := c.Room(roomID)
	return ok && room.Kind == Lab
}

// Teachers returns the distinct teacher ids across all sections.
func (c *Catalog) Teachers() []string {
	return lo.Uniq(lo.Map(c.sections, func(section Section, _ int) string { return section.Teacher }))
}

// WorkingDays returns the ordered working days for a department and semester,
// falling back to Monday-Friday when no calendar entry exists.
func (c *Catalog) WorkingDays(department string, semester uint64) []Weekday {
	if days, ok := c.calendars[calendarKey{department, semester}]; ok {
		return days
	}
	// A department-wide entry (semester 0) applies to every semester.
	if days, ok := c.calendars[calendarKey{department, 0}]; ok {
		return days
	}
	return DefaultWorkingDays
}

// IsLunchSlot reports whether the slot index is a lunch slot for the given
// session kind.
func (c *Catalog) IsLunchSlot(index uint64, kind SessionKind) bool {
	if kind == Theory {
		return index == c.lunchTheorySlot
	}
	return lo.Contains(c.lunchLabSlots, index)
}

// DayPreference returns the loaded preference weight of a teacher for a
// working day; zero when no preference data was provided.
func (c *Catalog) DayPreference(teacher string, day Weekday) int64 {
	return c.preferences[teacher][day]
}

// HasPreferences reports whether any teacher day preference was loaded.
func (c *Catalog) HasPreferences() bool {
	return len(c.preferences) > 0
}
