package catalog

import (
	"encoding/json"
	"os"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// CourseRow mirrors one row of the course table in a JSON source.
type CourseRow struct {
	CourseID    string `mapstructure:"courseId"`
	Department  string `mapstructure:"department"`
	Semester    uint64 `mapstructure:"semester"`
	Section     string `mapstructure:"section"`
	Teacher     string `mapstructure:"teacherId"`
	LabHours    uint64 `mapstructure:"labHours"`
	TheoryHours uint64 `mapstructure:"theoryHours"`
	Year        uint64 `mapstructure:"year"`
	Students    uint64 `mapstructure:"studentsCount"`
}

// RoomRow mirrors one row of the room table in a JSON source.
type RoomRow struct {
	RoomID   string `mapstructure:"roomId"`
	Name     string `mapstructure:"name"`
	Capacity uint64 `mapstructure:"capacity"`
}

// CalendarRow maps a department (and optionally a semester) to its ordered
// working days.
type CalendarRow struct {
	Department  string   `mapstructure:"department"`
	Semester    uint64   `mapstructure:"semester"`
	WorkingDays []string `mapstructure:"workingDays"`
}

// Input is the JSON shape of a full scheduling data set.
type Input struct {
	Courses  []CourseRow   `mapstructure:"courses"`
	Rooms    []RoomRow     `mapstructure:"rooms"`
	Calendar []CalendarRow `mapstructure:"calendar"`
}

// InputFromJSON reads a JSON source file and builds a Catalog from it,
// applying the same mandatory/optional policy as Load.
func InputFromJSON(file string, options ...Option) (*Catalog, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return nil, &DataLoadError{Source: "input", Reason: "cannot read file", Err: err}
	}

	var inputJSON map[string]any
	if err := json.Unmarshal(bytes, &inputJSON); err != nil {
		return nil, &DataLoadError{Source: "input", Reason: "malformed json", Err: err}
	}

	var input Input
	if err := mapstructure.Decode(inputJSON, &input); err != nil {
		return nil, &DataLoadError{Source: "input", Reason: "unexpected shape", Err: err}
	}

	return FromInput(input, options...)
}

// FromInput builds a Catalog from an already-decoded Input.
func FromInput(input Input, options ...Option) (*Catalog, error) {
	cat := &Catalog{
		calendars:       make(map[calendarKey][]Weekday),
		preferences:     make(map[string]map[Weekday]int64),
		lunchTheorySlot: 5,
		lunchLabSlots:   []uint64{4, 5},
		classifier:      NewKeywordClassifier(DefaultLabKeywords),
		logger:          zap.NewNop(),
	}
	for _, option := range options {
		option(cat)
	}

	if len(input.Courses) == 0 {
		return nil, &DataLoadError{Source: "courses", Reason: "no course rows"}
	}
	if len(input.Rooms) == 0 {
		return nil, &DataLoadError{Source: "rooms", Reason: "no room rows"}
	}

	for _, row := range input.Courses {
		cat.sections = append(cat.sections, Section{
			CourseID:    row.CourseID,
			Department:  row.Department,
			Semester:    row.Semester,
			Section:     row.Section,
			Teacher:     row.Teacher,
			LabHours:    row.LabHours,
			TheoryHours: row.TheoryHours,
			Year:        row.Year,
			Students:    row.Students,
		})
	}

	for _, row := range input.Rooms {
		cat.rooms = append(cat.rooms, Room{
			ID:       row.RoomID,
			Name:     row.Name,
			Capacity: row.Capacity,
			Kind:     cat.classifier(row.Name),
		})
	}

	if len(input.Calendar) == 0 {
		cat.logger.Warn("working-day calendar not provided, assuming Monday-Friday for all departments")
	}
	for i, row := range input.Calendar {
		days := make([]Weekday, 0, len(row.WorkingDays))
		for _, name := range row.WorkingDays {
			day, err := ParseWeekday(name)
			if err != nil {
				cat.logger.Warn("skipping malformed calendar entry", zap.Int("entry", i), zap.Error(err))
				days = nil
				break
			}
			days = append(days, day)
		}
		if len(days) > 0 {
			cat.calendars[calendarKey{row.Department, row.Semester}] = days
		}
	}

	return cat, nil
}
