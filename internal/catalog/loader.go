package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// DataLoadError signals a missing or malformed mandatory source. It aborts
// the run before model build.
type DataLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot load %v source: %v: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("cannot load %v source: %v", e.Source, e.Reason)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// Sources bundles the tabular inputs of a scheduling run. Courses and Rooms
// are mandatory; Calendar and Preferences are optional and may be nil.
type Sources struct {
	Courses     io.Reader
	Rooms       io.Reader
	Calendar    io.Reader
	Preferences io.Reader
}

// Load builds a Catalog from CSV sources. A missing or malformed mandatory
// source fails with *DataLoadError; missing optional sources are logged and
// defaulted (5-day working week, no preferences).
func Load(sources Sources, options ...Option) (*Catalog, error) {
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

	if sources.Courses == nil {
		return nil, &DataLoadError{Source: "courses", Reason: "source is missing"}
	}
	if sources.Rooms == nil {
		return nil, &DataLoadError{Source: "rooms", Reason: "source is missing"}
	}

	if err := cat.loadCourses(sources.Courses); err != nil {
		return nil, err
	}
	if err := cat.loadRooms(sources.Rooms); err != nil {
		return nil, err
	}

	if sources.Calendar == nil {
		cat.logger.Warn("working-day calendar not provided, assuming Monday-Friday for all departments")
	} else {
		cat.loadCalendar(sources.Calendar)
	}

	if sources.Preferences == nil {
		cat.logger.Warn("teacher day preferences not provided, none will be applied")
	} else {
		cat.loadPreferences(sources.Preferences)
	}

	return cat, nil
}

func (c *Catalog) loadCourses(source io.Reader) error {
	records, header, err := readTable(source)
	if err != nil {
		return &DataLoadError{Source: "courses", Reason: "malformed csv", Err: err}
	}

	for i, record := range records {
		row := namedRow{header: header, record: record}

		var (
			section Section
			err     error
		)
		section.CourseID = row.field("course_id")
		section.Department = row.field("department")
		section.Section = row.field("section")
		section.Teacher = row.field("teacher_id")
		section.Students, _ = row.uintField("students_count") // Optional column

		fields := []struct {
			name   string
			target *uint64
		}{
			{"semester", &section.Semester},
			{"lab_hours", &section.LabHours},
			{"theory_hours", &section.TheoryHours},
			{"year", &section.Year},
		}
		for _, field := range fields {
			if *field.target, err = row.uintField(field.name); err != nil {
				return &DataLoadError{Source: "courses", Reason: fmt.Sprintf("malformed row %v", i+1), Err: err}
			}
		}

		c.sections = append(c.sections, section)
	}

	if len(c.sections) == 0 {
		return &DataLoadError{Source: "courses", Reason: "no course rows"}
	}

	c.logger.Info("courses loaded", zap.Int("sections", len(c.sections)))
	return nil
}

func (c *Catalog) loadRooms(source io.Reader) error {
	records, header, err := readTable(source)
	if err != nil {
		return &DataLoadError{Source: "rooms", Reason: "malformed csv", Err: err}
	}

	for i, record := range records {
		row := namedRow{header: header, record: record}

		capacity, err := row.uintField("capacity")
		if err != nil {
			return &DataLoadError{Source: "rooms", Reason: fmt.Sprintf("malformed row %v", i+1), Err: err}
		}

		name := row.field("room_name")
		c.rooms = append(c.rooms, Room{
			ID:       row.field("room_id"),
			Name:     name,
			Capacity: capacity,
			Kind:     c.classifier(name),
		})
	}

	if len(c.rooms) == 0 {
		return &DataLoadError{Source: "rooms", Reason: "no room rows"}
	}

	labCount := lo.CountBy(c.rooms, func(room Room) bool { return room.Kind == Lab })
	c.logger.Info("rooms loaded", zap.Int("lab", labCount), zap.Int("theory", len(c.rooms)-labCount))
	return nil
}

// loadCalendar fails softly: malformed rows are skipped and logged, matching
// the optional-source policy.
func (c *Catalog) loadCalendar(source io.Reader) {
	records, header, err := readTable(source)
	if err != nil {
		c.logger.Warn("working-day calendar is malformed, assuming Monday-Friday for all departments", zap.Error(err))
		return
	}

	for i, record := range records {
		row := namedRow{header: header, record: record}

		semester, err := row.uintField("semester")
		if err != nil {
			semester = 0 // Department-wide entry
		}

		days, err := parseWorkingDays(row.field("working_days"))
		if err != nil {
			c.logger.Warn("skipping malformed calendar row", zap.Int("row", i+1), zap.Error(err))
			continue
		}

		c.calendars[calendarKey{row.field("department"), semester}] = days
	}

	c.logger.Info("working-day calendar loaded", zap.Int("entries", len(c.calendars)))
}

func (c *Catalog) loadPreferences(source io.Reader) {
	records, header, err := readTable(source)
	if err != nil {
		c.logger.Warn("teacher day preferences are malformed, none will be applied", zap.Error(err))
		return
	}

	for i, record := range records {
		row := namedRow{header: header, record: record}

		day, err := ParseWeekday(row.field("day"))
		if err != nil {
			c.logger.Warn("skipping malformed preference row", zap.Int("row", i+1), zap.Error(err))
			continue
		}

		weight, err := strconv.ParseInt(row.field("weight"), 10, 64)
		if err != nil {
			c.logger.Warn("skipping malformed preference row", zap.Int("row", i+1), zap.Error(err))
			continue
		}

		teacher := row.field("teacher_id")
		if c.preferences[teacher] == nil {
			c.preferences[teacher] = make(map[Weekday]int64)
		}
		c.preferences[teacher][day] = weight
	}

	c.logger.Info("teacher day preferences loaded", zap.Int("teachers", len(c.preferences)))
}

// parseWorkingDays splits a day list on semicolons or whitespace. Order is
// preserved since per-department slot enumeration depends on it.
func parseWorkingDays(raw string) ([]Weekday, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ';' || r == ',' || r == ' ' })
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty working-day list")
	}

	days := make([]Weekday, 0, len(fields))
	for _, field := range fields {
		day, err := ParseWeekday(field)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return lo.Uniq(days), nil
}

func readTable(source io.Reader) ([][]string, map[string]int, error) {
	reader := csv.NewReader(source)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty table")
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return rows[1:], header, nil
}

type namedRow struct {
	header map[string]int
	record []string
}

func (r namedRow) field(name string) string {
	index, ok := r.header[name]
	if !ok || index >= len(r.record) {
		return ""
	}
	return strings.TrimSpace(r.record[index])
}

func (r namedRow) uintField(name string) (uint64, error) {
	raw := r.field(name)
	if raw == "" {
		return 0, fmt.Errorf("missing column %q", name)
	}
	return strconv.ParseUint(raw, 10, 64)
}
