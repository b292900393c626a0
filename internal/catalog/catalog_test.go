package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const coursesCSV = `course_id,department,semester,section,teacher_id,lab_hours,theory_hours,year
CS101,CSE,1,A,T1,0,3,1
CS102,CSE,1,A,T2,2,0,1
ME201,MECH,3,B,T3,0,2,2
`

const roomsCSV = `room_id,room_name,capacity
R001,Theory Room 1,60
CL001,Computer Lab 1,30
LAB01,Programming Lab,35
`

const calendarCSV = `department,semester,working_days
MECH,3,monday;wed;fri
CSE,,tuesday;wednesday;thursday;friday;saturday
`

func TestLoad(t *testing.T) {
	t.Run("all sources present", func(t *testing.T) {
		// Arrange
		sources := Sources{
			Courses:  strings.NewReader(coursesCSV),
			Rooms:    strings.NewReader(roomsCSV),
			Calendar: strings.NewReader(calendarCSV),
		}

		// Act
		cat, err := Load(sources)

		// Assert
		assert.Nil(t, err)
		assert.Len(t, cat.Sections(), 3)
		assert.Len(t, cat.Rooms(), 3)
		assert.Equal(t, []Weekday{Monday, Wednesday, Friday}, cat.WorkingDays("MECH", 3))
		assert.Equal(t, []Weekday{Tuesday, Wednesday, Thursday, Friday, Saturday}, cat.WorkingDays("CSE", 1))
	})

	t.Run("missing mandatory source fails", func(t *testing.T) {
		_, err := Load(Sources{Rooms: strings.NewReader(roomsCSV)})

		var loadErr *DataLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "courses", loadErr.Source)
	})

	t.Run("malformed course row fails", func(t *testing.T) {
		malformed := "course_id,department,semester,section,teacher_id,lab_hours,theory_hours,year\nCS101,CSE,one,A,T1,0,3,1\n"

		_, err := Load(Sources{
			Courses: strings.NewReader(malformed),
			Rooms:   strings.NewReader(roomsCSV),
		})

		var loadErr *DataLoadError
		assert.ErrorAs(t, err, &loadErr)
		assert.Equal(t, "courses", loadErr.Source)
	})

	t.Run("missing calendar defaults to five-day week", func(t *testing.T) {
		cat, err := Load(Sources{
			Courses: strings.NewReader(coursesCSV),
			Rooms:   strings.NewReader(roomsCSV),
		})

		assert.Nil(t, err)
		assert.Equal(t, DefaultWorkingDays, cat.WorkingDays("CSE", 1))
	})
}

func TestRoomClassification(t *testing.T) {
	cat, err := Load(Sources{
		Courses: strings.NewReader(coursesCSV),
		Rooms:   strings.NewReader(roomsCSV),
	})
	assert.Nil(t, err)

	assert.False(t, cat.IsLab("R001"))
	assert.True(t, cat.IsLab("CL001"))
	assert.True(t, cat.IsLab("LAB01"))
	assert.False(t, cat.IsLab("missing"))

	assert.Len(t, cat.RoomsByKind(Lab), 2)
	assert.Len(t, cat.RoomsByKind(Theory), 1)
}

func TestCustomClassifier(t *testing.T) {
	classifier := NewKeywordClassifier([]string{"workshop"})

	cat, err := Load(Sources{
		Courses: strings.NewReader(coursesCSV),
		Rooms:   strings.NewReader("room_id,room_name,capacity\nW1,Workshop East,20\nCL001,Computer Lab 1,30\n"),
	}, WithClassifier(classifier))

	assert.Nil(t, err)
	assert.True(t, cat.IsLab("W1"))
	assert.False(t, cat.IsLab("CL001")) // "computer" is not in the custom keyword set
}

func TestIsLunchSlot(t *testing.T) {
	cat, err := Load(Sources{
		Courses: strings.NewReader(coursesCSV),
		Rooms:   strings.NewReader(roomsCSV),
	})
	assert.Nil(t, err)

	assert.True(t, cat.IsLunchSlot(5, Theory))
	assert.False(t, cat.IsLunchSlot(4, Theory))
	assert.True(t, cat.IsLunchSlot(4, Lab))
	assert.True(t, cat.IsLunchSlot(5, Lab))
	assert.False(t, cat.IsLunchSlot(6, Lab))
}

func TestParseWeekday(t *testing.T) {
	scenarios := map[string]Weekday{
		"monday":   Monday,
		"Wed":      Wednesday,
		"thur":     Thursday,
		" FRIDAY ": Friday,
		"sat":      Saturday,
	}

	for name, expected := range scenarios {
		day, err := ParseWeekday(name)
		assert.Nil(t, err)
		assert.Equal(t, expected, day)
	}

	_, err := ParseWeekday("someday")
	assert.NotNil(t, err)
}

func TestFromInput(t *testing.T) {
	input := Input{
		Courses: []CourseRow{
			{CourseID: "CS101", Department: "CSE", Semester: 1, Section: "A", Teacher: "T1", TheoryHours: 3, Year: 1},
		},
		Rooms: []RoomRow{
			{RoomID: "R001", Name: "Theory Room 1", Capacity: 60},
			{RoomID: "CL001", Name: "Computer Lab 1", Capacity: 30},
		},
		Calendar: []CalendarRow{
			{Department: "CSE", Semester: 1, WorkingDays: []string{"monday", "tuesday", "wednesday"}},
		},
	}

	cat, err := FromInput(input)

	assert.Nil(t, err)
	assert.Len(t, cat.Sections(), 1)
	assert.True(t, cat.IsLab("CL001"))
	assert.Equal(t, []Weekday{Monday, Tuesday, Wednesday}, cat.WorkingDays("CSE", 1))
}

func TestTeachers(t *testing.T) {
	cat, err := Load(Sources{
		Courses: strings.NewReader(coursesCSV),
		Rooms:   strings.NewReader(roomsCSV),
	})
	assert.Nil(t, err)

	assert.ElementsMatch(t, []string{"T1", "T2", "T3"}, cat.Teachers())
}
